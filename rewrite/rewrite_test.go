// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defenseunicorns/layerfix/schema"
)

func parseModel(t *testing.T, s string) *schema.Model {
	t.Helper()
	m, err := schema.Parse([]byte(s))
	require.NoError(t, err)
	return m
}

func parseLayer(t *testing.T, s string) schema.Layer {
	t.Helper()
	v, err := schema.Decode([]byte(s))
	require.NoError(t, err)
	obj, ok := v.(*schema.Object)
	require.True(t, ok)
	return schema.NewLayer(obj)
}

func marshalLayer(t *testing.T, l schema.Layer) string {
	t.Helper()
	b, err := schema.Encode(l.Object())
	require.NoError(t, err)
	return string(b)
}

func marshalModel(t *testing.T, m *schema.Model) string {
	t.Helper()
	b, err := m.Marshal()
	require.NoError(t, err)
	return string(b)
}

// recorder marks every layer it visits and remembers the paths
type recorder struct {
	paths []string
}

func (*recorder) Name() string { return "recorder" }

func (r *recorder) Rewrite(_ context.Context, path string, layer schema.Layer) (*Change, error) {
	r.paths = append(r.paths, path)
	if layer.ID() == "fail" {
		return nil, errors.New("boom")
	}
	return nil, nil
}

const nested = `{"layers":[
  {"id":"stem","type":"conv"},
  {"id":"res","type":"residual","mainPath":[
    {"id":"inc","type":"inception","branches":[
      {"layers":[
        {"id":"deep","type":"residual","mainPath":[{"id":"deepest","type":"conv"}]}
      ]},
      {"layers":[{"id":"b1","type":"pooling"}]}
    ]},
    {"id":"m1","type":"activation"}
  ]},
  "skip me",
  {"id":"top-inc","type":"inception","branches":[{"layers":[{"id":"tb","type":"conv"}]}],"mainPath":[{"id":"tm","type":"conv"}]}
]}`

func TestTraversalRecursive(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	_, err := Apply(context.Background(), parseModel(t, nested), r, TraversalRecursive)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"layers[0]",
		"layers[1]",
		"layers[1].mainPath[0]",
		"layers[1].mainPath[0].branches[0].layers[0]",
		"layers[1].mainPath[0].branches[0].layers[0].mainPath[0]",
		"layers[1].mainPath[0].branches[1].layers[0]",
		"layers[1].mainPath[1]",
		"layers[3]",
		"layers[3].branches[0].layers[0]",
		"layers[3].mainPath[0]",
	}, r.paths)
}

func TestTraversalShallow(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	_, err := Apply(context.Background(), parseModel(t, nested), r, TraversalShallow)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"layers[0]",
		"layers[1]",
		"layers[1].mainPath[0]",
		"layers[1].mainPath[1]",
		"layers[3]",
	}, r.paths)
}

func TestTraversalDefaultsToRecursive(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	_, err := Apply(context.Background(), parseModel(t, nested), r, "")
	require.NoError(t, err)
	assert.Len(t, r.paths, 10)
}

func TestApplyErrors(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	_, err := Apply(context.Background(), parseModel(t, `{"layers":[{"id":"a"},{"id":"b","mainPath":[{"id":"fail"},{"id":"never"}]}]}`), r, TraversalRecursive)
	require.EqualError(t, err, "layers[1].mainPath[0]: boom")
	assert.Equal(t, []string{"layers[0]", "layers[1]", "layers[1].mainPath[0]"}, r.paths)

	_, err = Apply(context.Background(), parseModel(t, `{"layers":[]}`), r, Traversal("sideways"))
	require.EqualError(t, err, "invalid traversal: sideways")
}

func TestApplyWithoutLayers(t *testing.T) {
	t.Parallel()

	m := parseModel(t, `{"name":"lenet","meta":{"padding":"same"}}`)
	changes, err := Apply(context.Background(), m, Padding{}, TraversalRecursive)
	require.NoError(t, err)
	assert.Nil(t, changes)
	assert.JSONEq(t, `{"name":"lenet","meta":{"padding":"same"}}`, marshalModel(t, m))
}

func TestPaddingThenRename(t *testing.T) {
	t.Parallel()

	m := parseModel(t, `{"layers":[{"id":"l1","type":"conv","padding":"same"},{"id":"l2","type":"residual","mainPath":[{"id":"l3","type":"pooling","poolingType":"global"}]}]}`)

	changes, err := Apply(context.Background(), m, Padding{}, TraversalRecursive)
	require.NoError(t, err)
	assert.Len(t, changes, 1)

	changes, err = Apply(context.Background(), m, Rename{}, TraversalRecursive)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "layers[0]", changes[0].Path)
	assert.Equal(t, "layers[1].mainPath[0]", changes[1].Path)

	expected := parseModel(t, `{"layers":[{"id":"l1","type":"conv2d","padding":[1,1]},{"id":"l2","type":"residual","mainPath":[{"id":"l3","type":"global_avgpool"}]}]}`)
	assert.Equal(t, marshalModel(t, expected), marshalModel(t, m))
}

func TestRenameDepthByTraversal(t *testing.T) {
	t.Parallel()

	input := `{"layers":[{"id":"r","type":"residual","mainPath":[
  {"id":"inner","type":"residual","mainPath":[{"id":"c","type":"conv"}]},
  {"id":"p","type":"pooling"}
]},{"id":"inc","type":"inception","branches":[{"layers":[{"id":"a","type":"activation","activation":"Tanh"}]}]}]}`

	shallow := parseModel(t, input)
	changes, err := Apply(context.Background(), shallow, Rename{}, TraversalShallow)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
	assert.JSONEq(t, `{"layers":[{"id":"r","type":"residual","mainPath":[
  {"id":"inner","type":"residual","mainPath":[{"id":"c","type":"conv"}]},
  {"id":"p","type":"maxpool2d"}
]},{"id":"inc","type":"inception","branches":[{"layers":[{"id":"a","type":"activation","activation":"Tanh"}]}]}]}`, marshalModel(t, shallow))

	deep := parseModel(t, input)
	changes, err = Apply(context.Background(), deep, Rename{}, TraversalRecursive)
	require.NoError(t, err)
	assert.Len(t, changes, 3)
	assert.JSONEq(t, `{"layers":[{"id":"r","type":"residual","mainPath":[
  {"id":"inner","type":"residual","mainPath":[{"id":"c","type":"conv2d"}]},
  {"id":"p","type":"maxpool2d"}
]},{"id":"inc","type":"inception","branches":[{"layers":[{"id":"a","type":"tanh"}]}]}]}`, marshalModel(t, deep))
}

func TestTraversalFlag(t *testing.T) {
	t.Parallel()

	var tr Traversal
	require.NoError(t, tr.Set("shallow"))
	assert.Equal(t, TraversalShallow, tr)
	assert.Equal(t, "shallow", tr.String())
	assert.Equal(t, "string", tr.Type())

	require.EqualError(t, tr.Set("deep"), "invalid traversal: deep")
	assert.Equal(t, TraversalShallow, tr)

	assert.Equal(t, []string{"recursive", "shallow"}, AvailableTraversals())
}
