// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package rewrite applies field rewriting rules to the layers of a model document
package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/defenseunicorns/layerfix/schema"
)

// Change describes one rewritten layer
type Change struct {
	// Path locates the layer inside the document, e.g. layers[1].mainPath[0]
	Path string
	// ID is the layer's id, if it has one
	ID string
	// Field is the key whose value changed
	Field string
	From  any
	To    any
	// Removed lists keys deleted from the layer by the same rewrite
	Removed []string
}

// String implements fmt.Stringer
func (c Change) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s %v -> %v", c.Path, c.Field, c.From, c.To)
	if len(c.Removed) > 0 {
		fmt.Fprintf(&sb, " (removed %s)", strings.Join(c.Removed, ", "))
	}
	return sb.String()
}

// Rule rewrites a single layer in place
//
// Implementations must not recurse into sub-layers, that is the job of the Traversal
type Rule interface {
	// Name is a short human readable name for the rule
	Name() string
	// Rewrite mutates the layer, returning a non-nil change if a value was rewritten
	Rewrite(ctx context.Context, path string, layer schema.Layer) (*Change, error)
}

// Apply runs the rule over every layer of the model reached by the traversal
//
// Models without a "layers" array are left untouched
func Apply(ctx context.Context, m *schema.Model, rule Rule, traversal Traversal) ([]Change, error) {
	layers, ok := m.Layers()
	if !ok {
		return nil, nil
	}

	w := walker{rule: rule}
	var err error
	switch traversal {
	case TraversalRecursive, "":
		err = w.recursive(ctx, schema.KeyLayers, layers)
	case TraversalShallow:
		err = w.shallow(ctx, schema.KeyLayers, layers)
	default:
		return nil, fmt.Errorf("invalid traversal: %s", traversal)
	}
	return w.changes, err
}

type walker struct {
	rule    Rule
	changes []Change
}

func (w *walker) visit(ctx context.Context, path string, layer schema.Layer) error {
	change, err := w.rule.Rewrite(ctx, path, layer)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if change != nil {
		w.changes = append(w.changes, *change)
	}
	return nil
}

func (w *walker) recursive(ctx context.Context, prefix string, layers []schema.Layer) error {
	for i, layer := range layers {
		if layer.IsZero() {
			continue
		}
		path := fmt.Sprintf("%s[%d]", prefix, i)
		if err := w.visit(ctx, path, layer); err != nil {
			return err
		}

		for j, branch := range layer.Branches() {
			if branch.IsZero() {
				continue
			}
			branchPath := fmt.Sprintf("%s.%s[%d].%s", path, schema.KeyBranches, j, schema.KeyLayers)
			if err := w.recursive(ctx, branchPath, branch.Layers()); err != nil {
				return err
			}
		}

		if err := w.recursive(ctx, path+"."+schema.KeyMainPath, layer.MainPath()); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) shallow(ctx context.Context, prefix string, layers []schema.Layer) error {
	for i, layer := range layers {
		if layer.IsZero() {
			continue
		}
		path := fmt.Sprintf("%s[%d]", prefix, i)
		if err := w.visit(ctx, path, layer); err != nil {
			return err
		}

		// checked after the rewrite, the rule may have changed the type
		if typ, _ := layer.Type(); typ != TypeResidual {
			continue
		}
		for j, sub := range layer.MainPath() {
			if sub.IsZero() {
				continue
			}
			if err := w.visit(ctx, fmt.Sprintf("%s.%s[%d]", path, schema.KeyMainPath, j), sub); err != nil {
				return err
			}
		}
	}
	return nil
}
