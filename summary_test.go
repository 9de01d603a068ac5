// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package layerfix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/defenseunicorns/layerfix/rewrite"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	s := Summary{
		Rule: "rename",
		Dir:  "src/models",
		Files: []FileResult{
			{
				Name:    "alexnet.json",
				Written: true,
				Changes: []rewrite.Change{
					{Path: "layers[0]", ID: "conv1", Field: "type", From: "conv", To: "conv2d"},
					{Path: "layers[2]", Field: "type", From: "pooling", To: "maxpool2d", Removed: []string{"poolingType"}},
				},
			},
			{Name: "broken.json", Err: errors.New("failed to parse broken.json: invalid JSON | truncated")},
			{Name: "mlp.json"},
		},
	}

	assert.Equal(t, 2, s.Processed())
	assert.Equal(t, 1, s.Failed())
	assert.Equal(t, 2, s.Changed())

	assert.Equal(t, "rewritten", s.Files[0].Status())
	assert.Equal(t, "failed", s.Files[1].Status())
	assert.Equal(t, "unchanged", s.Files[2].Status())
	assert.Equal(t, "would rewrite", FileResult{Changes: s.Files[0].Changes}.Status())

	expected := "# rename: `src/models`\n\n" +
		"| File | Changes | Status |\n" +
		"| --- | ---: | --- |\n" +
		"| alexnet.json | 2 | rewritten |\n" +
		"| broken.json | 0 | failed: failed to parse broken.json: invalid JSON \\| truncated |\n" +
		"| mlp.json | 0 | unchanged |\n" +
		"\n**3** files, **2** layers changed, **1** failed\n" +
		"\n## Changes\n" +
		"\n### alexnet.json\n\n" +
		"- `layers[0]` (conv1): type `conv` → `conv2d`\n" +
		"- `layers[2]`: type `pooling` → `maxpool2d`, removed poolingType\n"
	assert.Equal(t, expected, s.Markdown())
}

func TestSummaryEmpty(t *testing.T) {
	t.Parallel()

	s := Summary{Rule: "padding", Dir: "models", DryRun: true}
	assert.Equal(t, "# padding: `models`\n\n> dry run, nothing was written\n\nNo model files found.\n", s.Markdown())
	assert.Zero(t, s.Changed())
	assert.Zero(t, s.Failed())
}
