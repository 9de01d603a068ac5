// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package rewrite

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/defenseunicorns/layerfix/schema"
)

// PaddingPairs maps the semantic padding names to their numeric [height, width] pairs
var PaddingPairs = map[string][2]int{
	"same":  {1, 1},
	"valid": {0, 0},
	"full":  {2, 2},
}

// Padding replaces semantic "padding" strings with numeric pairs
//
// Values that are already numeric are left alone. Unknown strings are left alone and logged as a warning
type Padding struct{}

var _ Rule = Padding{}

// Name implements Rule
func (Padding) Name() string {
	return "padding"
}

// Rewrite implements Rule
func (Padding) Rewrite(ctx context.Context, path string, layer schema.Layer) (*Change, error) {
	padding, ok := layer.String(schema.KeyPadding)
	if !ok {
		return nil, nil
	}

	pair, ok := PaddingPairs[padding]
	if !ok {
		log.FromContext(ctx).Warn("unrecognized padding, leaving as is", "layer", path, "id", layer.ID(), "padding", padding)
		return nil, nil
	}

	to := []any{pairValue(pair[0]), pairValue(pair[1])}
	layer.Set(schema.KeyPadding, to)

	return &Change{
		Path:  path,
		ID:    layer.ID(),
		Field: schema.KeyPadding,
		From:  padding,
		To:    pair,
	}, nil
}

func pairValue(n int) json.Number {
	return json.Number(strconv.Itoa(n))
}
