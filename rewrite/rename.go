// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/defenseunicorns/layerfix/schema"
)

// Layer types understood by Rename
const (
	TypeConv       = "conv"
	TypePooling    = "pooling"
	TypeActivation = "activation"
	TypeResidual   = "residual"

	TypeConv2D        = "conv2d"
	TypeMaxPool2D     = "maxpool2d"
	TypeAvgPool2D     = "avgpool2d"
	TypeGlobalAvgPool = "global_avgpool"
)

// Defaults for fields Rename reads when they are absent
const (
	DefaultPoolingType = "max"
	DefaultActivation  = "relu"
)

// PoolingTypes maps a pooling layer's "poolingType" to its specific layer type
//
// Any value not listed here becomes TypeMaxPool2D
var PoolingTypes = map[string]string{
	"global":  TypeGlobalAvgPool,
	"average": TypeAvgPool2D,
}

// Rename replaces generic layer types with specific ones
//
//	conv                      -> conv2d
//	pooling + poolingType     -> global_avgpool | avgpool2d | maxpool2d, poolingType removed
//	activation + activation   -> lower-cased activation name, activation removed
type Rename struct{}

var _ Rule = Rename{}

// Name implements Rule
func (Rename) Name() string {
	return "rename"
}

// Rewrite implements Rule
func (Rename) Rewrite(_ context.Context, path string, layer schema.Layer) (*Change, error) {
	from, ok := layer.Type()
	if !ok {
		return nil, nil
	}

	var (
		to      string
		removed []string
	)

	switch from {
	case TypeConv:
		to = TypeConv2D
	case TypePooling:
		poolingType := DefaultPoolingType
		if v, present := layer.Get(schema.KeyPoolingType); present {
			// non-string pooling types cannot match a known name and fall through to max
			if s, isString := v.(string); isString {
				poolingType = s
			} else {
				poolingType = ""
			}
		}
		to, ok = PoolingTypes[poolingType]
		if !ok {
			to = TypeMaxPool2D
		}
		if layer.Delete(schema.KeyPoolingType) {
			removed = append(removed, schema.KeyPoolingType)
		}
	case TypeActivation:
		activation := DefaultActivation
		if v, present := layer.Get(schema.KeyActivation); present {
			s, isString := v.(string)
			if !isString {
				return nil, fmt.Errorf("%s must be a string, got %T", schema.KeyActivation, v)
			}
			activation = s
		}
		to = strings.ToLower(activation)
		if layer.Delete(schema.KeyActivation) {
			removed = append(removed, schema.KeyActivation)
		}
	default:
		return nil, nil
	}

	layer.Set(schema.KeyType, to)

	if to == from {
		return nil, nil
	}

	return &Change{
		Path:    path,
		ID:      layer.ID(),
		Field:   schema.KeyType,
		From:    from,
		To:      to,
		Removed: removed,
	}, nil
}
