// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers the order its keys were read in
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// ErrInvalidJSON is returned when a document is not well-formed JSON
var ErrInvalidJSON = errors.New("invalid JSON")

// Decode parses a JSON value into a tree of *Object, []any, string, json.Number, bool and nil
//
// Object key order and the source text of numbers are preserved
func Decode(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidJSON)
	}

	// jsonparser is lenient about trailing garbage and some truncations, so validate up front
	if !json.Valid(data) {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return nil, ErrInvalidJSON
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		return decodeObject(value)
	case jsonparser.Array:
		return decodeArray(value)
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return json.Number(value), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value %q", ErrInvalidJSON, value)
	}
}

func decodeObject(data []byte) (*Object, error) {
	obj := NewObject()
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := decodeValue(value, dataType)
		if err != nil {
			return err
		}
		// keys arrive unescaped; duplicates keep their first position and last value
		obj.Set(string(key), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(data []byte) ([]any, error) {
	arr := []any{}
	var decodeErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if decodeErr != nil {
			return
		}
		if err != nil {
			decodeErr = err
			return
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			decodeErr = err
			return
		}
		arr = append(arr, v)
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return arr, nil
}
