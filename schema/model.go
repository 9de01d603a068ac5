// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package schema provides an order preserving view over model definition JSON documents
package schema

import (
	"github.com/spf13/cast"
)

// Well-known keys of a model document
const (
	KeyLayers      = "layers"
	KeyBranches    = "branches"
	KeyMainPath    = "mainPath"
	KeyID          = "id"
	KeyType        = "type"
	KeyPadding     = "padding"
	KeyPoolingType = "poolingType"
	KeyActivation  = "activation"
)

// Model is a parsed model document
//
// The root is usually an object with a "layers" array, but any JSON value is accepted
// so that documents without layers still round trip
type Model struct {
	root any
}

// Parse decodes a model document
func Parse(data []byte) (*Model, error) {
	root, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &Model{root: root}, nil
}

// NewModel wraps an already decoded tree
func NewModel(root any) *Model {
	return &Model{root: root}
}

// Root returns the underlying tree
func (m *Model) Root() any {
	return m.root
}

// Layers returns the top-level layers
//
// ok is false when the document has no "layers" array
func (m *Model) Layers() (layers []Layer, ok bool) {
	obj, isObj := m.root.(*Object)
	if !isObj || obj == nil {
		return nil, false
	}
	v, present := obj.Get(KeyLayers)
	if !present {
		return nil, false
	}
	arr, isArr := v.([]any)
	if !isArr {
		return nil, false
	}
	return layersOf(arr), true
}

// Marshal encodes the model as indented JSON
func (m *Model) Marshal() ([]byte, error) {
	return Encode(m.root)
}

// Layer is one node of a model's computation graph
//
// Entries at index positions that are not JSON objects are reported with a nil object
// and IsZero returns true for them
type Layer struct {
	obj *Object
}

// NewLayer wraps an object as a Layer
func NewLayer(obj *Object) Layer {
	return Layer{obj: obj}
}

// IsZero reports whether the layer wraps no object
func (l Layer) IsZero() bool {
	return l.obj == nil
}

// Object returns the underlying object
func (l Layer) Object() *Object {
	return l.obj
}

// Get returns the raw value stored at key
func (l Layer) Get(key string) (any, bool) {
	if l.obj == nil {
		return nil, false
	}
	return l.obj.Get(key)
}

// Has reports whether key is present
func (l Layer) Has(key string) bool {
	_, ok := l.Get(key)
	return ok
}

// Set stores v at key, keeping the key's position when it already exists
func (l Layer) Set(key string, v any) {
	if l.obj == nil {
		return
	}
	l.obj.Set(key, v)
}

// Delete removes key, reporting whether it was present
func (l Layer) Delete(key string) bool {
	if l.obj == nil {
		return false
	}
	_, ok := l.obj.Delete(key)
	return ok
}

// String returns the value at key when it is a JSON string
func (l Layer) String(key string) (string, bool) {
	v, ok := l.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Type returns the layer's "type" when it is a string
func (l Layer) Type() (string, bool) {
	return l.String(KeyType)
}

// ID returns a printable form of the layer's "id"
func (l Layer) ID() string {
	v, ok := l.Get(KeyID)
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Branches returns the branches of a multi-path layer
func (l Layer) Branches() []Branch {
	arr, ok := l.array(KeyBranches)
	if !ok {
		return nil
	}
	branches := make([]Branch, 0, len(arr))
	for _, item := range arr {
		obj, _ := item.(*Object)
		branches = append(branches, Branch{obj: obj})
	}
	return branches
}

// MainPath returns the sub-layers of a residual-style layer
func (l Layer) MainPath() []Layer {
	arr, ok := l.array(KeyMainPath)
	if !ok {
		return nil
	}
	return layersOf(arr)
}

func (l Layer) array(key string) ([]any, bool) {
	v, ok := l.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// Branch is one parallel path inside a composite layer
type Branch struct {
	obj *Object
}

// IsZero reports whether the branch wraps no object
func (b Branch) IsZero() bool {
	return b.obj == nil
}

// Layers returns the branch's sub-layers
func (b Branch) Layers() []Layer {
	if b.obj == nil {
		return nil
	}
	v, ok := b.obj.Get(KeyLayers)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	return layersOf(arr)
}

func layersOf(arr []any) []Layer {
	layers := make([]Layer, 0, len(arr))
	for _, item := range arr {
		obj, _ := item.(*Object)
		layers = append(layers, Layer{obj: obj})
	}
	return layers
}
