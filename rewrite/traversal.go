// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package rewrite

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"
)

// Traversal defines which nested layers a rewrite reaches
type Traversal string

var _ pflag.Value = (*Traversal)(nil)

const (
	// TraversalRecursive visits every layer reachable through branches and main paths, at any depth
	TraversalRecursive Traversal = "recursive"
	// TraversalShallow visits top-level layers and the main path of top-level residual layers, nothing deeper
	TraversalShallow Traversal = "shallow"
	// DefaultTraversal is the traversal used when none is specified
	DefaultTraversal Traversal = TraversalRecursive
)

// AvailableTraversals returns a list of available traversals
func AvailableTraversals() []string {
	return []string{
		string(TraversalRecursive),
		string(TraversalShallow),
	}
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (t *Traversal) String() string {
	return string(*t)
}

// Set implements the pflag.Value interface
func (t *Traversal) Set(value string) error {
	switch value {
	case string(TraversalRecursive):
		*t = TraversalRecursive
	case string(TraversalShallow):
		*t = TraversalShallow
	default:
		return fmt.Errorf("invalid traversal: %s", value)
	}
	return nil
}

// Type implements the pflag.Value interface
func (t *Traversal) Type() string {
	return "string"
}

// JSONSchemaExtend extends the JSON schema for Traversal
func (Traversal) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Type = "string"
	all := []any{}
	for _, t := range AvailableTraversals() {
		all = append(all, t)
	}
	schema.Enum = all
	schema.Description = "Which nested layers are rewritten"
}
