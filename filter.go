// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package layerfix

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/invopop/jsonschema"
)

// Filter is an expr expression deciding whether a model file is rewritten
//
// The expression sees the file's name, stem (name without extension) and ext, and must
// evaluate to a bool. An empty filter matches every file.
//
//	!(lower(name) contains "template")
//	glob("lenet*", name) || stem in ["alexnet", "vgg16"]
type Filter string

// DefaultRenameFilter skips template files, regardless of case
const DefaultRenameFilter Filter = `!(lower(name) contains "template")`

// String implements fmt.Stringer
func (f Filter) String() string {
	return string(f)
}

// JSONSchemaExtend extends the JSON schema for Filter
func (Filter) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Type = "string"
	schema.Description = "expr expression over name, stem and ext selecting which files are rewritten"
	schema.Examples = []any{string(DefaultRenameFilter)}
}

// Matcher is a compiled Filter
type Matcher struct {
	program *vm.Program
}

func filterEnv(name string) map[string]any {
	ext := filepath.Ext(name)
	return map[string]any{
		"name": name,
		"stem": strings.TrimSuffix(name, ext),
		"ext":  ext,
	}
}

var glob = expr.Function(
	"glob",
	func(params ...any) (any, error) {
		pattern, _ := params[0].(string)
		name, _ := params[1].(string)
		return filepath.Match(pattern, name)
	},
	new(func(string, string) bool),
)

// Compile type checks the filter, an empty filter compiles to a Matcher that accepts everything
func (f Filter) Compile() (*Matcher, error) {
	if strings.TrimSpace(f.String()) == "" {
		return &Matcher{}, nil
	}

	program, err := expr.Compile(f.String(), expr.Env(filterEnv("")), expr.AsBool(), glob)
	if err != nil {
		return nil, err
	}
	return &Matcher{program: program}, nil
}

// Match reports whether the file name passes the filter
func (m *Matcher) Match(name string) (bool, error) {
	if m == nil || m.program == nil {
		return true, nil
	}

	out, err := expr.Run(m.program, filterEnv(name))
	if err != nil {
		return false, fmt.Errorf("filter failed on %s: %w", name, err)
	}
	return out.(bool), nil // this is safe due to expr.AsBool()
}
