// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package v0 provides the schema for v0 of the system config file for layerfix
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/defenseunicorns/layerfix"
	"github.com/defenseunicorns/layerfix/config"
	"github.com/defenseunicorns/layerfix/rewrite"
)

// SchemaVersion is the current schema version for configs
const SchemaVersion = "v0"

// Config is the system configuration file for layerfix
type Config struct {
	SchemaVersion string `json:"schema-version"`
	// ModelsDir is the directory holding the model files, relative to the working directory
	ModelsDir string   `json:"models-dir,omitempty"`
	Padding   Rewriter `json:"padding,omitempty"`
	Rename    Rewriter `json:"rename,omitempty"`
}

// Rewriter configures one of the rewriting commands
type Rewriter struct {
	Filter    layerfix.Filter   `json:"filter,omitempty"`
	Traversal rewrite.Traversal `json:"traversal,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for a config
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Config schema version"
		schemaVersion.Enum = []any{SchemaVersion}
	}

	if modelsDir, ok := schema.Properties.Get("models-dir"); ok && modelsDir != nil {
		modelsDir.Description = "Directory containing the model JSON files"
	}

	if padding, ok := schema.Properties.Get("padding"); ok && padding != nil {
		padding.Description = "Settings for the padding rewriter"
	}

	if rename, ok := schema.Properties.Get("rename"); ok && rename != nil {
		rename.Description = "Settings for the layer type rewriter"
	}
}

// Default returns a valid config with every setting at its default
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		ModelsDir:     layerfix.DefaultModelsDir,
		Padding: Rewriter{
			Traversal: rewrite.DefaultTraversal,
		},
		Rename: Rewriter{
			Filter:    layerfix.DefaultRenameFilter,
			Traversal: rewrite.DefaultTraversal,
		},
	}
}

// fill sets the defaults for anything left empty
//
// An empty padding filter already means "every file", so only the rename filter has a default
func (c *Config) fill() {
	def := Default()
	if c.ModelsDir == "" {
		c.ModelsDir = def.ModelsDir
	}
	if c.Padding.Traversal == "" {
		c.Padding.Traversal = def.Padding.Traversal
	}
	if c.Rename.Traversal == "" {
		c.Rename.Traversal = def.Rename.Traversal
	}
	if c.Rename.Filter == "" {
		c.Rename.Filter = def.Rename.Filter
	}
}

// LoadConfig reads and validates a config
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var versioned config.Versioned
	if err := yaml.Unmarshal(data, &versioned); err != nil {
		return nil, err
	}

	switch version := versioned.SchemaVersion; version {
	case SchemaVersion:
		cfg := &Config{}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.fill()
		return cfg, Validate(cfg)
	default:
		return nil, fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, version)
	}
}

// LoadDefaultConfig loads the config from the default directory
//
// If the configuration file does not exist, this function returns the default config
func LoadDefaultConfig() (*Config, error) {
	dir, err := config.DefaultDirectory()
	if err != nil {
		return nil, err
	}
	return LoadConfigFromFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// LoadConfigFromFs loads config.DefaultFileName from the root of fsys
//
// If the configuration file does not exist, this function returns the default config
func LoadConfigFromFs(fsys afero.Fs) (*Config, error) {
	f, err := fsys.Open(config.DefaultFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

// Since every validation operation leverages the same config, only calculate it once to save some compute cycles
//
// This also prevents any schema changes from occuring at runtime
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema and that its filters compile
func Validate(config *Config) error {
	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(config))
	if err != nil {
		return err
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}
	if resErr != nil {
		return resErr
	}

	if _, err := config.Padding.Filter.Compile(); err != nil {
		return fmt.Errorf("padding.filter: %w", err)
	}
	if _, err := config.Rename.Filter.Compile(); err != nil {
		return fmt.Errorf("rename.filter: %w", err)
	}
	return nil
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Config{})
	schema.ID = "https://raw.githubusercontent.com/defenseunicorns/layerfix/main/layerfix.schema.json"
	return schema
}
