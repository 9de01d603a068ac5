// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defenseunicorns/layerfix/config"
	configv0 "github.com/defenseunicorns/layerfix/config/v0"
	"github.com/defenseunicorns/layerfix/rewrite"
)

func TestDefaultDirectory(t *testing.T) {
	configContent := `schema-version: v0
models-dir: models
padding:
  traversal: shallow
`

	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		t.Setenv("HOME", "")
		configDir, err := config.DefaultDirectory()
		assert.Empty(t, configDir)
		require.EqualError(t, err, "$HOME is not defined")

		tmpDir := t.TempDir()
		err = os.Mkdir(filepath.Join(tmpDir, ".layerfix"), 0755)
		require.NoError(t, err)

		err = os.WriteFile(filepath.Join(tmpDir, ".layerfix", config.DefaultFileName), []byte(configContent), 0644)
		require.NoError(t, err)

		t.Setenv("HOME", tmpDir)
		configDir, err = config.DefaultDirectory()
		assert.Equal(t, filepath.Join(tmpDir, ".layerfix"), configDir)
		require.NoError(t, err)
		cfg, err := configv0.LoadConfigFromFs(afero.NewBasePathFs(afero.NewOsFs(), configDir))
		require.NoError(t, err)
		assert.Equal(t, "models", cfg.ModelsDir)
		assert.Equal(t, rewrite.TraversalShallow, cfg.Padding.Traversal)
		assert.Equal(t, rewrite.TraversalRecursive, cfg.Rename.Traversal)
	}
}
