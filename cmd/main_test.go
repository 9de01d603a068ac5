// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/defenseunicorns/layerfix/cmd"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"layerfix": func() {
			code := cmd.Main()
			os.Exit(code)
		},
		"convert-padding": func() {
			code := cmd.PaddingMain()
			os.Exit(code)
		},
		"update-layer-types": func() {
			code := cmd.RenameMain()
			os.Exit(code)
		},
	})
}
