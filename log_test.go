// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package layerfix

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintDocument(t *testing.T) {
	doc := []byte("{\n  \"type\": \"conv2d\",\n  \"padding\": [\n    1,\n    1\n  ]\n}\n")

	t.Run("no color", func(t *testing.T) {
		t.Setenv("NO_COLOR", "true")

		var buf strings.Builder
		printDocument(log.New(&buf), "lenet5.json", doc)

		lines := strings.Split(buf.String(), "\n")
		for i := range lines {
			lines[i] = strings.TrimRight(lines[i], " ")
		}
		require.Equal(t, "--- lenet5.json\n"+strings.TrimSpace(string(doc))+"\n", strings.Join(lines, "\n"))
	})

	t.Run("highlighted", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")

		var buf strings.Builder
		printDocument(log.New(&buf), "lenet5.json", doc)
		out := ansi.Strip(buf.String())
		assert.Contains(t, out, "lenet5.json")
		assert.Contains(t, out, `"type": "conv2d"`)
		assert.Contains(t, out, `"padding": [`)
	})
}
