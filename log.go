// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package layerfix

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// printDocument shows a rewritten document, used in place of writing during dry runs
func printDocument(logger *log.Logger, name string, b []byte) {
	doc := strings.TrimSpace(string(b))

	if termenv.EnvNoColor() {
		logger.Printf("--- %s", name)
		logger.Print(doc)
		return
	}

	style := "tokyonight-day"
	if lipgloss.HasDarkBackground() {
		style = "tokyonight-moon"
	}

	color := lipgloss.AdaptiveColor{
		Light: "#c5c6bC",
		Dark:  "#3a3943",
	}
	gray := lipgloss.NewStyle().Background(color)
	logger.Printf("%s %s", gray.Render(" "), name)

	var buf strings.Builder
	if err := quick.Highlight(&buf, doc, "json", "terminal256", style); err != nil {
		logger.Debugf("failed to highlight: %v", err)
		for line := range strings.SplitSeq(doc, "\n") {
			logger.Printf("  %s", line)
		}
		return
	}

	prefix := gray.Render(" ")
	for line := range strings.SplitSeq(buf.String(), "\n") {
		logger.Printf("%s %s", prefix, line)
	}
}
