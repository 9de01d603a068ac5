// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package layerfix

import (
	"fmt"
	"strings"

	"github.com/defenseunicorns/layerfix/rewrite"
)

// FileResult is the outcome of rewriting a single model file
type FileResult struct {
	Name    string
	Changes []rewrite.Change
	// Written is true when new content was written back to disk
	Written bool
	Err     error
}

// Status is a short description of the outcome
func (r FileResult) Status() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Written:
		return "rewritten"
	case len(r.Changes) > 0:
		return "would rewrite"
	default:
		return "unchanged"
	}
}

// Summary collects the results of a batch
type Summary struct {
	Rule   string
	Dir    string
	DryRun bool
	Files  []FileResult
}

// Processed returns the number of files handled without error
func (s Summary) Processed() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of files that could not be rewritten
func (s Summary) Failed() int {
	return len(s.Files) - s.Processed()
}

// Changed returns the number of layers changed across all files
func (s Summary) Changed() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Changes)
	}
	return n
}

// Markdown renders the summary as a markdown report
func (s Summary) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s: `%s`\n\n", s.Rule, s.Dir)
	if s.DryRun {
		sb.WriteString("> dry run, nothing was written\n\n")
	}

	if len(s.Files) == 0 {
		sb.WriteString("No model files found.\n")
		return sb.String()
	}

	sb.WriteString("| File | Changes | Status |\n")
	sb.WriteString("| --- | ---: | --- |\n")
	for _, f := range s.Files {
		status := f.Status()
		if f.Err != nil {
			status = fmt.Sprintf("%s: %s", status, f.Err)
		}
		fmt.Fprintf(&sb, "| %s | %d | %s |\n", escapeCell(f.Name), len(f.Changes), escapeCell(status))
	}

	fmt.Fprintf(&sb, "\n**%d** files, **%d** layers changed, **%d** failed\n", len(s.Files), s.Changed(), s.Failed())

	changed := false
	for _, f := range s.Files {
		if len(f.Changes) == 0 {
			continue
		}
		if !changed {
			sb.WriteString("\n## Changes\n")
			changed = true
		}
		fmt.Fprintf(&sb, "\n### %s\n\n", f.Name)
		for _, c := range f.Changes {
			fmt.Fprintf(&sb, "- `%s`", c.Path)
			if c.ID != "" {
				fmt.Fprintf(&sb, " (%s)", c.ID)
			}
			fmt.Fprintf(&sb, ": %s `%v` → `%v`", c.Field, c.From, c.To)
			if len(c.Removed) > 0 {
				fmt.Fprintf(&sb, ", removed %s", strings.Join(c.Removed, ", "))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
