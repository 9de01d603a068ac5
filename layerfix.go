// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package layerfix rewrites model definition JSON files in place
package layerfix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/defenseunicorns/layerfix/rewrite"
	"github.com/defenseunicorns/layerfix/schema"
)

// Pattern matches the model files of a directory
const Pattern = "*.json"

// DefaultModelsDir is where model files are looked for when no directory is configured
const DefaultModelsDir = "src/models"

// Options configures a batch
type Options struct {
	// Rule is applied to every layer the traversal reaches
	Rule rewrite.Rule
	// Traversal controls how deep the rule reaches, defaults to rewrite.DefaultTraversal
	Traversal rewrite.Traversal
	// Filter selects files by name, an empty filter selects all of them
	Filter Filter
	// DryRun prints rewritten documents instead of writing them
	DryRun bool
}

// Discover lists the model files in dir that pass the matcher, sorted by name
func Discover(fsys afero.Fs, dir string, matcher *Matcher) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	files := make([]os.FileInfo, 0, len(entries))
	for _, fi := range entries {
		name := fi.Name()
		if ok, _ := filepath.Match(Pattern, name); !ok {
			continue
		}

		// links are followed, a dangling one is kept so reading it fails and is reported
		dangling := false
		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := fsys.Stat(filepath.Join(dir, name))
			if err != nil {
				dangling = true
			} else {
				fi = target
			}
		}
		if !dangling && !fi.Mode().IsRegular() {
			continue
		}

		ok, err := matcher.Match(name)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, fi)
		}
	}
	return files, nil
}

// Run rewrites every model file in dir, one at a time in name order
//
// Failures of individual files are logged and recorded in the summary and do not stop the batch,
// only problems with the directory itself, the options or the context are returned as errors
func Run(ctx context.Context, fsys afero.Fs, dir string, opts Options) (Summary, error) {
	logger := log.FromContext(ctx)

	if opts.Rule == nil {
		return Summary{}, errors.New("no rule given")
	}
	if opts.Traversal == "" {
		opts.Traversal = rewrite.DefaultTraversal
	}
	if err := new(rewrite.Traversal).Set(string(opts.Traversal)); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Rule:   opts.Rule.Name(),
		Dir:    dir,
		DryRun: opts.DryRun,
	}

	matcher, err := opts.Filter.Compile()
	if err != nil {
		return summary, fmt.Errorf("invalid filter %q: %w", opts.Filter, err)
	}

	files, err := Discover(fsys, dir, matcher)
	if err != nil {
		return summary, err
	}

	if len(files) == 0 {
		logger.Warn("no model files found", "dir", dir)
		return summary, nil
	}

	names := make([]string, 0, len(files))
	for _, fi := range files {
		names = append(names, fi.Name())
	}
	logger.Info("found model files", "dir", dir, "count", len(files))
	logger.Debug("model files", "names", names)

	for _, fi := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := processFile(ctx, fsys, dir, fi, opts)
		if result.Err != nil {
			logger.Error("failed", "file", result.Name, "err", result.Err)
		}
		summary.Files = append(summary.Files, result)
	}

	logger.Info("done", "rule", summary.Rule, "files", len(summary.Files), "changed", summary.Changed(), "failed", summary.Failed())
	return summary, nil
}

func processFile(ctx context.Context, fsys afero.Fs, dir string, fi os.FileInfo, opts Options) FileResult {
	logger := log.FromContext(ctx)
	name := fi.Name()
	p := filepath.Join(dir, name)
	result := FileResult{Name: name}

	logger.Debug("processing", "file", name)

	original, err := afero.ReadFile(fsys, p)
	if err != nil {
		result.Err = fmt.Errorf("failed to read %s: %w", name, err)
		return result
	}

	m, err := schema.Parse(original)
	if err != nil {
		result.Err = fmt.Errorf("failed to parse %s: %w", name, err)
		return result
	}

	changes, err := rewrite.Apply(ctx, m, opts.Rule, opts.Traversal)
	if err != nil {
		result.Err = fmt.Errorf("failed to rewrite %s: %w", name, err)
		return result
	}
	result.Changes = changes

	for _, c := range changes {
		logger.Info("updated", "file", name, "layer", c.Path, "id", c.ID, c.Field, fmt.Sprintf("%v -> %v", c.From, c.To))
	}

	b, err := m.Marshal()
	if err != nil {
		result.Err = fmt.Errorf("failed to encode %s: %w", name, err)
		return result
	}

	if opts.DryRun {
		printDocument(logger, name, b)
		logger.Info("processed", "file", name, "changes", len(changes), "dry-run", true)
		return result
	}

	if bytes.Equal(b, original) {
		logger.Info("processed", "file", name, "changes", len(changes), "unchanged", true)
		return result
	}

	if err := afero.WriteFile(fsys, p, b, fi.Mode().Perm()); err != nil {
		result.Err = fmt.Errorf("failed to write %s: %w", name, err)
		return result
	}
	result.Written = true

	logger.Info("processed", "file", name, "changes", len(changes))
	return result
}
