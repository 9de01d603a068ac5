// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/defenseunicorns/layerfix"
	"github.com/defenseunicorns/layerfix/config"
	configv0 "github.com/defenseunicorns/layerfix/config/v0"
	"github.com/defenseunicorns/layerfix/rewrite"
)

type rewriteCmd struct {
	use     string
	short   string
	example string
	rule    rewrite.Rule
	// section picks this command's settings out of the config file
	section func(cfg *configv0.Config) configv0.Rewriter
}

func newRewriteCmd(rc rewriteCmd) *cobra.Command {
	var (
		dir        string
		directory  string
		filter     string
		traversal  = rewrite.DefaultTraversal // VarP does not allow you to set a default value
		dry        bool
		report     bool
		level      string
		configPath string
	)

	var cfg *configv0.Config // cfg is not set via CLI flag

	loadConfig := func(cmd *cobra.Command) error {
		path := ""
		switch {
		case cmd.Flags().Changed("config"):
			path = configPath
		case os.Getenv(config.EnvVar) != "":
			path = os.Getenv(config.EnvVar)
		default:
			var err error
			cfg, err = configv0.LoadDefaultConfig()
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()
		cfg, err = configv0.LoadConfig(f)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		return nil
	}

	cmd := &cobra.Command{
		Use:           rc.use,
		Short:         rc.short,
		Example:       rc.example,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			logger := log.FromContext(cmd.Context())
			logger.SetLevel(l)

			if directory != "" {
				if err := os.Chdir(directory); err != nil {
					return err
				}
			}

			return loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			// default < cfg < flags
			section := rc.section(cfg)
			if !cmd.Flags().Changed("dir") {
				dir = cfg.ModelsDir
			}
			if !cmd.Flags().Changed("filter") {
				filter = section.Filter.String()
			}
			if !cmd.Flags().Changed("traversal") && section.Traversal != "" {
				traversal = section.Traversal
			}

			logger.Debug("settings", "rule", rc.rule.Name(), "dir", dir, "filter", filter, "traversal", traversal)

			summary, err := layerfix.Run(ctx, afero.NewOsFs(), dir, layerfix.Options{
				Rule:      rc.rule,
				Traversal: traversal,
				Filter:    layerfix.Filter(filter),
				DryRun:    dry,
			})
			if err != nil {
				return err
			}

			if n := summary.Failed(); n > 0 {
				logger.Warn("some files were left untouched", "failed", n)
			}

			if report {
				return printReport(cmd.OutOrStdout(), summary.Markdown())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", layerfix.DefaultModelsDir, "Directory containing the model JSON files")
	_ = cmd.MarkFlagDirname("dir")
	cmd.Flags().StringVarP(&directory, "directory", "C", "", "Change to directory before doing anything")
	_ = cmd.MarkFlagDirname("directory")
	cmd.Flags().StringVar(&filter, "filter", "", `Expression selecting which files to rewrite, e.g. 'glob("res*", name)'`)
	cmd.Flags().Var(&traversal, "traversal", fmt.Sprintf(`Set which nested layers are rewritten ("%s")`, strings.Join(rewrite.AvailableTraversals(), `", "`)))
	_ = cmd.RegisterFlagCompletionFunc("traversal", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return rewrite.AvailableTraversals(), cobra.ShellCompDirectiveNoFileComp
	})
	cmd.Flags().BoolVar(&dry, "dry-run", false, "Don't write anything; print the rewritten documents instead")
	cmd.Flags().BoolVar(&report, "report", false, "Print a markdown summary of the run to stdout")
	cmd.Flags().StringVarP(&level, "log-level", "l", "info", "Set log level")
	_ = cmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{log.DebugLevel.String(), log.InfoLevel.String(), log.WarnLevel.String(), log.ErrorLevel.String(), log.FatalLevel.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.Flags().StringVarP(&configPath, "config", "", "${HOME}/.layerfix/config.yaml", "Path to layerfix config file") // mirrors config.DefaultDirectory
	_ = cmd.MarkFlagFilename("config", "yaml", "yml")

	return cmd
}
