// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package cmd provides the commands for the layerfix CLIs.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	configv0 "github.com/defenseunicorns/layerfix/config/v0"
	"github.com/defenseunicorns/layerfix/rewrite"
)

const modulePath = "github.com/defenseunicorns/layerfix"

// NewRootCmd creates the root command for the layerfix CLI.
func NewRootCmd() *cobra.Command {
	var ver bool

	root := &cobra.Command{
		Use:   "layerfix",
		Short: "Rewrite model definition files in place",
		Long: `
 _                       __ _
| | __ _ _   _  ___ _ __/ _(_)_  __
| |/ _' | | | |/ _ \ '__| |_| \ \/ /
| | (_| | |_| |  __/ |  |  _| |>  <
|_|\__,_|\__, |\___|_|  |_| |_/_/\_\
         |___/
`,
		Example: `
layerfix padding

layerfix rename --dry-run --report

layerfix rename -C ../frontend --filter 'glob("resnet*", name)'
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !ver {
				return cmd.Help()
			}

			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("version information not available")
			}
			switch bi.Main.Path {
			case modulePath:
				fmt.Fprintln(cmd.OutOrStdout(), bi.Main.Version)
			default:
				for _, dep := range bi.Deps {
					if dep.Path == modulePath {
						fmt.Fprintln(cmd.OutOrStdout(), dep.Version)
						break
					}
				}
			}
			return nil
		},
	}

	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")

	root.AddCommand(NewPaddingCmd(), NewRenameCmd())

	return root
}

// NewPaddingCmd creates the command that converts string padding into explicit pairs.
func NewPaddingCmd() *cobra.Command {
	return newRewriteCmd(rewriteCmd{
		use:   "padding",
		short: "Convert string padding values into explicit [h, w] pairs",
		example: `
layerfix padding

layerfix padding --dir assets/models --dry-run
`,
		rule: rewrite.Padding{},
		section: func(cfg *configv0.Config) configv0.Rewriter {
			return cfg.Padding
		},
	})
}

// NewRenameCmd creates the command that migrates generic layer types to concrete ones.
func NewRenameCmd() *cobra.Command {
	return newRewriteCmd(rewriteCmd{
		use:   "rename",
		short: "Rename generic layer types (conv, pooling, activation) to concrete ones",
		example: `
layerfix rename

layerfix rename --traversal shallow --report
`,
		rule: rewrite.Rename{},
		section: func(cfg *configv0.Config) configv0.Rewriter {
			return cfg.Rename
		},
	})
}

// Main executes the root command for the layerfix CLI.
//
// It returns 0 on success, 1 on failure and logs any errors.
func Main() int {
	return execute(NewRootCmd())
}

// PaddingMain executes the padding command as a standalone CLI.
func PaddingMain() int {
	cli := NewPaddingCmd()
	cli.Use = "convert-padding"
	return execute(cli)
}

// RenameMain executes the rename command as a standalone CLI.
func RenameMain() int {
	cli := NewRenameCmd()
	cli.Use = "update-layer-types"
	return execute(cli)
}

func execute(cli *cobra.Command) int {
	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	err := cli.ExecuteContext(ctx)
	if err != nil {
		logger.Error(err)
	}
	return ParseExitCode(err)
}

// ParseExitCode calculates the exit code from a given error
//
// 0 - the error was nil
// 130 - the run was interrupted
// 1 - there was some other error
//
// Files that failed to rewrite are reported but do not make the run fail.
func ParseExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
