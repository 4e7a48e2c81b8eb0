package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/config"
)

// commandContext carries the flags and lazily loaded configuration
// shared by all subcommands.
type commandContext struct {
	configFlag string
}

// loadConfig resolves the tool configuration: the explicit --config
// path when given, otherwise <projectRoot>/calcium.yaml, falling back
// to defaults when neither file exists.
func (ctx *commandContext) loadConfig(projectRoot string) (*config.Config, error) {
	path := ctx.configFlag
	if path == "" {
		path = filepath.Join(projectRoot, config.DefaultFilename)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Output.Verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "calcium",
		Short:         "Calcium imaging project management and analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newProjectCommand(ctx))
	rootCmd.AddCommand(newTraceCommand(ctx))
	rootCmd.AddCommand(newAnalyzeCommand(ctx))

	return rootCmd
}
