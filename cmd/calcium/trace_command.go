package main

import (
	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/analysis"
	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

func newTraceCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag int

	cmd := &cobra.Command{
		Use:   "trace <project-root>",
		Short: "Extract per-ROI traces for a session from its raw stack and saved ROIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.loadConfig(args[0])
			if err != nil {
				return err
			}

			s, err := project.BuildIndex(p).Lookup(sessionFlag)
			if err != nil {
				return err
			}

			ra := analysis.NewRecordingAnalysis(s.Path)
			ra.Precision = cfg.Output.Precision
			traces, err := ra.ExtractTraces()
			if err != nil {
				return err
			}

			cmd.Printf("Extracted %d traces for session %d (%s/%s)\n",
				len(traces), s.ID, s.Group, s.Recording)
			cmd.Printf("Trace table: %s\n", ra.TracesPath())
			return nil
		},
	}

	cmd.Flags().IntVarP(&sessionFlag, "session", "s", 0, "Session id to process")
	cmd.MarkFlagRequired("session")
	return cmd
}
