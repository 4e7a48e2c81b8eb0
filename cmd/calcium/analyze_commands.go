package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/analysis"
	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Recording- and group-level trace analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newAnalyzeRecordingCommand(ctx))
	cmd.AddCommand(newAnalyzeGroupCommand(ctx))
	return cmd
}

func newAnalyzeRecordingCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag int

	cmd := &cobra.Command{
		Use:   "recording <project-root>",
		Short: "Compute mean/SEM and ΔF/F summaries for one recording",
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
			if err := ra.Run(); err != nil {
				return err
			}

			cmd.Printf("Analysis complete for session %d (%s/%s)\n", s.ID, s.Group, s.Recording)
			return nil
		},
	}

	cmd.Flags().IntVarP(&sessionFlag, "session", "s", 0, "Session id to analyze")
	cmd.MarkFlagRequired("session")
	return cmd
}

func newAnalyzeGroupCommand(ctx *commandContext) *cobra.Command {
	var groupFlag string

	cmd := &cobra.Command{
		Use:   "group <project-root>",
		Short: "Aggregate per-recording mean traces across a group",
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

			ga, err := analysis.NewGroupAnalysis(p, groupFlag)
			if err != nil {
				return err
			}
			ga.Precision = cfg.Output.Precision

			summary, err := ga.Run()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(summary.Recordings)+len(summary.Skipped))
			for _, name := range summary.Recordings {
				rows = append(rows, []string{name, strconv.Itoa(len(summary.Traces[name])), "included"})
			}
			for _, name := range summary.Skipped {
				rows = append(rows, []string{name, "-", "skipped"})
			}
			cmd.Println(renderTable(
				[]string{"Recording", "Frames", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&groupFlag, "group", "g", "", "Group name to aggregate")
	cmd.MarkFlagRequired("group")
	return cmd
}
