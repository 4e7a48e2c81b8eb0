package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-root>",
		Short: "Print the project summary and session index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := ctx.loadConfig(args[0]); err != nil {
				return err
			}

			cmd.Printf("Project root: %s\n", p.Root)
			cmd.Printf("Groups: %d, recordings: %d, structure valid: %t\n\n",
				len(p.Groups), p.NumRecordings(), p.ValidateStructure())

			idx := project.BuildIndex(p)
			rows := make([][]string, 0, idx.Len())
			for _, s := range idx.Sessions() {
				rows = append(rows, []string{
					strconv.Itoa(s.ID), s.Group, s.Recording, s.Path,
				})
			}

			cmd.Println(renderTable(
				[]string{"Session", "Group", "Recording", "Path"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
