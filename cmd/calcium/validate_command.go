package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project-root>",
		Short: "Check that every recording has the required directory structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			if !p.ValidateStructure() {
				return fmt.Errorf("project structure at %s is incomplete", p.Root)
			}
			cmd.Printf("Project structure at %s is valid (%d recordings)\n", p.Root, p.NumRecordings())
			return nil
		},
	}
}
