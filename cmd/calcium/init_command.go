package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var groupFlags []string

	cmd := &cobra.Command{
		Use:   "init <project-root>",
		Short: "Scaffold a new project directory tree and manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := parseGroupSpecs(groupFlags)
			if err != nil {
				return err
			}

			p, err := project.Scaffold(args[0], specs)
			if err != nil {
				return err
			}

			cmd.Printf("Project structure created at: %s\n", p.Root)
			cmd.Printf("Configuration saved in: %s/%s\n", p.Root, project.ManifestFilename)
			cmd.Printf("Groups: %d, recordings: %d\n", len(p.Groups), p.NumRecordings())
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&groupFlags, "group", "g", nil,
		"Group to create as name=recordingCount (repeatable)")
	return cmd
}

// parseGroupSpecs parses repeated name=count flags, defaulting to two
// groups of two recordings when none are given.
func parseGroupSpecs(flags []string) ([]project.GroupSpec, error) {
	if len(flags) == 0 {
		return []project.GroupSpec{
			{Name: "group_001", Recordings: 2},
			{Name: "group_002", Recordings: 2},
		}, nil
	}

	specs := make([]project.GroupSpec, 0, len(flags))
	for _, f := range flags {
		name, countStr, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid group %q (want name=recordingCount)", f)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 1 {
			return nil, fmt.Errorf("invalid recording count in %q", f)
		}
		specs = append(specs, project.GroupSpec{Name: name, Recordings: count})
	}
	return specs, nil
}
