package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/config"
	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/imaging"
	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag int
	var allFlag bool
	var modeFlag string
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "project <project-root>",
		Short: "Compute stack projections for one session or all sessions",
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

			modeName := modeFlag
			if modeName == "" {
				modeName = cfg.Projection.Mode
			}
			mode, err := imaging.ParseMode(modeName)
			if err != nil {
				return err
			}

			idx := project.BuildIndex(p)
			if allFlag {
				// Per-session failures are reported and skipped so one
				// bad recording does not block the batch.
				for _, s := range idx.Sessions() {
					outcome := "ok"
					if err := projectSession(s, mode, cfg, forceFlag); err != nil {
						slog.Warn("projection failed", "session", s.ID, "recording", s.Recording, "error", err)
						outcome = err.Error()
					}
					cmd.Printf("Session %d (%s/%s): %s\n", s.ID, s.Group, s.Recording, outcome)
				}
				return nil
			}

			if sessionFlag < 1 {
				return fmt.Errorf("either --session or --all is required")
			}
			s, err := idx.Lookup(sessionFlag)
			if err != nil {
				return err
			}
			if err := projectSession(s, mode, cfg, forceFlag); err != nil {
				return err
			}
			cmd.Printf("Projection written for session %d (%s/%s)\n", s.ID, s.Group, s.Recording)
			return nil
		},
	}

	cmd.Flags().IntVarP(&sessionFlag, "session", "s", 0, "Session id to process")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Process every session in the project")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Projection mode: max or mean (default from config)")
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Recompute even when the projection file already exists")
	return cmd
}

// projectSession runs the stack -> projection pipeline for one session.
// An existing projection file is treated as an already-computed cache
// entry unless force is set.
func projectSession(s project.Session, mode imaging.Mode, cfg *config.Config, force bool) error {
	stackPath, err := imaging.FindStack(s.Path)
	if err != nil {
		return err
	}
	outPath := imaging.ProjectionPath(s.Path, stackPath, mode)

	// A pre-existing projection is a cache hit: skip before loading
	// the stack at all.
	if !force {
		if _, statErr := os.Stat(outPath); statErr == nil {
			slog.Info("projection already exists, skipping",
				"session", s.ID, "output", filepath.Base(outPath))
			return nil
		}
	}

	stack, err := imaging.LoadStack(stackPath)
	if err != nil {
		return err
	}
	proj, err := imaging.Project(stack, mode)
	if err != nil {
		return err
	}

	if cfg.Smoothing.Enabled {
		proj, err = imaging.GaussianSmooth(proj, stack.Height, stack.Width,
			cfg.Smoothing.KernelSize, cfg.Smoothing.Sigma)
		if err != nil {
			return err
		}
	}

	_, err = imaging.WriteProjectionPNG(outPath, proj, stack.Height, stack.Width, force)
	return err
}
