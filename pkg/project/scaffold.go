package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GroupSpec describes one group to create when scaffolding a project.
type GroupSpec struct {
	// Name of the group directory.
	Name string

	// Recordings is how many recording_%03d directories to create.
	Recordings int
}

// Scaffold creates a standardized project directory tree at root and
// writes the manifest describing it. For each group it creates the
// group directory, the requested number of recording directories with
// all required subdirectories, and a short README per level.
//
// Scaffold returns the resulting project view, equivalent to calling
// Load on the new root.
func Scaffold(root string, groups []GroupSpec) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating project root: %w", err)
	}

	p := &Project{Root: absRoot}

	for _, spec := range groups {
		groupPath := filepath.Join(absRoot, spec.Name)
		if err := os.MkdirAll(groupPath, 0755); err != nil {
			return nil, fmt.Errorf("creating group directory: %w", err)
		}

		g := Group{Name: spec.Name, Path: groupPath}

		for r := 1; r <= spec.Recordings; r++ {
			recName := fmt.Sprintf("recording_%03d", r)
			recPath := filepath.Join(groupPath, recName)

			for _, sub := range RequiredSubdirs {
				if err := os.MkdirAll(filepath.Join(recPath, sub), 0755); err != nil {
					return nil, fmt.Errorf("creating recording subdirectory: %w", err)
				}
			}

			readme := fmt.Sprintf("# %s\n\nThis folder contains data for %s.\n", recName, recName)
			if err := os.WriteFile(filepath.Join(recPath, "README.md"), []byte(readme), 0644); err != nil {
				return nil, fmt.Errorf("writing recording README: %w", err)
			}

			g.Recordings = append(g.Recordings, Recording{Name: recName, Path: recPath})
		}

		readme := fmt.Sprintf("# %s\n\nThis folder contains multiple recording sessions.\n", spec.Name)
		if err := os.WriteFile(filepath.Join(groupPath, "README.md"), []byte(readme), 0644); err != nil {
			return nil, fmt.Errorf("writing group README: %w", err)
		}

		p.Groups = append(p.Groups, g)
	}

	readme := fmt.Sprintf("# %s\n\nThis is a structured directory for calcium imaging data.\n",
		filepath.Base(absRoot))
	if err := os.WriteFile(filepath.Join(absRoot, "README.md"), []byte(readme), 0644); err != nil {
		return nil, fmt.Errorf("writing project README: %w", err)
	}

	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes the project's manifest to <root>/config.json.
func (p *Project) Save() error {
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	manifestPath := filepath.Join(p.Root, ManifestFilename)
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
