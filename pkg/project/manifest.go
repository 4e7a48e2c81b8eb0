// Package project handles the on-disk layout of a calcium imaging project:
// loading and validating the manifest that describes the group/recording
// hierarchy, building a flat session index over it, and scaffolding new
// project trees.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestFilename is the name of the manifest file expected at the
// project root.
const ManifestFilename = "config.json"

// RequiredSubdirs are the subdirectories every recording must contain
// for the project structure to be considered valid.
var RequiredSubdirs = []string{"raw", "metadata", "processed", "analysis", "figures"}

// Errors returned by manifest loading and lookups. Callers discriminate
// with errors.Is.
var (
	ErrManifestNotFound  = errors.New("project manifest not found")
	ErrManifestMalformed = errors.New("project manifest malformed")
	ErrGroupNotFound     = errors.New("group not found")
	ErrRecordingNotFound = errors.New("recording not found")
)

// Recording is a single imaging session directory within a group.
type Recording struct {
	// Name is the recording's identifier within its group (e.g. "recording_001").
	Name string `json:"recording_name"`

	// Path is the recording directory containing the raw/, metadata/,
	// processed/, analysis/ and figures/ subdirectories.
	Path string `json:"path"`
}

// Group is a named, ordered collection of recordings sharing an
// experimental condition.
type Group struct {
	// Name is unique within the project.
	Name string `json:"group_name"`

	// Path is the group directory under the project root.
	Path string `json:"path"`

	// Recordings are listed in manifest order. Order matters: session
	// ids are assigned positionally by the index.
	Recordings []Recording `json:"recordings"`
}

// Project is a read-only view over a project manifest. It is created by
// Load (or Scaffold) and never mutated afterwards.
type Project struct {
	// Root is the project root directory as recorded in the manifest.
	Root string `json:"project_root"`

	// Groups are listed in manifest order.
	Groups []Group `json:"groups"`
}

// Load reads and validates the manifest at the given project root.
//
// It returns ErrManifestNotFound if no manifest file exists, and
// ErrManifestMalformed if the file does not parse or violates the
// required schema (missing groups list, unnamed groups or recordings,
// duplicate group names). Validation happens here, at load time, so
// that a bad manifest fails early instead of deep inside traversal.
func Load(root string) (*Project, error) {
	manifestPath := filepath.Join(root, ManifestFilename)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, manifestPath)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, err)
	}

	var raw struct {
		Root   string  `json:"project_root"`
		Groups []Group `json:"groups"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestMalformed, err)
	}
	if raw.Groups == nil {
		return nil, fmt.Errorf("%w: missing required \"groups\" key", ErrManifestMalformed)
	}

	p := &Project{Root: raw.Root, Groups: raw.Groups}
	if p.Root == "" {
		p.Root = root
	}

	if err := p.validateSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

// validateSchema checks required fields and uniqueness constraints on a
// freshly parsed manifest.
func (p *Project) validateSchema() error {
	seen := make(map[string]bool, len(p.Groups))
	for gi, g := range p.Groups {
		if g.Name == "" {
			return fmt.Errorf("%w: group %d has no group_name", ErrManifestMalformed, gi)
		}
		if g.Path == "" {
			return fmt.Errorf("%w: group %q has no path", ErrManifestMalformed, g.Name)
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: duplicate group name %q", ErrManifestMalformed, g.Name)
		}
		seen[g.Name] = true

		for ri, r := range g.Recordings {
			if r.Name == "" {
				return fmt.Errorf("%w: group %q recording %d has no recording_name",
					ErrManifestMalformed, g.Name, ri)
			}
			if r.Path == "" {
				return fmt.Errorf("%w: recording %q has no path", ErrManifestMalformed, r.Name)
			}
		}
	}
	return nil
}

// Group returns the named group, or ErrGroupNotFound.
func (p *Project) Group(name string) (*Group, error) {
	for i := range p.Groups {
		if p.Groups[i].Name == name {
			return &p.Groups[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
}

// ValidateStructure reports whether every group and recording directory
// exists on disk and every recording contains all required
// subdirectories. A false result is an expected, recoverable state
// during project setup, so this is a query rather than an error path.
func (p *Project) ValidateStructure() bool {
	for _, g := range p.Groups {
		if !dirExists(g.Path) {
			return false
		}
		for _, r := range g.Recordings {
			if !dirExists(r.Path) {
				return false
			}
			for _, sub := range RequiredSubdirs {
				if !dirExists(filepath.Join(r.Path, sub)) {
					return false
				}
			}
		}
	}
	return true
}

// NumRecordings returns the total recording count across all groups.
func (p *Project) NumRecordings() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Recordings)
	}
	return n
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
