package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// scaffoldTestProject creates a small two-group project under a temp
// directory and returns its root.
func scaffoldTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	_, err := Scaffold(root, []GroupSpec{
		{Name: "control", Recordings: 2},
		{Name: "treated", Recordings: 3},
	})
	if err != nil {
		t.Fatalf("Scaffold failed: %v", err)
	}
	return root
}

func TestScaffoldAndLoad(t *testing.T) {
	root := scaffoldTestProject(t)

	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(p.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(p.Groups))
	}
	if p.Groups[0].Name != "control" || p.Groups[1].Name != "treated" {
		t.Errorf("group order not preserved: %q, %q", p.Groups[0].Name, p.Groups[1].Name)
	}
	if got := p.NumRecordings(); got != 5 {
		t.Errorf("expected 5 recordings, got %d", got)
	}
	if p.Groups[1].Recordings[2].Name != "recording_003" {
		t.Errorf("unexpected recording name %q", p.Groups[1].Recordings[2].Name)
	}

	if !p.ValidateStructure() {
		t.Error("freshly scaffolded project should validate")
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestLoadMalformedManifest(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"missing groups key", `{"project_root": "/tmp/p"}`},
		{"unnamed group", `{"project_root": "/tmp/p", "groups": [{"path": "/tmp/p/g"}]}`},
		{"group without path", `{"project_root": "/tmp/p", "groups": [{"group_name": "g"}]}`},
		{"duplicate groups", `{"project_root": "/tmp/p", "groups": [
			{"group_name": "g", "path": "/tmp/p/g", "recordings": []},
			{"group_name": "g", "path": "/tmp/p/g2", "recordings": []}]}`},
		{"unnamed recording", `{"project_root": "/tmp/p", "groups": [
			{"group_name": "g", "path": "/tmp/p/g", "recordings": [{"path": "/tmp/p/g/r"}]}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, ManifestFilename), []byte(tc.content), 0644); err != nil {
				t.Fatalf("writing manifest: %v", err)
			}
			_, err := Load(root)
			if !errors.Is(err, ErrManifestMalformed) {
				t.Errorf("expected ErrManifestMalformed, got %v", err)
			}
		})
	}
}

func TestValidateStructureMissingSubdir(t *testing.T) {
	// Removing any one required subdirectory from any recording must
	// fail the whole check.
	for _, sub := range RequiredSubdirs {
		t.Run(sub, func(t *testing.T) {
			root := scaffoldTestProject(t)
			p, err := Load(root)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			victim := filepath.Join(p.Groups[1].Recordings[1].Path, sub)
			if err := os.RemoveAll(victim); err != nil {
				t.Fatalf("removing %s: %v", victim, err)
			}

			if p.ValidateStructure() {
				t.Errorf("structure should be invalid without %s", sub)
			}
		})
	}
}

func TestValidateStructureMissingRecordingDir(t *testing.T) {
	root := scaffoldTestProject(t)
	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := os.RemoveAll(p.Groups[0].Recordings[0].Path); err != nil {
		t.Fatalf("removing recording dir: %v", err)
	}
	if p.ValidateStructure() {
		t.Error("structure should be invalid without a recording directory")
	}
}

func TestGroupLookup(t *testing.T) {
	root := scaffoldTestProject(t)
	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g, err := p.Group("treated")
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if len(g.Recordings) != 3 {
		t.Errorf("expected 3 recordings in treated, got %d", len(g.Recordings))
	}

	if _, err := p.Group("missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}
