package imaging

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestProjectMax(t *testing.T) {
	// All-zero stack except one all-255 frame: the max projection must
	// be 255 everywhere.
	stack, _ := NewStack(4, 3, 3)
	bright := stack.Frame(2)
	for i := range bright {
		bright[i] = 255
	}

	proj, err := Project(stack, Max)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	for i, v := range proj {
		if v != 255 {
			t.Fatalf("pixel %d: got %v, want 255", i, v)
		}
	}
}

func TestProjectMeanConstant(t *testing.T) {
	// A stack with constant value v in every frame projects to v.
	const v = 37.5
	stack, _ := NewStack(5, 2, 4)
	for i := range stack.Data {
		stack.Data[i] = v
	}

	proj, err := Project(stack, Mean)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	for i, got := range proj {
		if math.Abs(got-v) > 1e-12 {
			t.Fatalf("pixel %d: got %v, want %v", i, got, v)
		}
	}
}

func TestProjectMeanAccumulates(t *testing.T) {
	// Frames 10, 20, 30 at one pixel average to 20.
	stack, _ := NewStack(3, 1, 1)
	stack.Set(0, 0, 0, 10)
	stack.Set(1, 0, 0, 20)
	stack.Set(2, 0, 0, 30)

	proj, err := Project(stack, Mean)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if math.Abs(proj[0]-20) > 1e-12 {
		t.Errorf("got %v, want 20", proj[0])
	}
}

func TestProjectInvalidShape(t *testing.T) {
	testCases := []struct {
		name  string
		stack *Stack
	}{
		{"nil stack", nil},
		{"zero frames", &Stack{Frames: 0, Height: 2, Width: 2}},
		{"data length mismatch", &Stack{Data: make([]float64, 3), Frames: 2, Height: 2, Width: 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Project(tc.stack, Max); !errors.Is(err, ErrInvalidStackShape) {
				t.Errorf("expected ErrInvalidStackShape, got %v", err)
			}
		})
	}
}

func TestProjectionFilename(t *testing.T) {
	testCases := []struct {
		filename string
		mode     Mode
		expected string
	}{
		{"movie.tif", Max, "movie_tif_max_projection.png"},
		{"movie.ome.tif", Max, "movie_ome_tif_max_projection.png"},
		{"session01.npy", Mean, "session01_npy_mean_projection.png"},
	}

	for _, tc := range testCases {
		got := ProjectionFilename(tc.filename, tc.mode)
		if got != tc.expected {
			t.Errorf("ProjectionFilename(%s, %s) = %s, want %s",
				tc.filename, tc.mode, got, tc.expected)
		}
	}
}

func TestWriteProjectionPNGCaching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "movie_tif_max_projection.png")
	data := []float64{0, 100, 200, 300}

	written, err := WriteProjectionPNG(path, data, 2, 2, false)
	if err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if !written {
		t.Fatal("first write should write the file")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("projection file missing: %v", err)
	}

	// A second write without force must treat the existing file as
	// already computed.
	written, err = WriteProjectionPNG(path, data, 2, 2, false)
	if err != nil {
		t.Fatalf("cached write failed: %v", err)
	}
	if written {
		t.Error("second write should have been skipped")
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("projection file missing after skip: %v", err)
	}
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("skipped write must not touch the file")
	}

	// Forcing recomputes.
	written, err = WriteProjectionPNG(path, data, 2, 2, true)
	if err != nil {
		t.Fatalf("forced write failed: %v", err)
	}
	if !written {
		t.Error("forced write should write the file")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("MAX"); err != nil || m != Max {
		t.Errorf("ParseMode(MAX) = %v, %v", m, err)
	}
	if m, err := ParseMode("mean"); err != nil || m != Mean {
		t.Errorf("ParseMode(mean) = %v, %v", m, err)
	}
	if _, err := ParseMode("median"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
