package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects the pixel-wise reduction applied across the frame axis.
type Mode int

const (
	// Max takes the per-pixel maximum across frames, preserving the
	// input value range.
	Max Mode = iota

	// Mean takes the per-pixel arithmetic mean across frames. The
	// accumulation happens in float64 regardless of the source bit
	// depth, so summing long recordings cannot overflow.
	Mean
)

// ParseMode parses a projection mode name ("max" or "mean").
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "max":
		return Max, nil
	case "mean":
		return Mean, nil
	default:
		return 0, fmt.Errorf("unknown projection mode %q (want max or mean)", name)
	}
}

// String returns the mode's canonical lowercase name.
func (m Mode) String() string {
	if m == Mean {
		return "mean"
	}
	return "max"
}

// Project reduces a 3-D stack to a 2-D projection over the frame axis.
// The result has FrameSize() elements in (row, col) order. A nil or
// degenerate stack fails with ErrInvalidStackShape.
func Project(s *Stack, mode Mode) ([]float64, error) {
	if s == nil || s.Frames <= 0 || s.Height <= 0 || s.Width <= 0 {
		return nil, fmt.Errorf("%w: projection requires a 3-D stack", ErrInvalidStackShape)
	}
	if len(s.Data) != s.Frames*s.Height*s.Width {
		return nil, fmt.Errorf("%w: stack data length %d does not match %dx%dx%d",
			ErrInvalidStackShape, len(s.Data), s.Frames, s.Height, s.Width)
	}

	size := s.FrameSize()
	out := make([]float64, size)
	copy(out, s.Frame(0))

	switch mode {
	case Max:
		for f := 1; f < s.Frames; f++ {
			frame := s.Frame(f)
			for i, v := range frame {
				if v > out[i] {
					out[i] = v
				}
			}
		}
	case Mean:
		for f := 1; f < s.Frames; f++ {
			frame := s.Frame(f)
			for i, v := range frame {
				out[i] += v
			}
		}
		n := float64(s.Frames)
		for i := range out {
			out[i] /= n
		}
	default:
		return nil, fmt.Errorf("unknown projection mode %d", mode)
	}

	return out, nil
}

// ProjectionFilename derives the canonical projection output name from
// a stack filename. Every literal '.' in the name is replaced so that
// multi-extension stacks (movie.ome.tif) cannot produce ambiguous
// output names, then the mode suffix is appended:
//
//	movie.ome.tif -> movie_ome_tif_max_projection.png
func ProjectionFilename(stackFilename string, mode Mode) string {
	stem := strings.ReplaceAll(filepath.Base(stackFilename), ".", "_")
	return fmt.Sprintf("%s_%s_projection.png", stem, mode)
}

// ProjectionPath returns the canonical path of a recording's projection
// output under processed/.
func ProjectionPath(recordingPath, stackPath string, mode Mode) string {
	return filepath.Join(recordingPath, "processed", ProjectionFilename(stackPath, mode))
}

// WriteProjectionPNG writes a projection as an 8-bit grayscale PNG.
// Values are truncated into [0, 255] at write time only; the in-memory
// projection keeps its full float range.
//
// An existing file at path is treated as an already-computed cache
// entry: the write is skipped and (false, nil) returned unless force is
// set. The returned bool reports whether the file was written.
func WriteProjectionPNG(path string, data []float64, height, width int, force bool) (bool, error) {
	if len(data) != height*width {
		return false, fmt.Errorf("projection has %d pixels, want %dx%d", len(data), height, width)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			v := data[r*width+c]
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			img.SetGray(c, r, color.Gray{Y: uint8(v)})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("creating projection directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating projection file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return false, fmt.Errorf("encoding projection: %w", err)
	}
	return true, nil
}
