package roi

import (
	"errors"
	"fmt"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/imaging"
)

// ErrEmptyMask is returned when a mask selects zero pixels; the spatial
// mean is undefined in that case.
var ErrEmptyMask = errors.New("roi mask selects no pixels")

// ExtractTrace reduces a stack to one scalar per frame: the arithmetic
// mean of the stack's pixel values inside the mask at that frame. The
// mask must cover the stack's spatial extent.
func ExtractTrace(s *imaging.Stack, mask []bool) ([]float64, error) {
	if len(mask) != s.FrameSize() {
		return nil, fmt.Errorf("mask has %d pixels, stack frames have %d", len(mask), s.FrameSize())
	}

	count := MaskCount(mask)
	if count == 0 {
		return nil, ErrEmptyMask
	}

	trace := make([]float64, s.Frames)
	for f := 0; f < s.Frames; f++ {
		frame := s.Frame(f)
		sum := 0.0
		for i, inside := range mask {
			if inside {
				sum += frame[i]
			}
		}
		trace[f] = sum / float64(count)
	}
	return trace, nil
}

// ExtractTraces rasterizes every ROI in the collection against the
// stack's spatial extent and extracts its trace. The result maps ROI
// label to trace, so downstream column identity survives reordering of
// the collection. Each ROI is processed independently; the first
// failure aborts with the offending label in the error.
func ExtractTraces(s *imaging.Stack, c *Collection) (map[int][]float64, error) {
	traces := make(map[int][]float64, c.Len())
	for _, r := range c.ROIs {
		mask, err := Rasterize(r.Vertices, s.Height, s.Width)
		if err != nil {
			return nil, fmt.Errorf("rasterizing roi %d: %w", r.Label, err)
		}
		trace, err := ExtractTrace(s, mask)
		if err != nil {
			return nil, fmt.Errorf("extracting trace for roi %d: %w", r.Label, err)
		}
		traces[r.Label] = trace
	}
	return traces, nil
}
