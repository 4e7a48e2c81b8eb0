package roi

import (
	"errors"
	"testing"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/imaging"
)

// gradientStack builds a stack whose pixel values are
// frame*100 + row*10 + col, so any (frame, row, col) is recoverable
// from the value.
func gradientStack(t *testing.T, frames, height, width int) *imaging.Stack {
	t.Helper()
	s, err := imaging.NewStack(frames, height, width)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	for f := 0; f < frames; f++ {
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				s.Set(f, r, c, float64(f*100+r*10+c))
			}
		}
	}
	return s
}

func TestExtractTraceSinglePixel(t *testing.T) {
	s := gradientStack(t, 4, 3, 3)

	mask := make([]bool, 9)
	mask[2*3+1] = true // pixel (2,1)

	trace, err := ExtractTrace(s, mask)
	if err != nil {
		t.Fatalf("ExtractTrace failed: %v", err)
	}
	if len(trace) != 4 {
		t.Fatalf("trace length: got %d, want 4", len(trace))
	}
	for f, v := range trace {
		want := float64(f*100 + 21)
		if v != want {
			t.Errorf("frame %d: got %v, want %v", f, v, want)
		}
	}
}

func TestExtractTraceMeanOverMask(t *testing.T) {
	s := gradientStack(t, 2, 2, 2)

	// Pixels (0,0) and (1,1): values f*100+0 and f*100+11, mean
	// f*100+5.5.
	mask := []bool{true, false, false, true}

	trace, err := ExtractTrace(s, mask)
	if err != nil {
		t.Fatalf("ExtractTrace failed: %v", err)
	}
	for f, v := range trace {
		want := float64(f*100) + 5.5
		if v != want {
			t.Errorf("frame %d: got %v, want %v", f, v, want)
		}
	}
}

func TestExtractTraceEmptyMask(t *testing.T) {
	s := gradientStack(t, 2, 2, 2)
	_, err := ExtractTrace(s, make([]bool, 4))
	if !errors.Is(err, ErrEmptyMask) {
		t.Errorf("expected ErrEmptyMask, got %v", err)
	}
}

func TestExtractTraceMaskSizeMismatch(t *testing.T) {
	s := gradientStack(t, 2, 2, 2)
	if _, err := ExtractTrace(s, make([]bool, 9)); err == nil {
		t.Error("expected error for mismatched mask size")
	}
}

func TestExtractTracesKeyedByLabel(t *testing.T) {
	s := gradientStack(t, 3, 4, 4)

	c := NewCollection()
	c.Add([][2]float64{{0.6, 0.6}, {0.6, 1.4}, {1.4, 1.4}, {1.4, 0.6}}) // pixel (1,1)
	c.Add([][2]float64{{1.6, 2.6}, {1.6, 3.4}, {2.4, 3.4}, {2.4, 2.6}}) // pixel (2,3)
	c.Remove(1)
	c.Add([][2]float64{{2.6, 0.6}, {2.6, 1.4}, {3.4, 1.4}, {3.4, 0.6}}) // pixel (3,1)

	traces, err := ExtractTraces(s, c)
	if err != nil {
		t.Fatalf("ExtractTraces failed: %v", err)
	}
	if len(traces) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(traces))
	}
	if _, ok := traces[1]; ok {
		t.Error("removed roi 1 should not appear")
	}

	for label, base := range map[int]float64{2: 23, 3: 31} {
		trace := traces[label]
		if trace == nil {
			t.Fatalf("missing trace for roi %d", label)
		}
		for f, v := range trace {
			if want := float64(f*100) + base; v != want {
				t.Errorf("roi %d frame %d: got %v, want %v", label, f, v, want)
			}
		}
	}
}
