// Package analysis computes derived statistics over per-ROI
// fluorescence traces (cross-ROI mean and standard error, ΔF/F
// normalization) and orchestrates recording- and group-level analysis
// runs over a project.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Errors returned by trace statistics.
var (
	ErrNoROIs       = errors.New("no roi traces to aggregate")
	ErrZeroBaseline = errors.New("baseline fluorescence is zero")
)

// MeanAndSEM aggregates traces across the ROI axis frame by frame. The
// returned series have one entry per frame: the mean pixel intensity
// across ROIs and its standard error (sample standard deviation divided
// by sqrt of the ROI count). With a single ROI the SEM is exactly 0
// rather than undefined. All traces must share the same frame count.
func MeanAndSEM(traces map[int][]float64) (mean, sem []float64, err error) {
	if len(traces) == 0 {
		return nil, nil, ErrNoROIs
	}

	labels := sortedLabels(traces)
	frames := len(traces[labels[0]])
	for _, label := range labels {
		if len(traces[label]) != frames {
			return nil, nil, fmt.Errorf("roi %d has %d frames, want %d", label, len(traces[label]), frames)
		}
	}

	mean = make([]float64, frames)
	sem = make([]float64, frames)
	sample := make([]float64, len(labels))

	for f := 0; f < frames; f++ {
		for i, label := range labels {
			sample[i] = traces[label][f]
		}
		mean[f] = stat.Mean(sample, nil)
		if len(sample) > 1 {
			sem[f] = stat.StdDev(sample, nil) / math.Sqrt(float64(len(sample)))
		}
	}
	return mean, sem, nil
}

// DeltaTrace is one ROI's ΔF/F series. When the baseline F0 (the
// trace's first-frame value) is zero, the normalization is undefined:
// Invalid is set and Values is nil instead of a series of infinities.
type DeltaTrace struct {
	Values  []float64
	Invalid bool
}

// DeltaFOverF normalizes each trace to its fractional change relative
// to the first frame: (trace[f] - F0) / F0 with F0 = trace[0]. The
// background ROI is excluded from both input and output; a zero
// baseline flags that ROI's series as invalid without aborting the
// rest of the batch.
//
// ErrNoROIs is returned when no traces remain after excluding the
// background.
func DeltaFOverF(traces map[int][]float64, backgroundLabel int) (map[int]DeltaTrace, error) {
	out := make(map[int]DeltaTrace, len(traces))
	for label, trace := range traces {
		if label == backgroundLabel {
			continue
		}
		if len(trace) == 0 || trace[0] == 0 {
			out[label] = DeltaTrace{Invalid: true}
			continue
		}
		f0 := trace[0]
		values := make([]float64, len(trace))
		for f, v := range trace {
			values[f] = (v - f0) / f0
		}
		out[label] = DeltaTrace{Values: values}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: only the background roi is present", ErrNoROIs)
	}
	return out, nil
}

// ValidDeltaTraces filters a ΔF/F result down to the valid series,
// keyed by label, for aggregation and CSV output.
func ValidDeltaTraces(deltas map[int]DeltaTrace) map[int][]float64 {
	valid := make(map[int][]float64, len(deltas))
	for label, d := range deltas {
		if !d.Invalid {
			valid[label] = d.Values
		}
	}
	return valid
}

// MeanTrace averages all traces frame by frame into a single series.
// This is the per-recording summary used by group-level analysis.
func MeanTrace(traces map[int][]float64) ([]float64, error) {
	if len(traces) == 0 {
		return nil, ErrNoROIs
	}
	labels := sortedLabels(traces)
	frames := len(traces[labels[0]])
	for _, label := range labels {
		if len(traces[label]) != frames {
			return nil, fmt.Errorf("roi %d has %d frames, want %d", label, len(traces[label]), frames)
		}
	}

	mean := make([]float64, frames)
	for _, label := range labels {
		for f, v := range traces[label] {
			mean[f] += v
		}
	}
	n := float64(len(labels))
	for f := range mean {
		mean[f] /= n
	}
	return mean, nil
}

// sortedLabels returns the trace map's keys in ascending order so
// every aggregation walks ROIs deterministically.
func sortedLabels(traces map[int][]float64) []int {
	labels := make([]int, 0, len(traces))
	for label := range traces {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}
