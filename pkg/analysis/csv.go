package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Canonical analysis artifact filenames. Trace CSVs live under a
// recording's processed/ directory; derived summaries under analysis/.
const (
	TracesFilename       = "calcium_traces.csv"
	MeanSEMFilename      = "mean_sem_summary.csv"
	DeltaTracesFilename  = "delta_f_traces.csv"
	DeltaSummaryFilename = "delta_f_summary.csv"
)

// DefaultPrecision is the number of decimal places written for
// intensity and ratio values.
const DefaultPrecision = 4

// WriteTraceCSV writes per-ROI traces in the canonical tabular layout:
// header "frame,roi_<l1>,roi_<l2>,..." with labels ascending, one row
// per frame, a 0-based frame index in the first column, and fixed-point
// values with the given number of decimals.
func WriteTraceCSV(path string, traces map[int][]float64, precision int) error {
	if len(traces) == 0 {
		return ErrNoROIs
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}

	labels := sortedLabels(traces)
	frames := len(traces[labels[0]])
	for _, label := range labels {
		if len(traces[label]) != frames {
			return fmt.Errorf("roi %d has %d frames, want %d", label, len(traces[label]), frames)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := make([]string, 0, len(labels)+1)
	header = append(header, "frame")
	for _, label := range labels {
		header = append(header, fmt.Sprintf("roi_%d", label))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing trace csv header: %w", err)
	}

	row := make([]string, len(header))
	for f := 0; f < frames; f++ {
		row[0] = strconv.Itoa(f)
		for i, label := range labels {
			row[i+1] = strconv.FormatFloat(traces[label][f], 'f', precision, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing trace csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadTraceCSV reads a trace CSV back into a label-keyed map. Columns
// are identified by their roi_<label> header, not by position, so a
// reordered file reads back identically.
func ReadTraceCSV(path string) (map[int][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing trace csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("trace csv %s is empty", path)
	}

	header := records[0]
	if len(header) < 2 || header[0] != "frame" {
		return nil, fmt.Errorf("trace csv %s has no roi columns", path)
	}

	labels := make([]int, len(header))
	for i := 1; i < len(header); i++ {
		name := header[i]
		if !strings.HasPrefix(name, "roi_") {
			return nil, fmt.Errorf("trace csv %s: unexpected column %q", path, name)
		}
		label, convErr := strconv.Atoi(strings.TrimPrefix(name, "roi_"))
		if convErr != nil {
			return nil, fmt.Errorf("trace csv %s: unexpected column %q", path, name)
		}
		labels[i] = label
	}

	frames := len(records) - 1
	traces := make(map[int][]float64, len(header)-1)
	for i := 1; i < len(header); i++ {
		traces[labels[i]] = make([]float64, frames)
	}

	for f, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("trace csv %s: row %d has %d fields, want %d",
				path, f+1, len(record), len(header))
		}
		for i := 1; i < len(header); i++ {
			v, convErr := strconv.ParseFloat(record[i], 64)
			if convErr != nil {
				return nil, fmt.Errorf("trace csv %s: bad value %q at frame %d: %w",
					path, record[i], f, convErr)
			}
			traces[labels[i]][f] = v
		}
	}

	return traces, nil
}

// WriteSummaryCSV writes frame-aligned mean and SEM series with the
// header "frame,mean,sem".
func WriteSummaryCSV(path string, mean, sem []float64, precision int) error {
	if len(mean) != len(sem) {
		return fmt.Errorf("mean has %d frames, sem has %d", len(mean), len(sem))
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"frame", "mean", "sem"}); err != nil {
		return fmt.Errorf("writing summary csv header: %w", err)
	}
	for f := range mean {
		row := []string{
			strconv.Itoa(f),
			strconv.FormatFloat(mean[f], 'f', precision, 64),
			strconv.FormatFloat(sem[f], 'f', precision, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing summary csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
