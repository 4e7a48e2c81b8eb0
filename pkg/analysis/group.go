package analysis

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/project"
)

// GroupSummaryFilename is the canonical group-level output, written
// into the group's directory.
const GroupSummaryFilename = "group_mean_traces.csv"

// GroupSummary is the group-level aggregate: one mean trace per
// recording (averaged across that recording's ROI columns), keyed by
// recording name. Recordings keeps manifest order; Skipped lists the
// recordings excluded because their trace table was missing or
// malformed.
type GroupSummary struct {
	Group      string
	Recordings []string
	Traces     map[string][]float64
	Skipped    []string
}

// GroupAnalysis aggregates recording-level traces across one named
// group of recordings.
type GroupAnalysis struct {
	Group project.Group

	// Precision is the number of decimals written to the summary CSV.
	Precision int

	// Logger receives per-recording skip notices. Nil means the
	// default slog logger.
	Logger *slog.Logger
}

// NewGroupAnalysis resolves the named group within a project. It
// returns project.ErrGroupNotFound when the manifest has no such group.
func NewGroupAnalysis(p *project.Project, groupName string) (*GroupAnalysis, error) {
	g, err := p.Group(groupName)
	if err != nil {
		return nil, err
	}
	return &GroupAnalysis{Group: *g}, nil
}

func (ga *GroupAnalysis) logger() *slog.Logger {
	if ga.Logger != nil {
		return ga.Logger
	}
	return slog.Default()
}

// Summarize collects the per-recording mean trace for every recording
// in the group. Recordings whose trace CSV is missing or malformed are
// skipped with a logged notice so one bad recording does not block the
// group summary; processing is sequential and per-recording failures
// are independent.
func (ga *GroupAnalysis) Summarize() (*GroupSummary, error) {
	summary := &GroupSummary{
		Group:  ga.Group.Name,
		Traces: make(map[string][]float64, len(ga.Group.Recordings)),
	}

	for _, rec := range ga.Group.Recordings {
		tracesPath := filepath.Join(rec.Path, "processed", TracesFilename)
		traces, err := ReadTraceCSV(tracesPath)
		if err != nil {
			ga.logger().Warn("skipping recording",
				"group", ga.Group.Name,
				"recording", rec.Name,
				"error", err)
			summary.Skipped = append(summary.Skipped, rec.Name)
			continue
		}

		mean, err := MeanTrace(traces)
		if err != nil {
			ga.logger().Warn("skipping recording",
				"group", ga.Group.Name,
				"recording", rec.Name,
				"error", err)
			summary.Skipped = append(summary.Skipped, rec.Name)
			continue
		}

		summary.Recordings = append(summary.Recordings, rec.Name)
		summary.Traces[rec.Name] = mean
	}

	return summary, nil
}

// Run summarizes the group and writes the result to the canonical path
// in the group directory.
func (ga *GroupAnalysis) Run() (*GroupSummary, error) {
	summary, err := ga.Summarize()
	if err != nil {
		return nil, err
	}
	outPath := filepath.Join(ga.Group.Path, GroupSummaryFilename)
	if err := summary.WriteCSV(outPath, ga.Precision); err != nil {
		return nil, err
	}
	ga.logger().Info("group analysis complete",
		"group", ga.Group.Name,
		"recordings", len(summary.Recordings),
		"skipped", len(summary.Skipped),
		"output", outPath)
	return summary, nil
}

// WriteCSV writes the group summary as "frame,<recording>,..." with
// one column per included recording in manifest order. Recordings may
// have different lengths; shorter columns leave trailing cells empty.
func (gs *GroupSummary) WriteCSV(path string, precision int) error {
	if precision <= 0 {
		precision = DefaultPrecision
	}

	frames := 0
	for _, name := range gs.Recordings {
		if n := len(gs.Traces[name]); n > frames {
			frames = n
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating group summary csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := append([]string{"frame"}, gs.Recordings...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing group summary header: %w", err)
	}

	row := make([]string, len(header))
	for f := 0; f < frames; f++ {
		row[0] = strconv.Itoa(f)
		for i, name := range gs.Recordings {
			trace := gs.Traces[name]
			if f < len(trace) {
				row[i+1] = strconv.FormatFloat(trace[f], 'f', precision, 64)
			} else {
				row[i+1] = ""
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing group summary row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
