package analysis

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/imaging"
	"github.com/ecresp1el/calcium-imaging-pipeline-umich/pkg/roi"
)

// RecordingAnalysis orchestrates the analysis pipeline for one
// recording directory: trace extraction (or reuse of a previously
// extracted trace table), cross-ROI mean/SEM, and ΔF/F normalization,
// with results persisted at the canonical paths under processed/ and
// analysis/.
type RecordingAnalysis struct {
	// RecordingPath is the recording directory containing raw/,
	// processed/ and analysis/.
	RecordingPath string

	// Precision is the number of decimals written to output CSVs.
	// Zero means DefaultPrecision.
	Precision int

	// Logger receives progress and skip notices. Nil means the default
	// slog logger.
	Logger *slog.Logger
}

// NewRecordingAnalysis returns an analysis runner for one recording.
func NewRecordingAnalysis(recordingPath string) *RecordingAnalysis {
	return &RecordingAnalysis{RecordingPath: recordingPath}
}

// TracesPath returns the canonical per-ROI trace table path.
func (ra *RecordingAnalysis) TracesPath() string {
	return filepath.Join(ra.RecordingPath, "processed", TracesFilename)
}

func (ra *RecordingAnalysis) analysisPath(name string) string {
	return filepath.Join(ra.RecordingPath, "analysis", name)
}

func (ra *RecordingAnalysis) logger() *slog.Logger {
	if ra.Logger != nil {
		return ra.Logger
	}
	return slog.Default()
}

// ExtractTraces locates the recording's raw stack, loads the ROI
// collection from processed/rois.json, extracts one trace per ROI and
// writes the canonical trace CSV. A second run silently replaces the
// previous table.
func (ra *RecordingAnalysis) ExtractTraces() (map[int][]float64, error) {
	stackPath, err := imaging.FindStack(ra.RecordingPath)
	if err != nil {
		return nil, err
	}
	stack, err := imaging.LoadStack(stackPath)
	if err != nil {
		return nil, err
	}

	collection, err := roi.LoadCollection(roi.CollectionPath(ra.RecordingPath))
	if err != nil {
		return nil, fmt.Errorf("loading rois: %w", err)
	}

	traces, err := roi.ExtractTraces(stack, collection)
	if err != nil {
		return nil, err
	}
	if err := WriteTraceCSV(ra.TracesPath(), traces, ra.Precision); err != nil {
		return nil, err
	}

	ra.logger().Info("extracted traces",
		"recording", filepath.Base(ra.RecordingPath),
		"stack", filepath.Base(stackPath),
		"rois", collection.Len(),
		"frames", stack.Frames)
	return traces, nil
}

// LoadTraces reads the recording's trace table from the canonical CSV,
// extracting it first when the file does not exist yet.
func (ra *RecordingAnalysis) LoadTraces() (map[int][]float64, error) {
	if _, err := os.Stat(ra.TracesPath()); err != nil {
		if os.IsNotExist(err) {
			return ra.ExtractTraces()
		}
		return nil, fmt.Errorf("checking trace csv: %w", err)
	}
	return ReadTraceCSV(ra.TracesPath())
}

// Run executes the full recording-level analysis. By convention the
// ROI with the lowest label is the background/reference channel and is
// excluded from both the mean/SEM aggregation and the ΔF/F series.
//
// Outputs written: analysis/mean_sem_summary.csv,
// analysis/delta_f_traces.csv and analysis/delta_f_summary.csv. ROIs
// whose baseline is zero are flagged and omitted from the ΔF/F table
// rather than aborting the run.
func (ra *RecordingAnalysis) Run() error {
	traces, err := ra.LoadTraces()
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		return ErrNoROIs
	}

	background := lowestLabel(traces)
	signal := make(map[int][]float64, len(traces)-1)
	for label, trace := range traces {
		if label != background {
			signal[label] = trace
		}
	}
	if len(signal) == 0 {
		return fmt.Errorf("%w: recording has only the background roi", ErrNoROIs)
	}

	mean, sem, err := MeanAndSEM(signal)
	if err != nil {
		return err
	}
	if err := WriteSummaryCSV(ra.analysisPath(MeanSEMFilename), mean, sem, ra.Precision); err != nil {
		return err
	}

	deltas, err := DeltaFOverF(traces, background)
	if err != nil {
		return err
	}
	for label, d := range deltas {
		if d.Invalid {
			ra.logger().Warn("zero baseline, omitting roi from ΔF/F output",
				"recording", filepath.Base(ra.RecordingPath),
				"roi", label)
		}
	}

	valid := ValidDeltaTraces(deltas)
	if len(valid) > 0 {
		if err := WriteTraceCSV(ra.analysisPath(DeltaTracesFilename), valid, ra.Precision); err != nil {
			return err
		}
		deltaMean, deltaSEM, err := MeanAndSEM(valid)
		if err != nil {
			return err
		}
		if err := WriteSummaryCSV(ra.analysisPath(DeltaSummaryFilename), deltaMean, deltaSEM, ra.Precision); err != nil {
			return err
		}
	}

	ra.logger().Info("recording analysis complete",
		"recording", filepath.Base(ra.RecordingPath),
		"rois", len(traces),
		"background", background)
	return nil
}

// lowestLabel returns the smallest label present in a trace map.
func lowestLabel(traces map[int][]float64) int {
	lowest := 0
	first := true
	for label := range traces {
		if first || label < lowest {
			lowest = label
			first = false
		}
	}
	return lowest
}
