package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTraceCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", TracesFilename)
	traces := map[int][]float64{
		2: {10, 20, 5},
		5: {1.23456, 2, 3},
	}

	if err := WriteTraceCSV(path, traces, 4); err != nil {
		t.Fatalf("WriteTraceCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "frame,roi_2,roi_5" {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "0,10.0000,1.2346" {
		t.Errorf("first row: got %q", lines[1])
	}
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}

	loaded, err := ReadTraceCSV(path)
	if err != nil {
		t.Fatalf("ReadTraceCSV failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(loaded))
	}
	if got := loaded[2]; got[0] != 10 || got[1] != 20 || got[2] != 5 {
		t.Errorf("roi 2: got %v", got)
	}
	if got := loaded[5][0]; got != 1.2346 {
		t.Errorf("roi 5 frame 0: got %v, want rounded 1.2346", got)
	}
}

func TestReadTraceCSVColumnIdentity(t *testing.T) {
	// Column identity comes from the header label, not position.
	path := filepath.Join(t.TempDir(), "reordered.csv")
	content := "frame,roi_9,roi_3\n0,100.0,1.0\n1,200.0,2.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	traces, err := ReadTraceCSV(path)
	if err != nil {
		t.Fatalf("ReadTraceCSV failed: %v", err)
	}
	if traces[9][1] != 200 {
		t.Errorf("roi 9 frame 1: got %v, want 200", traces[9][1])
	}
	if traces[3][0] != 1 {
		t.Errorf("roi 3 frame 0: got %v, want 1", traces[3][0])
	}
}

func TestReadTraceCSVMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"bad column name", "frame,signal\n0,1.0\n"},
		{"non-numeric label", "frame,roi_x\n0,1.0\n"},
		{"bad value", "frame,roi_1\n0,abc\n"},
		{"empty file", ""},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".csv")
		if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
			t.Fatalf("writing csv: %v", err)
		}
		if _, err := ReadTraceCSV(path); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestWriteTraceCSVEmpty(t *testing.T) {
	err := WriteTraceCSV(filepath.Join(t.TempDir(), "x.csv"), nil, 4)
	if err == nil {
		t.Error("expected error for empty trace map")
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis", MeanSEMFilename)
	if err := WriteSummaryCSV(path, []float64{3, 4}, []float64{1, 0}, 4); err != nil {
		t.Fatalf("WriteSummaryCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	want := "frame,mean,sem\n0,3.0000,1.0000\n1,4.0000,0.0000\n"
	if string(data) != want {
		t.Errorf("summary csv:\ngot  %q\nwant %q", string(data), want)
	}
}

func TestWriteSummaryCSVLengthMismatch(t *testing.T) {
	err := WriteSummaryCSV(filepath.Join(t.TempDir(), "x.csv"), []float64{1, 2}, []float64{1}, 4)
	if err == nil {
		t.Error("expected error for mismatched series lengths")
	}
}
