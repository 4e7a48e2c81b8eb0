// Package roi models user-drawn polygon regions of interest over an
// imaging stack's spatial extent, rasterizes them into pixel masks, and
// reduces stacks to per-ROI fluorescence traces.
package roi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ROI is one polygon region of interest. Vertices are (row, col)
// coordinates in the stack's spatial coordinate system, forming a
// closed polygon (the edge from the last vertex back to the first is
// implicit).
type ROI struct {
	// Label uniquely identifies the ROI within a recording. Labels are
	// assigned sequentially from 1 and are never reused, even after an
	// earlier ROI is deleted.
	Label int `json:"label"`

	// Vertices are the polygon's corner points in draw order.
	Vertices [][2]float64 `json:"vertices"`
}

// Collection holds a recording's ROIs together with the label counter
// that hands out new labels. The counter is an explicit field of the
// collection so the "next label" state travels with the data instead of
// living in UI callback state.
type Collection struct {
	ROIs []ROI

	// nextLabel is the label the next Add call will assign.
	nextLabel int
}

// NewCollection returns an empty collection whose first ROI will get
// label 1.
func NewCollection() *Collection {
	return &Collection{nextLabel: 1}
}

// Add appends a new ROI with the given vertices, assigning the next
// free label, and returns it.
func (c *Collection) Add(vertices [][2]float64) ROI {
	r := ROI{Label: c.nextLabel, Vertices: vertices}
	c.ROIs = append(c.ROIs, r)
	c.nextLabel++
	return r
}

// Remove deletes the ROI with the given label and reports whether it
// existed. The label counter is not rewound: removed labels stay
// retired.
func (c *Collection) Remove(label int) bool {
	for i := range c.ROIs {
		if c.ROIs[i].Label == label {
			c.ROIs = append(c.ROIs[:i], c.ROIs[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the ROI with the given label.
func (c *Collection) Get(label int) (ROI, bool) {
	for _, r := range c.ROIs {
		if r.Label == label {
			return r, true
		}
	}
	return ROI{}, false
}

// Len returns the number of ROIs in the collection.
func (c *Collection) Len() int {
	return len(c.ROIs)
}

// NextLabel returns the label the next Add call will assign.
func (c *Collection) NextLabel() int {
	return c.nextLabel
}

// BackgroundLabel returns the lowest label in the collection, treated
// by convention as the background/reference channel, and false when the
// collection is empty. The convention is recording-level: the first ROI
// drawn is the background patch.
func (c *Collection) BackgroundLabel() (int, bool) {
	if len(c.ROIs) == 0 {
		return 0, false
	}
	lowest := c.ROIs[0].Label
	for _, r := range c.ROIs[1:] {
		if r.Label < lowest {
			lowest = r.Label
		}
	}
	return lowest, true
}

// Labels returns all labels in ascending order.
func (c *Collection) Labels() []int {
	labels := make([]int, 0, len(c.ROIs))
	for _, r := range c.ROIs {
		labels = append(labels, r.Label)
	}
	sort.Ints(labels)
	return labels
}

// CollectionFilename is the canonical ROI file name under a recording's
// processed/ directory.
const CollectionFilename = "rois.json"

// CollectionPath returns the canonical ROI file path for a recording.
func CollectionPath(recordingPath string) string {
	return filepath.Join(recordingPath, "processed", CollectionFilename)
}

// Save writes the collection as a JSON list of {label, vertices}
// objects. Vertex coordinates are stored as drawn, without rounding.
func (c *Collection) Save(path string) error {
	data, err := json.MarshalIndent(c.ROIs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding rois: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating roi directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing roi file: %w", err)
	}
	return nil
}

// LoadCollection reads a JSON ROI file. The label counter resumes past
// the highest stored label so future Add calls never reuse one.
func LoadCollection(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roi file: %w", err)
	}

	var rois []ROI
	if err := json.Unmarshal(data, &rois); err != nil {
		return nil, fmt.Errorf("parsing roi file %s: %w", path, err)
	}

	c := &Collection{ROIs: rois, nextLabel: 1}
	for _, r := range rois {
		if r.Label >= c.nextLabel {
			c.nextLabel = r.Label + 1
		}
	}
	return c, nil
}
