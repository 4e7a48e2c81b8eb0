package roi

import (
	"fmt"
	"math"
	"sort"
)

// Rasterize converts a polygon's vertex list into a boolean pixel mask
// of shape (height, width), returned as a flat row-major array.
//
// Interior pixels are filled with an even-odd scanline test against the
// closed polygon. In addition, every vertex itself is rounded to the
// nearest pixel, clamped into the frame independently per axis, and
// marked, so degenerate polygons with very few vertices still produce a
// usable mask. Filling the interior deviates from the vertex-only
// behavior of earlier analysis scripts, which left ROIs nearly empty;
// the fill is the intended reading of a drawn polygon.
func Rasterize(vertices [][2]float64, height, width int) ([]bool, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("mask extent must be positive, got %dx%d", height, width)
	}

	mask := make([]bool, height*width)
	if len(vertices) == 0 {
		return mask, nil
	}

	// Interior fill: for each pixel row, collect the columns where the
	// row's horizontal line crosses a polygon edge, then fill between
	// crossing pairs. Horizontal edges contribute no crossings.
	n := len(vertices)
	for r := 0; r < height; r++ {
		y := float64(r)
		var crossings []float64
		for i := 0; i < n; i++ {
			r1, c1 := vertices[i][0], vertices[i][1]
			r2, c2 := vertices[(i+1)%n][0], vertices[(i+1)%n][1]
			if (r1 > y) == (r2 > y) {
				continue
			}
			crossings = append(crossings, c1+(y-r1)*(c2-c1)/(r2-r1))
		}
		sort.Float64s(crossings)

		for i := 0; i+1 < len(crossings); i += 2 {
			start := int(math.Ceil(crossings[i]))
			end := int(math.Floor(crossings[i+1]))
			if start < 0 {
				start = 0
			}
			if end > width-1 {
				end = width - 1
			}
			for c := start; c <= end; c++ {
				mask[r*width+c] = true
			}
		}
	}

	// Vertex pixels, rounded and clamped per axis.
	for _, v := range vertices {
		r := clamp(int(math.Round(v[0])), 0, height-1)
		c := clamp(int(math.Round(v[1])), 0, width-1)
		mask[r*width+c] = true
	}

	return mask, nil
}

// MaskCount returns the number of selected pixels in a mask.
func MaskCount(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
