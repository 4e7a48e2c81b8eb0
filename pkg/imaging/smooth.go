package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// GaussianKernel builds a normalized 1-D Gaussian kernel of the given
// odd size. When sigma is zero or negative it is derived from the
// kernel size the same way OpenCV does, so a 5-tap kernel matches the
// default GaussianBlur(…, (5, 5), 0) used during acquisition
// preprocessing.
func GaussianKernel(size int, sigma float64) ([]float64, error) {
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("kernel size must be a positive odd number, got %d", size)
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	kernel := make([]float64, size)
	half := size / 2
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel, nil
}

// GaussianSmooth blurs a 2-D image with a separable Gaussian kernel,
// replicating edge pixels at the borders. The input is not modified.
func GaussianSmooth(data []float64, height, width, kernelSize int, sigma float64) ([]float64, error) {
	if len(data) != height*width {
		return nil, fmt.Errorf("image has %d pixels, want %dx%d", len(data), height, width)
	}
	kernel, err := GaussianKernel(kernelSize, sigma)
	if err != nil {
		return nil, err
	}
	half := kernelSize / 2

	// Horizontal pass.
	tmp := make([]float64, len(data))
	for r := 0; r < height; r++ {
		row := data[r*width : (r+1)*width]
		for c := 0; c < width; c++ {
			sum := 0.0
			for k, w := range kernel {
				cc := clampIndex(c+k-half, width)
				sum += w * row[cc]
			}
			tmp[r*width+c] = sum
		}
	}

	// Vertical pass.
	out := make([]float64, len(data))
	for c := 0; c < width; c++ {
		for r := 0; r < height; r++ {
			sum := 0.0
			for k, w := range kernel {
				rr := clampIndex(r+k-half, height)
				sum += w * tmp[rr*width+c]
			}
			out[r*width+c] = sum
		}
	}

	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
