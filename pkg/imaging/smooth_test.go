package imaging

import (
	"math"
	"testing"
)

func TestGaussianKernelNormalized(t *testing.T) {
	for _, size := range []int{1, 3, 5, 9} {
		kernel, err := GaussianKernel(size, 0)
		if err != nil {
			t.Fatalf("GaussianKernel(%d) failed: %v", size, err)
		}
		sum := 0.0
		for _, w := range kernel {
			sum += w
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("kernel of size %d sums to %v, want 1", size, sum)
		}
		for i := range kernel {
			if kernel[i] != kernel[size-1-i] {
				t.Errorf("kernel of size %d not symmetric at %d", size, i)
			}
		}
	}
}

func TestGaussianKernelRejectsEvenSize(t *testing.T) {
	for _, size := range []int{0, 2, 4, -1} {
		if _, err := GaussianKernel(size, 0); err == nil {
			t.Errorf("expected error for kernel size %d", size)
		}
	}
}

func TestGaussianSmoothConstantImage(t *testing.T) {
	const h, w = 6, 8
	data := make([]float64, h*w)
	for i := range data {
		data[i] = 42.0
	}

	out, err := GaussianSmooth(data, h, w, 5, 0)
	if err != nil {
		t.Fatalf("GaussianSmooth failed: %v", err)
	}
	for i, v := range out {
		if math.Abs(v-42.0) > 1e-9 {
			t.Errorf("pixel %d: got %v, want 42", i, v)
		}
	}
}

func TestGaussianSmoothPreservesInput(t *testing.T) {
	data := []float64{0, 0, 0, 0, 100, 0, 0, 0, 0}
	orig := append([]float64(nil), data...)

	out, err := GaussianSmooth(data, 3, 3, 3, 0)
	if err != nil {
		t.Fatalf("GaussianSmooth failed: %v", err)
	}
	for i := range data {
		if data[i] != orig[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
	if out[4] >= 100 {
		t.Errorf("center pixel should be spread out, got %v", out[4])
	}
	if out[0] <= 0 {
		t.Errorf("corner pixel should receive mass, got %v", out[0])
	}
}

func TestGaussianSmoothShapeMismatch(t *testing.T) {
	if _, err := GaussianSmooth(make([]float64, 5), 2, 3, 3, 0); err == nil {
		t.Error("expected error for mismatched pixel count")
	}
}
