// Package imaging loads raw calcium imaging stacks and reduces them to
// 2-D projections. A stack is a time-ordered sequence of grayscale
// frames stored as a flat float64 array; all spatial reductions operate
// on that representation.
package imaging

import (
	"errors"
	"fmt"
)

// Errors returned by stack location and loading.
var (
	ErrNoStackFound      = errors.New("no stack file found")
	ErrInvalidStackShape = errors.New("invalid stack shape")
)

// Stack is a 3-D imaging stack indexed (frame, row, col). Data is laid
// out in row-major order: frame index varies slowest, column fastest.
// Pixel values keep the numeric range of the source file (e.g. 0-255
// for 8-bit TIFF input). A Stack is read-only once loaded.
type Stack struct {
	Data   []float64
	Frames int
	Height int
	Width  int
}

// NewStack allocates a zeroed stack with the given dimensions.
func NewStack(frames, height, width int) (*Stack, error) {
	if frames <= 0 || height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidStackShape, frames, height, width)
	}
	return &Stack{
		Data:   make([]float64, frames*height*width),
		Frames: frames,
		Height: height,
		Width:  width,
	}, nil
}

// At returns the pixel value at (frame, row, col). Bounds are not
// checked; callers iterate within the stack's dimensions.
func (s *Stack) At(frame, row, col int) float64 {
	return s.Data[frame*s.Height*s.Width+row*s.Width+col]
}

// Set stores the pixel value at (frame, row, col).
func (s *Stack) Set(frame, row, col int, v float64) {
	s.Data[frame*s.Height*s.Width+row*s.Width+col] = v
}

// Frame returns the flat pixel data of a single frame as a view into
// the stack's backing array.
func (s *Stack) Frame(frame int) []float64 {
	size := s.Height * s.Width
	return s.Data[frame*size : (frame+1)*size]
}

// FrameSize returns the number of pixels per frame.
func (s *Stack) FrameSize() int {
	return s.Height * s.Width
}
