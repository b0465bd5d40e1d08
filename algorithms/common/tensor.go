package common

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when an array does not have the expected shape.
var ErrShape = errors.New("invalid shape")

// ShapeError describes a rejected array shape
type ShapeError struct {
	Shape  []int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v %v: %s", ErrShape, e.Shape, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// Tensor is a dense 4-D array laid out as (batch, height, width, channels).
// For spectrograms height is the frequency axis and width the time axis.
type Tensor struct {
	shape [4]int
	data  []float64
}

// NewTensor allocates a zeroed tensor
func NewTensor(batch, height, width, channels int) (*Tensor, error) {
	shape := [4]int{batch, height, width, channels}
	for _, d := range shape {
		if d <= 0 {
			return nil, &ShapeError{Shape: shape[:], Reason: "all dimensions must be positive"}
		}
	}
	return &Tensor{
		shape: shape,
		data:  make([]float64, batch*height*width*channels),
	}, nil
}

// FromSpectrogram promotes a (frequency, time) array to (1, frequency, time, 1).
// The input is copied.
func FromSpectrogram(spec [][]float64) (*Tensor, error) {
	if len(spec) == 0 {
		return nil, &ShapeError{Shape: []int{0}, Reason: "spectrogram has no frequency bins"}
	}
	frames := len(spec[0])
	if frames == 0 {
		return nil, &ShapeError{Shape: []int{len(spec), 0}, Reason: "spectrogram has no time frames"}
	}

	t, err := NewTensor(1, len(spec), frames, 1)
	if err != nil {
		return nil, err
	}
	for f, row := range spec {
		if len(row) != frames {
			return nil, &ShapeError{
				Shape:  []int{len(spec), frames},
				Reason: fmt.Sprintf("row %d has %d frames", f, len(row)),
			}
		}
		copy(t.data[f*frames:(f+1)*frames], row)
	}
	return t, nil
}

// FromMatrix promotes a gonum matrix (rows = frequency bins) to (1, rows, cols, 1).
func FromMatrix(m mat.Matrix) (*Tensor, error) {
	if m == nil {
		return nil, &ShapeError{Shape: []int{0, 0}, Reason: "matrix is nil"}
	}
	rows, cols := m.Dims()
	t, err := NewTensor(1, rows, cols, 1)
	if err != nil {
		return nil, &ShapeError{Shape: []int{rows, cols}, Reason: "matrix must be non-empty"}
	}
	for i := range rows {
		for j := range cols {
			t.data[i*cols+j] = m.At(i, j)
		}
	}
	return t, nil
}

// Shape returns (batch, height, width, channels)
func (t *Tensor) Shape() [4]int {
	return t.shape
}

// Batch, Height, Width and Channels return single dimensions
func (t *Tensor) Batch() int    { return t.shape[0] }
func (t *Tensor) Height() int   { return t.shape[1] }
func (t *Tensor) Width() int    { return t.shape[2] }
func (t *Tensor) Channels() int { return t.shape[3] }

// Data exposes the backing slice in NHWC order
func (t *Tensor) Data() []float64 {
	return t.data
}

func (t *Tensor) index(b, y, x, c int) int {
	return ((b*t.shape[1]+y)*t.shape[2]+x)*t.shape[3] + c
}

// At returns the element at (b, y, x, c)
func (t *Tensor) At(b, y, x, c int) float64 {
	return t.data[t.index(b, y, x, c)]
}

// Set stores v at (b, y, x, c)
func (t *Tensor) Set(b, y, x, c int, v float64) {
	t.data[t.index(b, y, x, c)] = v
}

// Clone returns a deep copy
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape, data: data}
}

// SameShape reports whether both tensors have identical dimensions
func (t *Tensor) SameShape(o *Tensor) bool {
	return o != nil && t.shape == o.shape
}

// Equal reports whether both tensors have the same shape and elements
func (t *Tensor) Equal(o *Tensor) bool {
	return t.SameShape(o) && floats.Equal(t.data, o.data)
}

// Multiply returns the elementwise product t * mask
func (t *Tensor) Multiply(mask *Tensor) (*Tensor, error) {
	if !t.SameShape(mask) {
		var got []int
		if mask != nil {
			got = mask.shape[:]
		}
		return nil, &ShapeError{Shape: got, Reason: fmt.Sprintf("mask does not match %v", t.shape)}
	}
	out := t.Clone()
	floats.Mul(out.data, mask.data)
	return out, nil
}

// Spectrogram projects one (batch, channel) slice back to a 2-D array,
// equivalent to indexing [b, :, :, c].
func (t *Tensor) Spectrogram(b, c int) [][]float64 {
	out := make([][]float64, t.shape[1])
	for y := range out {
		row := make([]float64, t.shape[2])
		for x := range row {
			row[x] = t.At(b, y, x, c)
		}
		out[y] = row
	}
	return out
}

// Matrix is the gonum counterpart of Spectrogram
func (t *Tensor) Matrix(b, c int) *mat.Dense {
	m := mat.NewDense(t.shape[1], t.shape[2], nil)
	for y := range t.shape[1] {
		for x := range t.shape[2] {
			m.Set(y, x, t.At(b, y, x, c))
		}
	}
	return m
}
