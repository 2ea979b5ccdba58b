// Package tensor implements dense float64 tensors for the sentence
// matching models.
//
// The package provides:
//   - Shape: dimension arithmetic
//   - Tensor: a dense row-major tensor (vectors and matrices)
//   - Creation helpers: Zeros, Ones, Full, FromSlice, Randn, Xavier
//   - Compute kernels used by the autodiff engine (MatMul via gonum)
//
// Everything runs on a single CPU execution path. The training protocol
// is single-threaded and synchronous, so there is no backend dispatch:
// kernels operate directly on the backing slices.
package tensor

import "fmt"

// Tensor is a dense row-major tensor of float64 values.
//
// Rank is 1 (vector) or 2 (matrix) everywhere in this system. Sequences
// are represented outside this package as slices of matrices, one matrix
// per time step.
type Tensor struct {
	data  []float64
	shape Shape
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return &Tensor{
		data:  make([]float64, shape.NumElements()),
		shape: shape.Clone(),
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Rows returns the leading dimension (1 for vectors).
func (t *Tensor) Rows() int {
	if len(t.shape) < 2 {
		return 1
	}
	return t.shape[0]
}

// Cols returns the trailing dimension.
func (t *Tensor) Cols() int {
	if len(t.shape) == 0 {
		return 1
	}
	return t.shape[len(t.shape)-1]
}

// Data returns the backing slice (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at (row, col) of a matrix.
func (t *Tensor) At(row, col int) float64 {
	return t.data[row*t.Cols()+col]
}

// Set sets the element at (row, col) of a matrix.
func (t *Tensor) Set(row, col int, v float64) {
	t.data[row*t.Cols()+col] = v
}

// Item returns the scalar value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("Item() only works for scalar tensors, got shape %v", t.shape))
	}
	return t.data[0]
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := New(t.shape)
	copy(c.data, t.data)
	return c
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
