package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1.0)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, value float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = rng.NormFloat64()
	}
	return t
}

// Xavier creates a tensor initialized with Xavier/Glorot uniform values.
//
// Values are drawn from U(-b, b) with b = sqrt(6 / (fanIn + fanOut)),
// which keeps activation variance stable across stacked layers.
func Xavier(fanIn, fanOut int, shape Shape, rng *rand.Rand) *Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := New(shape)
	for i := range t.data {
		t.data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return t
}
