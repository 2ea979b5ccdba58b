package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Compute kernels shared by the autodiff engine. Forward and backward
// passes both go through these so that numeric behavior is identical.

// dense wraps a matrix-shaped tensor as a gonum Dense without copying.
func dense(t *Tensor) *mat.Dense {
	return mat.NewDense(t.Rows(), t.Cols(), t.data)
}

// MatMul computes a @ b for matrices [n, k] @ [k, m] -> [n, m].
func MatMul(a, b *Tensor) *Tensor {
	if a.Cols() != b.Rows() {
		panic(fmt.Sprintf("MatMul: inner dimensions differ: %v @ %v", a.Shape(), b.Shape()))
	}
	out := New(Shape{a.Rows(), b.Cols()})
	dense(out).Mul(dense(a), dense(b))
	return out
}

// MatMulAT computes aᵀ @ b for matrices [k, n] and [k, m] -> [n, m].
func MatMulAT(a, b *Tensor) *Tensor {
	if a.Rows() != b.Rows() {
		panic(fmt.Sprintf("MatMulAT: leading dimensions differ: %v, %v", a.Shape(), b.Shape()))
	}
	out := New(Shape{a.Cols(), b.Cols()})
	dense(out).Mul(dense(a).T(), dense(b))
	return out
}

// MatMulBT computes a @ bᵀ for matrices [n, k] and [m, k] -> [n, m].
func MatMulBT(a, b *Tensor) *Tensor {
	if a.Cols() != b.Cols() {
		panic(fmt.Sprintf("MatMulBT: trailing dimensions differ: %v, %v", a.Shape(), b.Shape()))
	}
	out := New(Shape{a.Rows(), b.Rows()})
	dense(out).Mul(dense(a), dense(b).T())
	return out
}

// AddInto accumulates src into dst elementwise. Shapes must match in
// element count.
func AddInto(dst, src *Tensor) {
	if len(dst.data) != len(src.data) {
		panic(fmt.Sprintf("AddInto: size mismatch: %v vs %v", dst.Shape(), src.Shape()))
	}
	floats.Add(dst.data, src.data)
}

// ScaleInto multiplies dst by a scalar in place.
func ScaleInto(dst *Tensor, s float64) {
	floats.Scale(s, dst.data)
}

// AxpyInto computes dst += alpha * src in place.
func AxpyInto(dst *Tensor, alpha float64, src *Tensor) {
	if len(dst.data) != len(src.data) {
		panic(fmt.Sprintf("AxpyInto: size mismatch: %v vs %v", dst.Shape(), src.Shape()))
	}
	floats.AddScaled(dst.data, alpha, src.data)
}

// Dot returns the inner product of two equally sized tensors.
func Dot(a, b *Tensor) float64 {
	if len(a.data) != len(b.data) {
		panic(fmt.Sprintf("Dot: size mismatch: %v vs %v", a.Shape(), b.Shape()))
	}
	return floats.Dot(a.data, b.data)
}

// Norm2 returns the L2 norm of the tensor's elements.
func Norm2(t *Tensor) float64 {
	return floats.Norm(t.data, 2)
}
