package ops

import (
	"fmt"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Broadcast conventions: the second operand of Add and Mul may be a row
// vector [1, m] or a column vector [n, 1] against a matrix [n, m].
// Anything else must match the first operand's shape exactly.

type broadcastKind int

const (
	broadcastNone broadcastKind = iota
	broadcastRow
	broadcastCol
)

// broadcastOf classifies how b broadcasts against a.
func broadcastOf(a, b *tensor.Tensor) broadcastKind {
	if a.Shape().Equal(b.Shape()) {
		return broadcastNone
	}
	if b.Rows() == 1 && b.Cols() == a.Cols() {
		return broadcastRow
	}
	if b.Cols() == 1 && b.Rows() == a.Rows() {
		return broadcastCol
	}
	panic(fmt.Sprintf("ops: shapes not compatible for broadcasting: %v vs %v", a.Shape(), b.Shape()))
}

// reduceToShape sums grad down to the broadcast operand's shape.
func reduceToShape(grad *tensor.Tensor, kind broadcastKind, shape tensor.Shape) *tensor.Tensor {
	switch kind {
	case broadcastNone:
		return grad
	case broadcastRow:
		out := tensor.New(shape)
		n, m := grad.Rows(), grad.Cols()
		outData, gradData := out.Data(), grad.Data()
		for i := 0; i < n; i++ {
			row := gradData[i*m : (i+1)*m]
			for j := 0; j < m; j++ {
				outData[j] += row[j]
			}
		}
		return out
	case broadcastCol:
		out := tensor.New(shape)
		n, m := grad.Rows(), grad.Cols()
		outData, gradData := out.Data(), grad.Data()
		for i := 0; i < n; i++ {
			row := gradData[i*m : (i+1)*m]
			sum := 0.0
			for j := 0; j < m; j++ {
				sum += row[j]
			}
			outData[i] += sum
		}
		return out
	}
	return grad
}

// applyBroadcast computes out[i,j] = f(a[i,j], b[broadcast(i,j)]).
func applyBroadcast(a, b *tensor.Tensor, kind broadcastKind, f func(x, y float64) float64) *tensor.Tensor {
	out := tensor.New(a.Shape())
	n, m := a.Rows(), a.Cols()
	aData, bData, outData := a.Data(), b.Data(), out.Data()
	switch kind {
	case broadcastNone:
		for i := range aData {
			outData[i] = f(aData[i], bData[i])
		}
	case broadcastRow:
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				outData[i*m+j] = f(aData[i*m+j], bData[j])
			}
		}
	case broadcastCol:
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				outData[i*m+j] = f(aData[i*m+j], bData[i])
			}
		}
	}
	return out
}
