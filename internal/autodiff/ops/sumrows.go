package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// SumRowsOp reduces a matrix [n, m] to a column [n, 1] by summing each row.
//
// Backward pass broadcasts the column gradient back across each row.
type SumRowsOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// SumRows computes per-row sums and returns the operation for recording.
func SumRows(a *tensor.Tensor) *SumRowsOp {
	n, m := a.Rows(), a.Cols()
	out := tensor.New(tensor.Shape{n, 1})
	aData, outData := a.Data(), out.Data()
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < m; j++ {
			sum += aData[i*m+j]
		}
		outData[i] = sum
	}
	return &SumRowsOp{inputs: []*tensor.Tensor{a}, output: out}
}

// Backward broadcasts the per-row gradient across columns.
func (op *SumRowsOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a := op.inputs[0]
	n, m := a.Rows(), a.Cols()
	grad := tensor.New(a.Shape())
	gradData, outData := grad.Data(), outputGrad.Data()
	for i := 0; i < n; i++ {
		g := outData[i]
		for j := 0; j < m; j++ {
			gradData[i*m+j] = g
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *SumRowsOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the [n, 1] column of row sums.
func (op *SumRowsOp) Output() *tensor.Tensor { return op.output }
