package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// MatMulOp represents matrix multiplication: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = grad @ Bᵀ
//   - d(A@B)/dB = Aᵀ @ grad
type MatMulOp struct {
	inputs []*tensor.Tensor // [a, b]
	output *tensor.Tensor
}

// MatMul computes a @ b and returns the operation for recording.
func MatMul(a, b *tensor.Tensor) *MatMulOp {
	return &MatMulOp{
		inputs: []*tensor.Tensor{a, b},
		output: tensor.MatMul(a, b),
	}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := tensor.MatMulBT(outputGrad, b)
	gradB := tensor.MatMulAT(a, outputGrad)
	return []*tensor.Tensor{gradA, gradB}
}

// Inputs returns the input tensors [a, b].
func (op *MatMulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a @ b.
func (op *MatMulOp) Output() *tensor.Tensor { return op.output }
