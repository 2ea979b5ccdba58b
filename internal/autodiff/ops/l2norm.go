package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// l2Eps guards the backward division for an all-zero parameter.
const l2Eps = 1e-12

// L2NormOp computes the raw L2 norm of a tensor: output = sqrt(Σ x²).
//
// The regularization term of the cost is the sum of raw parameter norms
// scaled by l2_reg (not squared norms). Backward: dL/dx = g * x / ‖x‖.
type L2NormOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor // scalar [1]
}

// L2Norm computes the norm and returns the operation for recording.
func L2Norm(x *tensor.Tensor) *L2NormOp {
	out := tensor.New(tensor.Shape{1})
	out.Data()[0] = tensor.Norm2(x)
	return &L2NormOp{inputs: []*tensor.Tensor{x}, output: out}
}

// Backward computes the input gradient.
func (op *L2NormOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	x := op.inputs[0]
	norm := op.output.Data()[0]
	if norm < l2Eps {
		norm = l2Eps
	}
	scale := outputGrad.Data()[0] / norm
	grad := tensor.New(x.Shape())
	gradData, xData := grad.Data(), x.Data()
	for i := range gradData {
		gradData[i] = scale * xData[i]
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *L2NormOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the scalar norm.
func (op *L2NormOp) Output() *tensor.Tensor { return op.output }
