package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// ScaleOp multiplies a tensor by a constant scalar: output = s * x.
type ScaleOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	s      float64
}

// Scale computes s * x and returns the operation for recording.
func Scale(x *tensor.Tensor, s float64) *ScaleOp {
	out := x.Clone()
	tensor.ScaleInto(out, s)
	return &ScaleOp{inputs: []*tensor.Tensor{x}, output: out, s: s}
}

// Backward scales the output gradient by the same constant.
func (op *ScaleOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := outputGrad.Clone()
	tensor.ScaleInto(grad, op.s)
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *ScaleOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns s * x.
func (op *ScaleOp) Output() *tensor.Tensor { return op.output }
