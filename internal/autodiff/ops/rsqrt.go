package ops

import (
	"math"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// RsqrtShiftOp computes y = 1 / sqrt(x + eps) elementwise.
//
// The shift keeps the operation defined at x = 0, which is exactly the
// all-pad pooling case and the zero-vector normalization case.
//
// Backward: dy/dx = -0.5 * y³.
type RsqrtShiftOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// RsqrtShift computes 1/sqrt(x+eps) and returns the operation for recording.
func RsqrtShift(x *tensor.Tensor, eps float64) *RsqrtShiftOp {
	out := tensor.New(x.Shape())
	xData, outData := x.Data(), out.Data()
	for i, v := range xData {
		outData[i] = 1.0 / math.Sqrt(v+eps)
	}
	return &RsqrtShiftOp{inputs: []*tensor.Tensor{x}, output: out}
}

// Backward computes the input gradient.
func (op *RsqrtShiftOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.New(op.inputs[0].Shape())
	gradData, gData, yData := grad.Data(), outputGrad.Data(), op.output.Data()
	for i := range gradData {
		y := yData[i]
		gradData[i] = gData[i] * (-0.5) * y * y * y
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *RsqrtShiftOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns 1/sqrt(x+eps).
func (op *RsqrtShiftOp) Output() *tensor.Tensor { return op.output }
