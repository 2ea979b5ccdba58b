package ops

import (
	"math"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// SigmoidOp applies σ(x) = 1 / (1 + exp(-x)) elementwise.
//
// Backward uses the saved output: dσ/dx = σ(x) * (1 - σ(x)).
type SigmoidOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// Sigmoid computes the activation and returns the operation for recording.
func Sigmoid(x *tensor.Tensor) *SigmoidOp {
	out := tensor.New(x.Shape())
	xData, outData := x.Data(), out.Data()
	for i, v := range xData {
		outData[i] = 1.0 / (1.0 + math.Exp(-v))
	}
	return &SigmoidOp{inputs: []*tensor.Tensor{x}, output: out}
}

// Backward computes the input gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.New(op.inputs[0].Shape())
	gradData, gData, sData := grad.Data(), outputGrad.Data(), op.output.Data()
	for i := range gradData {
		s := sData[i]
		gradData[i] = gData[i] * s * (1.0 - s)
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *SigmoidOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns σ(x).
func (op *SigmoidOp) Output() *tensor.Tensor { return op.output }

// TanhOp applies tanh(x) elementwise.
//
// Backward uses the saved output: d(tanh)/dx = 1 - tanh²(x).
type TanhOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// Tanh computes the activation and returns the operation for recording.
func Tanh(x *tensor.Tensor) *TanhOp {
	out := tensor.New(x.Shape())
	xData, outData := x.Data(), out.Data()
	for i, v := range xData {
		outData[i] = math.Tanh(v)
	}
	return &TanhOp{inputs: []*tensor.Tensor{x}, output: out}
}

// Backward computes the input gradient for tanh.
func (op *TanhOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.New(op.inputs[0].Shape())
	gradData, gData, tData := grad.Data(), outputGrad.Data(), op.output.Data()
	for i := range gradData {
		th := tData[i]
		gradData[i] = gData[i] * (1.0 - th*th)
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *TanhOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns tanh(x).
func (op *TanhOp) Output() *tensor.Tensor { return op.output }

// ReLUOp applies max(0, x) elementwise.
type ReLUOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// ReLU computes the activation and returns the operation for recording.
func ReLU(x *tensor.Tensor) *ReLUOp {
	out := tensor.New(x.Shape())
	xData, outData := x.Data(), out.Data()
	for i, v := range xData {
		if v > 0 {
			outData[i] = v
		}
	}
	return &ReLUOp{inputs: []*tensor.Tensor{x}, output: out}
}

// Backward passes gradient only where the input was positive.
func (op *ReLUOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.New(op.inputs[0].Shape())
	gradData, gData, xData := grad.Data(), outputGrad.Data(), op.inputs[0].Data()
	for i := range gradData {
		if xData[i] > 0 {
			gradData[i] = gData[i]
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns max(0, x).
func (op *ReLUOp) Output() *tensor.Tensor { return op.output }
