package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// AddOp represents elementwise addition: output = a + b.
//
// b may broadcast as a row or column vector. Backward reduces the
// gradient back to b's shape by summation over the broadcast axis.
type AddOp struct {
	inputs []*tensor.Tensor // [a, b]
	output *tensor.Tensor
	kind   broadcastKind
}

// Add computes a + b and returns the operation for recording.
func Add(a, b *tensor.Tensor) *AddOp {
	kind := broadcastOf(a, b)
	out := applyBroadcast(a, b, kind, func(x, y float64) float64 { return x + y })
	return &AddOp{inputs: []*tensor.Tensor{a, b}, output: out, kind: kind}
}

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	gradA := outputGrad.Clone()
	gradB := reduceToShape(outputGrad, op.kind, op.inputs[1].Shape())
	if op.kind == broadcastNone {
		gradB = outputGrad.Clone()
	}
	return []*tensor.Tensor{gradA, gradB}
}

// Inputs returns the input tensors [a, b].
func (op *AddOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a + b.
func (op *AddOp) Output() *tensor.Tensor { return op.output }
