package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// MulOp represents elementwise multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a (reduced over broadcast axes)
type MulOp struct {
	inputs []*tensor.Tensor // [a, b]
	output *tensor.Tensor
	kind   broadcastKind
}

// Mul computes a * b and returns the operation for recording.
func Mul(a, b *tensor.Tensor) *MulOp {
	kind := broadcastOf(a, b)
	out := applyBroadcast(a, b, kind, func(x, y float64) float64 { return x * y })
	return &MulOp{inputs: []*tensor.Tensor{a, b}, output: out, kind: kind}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]

	// grad_a = outputGrad * b (b broadcasts the same way as forward)
	gradA := applyBroadcast(outputGrad, b, op.kind, func(g, y float64) float64 { return g * y })

	// grad_b = outputGrad * a, reduced to b's shape
	full := tensor.New(a.Shape())
	fullData, gradData, aData := full.Data(), outputGrad.Data(), a.Data()
	for i := range fullData {
		fullData[i] = gradData[i] * aData[i]
	}
	gradB := reduceToShape(full, op.kind, b.Shape())
	return []*tensor.Tensor{gradA, gradB}
}

// Inputs returns the input tensors [a, b].
func (op *MulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a * b.
func (op *MulOp) Output() *tensor.Tensor { return op.output }
