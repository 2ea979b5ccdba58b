package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// MaskOp multiplies a tensor by a constant mask: output = x * mask.
//
// The mask is not differentiated; gradient flows only to x. This covers
// padding masks (which are functions of token ids, not parameters) and
// dropout masks. The mask broadcasts like the second operand of Mul.
type MaskOp struct {
	inputs []*tensor.Tensor // [x]
	output *tensor.Tensor
	mask   *tensor.Tensor
	kind   broadcastKind
}

// Mask computes x * mask and returns the operation for recording.
func Mask(x, mask *tensor.Tensor) *MaskOp {
	kind := broadcastOf(x, mask)
	out := applyBroadcast(x, mask, kind, func(a, m float64) float64 { return a * m })
	return &MaskOp{inputs: []*tensor.Tensor{x}, output: out, mask: mask, kind: kind}
}

// Backward applies the same mask to the output gradient.
func (op *MaskOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := applyBroadcast(outputGrad, op.mask, op.kind, func(g, m float64) float64 { return g * m })
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor [x].
func (op *MaskOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns x * mask.
func (op *MaskOp) Output() *tensor.Tensor { return op.output }
