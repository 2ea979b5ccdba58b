// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores its input and output tensors during the forward
// pass and computes input gradients during the backward pass:
//   - AddOp, MulOp: elementwise with row/column broadcasting
//   - MatMulOp: matrix multiplication
//   - GatherOp: row lookup with scatter-add backward (embedding/pair select)
//   - SumRowsOp: per-row reduction
//   - SigmoidOp, TanhOp, ReLUOp: activations
//   - RsqrtShiftOp: 1/sqrt(x+eps), used by L2 row normalization
//   - MaskOp: multiplication by a constant mask (padding, dropout)
//   - BCEOp: mean binary cross-entropy over probabilities
//   - L2NormOp: raw L2 norm of a parameter tensor
package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	// A nil entry means no gradient flows to that input.
	Backward(outputGrad *tensor.Tensor) []*tensor.Tensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.Tensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.Tensor
}
