// Package autodiff implements reverse-mode automatic differentiation for
// the sentence matching models.
//
// Engine executes forward kernels and records each operation on a
// GradientTape; Backward walks the tape in reverse applying the chain
// rule. One Engine is created per compiled step: training steps record,
// evaluation steps run with recording off and pay no tape cost.
//
// Usage:
//
//	g := autodiff.NewEngine()
//	g.Tape().StartRecording()
//	loss := g.BCE(scores, labels)
//	grads := g.Backward(loss)
package autodiff

import (
	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff/ops"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Engine computes forward passes and records them for backpropagation.
type Engine struct {
	tape *GradientTape
}

// NewEngine creates an engine with a fresh, non-recording tape.
func NewEngine() *Engine {
	return &Engine{tape: NewGradientTape()}
}

// Tape returns the gradient tape for manual control.
func (g *Engine) Tape() *GradientTape {
	return g.tape
}

// Add computes a + b. The second operand may broadcast as a row [1, m]
// or column [n, 1] vector.
func (g *Engine) Add(a, b *tensor.Tensor) *tensor.Tensor {
	op := ops.Add(a, b)
	g.tape.Record(op)
	return op.Output()
}

// Mul computes the elementwise product a * b with the same broadcasting
// rules as Add.
func (g *Engine) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	op := ops.Mul(a, b)
	g.tape.Record(op)
	return op.Output()
}

// MatMul computes the matrix product a @ b.
func (g *Engine) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	op := ops.MatMul(a, b)
	g.tape.Record(op)
	return op.Output()
}

// Scale computes s * x for a constant scalar s.
func (g *Engine) Scale(x *tensor.Tensor, s float64) *tensor.Tensor {
	op := ops.Scale(x, s)
	g.tape.Record(op)
	return op.Output()
}

// Gather selects rows ids of input: output[i] = input[ids[i]].
func (g *Engine) Gather(input *tensor.Tensor, ids []int) *tensor.Tensor {
	op := ops.Gather(input, ids)
	g.tape.Record(op)
	return op.Output()
}

// SumRows reduces [n, m] to [n, 1] by summing each row.
func (g *Engine) SumRows(a *tensor.Tensor) *tensor.Tensor {
	op := ops.SumRows(a)
	g.tape.Record(op)
	return op.Output()
}

// Sigmoid applies σ(x) elementwise.
func (g *Engine) Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	op := ops.Sigmoid(x)
	g.tape.Record(op)
	return op.Output()
}

// Tanh applies tanh(x) elementwise.
func (g *Engine) Tanh(x *tensor.Tensor) *tensor.Tensor {
	op := ops.Tanh(x)
	g.tape.Record(op)
	return op.Output()
}

// ReLU applies max(0, x) elementwise.
func (g *Engine) ReLU(x *tensor.Tensor) *tensor.Tensor {
	op := ops.ReLU(x)
	g.tape.Record(op)
	return op.Output()
}

// RsqrtShift computes 1/sqrt(x+eps) elementwise.
func (g *Engine) RsqrtShift(x *tensor.Tensor, eps float64) *tensor.Tensor {
	op := ops.RsqrtShift(x, eps)
	g.tape.Record(op)
	return op.Output()
}

// Mask multiplies x by a constant mask (no gradient to the mask).
func (g *Engine) Mask(x, mask *tensor.Tensor) *tensor.Tensor {
	op := ops.Mask(x, mask)
	g.tape.Record(op)
	return op.Output()
}

// BCE computes the mean binary cross-entropy of probabilities against
// constant labels, returning a scalar tensor.
func (g *Engine) BCE(scores, labels *tensor.Tensor) *tensor.Tensor {
	op := ops.BCE(scores, labels)
	g.tape.Record(op)
	return op.Output()
}

// L2Norm computes the raw L2 norm of x as a scalar tensor.
func (g *Engine) L2Norm(x *tensor.Tensor) *tensor.Tensor {
	op := ops.L2Norm(x)
	g.tape.Record(op)
	return op.Output()
}

// Backward computes gradients of a scalar output with respect to every
// tensor on the tape, seeding the output gradient with 1.
func (g *Engine) Backward(output *tensor.Tensor) map[*tensor.Tensor]*tensor.Tensor {
	seed := tensor.Ones(output.Shape())
	return g.tape.Backward(output, seed)
}
