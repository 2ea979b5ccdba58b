package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// GRNN is a gated recurrent layer without a reset gate: a single update
// gate interpolates between the carried state and the candidate.
//
// Per time step:
//
//	z = σ(x_t Wz + h Uz + bz)
//	c = act(x_t Wh + h Uh + bh)
//	h = h + z ⊙ (c - h)
type GRNN struct {
	nIn, nOut int
	act       Activation

	wz, uz, bz *Parameter
	wh, uh, bh *Parameter
}

// NewGRNN creates a GRNN layer with Xavier-initialized weights and zero
// biases.
func NewGRNN(nIn, nOut int, act Activation, rng *rand.Rand) *GRNN {
	gate := func(w, u, b string) (*Parameter, *Parameter, *Parameter) {
		return NewParameter(w, tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng)),
			NewParameter(u, tensor.Xavier(nOut, nOut, tensor.Shape{nOut, nOut}, rng)),
			NewParameter(b, tensor.Zeros(tensor.Shape{1, nOut}))
	}
	l := &GRNN{nIn: nIn, nOut: nOut, act: act}
	l.wz, l.uz, l.bz = gate("grnn.wz", "grnn.uz", "grnn.bz")
	l.wh, l.uh, l.bh = gate("grnn.wh", "grnn.uh", "grnn.bh")
	return l
}

// ForwardAll encodes the sequence, preserving its temporal length.
func (l *GRNN) ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	n := seq[0].Rows()
	h := tensor.Zeros(tensor.Shape{n, l.nOut})

	out := make([]*tensor.Tensor, 0, len(seq))
	for _, x := range seq {
		z := g.Sigmoid(g.Add(g.Add(g.MatMul(x, l.wz.Tensor()), g.MatMul(h, l.uz.Tensor())), l.bz.Tensor()))
		cand := l.act(g, g.Add(g.Add(g.MatMul(x, l.wh.Tensor()), g.MatMul(h, l.uh.Tensor())), l.bh.Tensor()))
		h = g.Add(h, g.Mul(z, g.Add(cand, g.Scale(h, -1))))
		out = append(out, h)
	}
	return out
}

// Params returns the gate parameters in a fixed order.
func (l *GRNN) Params() []*Parameter {
	return []*Parameter{
		l.wz, l.uz, l.bz,
		l.wh, l.uh, l.bh,
	}
}
