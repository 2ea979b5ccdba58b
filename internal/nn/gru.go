package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// GRU is a gated recurrent unit encoder layer.
//
// Per time step:
//
//	z = σ(x_t Wz + h Uz + bz)
//	r = σ(x_t Wr + h Ur + br)
//	c = act(x_t Wh + (r ⊙ h) Uh + bh)
//	h = h + z ⊙ (c - h)
type GRU struct {
	nIn, nOut int
	act       Activation

	wz, uz, bz *Parameter
	wr, ur, br *Parameter
	wh, uh, bh *Parameter
}

// NewGRU creates a GRU layer with Xavier-initialized weights and zero
// biases.
func NewGRU(nIn, nOut int, act Activation, rng *rand.Rand) *GRU {
	gate := func(w, u, b string) (*Parameter, *Parameter, *Parameter) {
		return NewParameter(w, tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng)),
			NewParameter(u, tensor.Xavier(nOut, nOut, tensor.Shape{nOut, nOut}, rng)),
			NewParameter(b, tensor.Zeros(tensor.Shape{1, nOut}))
	}
	l := &GRU{nIn: nIn, nOut: nOut, act: act}
	l.wz, l.uz, l.bz = gate("gru.wz", "gru.uz", "gru.bz")
	l.wr, l.ur, l.br = gate("gru.wr", "gru.ur", "gru.br")
	l.wh, l.uh, l.bh = gate("gru.wh", "gru.uh", "gru.bh")
	return l
}

// ForwardAll encodes the sequence, preserving its temporal length.
func (l *GRU) ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	n := seq[0].Rows()
	h := tensor.Zeros(tensor.Shape{n, l.nOut})

	out := make([]*tensor.Tensor, 0, len(seq))
	for _, x := range seq {
		z := g.Sigmoid(g.Add(g.Add(g.MatMul(x, l.wz.Tensor()), g.MatMul(h, l.uz.Tensor())), l.bz.Tensor()))
		r := g.Sigmoid(g.Add(g.Add(g.MatMul(x, l.wr.Tensor()), g.MatMul(h, l.ur.Tensor())), l.br.Tensor()))
		cand := l.act(g, g.Add(g.Add(g.MatMul(x, l.wh.Tensor()), g.MatMul(g.Mul(r, h), l.uh.Tensor())), l.bh.Tensor()))
		// h + z ⊙ (cand - h)
		h = g.Add(h, g.Mul(z, g.Add(cand, g.Scale(h, -1))))
		out = append(out, h)
	}
	return out
}

// Params returns the gate parameters in a fixed order.
func (l *GRU) Params() []*Parameter {
	return []*Parameter{
		l.wz, l.uz, l.bz,
		l.wr, l.ur, l.br,
		l.wh, l.uh, l.bh,
	}
}
