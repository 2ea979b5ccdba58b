package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// LSTM is a standard long short-term memory encoder layer.
//
// Per time step, with input x_t [n_sents, n_in] and state h, c:
//
//	i = σ(x_t Wi + h Ui + bi)
//	f = σ(x_t Wf + h Uf + bf)
//	o = σ(x_t Wo + h Uo + bo)
//	c = f ⊙ c + i ⊙ act(x_t Wc + h Uc + bc)
//	h = o ⊙ act(c)
type LSTM struct {
	nIn, nOut int
	act       Activation

	wi, ui, bi *Parameter
	wf, uf, bf *Parameter
	wo, uo, bo *Parameter
	wc, uc, bc *Parameter
}

// NewLSTM creates an LSTM layer with Xavier-initialized weights and zero
// biases.
func NewLSTM(nIn, nOut int, act Activation, rng *rand.Rand) *LSTM {
	gate := func(w, u, b string) (*Parameter, *Parameter, *Parameter) {
		return NewParameter(w, tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng)),
			NewParameter(u, tensor.Xavier(nOut, nOut, tensor.Shape{nOut, nOut}, rng)),
			NewParameter(b, tensor.Zeros(tensor.Shape{1, nOut}))
	}
	l := &LSTM{nIn: nIn, nOut: nOut, act: act}
	l.wi, l.ui, l.bi = gate("lstm.wi", "lstm.ui", "lstm.bi")
	l.wf, l.uf, l.bf = gate("lstm.wf", "lstm.uf", "lstm.bf")
	l.wo, l.uo, l.bo = gate("lstm.wo", "lstm.uo", "lstm.bo")
	l.wc, l.uc, l.bc = gate("lstm.wc", "lstm.uc", "lstm.bc")
	return l
}

// ForwardAll encodes the sequence, preserving its temporal length.
func (l *LSTM) ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	n := seq[0].Rows()
	h := tensor.Zeros(tensor.Shape{n, l.nOut})
	c := tensor.Zeros(tensor.Shape{n, l.nOut})

	out := make([]*tensor.Tensor, 0, len(seq))
	for _, x := range seq {
		gateI := g.Sigmoid(g.Add(g.Add(g.MatMul(x, l.wi.Tensor()), g.MatMul(h, l.ui.Tensor())), l.bi.Tensor()))
		gateF := g.Sigmoid(g.Add(g.Add(g.MatMul(x, l.wf.Tensor()), g.MatMul(h, l.uf.Tensor())), l.bf.Tensor()))
		gateO := g.Sigmoid(g.Add(g.Add(g.MatMul(x, l.wo.Tensor()), g.MatMul(h, l.uo.Tensor())), l.bo.Tensor()))
		cand := l.act(g, g.Add(g.Add(g.MatMul(x, l.wc.Tensor()), g.MatMul(h, l.uc.Tensor())), l.bc.Tensor()))
		c = g.Add(g.Mul(gateF, c), g.Mul(gateI, cand))
		h = g.Mul(gateO, l.act(g, c))
		out = append(out, h)
	}
	return out
}

// Params returns the gate parameters in a fixed order.
func (l *LSTM) Params() []*Parameter {
	return []*Parameter{
		l.wi, l.ui, l.bi,
		l.wf, l.uf, l.bf,
		l.wo, l.uo, l.bo,
		l.wc, l.uc, l.bc,
	}
}
