package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// RCNN is a recurrent (non-consecutive) convolution encoder layer. It
// accumulates n-gram feature states with a multiplicative decay, so a
// filter can match words that are not adjacent:
//
//	c1_t = λ_t ⊙ c1_{t-1} + x_t W1
//	ck_t = λ_t ⊙ ck_{t-1} + c(k-1)_{t-1} ⊙ (x_t Wk)
//	h_t  = act(c_order_t + b)
//
// The decay λ depends on the mode option:
//   - mode 0: a learned per-dimension decay, λ = σ(p)
//   - mode 1: an input-conditioned forget gate, λ_t = σ(x_t Wλ + bλ)
//
// With the outgate option, the output is gated per time step:
// h_t = σ(x_t Wo + bo) ⊙ act(c_order_t + b).
type RCNN struct {
	nIn, nOut int
	order     int
	mode      int
	hasOut    bool
	act       Activation

	ws []*Parameter // order filter matrices [n_in, n_out]
	b  *Parameter

	decayP *Parameter // mode 0: [1, n_out]
	wl, bl *Parameter // mode 1: [n_in, n_out], [1, n_out]
	wo, bo *Parameter // outgate
}

// NewRCNN creates an RCNN layer. Order must be >= 1; mode selects the
// decay parameterization; hasOut enables the output gate.
func NewRCNN(nIn, nOut, order, mode int, hasOut bool, act Activation, rng *rand.Rand) *RCNN {
	if order < 1 {
		order = 1
	}
	l := &RCNN{nIn: nIn, nOut: nOut, order: order, mode: mode, hasOut: hasOut, act: act}
	l.ws = make([]*Parameter, order)
	for j := range l.ws {
		l.ws[j] = NewParameter("rcnn.w", tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng))
	}
	l.b = NewParameter("rcnn.b", tensor.Zeros(tensor.Shape{1, nOut}))
	if mode == 0 {
		l.decayP = NewParameter("rcnn.decay", tensor.Zeros(tensor.Shape{1, nOut}))
	} else {
		l.wl = NewParameter("rcnn.wl", tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng))
		l.bl = NewParameter("rcnn.bl", tensor.Zeros(tensor.Shape{1, nOut}))
	}
	if hasOut {
		l.wo = NewParameter("rcnn.wo", tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng))
		l.bo = NewParameter("rcnn.bo", tensor.Zeros(tensor.Shape{1, nOut}))
	}
	return l
}

// ForwardAll encodes the sequence, preserving its temporal length.
func (l *RCNN) ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	n := seq[0].Rows()
	states := make([]*tensor.Tensor, l.order)
	for k := range states {
		states[k] = tensor.Zeros(tensor.Shape{n, l.nOut})
	}

	var sharedDecay *tensor.Tensor
	if l.mode == 0 {
		sharedDecay = g.Sigmoid(l.decayP.Tensor()) // [1, n_out] row broadcast
	}

	out := make([]*tensor.Tensor, 0, len(seq))
	for _, x := range seq {
		decay := sharedDecay
		if l.mode != 0 {
			decay = g.Sigmoid(g.Add(g.MatMul(x, l.wl.Tensor()), l.bl.Tensor()))
		}

		prev := states
		next := make([]*tensor.Tensor, l.order)
		for k := 0; k < l.order; k++ {
			term := g.MatMul(x, l.ws[k].Tensor())
			if k > 0 {
				term = g.Mul(prev[k-1], term)
			}
			next[k] = g.Add(g.Mul(prev[k], decay), term)
		}
		states = next

		h := l.act(g, g.Add(states[l.order-1], l.b.Tensor()))
		if l.hasOut {
			gate := g.Sigmoid(g.Add(g.MatMul(x, l.wo.Tensor()), l.bo.Tensor()))
			h = g.Mul(gate, h)
		}
		out = append(out, h)
	}
	return out
}

// Params returns the filters, bias, decay, and outgate parameters in a
// fixed order.
func (l *RCNN) Params() []*Parameter {
	params := make([]*Parameter, 0, l.order+5)
	params = append(params, l.ws...)
	params = append(params, l.b)
	if l.mode == 0 {
		params = append(params, l.decayP)
	} else {
		params = append(params, l.wl, l.bl)
	}
	if l.hasOut {
		params = append(params, l.wo, l.bo)
	}
	return params
}
