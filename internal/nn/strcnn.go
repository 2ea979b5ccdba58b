package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// StrCNN is a structured temporal convolution: instead of summing filter
// responses over the window, it folds the window left to right through a
// nonlinear composition, so word order inside the window matters.
//
// For the window x_{t-order+1} .. x_t:
//
//	s = act(x_{t-order+1} W1 + b)
//	s = act(x_j W1 + s W2 + b)   for each following j in the window
//	h_t = s
type StrCNN struct {
	nIn, nOut int
	order     int
	act       Activation

	w1 *Parameter // [n_in, n_out]
	w2 *Parameter // [n_out, n_out]
	b  *Parameter
}

// NewStrCNN creates a StrCNN layer with Xavier-initialized weights and
// zero bias. Order must be >= 1.
func NewStrCNN(nIn, nOut, order int, act Activation, rng *rand.Rand) *StrCNN {
	if order < 1 {
		order = 1
	}
	return &StrCNN{
		nIn: nIn, nOut: nOut, order: order, act: act,
		w1: NewParameter("strcnn.w1", tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng)),
		w2: NewParameter("strcnn.w2", tensor.Xavier(nOut, nOut, tensor.Shape{nOut, nOut}, rng)),
		b:  NewParameter("strcnn.b", tensor.Zeros(tensor.Shape{1, nOut})),
	}
}

// ForwardAll encodes the sequence, preserving its temporal length.
func (l *StrCNN) ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	out := make([]*tensor.Tensor, 0, len(seq))
	for t := range seq {
		start := t - l.order + 1
		if start < 0 {
			start = 0
		}
		s := l.act(g, g.Add(g.MatMul(seq[start], l.w1.Tensor()), l.b.Tensor()))
		for j := start + 1; j <= t; j++ {
			s = l.act(g, g.Add(g.Add(g.MatMul(seq[j], l.w1.Tensor()), g.MatMul(s, l.w2.Tensor())), l.b.Tensor()))
		}
		out = append(out, s)
	}
	return out
}

// Params returns the composition weights and bias.
func (l *StrCNN) Params() []*Parameter {
	return []*Parameter{l.w1, l.w2, l.b}
}
