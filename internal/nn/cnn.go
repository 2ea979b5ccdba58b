package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// CNN is a temporal convolution encoder layer of the given order
// (filter width), producing one output per input position:
//
//	h_t = act(b + Σ_{j<order} x_{t-j} W_j)
//
// Positions before the sequence start contribute nothing (zero padding
// on the left), so the output sequence keeps the input's length.
type CNN struct {
	nIn, nOut int
	order     int
	act       Activation

	ws []*Parameter // order filter matrices [n_in, n_out]
	b  *Parameter
}

// NewCNN creates a CNN layer with Xavier-initialized filters and zero
// bias. Order must be >= 1.
func NewCNN(nIn, nOut, order int, act Activation, rng *rand.Rand) *CNN {
	if order < 1 {
		order = 1
	}
	l := &CNN{nIn: nIn, nOut: nOut, order: order, act: act}
	l.ws = make([]*Parameter, order)
	for j := range l.ws {
		l.ws[j] = NewParameter("cnn.w", tensor.Xavier(nIn, nOut, tensor.Shape{nIn, nOut}, rng))
	}
	l.b = NewParameter("cnn.b", tensor.Zeros(tensor.Shape{1, nOut}))
	return l
}

// ForwardAll encodes the sequence, preserving its temporal length.
func (l *CNN) ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	out := make([]*tensor.Tensor, 0, len(seq))
	for t := range seq {
		var acc *tensor.Tensor
		for j := 0; j < l.order && j <= t; j++ {
			term := g.MatMul(seq[t-j], l.ws[j].Tensor())
			if acc == nil {
				acc = term
			} else {
				acc = g.Add(acc, term)
			}
		}
		out = append(out, l.act(g, g.Add(acc, l.b.Tensor())))
	}
	return out
}

// Params returns the filters followed by the bias.
func (l *CNN) Params() []*Parameter {
	params := make([]*Parameter, 0, l.order+1)
	params = append(params, l.ws...)
	return append(params, l.b)
}
