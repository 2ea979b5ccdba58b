package nn

import (
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Dropout applies inverted dropout with the given rate: kept elements
// are scaled by 1/(1-rate) so evaluation needs no rescaling. A rate of
// zero (the evaluation phase) returns x unchanged.
func Dropout(g *autodiff.Engine, x *tensor.Tensor, rate float64, rng *rand.Rand) *tensor.Tensor {
	if rate <= 0 {
		return x
	}
	keep := 1.0 - rate
	mask := tensor.New(x.Shape())
	maskData := mask.Data()
	for i := range maskData {
		if rng.Float64() < keep {
			maskData[i] = 1.0 / keep
		}
	}
	return g.Mask(x, mask)
}

// DropoutSeq applies Dropout independently to every time step.
func DropoutSeq(g *autodiff.Engine, seq []*tensor.Tensor, rate float64, rng *rand.Rand) []*tensor.Tensor {
	if rate <= 0 {
		return seq
	}
	out := make([]*tensor.Tensor, len(seq))
	for t, x := range seq {
		out[t] = Dropout(g, x, rate, rng)
	}
	return out
}
