package nn

import (
	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// poolEps guards mean denominators against all-pad sequences.
const poolEps = 1e-8

// normEps keeps row normalization defined for zero vectors.
const normEps = 1e-8

// MeanWithoutPadding pools a sequence of [n_sents, d] matrices into one
// [n_sents, d] matrix by averaging over positions whose token id is not
// the pad id. The denominator is the per-sentence non-pad count, guarded
// by a small epsilon so an all-pad sentence pools to a bounded vector
// instead of NaN.
//
// ids is the [n_words][n_sents] token id matrix the sequence was
// embedded from.
func MeanWithoutPadding(g *autodiff.Engine, seq []*tensor.Tensor, ids [][]int, padID int) *tensor.Tensor {
	n := seq[0].Rows()
	counts := make([]float64, n)

	var sum *tensor.Tensor
	for t, x := range seq {
		mask := tensor.New(tensor.Shape{n, 1})
		maskData := mask.Data()
		for s, id := range ids[t] {
			if id != padID {
				maskData[s] = 1.0
				counts[s]++
			}
		}
		masked := g.Mask(x, mask)
		if sum == nil {
			sum = masked
		} else {
			sum = g.Add(sum, masked)
		}
	}

	recip := tensor.New(tensor.Shape{n, 1})
	recipData := recip.Data()
	for s, c := range counts {
		recipData[s] = 1.0 / (c + poolEps)
	}
	return g.Mask(sum, recip)
}

// MeanPropsWithoutPadding averages proposition embeddings for one word
// position: ids is [n_sents][n_props], and the result is [n_sents, d].
// Pad slots are excluded exactly as in MeanWithoutPadding.
func MeanPropsWithoutPadding(g *autodiff.Engine, emb *Embedding, ids [][]int) *tensor.Tensor {
	n := len(ids)
	nProps := len(ids[0])
	padID := emb.PadID()
	counts := make([]float64, n)

	var sum *tensor.Tensor
	for p := 0; p < nProps; p++ {
		col := make([]int, n)
		mask := tensor.New(tensor.Shape{n, 1})
		maskData := mask.Data()
		for s := 0; s < n; s++ {
			col[s] = ids[s][p]
			if col[s] != padID {
				maskData[s] = 1.0
				counts[s]++
			}
		}
		masked := g.Mask(emb.Forward(g, col), mask)
		if sum == nil {
			sum = masked
		} else {
			sum = g.Add(sum, masked)
		}
	}

	recip := tensor.New(tensor.Shape{n, 1})
	recipData := recip.Data()
	for s, c := range counts {
		recipData[s] = 1.0 / (c + poolEps)
	}
	return g.Mask(sum, recip)
}

// NormalizeRows rescales each row of x to unit L2 norm (epsilon-guarded).
func NormalizeRows(g *autodiff.Engine, x *tensor.Tensor) *tensor.Tensor {
	sq := g.Mul(x, x)
	norms := g.SumRows(sq)                  // [n, 1] of squared norms
	recip := g.RsqrtShift(norms, normEps)   // 1/sqrt(Σx² + eps)
	return g.Mul(x, recip)                  // column broadcast
}

// NormalizeSeq applies NormalizeRows to every time step.
func NormalizeSeq(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor {
	out := make([]*tensor.Tensor, len(seq))
	for t, x := range seq {
		out[t] = NormalizeRows(g, x)
	}
	return out
}
