package nn

import (
	"fmt"
	"math/rand"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Embedding maps integer token ids to dense vectors through a lookup
// table. One adapter serves the word stream; the semantic-augmented
// model adds a second adapter for the proposition stream.
//
// The vocabulary map must contain the reserved pad token; its id marks
// filler positions that pooling excludes.
type Embedding struct {
	Weight *Parameter
	vocab  map[string]int
	padID  int
	dim    int
}

// NewEmbedding creates an embedding with weights drawn from N(0, 0.01),
// the usual scale for randomly initialized word vectors.
func NewEmbedding(vocab map[string]int, padToken string, dim int, rng *rand.Rand) (*Embedding, error) {
	padID, ok := vocab[padToken]
	if !ok {
		return nil, fmt.Errorf("vocabulary has no pad token %q", padToken)
	}
	w := tensor.Randn(tensor.Shape{len(vocab), dim}, rng)
	tensor.ScaleInto(w, 0.01)
	return &Embedding{
		Weight: NewParameter("emb.weight", w),
		vocab:  vocab,
		padID:  padID,
		dim:    dim,
	}, nil
}

// NewEmbeddingFromWeights creates an embedding over a pre-built weight
// matrix [len(vocab), dim], e.g. pretrained word vectors.
func NewEmbeddingFromWeights(vocab map[string]int, padToken string, weights *tensor.Tensor) (*Embedding, error) {
	padID, ok := vocab[padToken]
	if !ok {
		return nil, fmt.Errorf("vocabulary has no pad token %q", padToken)
	}
	if weights.Rows() != len(vocab) {
		return nil, fmt.Errorf("weight rows %d != vocabulary size %d", weights.Rows(), len(vocab))
	}
	return &Embedding{
		Weight: NewParameter("emb.weight", weights),
		vocab:  vocab,
		padID:  padID,
		dim:    weights.Cols(),
	}, nil
}

// Forward looks up one batch row of token ids, returning [len(ids), dim].
func (e *Embedding) Forward(g *autodiff.Engine, ids []int) *tensor.Tensor {
	return g.Gather(e.Weight.Tensor(), ids)
}

// ForwardSeq looks up a full [n_words][n_sents] id matrix, returning one
// [n_sents, dim] matrix per word position.
func (e *Embedding) ForwardSeq(g *autodiff.Engine, ids [][]int) []*tensor.Tensor {
	seq := make([]*tensor.Tensor, len(ids))
	for t, row := range ids {
		seq[t] = e.Forward(g, row)
	}
	return seq
}

// VocabMap returns the token -> id mapping.
func (e *Embedding) VocabMap() map[string]int {
	return e.vocab
}

// PadID returns the reserved pad id.
func (e *Embedding) PadID() int {
	return e.padID
}

// Dim returns the embedding width.
func (e *Embedding) Dim() int {
	return e.dim
}

// Params returns the embedding table as a single parameter.
func (e *Embedding) Params() []*Parameter {
	return []*Parameter{e.Weight}
}
