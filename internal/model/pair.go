package model

import (
	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/config"
	"github.com/hiroki13/neural-sentence-matching-system/internal/corpus"
	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Pairwise is the word-only sentence matching model: embed both
// sentences of each pair, encode them with the stack, pool, and score
// the pair by the sigmoid of the dot product of the two pooled vectors.
//
// The embedding table is fixed; only the encoder stack trains.
type Pairwise struct {
	base
}

// NewPairwise creates an uncompiled pairwise model.
func NewPairwise(cfg *config.Config, wordEmb *nn.Embedding) *Pairwise {
	return &Pairwise{base: newBase(cfg, wordEmb)}
}

// Compile builds the encoder stack, registers its parameters, and
// creates the optimizer.
func (m *Pairwise) Compile() error {
	if err := m.buildStack(); err != nil {
		return err
	}
	if err := m.setParams(); err != nil {
		return err
	}
	m.scoresFn = m.forward
	return nil
}

func (m *Pairwise) forward(g *autodiff.Engine, sample *corpus.Sample, phase Phase) *tensor.Tensor {
	seq := m.inputLayer(g, m.wordEmb, sample.Words, phase)
	h := m.midLayer(g, seq, sample.Words, phase)
	return m.outputLayer(g, h)
}
