package model

import (
	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/config"
	"github.com/hiroki13/neural-sentence-matching-system/internal/corpus"
	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Semantic is the semantic-augmented matching model: each word's
// embedding is enriched with the non-pad mean of its proposition
// embeddings before the sequence enters the encoder stack.
//
// Unlike the word embedding, the proposition embedding trains with the
// stack; it is registered last so its parameters sit at the end of
// checkpoints.
type Semantic struct {
	base
	propEmb *nn.Embedding
}

// NewSemantic creates an uncompiled semantic-augmented model. The
// proposition embedding has the same width as the word embedding so the
// two streams add elementwise.
func NewSemantic(cfg *config.Config, wordEmb *nn.Embedding, propVocab map[string]int) (*Semantic, error) {
	m := &Semantic{base: newBase(cfg, wordEmb)}
	propEmb, err := nn.NewEmbedding(propVocab, corpus.PadToken, wordEmb.Dim(), m.rng)
	if err != nil {
		return nil, err
	}
	m.propEmb = propEmb
	return m, nil
}

// Compile builds the encoder stack, appends the proposition embedding
// to the trainable layers, and creates the optimizer.
func (m *Semantic) Compile() error {
	if err := m.buildStack(); err != nil {
		return err
	}
	m.layers = append(m.layers, m.propEmb)
	if err := m.setParams(); err != nil {
		return err
	}
	m.scoresFn = m.forward
	return nil
}

func (m *Semantic) forward(g *autodiff.Engine, sample *corpus.Sample, phase Phase) *tensor.Tensor {
	wordSeq := m.inputLayer(g, m.wordEmb, sample.Words, phase)
	seq := make([]*tensor.Tensor, len(wordSeq))
	for t := range wordSeq {
		seq[t] = g.Add(wordSeq[t], m.propStream(g, sample, t, phase))
	}
	h := m.midLayer(g, seq, sample.Words, phase)
	return m.outputLayer(g, h)
}

// propStream averages the proposition embeddings of word position t
// across all sentences, returning [n_sents, n_e]. Dropout applies to
// the averaged vector, mirroring the word stream.
func (m *Semantic) propStream(g *autodiff.Engine, sample *corpus.Sample, t int, phase Phase) *tensor.Tensor {
	ids := make([][]int, len(sample.Props))
	for s, sent := range sample.Props {
		ids[s] = sent[t]
	}
	h := nn.MeanPropsWithoutPadding(g, m.propEmb, ids)
	return nn.Dropout(g, h, m.dropoutRate(phase), m.rng)
}
