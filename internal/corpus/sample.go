package corpus

import (
	"fmt"
	"sort"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Sample is one mini-batch of sentence pairs laid out for the models.
//
// Words is the [n_words][n_sents] token id matrix: time is the leading
// axis and sentences are columns, padded to the batch's longest
// sentence. Pair i occupies columns 2i (sentence 1) and 2i+1
// (sentence 2), so n_sents is always even. Props, present only for the
// semantic-augmented model, holds per-sentence, per-word proposition
// ids padded to the batch's widest proposition list. Labels is the
// [n_pairs, 1] gold column.
type Sample struct {
	Words  [][]int
	Props  [][][]int
	Labels *tensor.Tensor
}

// NumPairs returns the number of sentence pairs in the sample.
func (s *Sample) NumPairs() int {
	return s.Labels.Rows()
}

// NumSents returns the number of sentence columns (always 2 per pair).
func (s *Sample) NumSents() int {
	return 2 * s.NumPairs()
}

// SortPairsByLength orders pairs by their longer sentence, shortest
// first, so batches of neighbors waste little space on padding. The
// sort is stable. Not applicable when external annotations are aligned
// to the original pair order.
func SortPairsByLength(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return maxLen(pairs[i]) < maxLen(pairs[j])
	})
}

func maxLen(p Pair) int {
	if len(p.Sent1) > len(p.Sent2) {
		return len(p.Sent1)
	}
	return len(p.Sent2)
}

// BuildSamples batches pairs into samples of at most batchSize pairs,
// encoding words through vocab and padding every sentence to the
// batch's maximum length with the pad id.
func BuildSamples(pairs []Pair, vocab *Vocab, batchSize int) []*Sample {
	if batchSize < 1 {
		batchSize = 1
	}
	var samples []*Sample
	for start := 0; start < len(pairs); start += batchSize {
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		samples = append(samples, buildSample(pairs[start:end], vocab))
	}
	return samples
}

func buildSample(pairs []Pair, vocab *Vocab) *Sample {
	maxLen := 1
	for _, p := range pairs {
		if len(p.Sent1) > maxLen {
			maxLen = len(p.Sent1)
		}
		if len(p.Sent2) > maxLen {
			maxLen = len(p.Sent2)
		}
	}

	nSents := 2 * len(pairs)
	padID := vocab.PadID()
	words := make([][]int, maxLen)
	for t := range words {
		row := make([]int, nSents)
		for s := range row {
			row[s] = padID
		}
		words[t] = row
	}
	labels := tensor.New(tensor.Shape{len(pairs), 1})
	labelData := labels.Data()
	for i, p := range pairs {
		for t, w := range p.Sent1 {
			words[t][2*i] = vocab.ID(w)
		}
		for t, w := range p.Sent2 {
			words[t][2*i+1] = vocab.ID(w)
		}
		labelData[i] = p.Label
	}
	return &Sample{Words: words, Labels: labels}
}

// BuildSemSamples batches pairs together with their proposition
// annotations. props holds one entry per sentence in pair order
// (sentence 1 of pair 1, sentence 2 of pair 1, ...), each a per-word
// list of proposition tokens; it must cover exactly 2*len(pairs)
// sentences.
func BuildSemSamples(pairs []Pair, props [][][]string, vocab, propVocab *Vocab, batchSize int) ([]*Sample, error) {
	if len(props) != 2*len(pairs) {
		return nil, fmt.Errorf("got %d proposition sentences for %d pairs, want %d",
			len(props), len(pairs), 2*len(pairs))
	}
	if batchSize < 1 {
		batchSize = 1
	}
	var samples []*Sample
	for start := 0; start < len(pairs); start += batchSize {
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		s := buildSample(pairs[start:end], vocab)
		s.Props = buildProps(props[2*start:2*end], propVocab, len(s.Words))
		samples = append(samples, s)
	}
	return samples, nil
}

// buildProps encodes per-sentence proposition lists, padding every word
// position to the batch's widest proposition list and every sentence to
// the batch's word length. Every slot holds at least one id so pooling
// always sees a rectangular [n_sents][n_words][n_props] block.
func buildProps(sents [][][]string, vocab *Vocab, nWords int) [][][]int {
	maxProps := 1
	for _, sent := range sents {
		for _, ps := range sent {
			if len(ps) > maxProps {
				maxProps = len(ps)
			}
		}
	}

	padID := vocab.PadID()
	out := make([][][]int, len(sents))
	for s, sent := range sents {
		enc := make([][]int, nWords)
		for t := range enc {
			slot := make([]int, maxProps)
			for p := range slot {
				slot[p] = padID
			}
			if t < len(sent) {
				for p, tok := range sent[t] {
					slot[p] = vocab.ID(tok)
				}
			}
			enc[t] = slot
		}
		out[s] = enc
	}
	return out
}
