package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// LoadEmbeddings reads pretrained word vectors in word2vec text format:
// one "word v1 v2 ... vd" line per word. It returns the vocabulary
// (reserved tokens first) and the [vocab, d] weight matrix; the pad row
// stays zero and the unknown row is the mean of all loaded vectors.
func LoadEmbeddings(path string) (*Vocab, *tensor.Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open embeddings: %w", err)
	}
	defer file.Close()

	vocab := NewVocab()
	var rows [][]float64
	dim := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		// Some word2vec dumps start with a "count dim" header line.
		if lineNo == 1 && len(fields) == 2 {
			continue
		}
		if dim == 0 {
			dim = len(fields) - 1
		} else if len(fields)-1 != dim {
			return nil, nil, fmt.Errorf("line %d: vector width %d, want %d", lineNo, len(fields)-1, dim)
		}
		// Real embedding dumps contain duplicate words, and nothing stops
		// one from colliding with a reserved token. Only the first
		// occurrence counts; rows stays aligned with vocabulary ids.
		before := vocab.Size()
		vocab.Add(fields[0])
		if vocab.Size() == before {
			continue
		}
		vec := make([]float64, dim)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: invalid value %q", lineNo, f)
			}
			vec[i] = v
		}
		rows = append(rows, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read embeddings: %w", err)
	}
	if dim == 0 {
		return nil, nil, fmt.Errorf("no vectors found in %s", path)
	}

	weights := tensor.Zeros(tensor.Shape{vocab.Size(), dim})
	mean := make([]float64, dim)
	for i, vec := range rows {
		// Reserved tokens occupy the first rows.
		row := weights.Data()[(i+2)*dim : (i+3)*dim]
		copy(row, vec)
		for j, v := range vec {
			mean[j] += v
		}
	}
	unkRow := weights.Data()[vocab.ID(UnkToken)*dim : (vocab.ID(UnkToken)+1)*dim]
	for j := range unkRow {
		unkRow[j] = mean[j] / float64(len(rows))
	}
	return vocab, weights, nil
}
