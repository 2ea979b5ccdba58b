package model

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"strings"

	"github.com/hiroki13/neural-sentence-matching-system/internal/config"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// checkpointExt is the canonical checkpoint suffix: a gob stream inside
// a gzip wrapper.
const checkpointExt = ".gob.gz"

// paramBlob is one serialized parameter tensor.
type paramBlob struct {
	Shape []int
	Data  []float64
}

// checkpoint is the on-disk model snapshot: the configuration it was
// trained with, the hidden dimension for a cheap compatibility check,
// and per-layer parameter blobs in registration order.
type checkpoint struct {
	Args   config.Config
	D      int
	Params [][]paramBlob
}

// normalizeCheckpointPath appends the canonical suffix when missing:
// "m" becomes "m.gob.gz" and "m.gob" becomes "m.gob.gz".
func normalizeCheckpointPath(path string) string {
	if strings.HasSuffix(path, checkpointExt) {
		return path
	}
	if strings.HasSuffix(path, ".gob") {
		return path + ".gz"
	}
	return path + checkpointExt
}

// SaveModel writes a checkpoint of the configuration and every
// registered layer's parameters.
func (m *base) SaveModel(path string) error {
	ckpt := checkpoint{
		Args: *m.cfg,
		D:    m.cfg.HiddenDim,
	}
	for _, l := range m.layers {
		params := l.Params()
		blobs := make([]paramBlob, len(params))
		for i, p := range params {
			t := p.Tensor()
			blobs[i] = paramBlob{
				Shape: append([]int(nil), t.Shape()...),
				Data:  append([]float64(nil), t.Data()...),
			}
		}
		ckpt.Params = append(ckpt.Params, blobs)
	}

	file, err := os.Create(normalizeCheckpointPath(path))
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	if err := gob.NewEncoder(zw).Encode(&ckpt); err != nil {
		zw.Close()
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush checkpoint: %w", err)
	}
	return file.Close()
}

// LoadPretrainedParams warm-starts the registered layers from a
// checkpoint, pairing layers and parameters positionally. The hidden
// dimension must match, and every paired parameter's shape is checked
// before anything is overwritten.
func (m *base) LoadPretrainedParams(path string) error {
	ckpt, err := readCheckpoint(path)
	if err != nil {
		return err
	}
	if ckpt.D != m.cfg.HiddenDim {
		return fmt.Errorf("checkpoint hidden_dim %d != configured %d", ckpt.D, m.cfg.HiddenDim)
	}

	n := len(m.layers)
	if len(ckpt.Params) < n {
		n = len(ckpt.Params)
	}
	for i := 0; i < n; i++ {
		params := m.layers[i].Params()
		blobs := ckpt.Params[i]
		if len(blobs) != len(params) {
			return fmt.Errorf("layer %d: checkpoint has %d parameters, model has %d",
				i, len(blobs), len(params))
		}
		for j, p := range params {
			if p.Tensor().NumElements() != len(blobs[j].Data) {
				return fmt.Errorf("layer %d parameter %d (%s): checkpoint has %d elements, model has %d",
					i, j, p.Name(), len(blobs[j].Data), p.Tensor().NumElements())
			}
		}
	}
	for i := 0; i < n; i++ {
		params := m.layers[i].Params()
		for j, p := range params {
			blob := ckpt.Params[i][j]
			t, err := tensor.FromSlice(blob.Data, tensor.Shape(blob.Shape))
			if err != nil {
				return fmt.Errorf("layer %d parameter %d: %w", i, j, err)
			}
			p.SetTensor(t)
		}
	}
	return nil
}

func readCheckpoint(path string) (*checkpoint, error) {
	file, err := os.Open(normalizeCheckpointPath(path))
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	defer zr.Close()

	var ckpt checkpoint
	if err := gob.NewDecoder(zr).Decode(&ckpt); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &ckpt, nil
}
