// Package nn implements the neural network building blocks of the
// sentence matching models.
//
// This package provides:
//   - Parameter: trainable tensors with stable ordering
//   - Layer interface: the encoder-layer capability all stack members share
//   - Embedding: token id -> dense vector lookup with a reserved pad id
//   - Encoder layers: LSTM, GRU, GRNN, CNN, StrCNN, RCNN
//   - Padding-aware pooling, L2 row normalization, dropout
//
// Sequences are slices of matrices, one [n_sents, dim] matrix per time
// step; time is the leading axis, exactly as the models consume it.
package nn

import (
	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Layer is the capability every encoder layer in a stack implements.
//
// ForwardAll consumes a full embedded sequence and produces an encoded
// sequence of the same temporal length. Params returns the layer's
// trainable tensors in a deterministic order; the model aggregates them
// (it does not copy) for regularization and checkpointing.
type Layer interface {
	// ForwardAll encodes a sequence of [n_sents, n_in] matrices into a
	// sequence of [n_sents, n_out] matrices of the same length.
	ForwardAll(g *autodiff.Engine, seq []*tensor.Tensor) []*tensor.Tensor

	// Params returns the layer's trainable parameters in a fixed order.
	Params() []*Parameter
}

// HasParams is the capability shared by everything that contributes
// trainable parameters: encoder layers and embedding adapters alike.
// The model depends only on this capability when it aggregates its
// parameter set and serializes checkpoints.
type HasParams interface {
	Params() []*Parameter
}
