package nn

import (
	"fmt"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Activation applies a pointwise nonlinearity through the engine so the
// operation lands on the tape.
type Activation func(g *autodiff.Engine, x *tensor.Tensor) *tensor.Tensor

// ActivationByName resolves an activation function from its
// configuration name. An empty name means tanh.
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "", "tanh":
		return func(g *autodiff.Engine, x *tensor.Tensor) *tensor.Tensor { return g.Tanh(x) }, nil
	case "relu":
		return func(g *autodiff.Engine, x *tensor.Tensor) *tensor.Tensor { return g.ReLU(x) }, nil
	case "sigmoid":
		return func(g *autodiff.Engine, x *tensor.Tensor) *tensor.Tensor { return g.Sigmoid(x) }, nil
	case "linear":
		return func(g *autodiff.Engine, x *tensor.Tensor) *tensor.Tensor { return x }, nil
	default:
		return nil, fmt.Errorf("unknown activation: %q", name)
	}
}
