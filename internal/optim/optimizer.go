// Package optim implements the optimization algorithms the training
// loop selects by configuration name.
//
// All optimizers update parameters in place from a gradient map produced
// by the autodiff tape:
//
//	grads := g.Backward(cost)
//	optimizer.Step(grads)
package optim

import (
	"fmt"

	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place. The
	// gradient map is keyed by tensor identity; parameters with no
	// gradient are skipped.
	Step(grads map[*tensor.Tensor]*tensor.Tensor)

	// LR returns the current learning rate.
	LR() float64
}

// New creates the optimizer named by the configuration. Supported names
// are "sgd", "adagrad", and "adam".
func New(name string, params []*nn.Parameter, lr float64) (Optimizer, error) {
	switch name {
	case "sgd":
		return NewSGD(params, lr), nil
	case "adagrad":
		return NewAdaGrad(params, lr), nil
	case "adam":
		return NewAdam(params, AdamConfig{LR: lr}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %q", name)
	}
}

// gradientFor retrieves the gradient for a parameter, or nil if the
// parameter did not participate in the forward pass.
func gradientFor(param *nn.Parameter, grads map[*tensor.Tensor]*tensor.Tensor) *tensor.Tensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor()]
}
