package optim

import (
	"math"

	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// AdaGrad implements the adaptive gradient optimizer. Each coordinate's
// step is scaled by the inverse root of its accumulated squared
// gradients:
//
//	G += gradient²
//	param -= lr * gradient / (sqrt(G) + eps)
type AdaGrad struct {
	params []*nn.Parameter
	lr     float64
	eps    float64
	accum  map[*nn.Parameter]*tensor.Tensor
}

// NewAdaGrad creates an AdaGrad optimizer.
func NewAdaGrad(params []*nn.Parameter, lr float64) *AdaGrad {
	if lr == 0 {
		lr = 0.01
	}
	return &AdaGrad{
		params: params,
		lr:     lr,
		eps:    1e-8,
		accum:  make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step applies the AdaGrad update to all parameters.
func (a *AdaGrad) Step(grads map[*tensor.Tensor]*tensor.Tensor) {
	for _, param := range a.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}

		acc, ok := a.accum[param]
		if !ok {
			acc = tensor.Zeros(param.Tensor().Shape())
			a.accum[param] = acc
		}

		accData := acc.Data()
		gradData := grad.Data()
		paramData := param.Tensor().Data()
		for i := range paramData {
			g := gradData[i]
			accData[i] += g * g
			paramData[i] -= a.lr * g / (math.Sqrt(accData[i]) + a.eps)
		}
	}
}

// LR returns the current learning rate.
func (a *AdaGrad) LR() float64 {
	return a.lr
}
