package optim

import (
	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// SGD implements plain stochastic gradient descent:
//
//	param = param - lr * gradient
type SGD struct {
	params []*nn.Parameter
	lr     float64
}

// NewSGD creates an SGD optimizer.
func NewSGD(params []*nn.Parameter, lr float64) *SGD {
	if lr == 0 {
		lr = 0.01
	}
	return &SGD{params: params, lr: lr}
}

// Step applies the gradient descent update to all parameters.
func (s *SGD) Step(grads map[*tensor.Tensor]*tensor.Tensor) {
	for _, param := range s.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}
		tensor.AxpyInto(param.Tensor(), -s.lr, grad)
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}
