package nn

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// Parameter represents a trainable tensor in a model.
//
// Parameters carry a name for diagnostics; identity (the tensor pointer)
// is what links them to gradients computed by the autodiff tape.
type Parameter struct {
	name string
	val  *tensor.Tensor
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, val: t}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.val
}

// SetTensor replaces the parameter's values in place, preserving identity
// links held by optimizers. Shapes must agree in element count.
func (p *Parameter) SetTensor(t *tensor.Tensor) {
	copy(p.val.Data(), t.Data())
}
