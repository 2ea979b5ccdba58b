package ops

import "github.com/hiroki13/neural-sentence-matching-system/internal/tensor"

// GatherOp selects rows of a matrix: output[i] = input[ids[i]].
//
// It serves two roles in this system: embedding lookup (rows of the
// embedding table for a batch of token ids) and pair selection (even/odd
// pooled sentence vectors for the score head).
//
// Backward pass scatter-adds the output gradient back into the selected
// rows; a row selected more than once accumulates all its gradients.
type GatherOp struct {
	inputs []*tensor.Tensor // [input]
	output *tensor.Tensor
	ids    []int
}

// Gather selects rows ids of input and returns the operation for recording.
func Gather(input *tensor.Tensor, ids []int) *GatherOp {
	m := input.Cols()
	out := tensor.New(tensor.Shape{len(ids), m})
	outData, inData := out.Data(), input.Data()
	for i, id := range ids {
		copy(outData[i*m:(i+1)*m], inData[id*m:(id+1)*m])
	}
	idsCopy := make([]int, len(ids))
	copy(idsCopy, ids)
	return &GatherOp{inputs: []*tensor.Tensor{input}, output: out, ids: idsCopy}
}

// Backward scatter-adds the output gradient into the input rows.
func (op *GatherOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	input := op.inputs[0]
	m := input.Cols()
	grad := tensor.New(input.Shape())
	gradData, outData := grad.Data(), outputGrad.Data()
	for i, id := range op.ids {
		dst := gradData[id*m : (id+1)*m]
		src := outData[i*m : (i+1)*m]
		for j := range dst {
			dst[j] += src[j]
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *GatherOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the gathered rows.
func (op *GatherOp) Output() *tensor.Tensor { return op.output }
