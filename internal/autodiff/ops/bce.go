package ops

import (
	"math"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// bceEps clips probabilities away from 0 and 1 so the log terms stay
// finite.
const bceEps = 1e-7

// BCEOp computes the mean binary cross-entropy between predicted match
// probabilities and ground-truth labels:
//
//	loss = mean_i[ -y_i*log(s_i) - (1-y_i)*log(1-s_i) ]
//
// Scores must already be probabilities in (0, 1); labels are constants.
//
// Backward: dL/ds_i = (-(y_i/s_i) + (1-y_i)/(1-s_i)) / n, with s clipped.
type BCEOp struct {
	inputs []*tensor.Tensor // [scores]
	output *tensor.Tensor   // scalar [1]
	labels *tensor.Tensor
}

// BCE computes the loss and returns the operation for recording.
func BCE(scores, labels *tensor.Tensor) *BCEOp {
	sData, yData := scores.Data(), labels.Data()
	if len(sData) != len(yData) {
		panic("BCE: scores and labels differ in length")
	}
	n := float64(len(sData))
	total := 0.0
	for i, s := range sData {
		s = clip(s)
		y := yData[i]
		total += -y*math.Log(s) - (1.0-y)*math.Log(1.0-s)
	}
	out := tensor.New(tensor.Shape{1})
	out.Data()[0] = total / n
	return &BCEOp{inputs: []*tensor.Tensor{scores}, output: out, labels: labels}
}

// Backward computes the gradient with respect to the scores.
func (op *BCEOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	scores := op.inputs[0]
	grad := tensor.New(scores.Shape())
	g := outputGrad.Data()[0]
	sData, yData, gradData := scores.Data(), op.labels.Data(), grad.Data()
	n := float64(len(sData))
	for i, s := range sData {
		s = clip(s)
		y := yData[i]
		gradData[i] = g * (-(y / s) + (1.0-y)/(1.0-s)) / n
	}
	return []*tensor.Tensor{grad}
}

func clip(s float64) float64 {
	if s < bceEps {
		return bceEps
	}
	if s > 1.0-bceEps {
		return 1.0 - bceEps
	}
	return s
}

// Inputs returns the score tensor.
func (op *BCEOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the scalar loss.
func (op *BCEOp) Output() *tensor.Tensor { return op.output }
