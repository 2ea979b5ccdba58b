package autodiff_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// numGrad computes the central finite difference of a scalar function
// with respect to element i of x. f must rebuild the graph on each call.
func numGrad(f func() float64, x *tensor.Tensor, i int) float64 {
	const eps = 1e-6
	orig := x.Data()[i]
	x.Data()[i] = orig + eps
	plus := f()
	x.Data()[i] = orig - eps
	minus := f()
	x.Data()[i] = orig
	return (plus - minus) / (2 * eps)
}

// checkGrads compares the tape gradient of x against finite differences
// at every element.
func checkGrads(t *testing.T, f func() float64, grad, x *tensor.Tensor) {
	t.Helper()
	require.NotNil(t, grad, "no gradient reached the tensor")
	require.Equal(t, x.NumElements(), grad.NumElements())
	for i := range x.Data() {
		want := numGrad(f, x, i)
		assert.InDelta(t, want, grad.Data()[i], 1e-5, "element %d", i)
	}
}

func randTensor(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	x := tensor.Randn(shape, rng)
	tensor.ScaleInto(x, 0.5)
	return x
}

func TestBackwardMatMulSigmoidBCE(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := randTensor(tensor.Shape{3, 4}, rng)
	w := randTensor(tensor.Shape{4, 1}, rng)
	y, _ := tensor.FromSlice([]float64{1, 0, 1}, tensor.Shape{3, 1})

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.BCE(g.Sigmoid(g.MatMul(x, w)), y).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	loss := g.BCE(g.Sigmoid(g.MatMul(x, w)), y)
	grads := g.Backward(loss)

	checkGrads(t, f, grads[w], w)
	checkGrads(t, f, grads[x], x)
}

func TestBackwardRowBroadcastAdd(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := randTensor(tensor.Shape{3, 4}, rng)
	b := randTensor(tensor.Shape{1, 4}, rng) // bias row broadcast over rows

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.L2Norm(g.Tanh(g.Add(a, b))).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	out := g.L2Norm(g.Tanh(g.Add(a, b)))
	grads := g.Backward(out)

	checkGrads(t, f, grads[a], a)
	checkGrads(t, f, grads[b], b)
}

func TestBackwardColumnBroadcastMul(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	a := randTensor(tensor.Shape{3, 4}, rng)
	c := randTensor(tensor.Shape{3, 1}, rng) // per-row scale

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.L2Norm(g.Mul(a, c)).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	out := g.L2Norm(g.Mul(a, c))
	grads := g.Backward(out)

	checkGrads(t, f, grads[a], a)
	checkGrads(t, f, grads[c], c)
}

func TestBackwardGatherAccumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	table := randTensor(tensor.Shape{4, 3}, rng)
	// Row 1 appears twice: its gradient must be the sum of both uses.
	ids := []int{1, 3, 1}

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.L2Norm(g.Sigmoid(g.Gather(table, ids))).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	out := g.L2Norm(g.Sigmoid(g.Gather(table, ids)))
	grads := g.Backward(out)

	checkGrads(t, f, grads[table], table)

	// Row 0 was never gathered.
	rowZero := grads[table].Data()[:3]
	assert.Equal(t, []float64{0, 0, 0}, rowZero)
}

func TestBackwardSumRows(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	x := randTensor(tensor.Shape{3, 4}, rng)
	y, _ := tensor.FromSlice([]float64{0, 1, 1}, tensor.Shape{3, 1})

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.BCE(g.Sigmoid(g.SumRows(x)), y).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	loss := g.BCE(g.Sigmoid(g.SumRows(x)), y)
	grads := g.Backward(loss)

	checkGrads(t, f, grads[x], x)
}

func TestBackwardRsqrtShift(t *testing.T) {
	x, _ := tensor.FromSlice([]float64{0.5, 1.0, 2.0, 4.0}, tensor.Shape{4, 1})

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.L2Norm(g.RsqrtShift(x, 1e-8)).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	out := g.L2Norm(g.RsqrtShift(x, 1e-8))
	grads := g.Backward(out)

	checkGrads(t, f, grads[x], x)
}

func TestBackwardScaleAndL2Norm(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	x := randTensor(tensor.Shape{2, 3}, rng)

	f := func() float64 {
		g := autodiff.NewEngine()
		return g.Scale(g.L2Norm(x), 0.25).Item()
	}

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	out := g.Scale(g.L2Norm(x), 0.25)
	grads := g.Backward(out)

	checkGrads(t, f, grads[x], x)
}

func TestMaskPassesNoGradientToMask(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	x := randTensor(tensor.Shape{3, 2}, rng)
	mask, _ := tensor.FromSlice([]float64{1, 0, 1}, tensor.Shape{3, 1})

	g := autodiff.NewEngine()
	g.Tape().StartRecording()
	out := g.L2Norm(g.Mask(x, mask))
	grads := g.Backward(out)

	assert.NotNil(t, grads[x])
	assert.Nil(t, grads[mask])

	// Masked-out row contributes no gradient.
	assert.Equal(t, []float64{0, 0}, grads[x].Data()[2:4])
}

func TestRecordingOffProducesNoOps(t *testing.T) {
	g := autodiff.NewEngine()
	x := tensor.Ones(tensor.Shape{2, 2})

	out := g.Tanh(g.Add(x, x))
	assert.Equal(t, 0, g.Tape().NumOps())
	assert.Empty(t, g.Backward(out))
}

func TestForwardValues(t *testing.T) {
	g := autodiff.NewEngine()

	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	sum := g.SumRows(x)
	assert.Equal(t, []float64{3, 7}, sum.Data())

	s := g.Sigmoid(tensor.Zeros(tensor.Shape{1, 2}))
	assert.InDelta(t, 0.5, s.At(0, 0), 1e-12)

	row, _ := tensor.FromSlice([]float64{10, 20}, tensor.Shape{1, 2})
	added := g.Add(x, row)
	assert.Equal(t, []float64{11, 22, 13, 24}, added.Data())
}
