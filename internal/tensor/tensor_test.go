package tensor_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

func TestFromSlice(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, x.Rows())
	assert.Equal(t, 3, x.Cols())
	assert.Equal(t, 6.0, x.At(1, 2))

	_, err = tensor.FromSlice([]float64{1, 2}, tensor.Shape{2, 3})
	assert.Error(t, err)
}

func TestSetAt(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 2})
	x.Set(0, 1, 3.5)
	assert.Equal(t, 3.5, x.At(0, 1))
	assert.Equal(t, 0.0, x.At(1, 0))
}

func TestItemPanicsOnMatrix(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 2})
	assert.Panics(t, func() { x.Item() })
	assert.Equal(t, 0.0, tensor.Zeros(tensor.Shape{1}).Item())
}

func TestCloneIsIndependent(t *testing.T) {
	x, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	c := x.Clone()
	c.Set(0, 0, 9)
	assert.Equal(t, 1.0, x.At(0, 0))
	assert.Equal(t, 9.0, c.At(0, 0))
}

func TestMatMul(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b, _ := tensor.FromSlice([]float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	// [1 2 3; 4 5 6] @ [7 8; 9 10; 11 12] = [58 64; 139 154]
	out := tensor.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())
}

func TestMatMulTransposed(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b, _ := tensor.FromSlice([]float64{5, 6, 7, 8}, tensor.Shape{2, 2})

	// aᵀ @ b = [1 3; 2 4] @ [5 6; 7 8] = [26 30; 38 44]
	at := tensor.MatMulAT(a, b)
	assert.Equal(t, []float64{26, 30, 38, 44}, at.Data())

	// a @ bᵀ = [1 2; 3 4] @ [5 7; 6 8] = [17 23; 39 53]
	bt := tensor.MatMulBT(a, b)
	assert.Equal(t, []float64{17, 23, 39, 53}, bt.Data())
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	a := tensor.Zeros(tensor.Shape{2, 3})
	b := tensor.Zeros(tensor.Shape{2, 3})
	assert.Panics(t, func() { tensor.MatMul(a, b) })
}

func TestInPlaceKernels(t *testing.T) {
	x, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	y, _ := tensor.FromSlice([]float64{3, 4}, tensor.Shape{1, 2})

	tensor.AddInto(x, y)
	assert.Equal(t, []float64{4, 6}, x.Data())

	tensor.ScaleInto(x, 0.5)
	assert.Equal(t, []float64{2, 3}, x.Data())

	tensor.AxpyInto(x, -1.0, y)
	assert.Equal(t, []float64{-1, -1}, x.Data())
}

func TestNorm2(t *testing.T) {
	x, _ := tensor.FromSlice([]float64{3, 4}, tensor.Shape{1, 2})
	assert.InDelta(t, 5.0, tensor.Norm2(x), 1e-12)
}

func TestXavierBound(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fanIn, fanOut := 10, 20
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	x := tensor.Xavier(fanIn, fanOut, tensor.Shape{10, 20}, rng)
	for _, v := range x.Data() {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}
}
