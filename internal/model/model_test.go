package model

import (
	"bytes"
	"io"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/config"
	"github.com/hiroki13/neural-sentence-matching-system/internal/corpus"
	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

const testEmbDim = 5

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.HiddenDim = 4
	cfg.MaxEpoch = 3
	cfg.Seed = 42
	return cfg
}

func testPairs() []corpus.Pair {
	return []corpus.Pair{
		{Label: 1, Sent1: []string{"the", "cat", "sat"}, Sent2: []string{"a", "cat", "sat", "down"}},
		{Label: 0, Sent1: []string{"dogs", "bark"}, Sent2: []string{"fish", "swim"}},
		{Label: 1, Sent1: []string{"birds", "fly"}, Sent2: []string{"birds", "soar"}},
		{Label: 0, Sent1: []string{"the", "sun"}, Sent2: []string{"dogs", "bark", "loudly"}},
	}
}

func testEmbedding(t *testing.T, pairs []corpus.Pair) (*nn.Embedding, *corpus.Vocab) {
	t.Helper()
	vocab := corpus.BuildVocab(pairs)
	rng := rand.New(rand.NewSource(99))
	emb, err := nn.NewEmbedding(vocab.Map(), corpus.PadToken, testEmbDim, rng)
	require.NoError(t, err)
	return emb, vocab
}

func compiledPairwise(t *testing.T, cfg *config.Config) (*Pairwise, []*corpus.Sample) {
	t.Helper()
	pairs := testPairs()
	emb, vocab := testEmbedding(t, pairs)
	m := NewPairwise(cfg, emb)
	m.SetOutput(io.Discard)
	require.NoError(t, m.Compile())
	return m, corpus.BuildSamples(pairs, vocab, 2)
}

func TestCompileBuildsStackWidths(t *testing.T) {
	for _, layer := range []string{"lstm", "gru", "grnn", "cnn", "str_cnn", "rcnn"} {
		t.Run(layer, func(t *testing.T) {
			cfg := testConfig()
			cfg.Layer = layer
			cfg.Depth = 3
			m, samples := compiledPairwise(t, cfg)

			assert.Len(t, m.stack, 3)
			assert.NotEmpty(t, m.params)

			// A width mismatch anywhere in the stack would make the
			// forward pass panic; every layer must accept its
			// predecessor's output and emit hidden_dim columns.
			preds := m.Predict(samples[0])
			assert.Len(t, preds, samples[0].NumPairs())
		})
	}
}

func TestLSTMStackParamCount(t *testing.T) {
	cfg := testConfig()
	cfg.Layer = "lstm"
	cfg.Depth = 2
	m, _ := compiledPairwise(t, cfg)

	// 12 parameters per LSTM layer, embedding not registered.
	assert.Len(t, m.params, 24)

	// Layer 0 consumes the embedding width, layer 1 the hidden width.
	assert.Equal(t, tensor.Shape{testEmbDim, cfg.HiddenDim}, m.params[0].Tensor().Shape())
	assert.Equal(t, tensor.Shape{cfg.HiddenDim, cfg.HiddenDim}, m.params[12].Tensor().Shape())
}

func TestOutputLayerPairIndexing(t *testing.T) {
	m, _ := compiledPairwise(t, testConfig())
	g := autodiff.NewEngine()

	// Rows 0,1 are pair 0; rows 2,3 are pair 1.
	h, err := tensor.FromSlice([]float64{
		1, 0,
		1, 0,
		0, 2,
		3, 1,
	}, tensor.Shape{4, 2})
	require.NoError(t, err)

	scores := m.outputLayer(g, h)
	require.Equal(t, 2, scores.NumElements())

	sigmoid := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	assert.InDelta(t, sigmoid(1), scores.Data()[0], 1e-12) // (1,0)·(1,0)
	assert.InDelta(t, sigmoid(2), scores.Data()[1], 1e-12) // (0,2)·(3,1)
}

func TestOutputLayerSwapInvariance(t *testing.T) {
	m, _ := compiledPairwise(t, testConfig())
	g := autodiff.NewEngine()

	h, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	swapped, _ := tensor.FromSlice([]float64{3, 4, 1, 2}, tensor.Shape{2, 2})

	a := m.outputLayer(g, h).Item()
	b := m.outputLayer(g, swapped).Item()
	assert.Equal(t, a, b)
}

func TestForwardSwapInvariance(t *testing.T) {
	// Swapping the two sentences of a pair must not change its score:
	// the pair's even/odd columns trade places all the way through
	// embedding, encoding, and pooling, and the dot-product head is
	// symmetric.
	cfg := testConfig()
	cfg.Dropout = 0
	cfg.L2Reg = 0

	pairs := testPairs()
	emb, vocab := testEmbedding(t, pairs)
	m := NewPairwise(cfg, emb)
	m.SetOutput(io.Discard)
	require.NoError(t, m.Compile())

	swapped := make([]corpus.Pair, len(pairs))
	for i, p := range pairs {
		swapped[i] = corpus.Pair{Label: p.Label, Sent1: p.Sent2, Sent2: p.Sent1}
	}

	sample := corpus.BuildSamples(pairs, vocab, len(pairs))[0]
	swappedSample := corpus.BuildSamples(swapped, vocab, len(swapped))[0]

	scores := m.scoresFn(autodiff.NewEngine(), sample, EvalPhase)
	swappedScores := m.scoresFn(autodiff.NewEngine(), swappedSample, EvalPhase)
	assert.Equal(t, scores.Data(), swappedScores.Data())
}

func TestCostEqualsLossWithoutL2(t *testing.T) {
	cfg := testConfig()
	cfg.L2Reg = 0
	m, samples := compiledPairwise(t, cfg)

	res := m.TrainStep(samples[0])
	assert.Equal(t, res.Loss, res.Cost)
}

func TestCostIncludesL2Penalty(t *testing.T) {
	cfg := testConfig()
	cfg.L2Reg = 0.01
	m, samples := compiledPairwise(t, cfg)

	res := m.TrainStep(samples[0])
	assert.Greater(t, res.Cost, res.Loss)

	// The penalty is the sum of raw parameter norms scaled by l2_reg,
	// taken at the pre-update parameter values. Bound it loosely from
	// the post-update norms instead of reproducing the step.
	assert.InDelta(t, res.Cost-res.Loss, penaltyOf(m, cfg.L2Reg), 0.05)
}

func penaltyOf(m *Pairwise, l2 float64) float64 {
	sum := 0.0
	for _, p := range m.params {
		sum += tensor.Norm2(p.Tensor())
	}
	return sum * l2
}

func TestTrainStepUpdatesParams(t *testing.T) {
	m, samples := compiledPairwise(t, testConfig())

	before := make([]*tensor.Tensor, len(m.params))
	for i, p := range m.params {
		before[i] = p.Tensor().Clone()
	}

	res := m.TrainStep(samples[0])
	assert.False(t, math.IsNaN(res.Loss))
	assert.Greater(t, res.GradNorm, 0.0)
	assert.Len(t, res.Preds, samples[0].NumPairs())

	moved := false
	for i, p := range m.params {
		if !assert.ObjectsAreEqual(before[i].Data(), p.Tensor().Data()) {
			moved = true
			break
		}
	}
	assert.True(t, moved, "no parameter changed after a training step")
}

func TestPredictIsDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Dropout = 0.5 // must not apply at prediction time
	m, samples := compiledPairwise(t, cfg)

	first := m.Predict(samples[0])
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Predict(samples[0]))
	}
}

func TestEvaluateEmptyIsError(t *testing.T) {
	m, _ := compiledPairwise(t, testConfig())
	_, err := m.Evaluate(nil)
	assert.Error(t, err)
}

func TestEvaluateAccuracy(t *testing.T) {
	m, samples := compiledPairwise(t, testConfig())
	acc, err := m.Evaluate(samples)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)
}

func TestPnormStatsFormat(t *testing.T) {
	m, _ := compiledPairwise(t, testConfig())
	stats := m.PnormStats()
	require.Len(t, stats, len(m.params))
	for _, s := range stats {
		assert.Regexp(t, `^\d+\.\d{3}$`, s)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := testConfig()
	pairs := testPairs()
	emb, vocab := testEmbedding(t, pairs)
	samples := corpus.BuildSamples(pairs, vocab, 2)

	src := NewPairwise(cfg, emb)
	src.SetOutput(io.Discard)
	require.NoError(t, src.Compile())
	src.TrainStep(samples[0])

	path := filepath.Join(t.TempDir(), "model")
	require.NoError(t, src.SaveModel(path))

	// A differently seeded model, sharing the fixed embedding table,
	// must predict identically after loading the checkpoint.
	cfg2 := *cfg
	cfg2.Seed = 7
	dst := NewPairwise(&cfg2, emb)
	dst.SetOutput(io.Discard)
	require.NoError(t, dst.Compile())
	require.NoError(t, dst.LoadPretrainedParams(path))

	assert.Equal(t, src.PnormStats(), dst.PnormStats())
	for _, s := range samples {
		assert.Equal(t, src.Predict(s), dst.Predict(s))
	}
}

func TestCheckpointSuffixNormalization(t *testing.T) {
	assert.Equal(t, "m.gob.gz", normalizeCheckpointPath("m"))
	assert.Equal(t, "m.gob.gz", normalizeCheckpointPath("m.gob"))
	assert.Equal(t, "m.gob.gz", normalizeCheckpointPath("m.gob.gz"))

	m, _ := compiledPairwise(t, testConfig())
	dir := t.TempDir()
	require.NoError(t, m.SaveModel(filepath.Join(dir, "ckpt.gob")))
	require.NoError(t, m.LoadPretrainedParams(filepath.Join(dir, "ckpt")))
}

func TestLoadPretrainedHiddenDimMismatch(t *testing.T) {
	m, _ := compiledPairwise(t, testConfig())
	path := filepath.Join(t.TempDir(), "model")
	require.NoError(t, m.SaveModel(path))

	cfg := testConfig()
	cfg.HiddenDim = 5
	other, _ := compiledPairwise(t, cfg)

	before := other.PnormStats()
	err := other.LoadPretrainedParams(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hidden_dim")

	// Nothing may be overwritten on a failed load.
	assert.Equal(t, before, other.PnormStats())
}

func TestTrainStopsAfterPatienceExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEpoch = 100

	pairs := testPairs()
	emb, vocab := testEmbedding(t, pairs)
	m := NewPairwise(cfg, emb)
	var out bytes.Buffer
	m.SetOutput(&out)
	require.NoError(t, m.Compile())

	samples := corpus.BuildSamples(pairs, vocab, 2)
	require.NoError(t, m.Train(samples, nil, nil))

	// Dev accuracy improves only at epoch 0 (from the -1 sentinel), so
	// the counter reaches patience+1 at the top of epoch 16.
	assert.Equal(t, earlyStopPatience+1, strings.Count(out.String(), "Epoch "))
}

func TestTrainHaltsOnNaN(t *testing.T) {
	m, samples := compiledPairwise(t, testConfig())
	m.params[0].Tensor().Data()[0] = math.NaN()

	err := m.Train(samples, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NaN")
	assert.Contains(t, err.Error(), "sample 0")
}

func TestTrainCheckpointsOnImprovement(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEpoch = 1
	cfg.SaveModel = filepath.Join(t.TempDir(), "best")

	pairs := testPairs()
	emb, vocab := testEmbedding(t, pairs)
	m := NewPairwise(cfg, emb)
	m.SetOutput(io.Discard)
	require.NoError(t, m.Compile())

	samples := corpus.BuildSamples(pairs, vocab, 2)
	require.NoError(t, m.Train(samples, samples, nil))

	assert.FileExists(t, cfg.SaveModel+checkpointExt)
}

func TestUnknownLayerWarnsAndFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Layer = "transformer"

	pairs := testPairs()
	emb, _ := testEmbedding(t, pairs)
	m := NewPairwise(cfg, emb)
	var out bytes.Buffer
	m.SetOutput(&out)
	require.NoError(t, m.Compile())

	assert.Contains(t, out.String(), "unknown layer")
	require.Len(t, m.stack, 1)
	_, ok := m.stack[0].(*nn.RCNN)
	assert.True(t, ok)
}

func TestModelFactory(t *testing.T) {
	pairs := testPairs()
	emb, _ := testEmbedding(t, pairs)

	cfg := testConfig()
	mdl, err := New(cfg, emb, nil)
	require.NoError(t, err)
	assert.IsType(t, &Pairwise{}, mdl)

	cfg.Model = "sem"
	_, err = New(cfg, emb, nil)
	assert.Error(t, err) // sem needs a proposition vocabulary

	cfg.Model = "triplet"
	_, err = New(cfg, emb, nil)
	assert.Error(t, err)
}

func TestSemanticModel(t *testing.T) {
	cfg := testConfig()
	cfg.Model = "sem"

	pairs := testPairs()[:2]
	emb, vocab := testEmbedding(t, pairs)

	props := [][][]string{
		{{"p.a"}, {"p.b", "p.c"}, nil},
		{{"p.a"}, nil, nil, {"p.d"}},
		{nil, {"p.b"}},
		{{"p.c"}, nil},
	}
	propVocab := corpus.BuildPropVocab(props)
	samples, err := corpus.BuildSemSamples(pairs, props, vocab, propVocab, 2)
	require.NoError(t, err)

	m, err := NewSemantic(cfg, emb, propVocab.Map())
	require.NoError(t, err)
	m.SetOutput(io.Discard)
	require.NoError(t, m.Compile())

	// The proposition embedding trains with the stack and sits last in
	// the checkpoint order.
	last := m.layers[len(m.layers)-1]
	assert.Equal(t, m.propEmb.Params(), last.Params())

	res := m.TrainStep(samples[0])
	assert.False(t, math.IsNaN(res.Loss))
	assert.Len(t, res.Preds, samples[0].NumPairs())

	preds := m.Predict(samples[0])
	assert.Len(t, preds, samples[0].NumPairs())
}

func TestSemanticCheckpointIncludesPropEmbedding(t *testing.T) {
	cfg := testConfig()
	cfg.Model = "sem"

	pairs := testPairs()[:1]
	emb, vocab := testEmbedding(t, pairs)
	props := [][][]string{
		{{"p.a"}, nil, nil},
		{nil, {"p.b"}, nil, nil},
	}
	propVocab := corpus.BuildPropVocab(props)
	samples, err := corpus.BuildSemSamples(pairs, props, vocab, propVocab, 1)
	require.NoError(t, err)

	src, err := NewSemantic(cfg, emb, propVocab.Map())
	require.NoError(t, err)
	src.SetOutput(io.Discard)
	require.NoError(t, src.Compile())
	src.TrainStep(samples[0])

	path := filepath.Join(t.TempDir(), "sem")
	require.NoError(t, src.SaveModel(path))

	cfg2 := *cfg
	cfg2.Seed = 11
	dst, err := NewSemantic(&cfg2, emb, propVocab.Map())
	require.NoError(t, err)
	dst.SetOutput(io.Discard)
	require.NoError(t, dst.Compile())
	require.NoError(t, dst.LoadPretrainedParams(path))

	assert.Equal(t, src.propEmb.Weight.Tensor().Data(), dst.propEmb.Weight.Tensor().Data())
	assert.Equal(t, src.Predict(samples[0]), dst.Predict(samples[0]))
}
