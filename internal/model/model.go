// Package model implements the sentence matching models: the base
// forward/backward plumbing shared by all of them, the pairwise model,
// and the semantic-augmented model.
//
// A model is compiled once from its configuration. Compiling builds the
// encoder stack, registers the trainable parameters, and creates the
// optimizer; afterwards TrainStep and Predict run the compiled graph on
// one mini-batch at a time.
package model

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/hiroki13/neural-sentence-matching-system/internal/autodiff"
	"github.com/hiroki13/neural-sentence-matching-system/internal/config"
	"github.com/hiroki13/neural-sentence-matching-system/internal/corpus"
	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
	"github.com/hiroki13/neural-sentence-matching-system/internal/optim"
	"github.com/hiroki13/neural-sentence-matching-system/internal/tensor"
)

// earlyStopPatience is the number of consecutive epochs without a dev
// accuracy improvement tolerated before training halts. The counter is
// bumped at the top of each epoch, so training stops at the start of
// epoch patience+1.
const earlyStopPatience = 15

// Phase selects the dropout behavior of a forward pass.
type Phase int

const (
	// TrainPhase applies dropout at the configured rate.
	TrainPhase Phase = iota
	// EvalPhase disables dropout.
	EvalPhase
)

// StepResult reports one optimization step.
type StepResult struct {
	Cost     float64 // loss plus the L2 penalty
	Loss     float64 // mean binary cross-entropy
	GradNorm float64 // global L2 norm of the parameter gradients
	Preds    []int   // per-pair 0/1 predictions
}

// Model is a compiled sentence matching model.
type Model interface {
	// Compile builds the network and optimizer from the configuration.
	// It must be called exactly once, before any other method.
	Compile() error

	// TrainStep runs forward, backward, and one optimizer update on a
	// mini-batch.
	TrainStep(sample *corpus.Sample) *StepResult

	// Predict returns per-pair 0/1 predictions for a mini-batch without
	// recording gradients or applying dropout.
	Predict(sample *corpus.Sample) []int

	// Train runs the full training loop with early stopping. Dev and
	// test sample sets may be nil.
	Train(train, dev, test []*corpus.Sample) error

	// Evaluate returns the pair accuracy over the samples.
	Evaluate(samples []*corpus.Sample) (float64, error)

	// Params returns all trainable parameters.
	Params() []*nn.Parameter

	// PnormStats formats the L2 norm of every parameter.
	PnormStats() []string

	// SaveModel writes a checkpoint of the configuration and parameters.
	SaveModel(path string) error

	// LoadPretrainedParams warm-starts the parameters from a checkpoint
	// with a matching hidden dimension.
	LoadPretrainedParams(path string) error
}

// New creates the model named by the configuration: "pair" or "sem".
// The semantic-augmented model additionally needs a proposition
// vocabulary.
func New(cfg *config.Config, wordEmb *nn.Embedding, propVocab map[string]int) (Model, error) {
	switch cfg.Model {
	case "pair":
		return NewPairwise(cfg, wordEmb), nil
	case "sem":
		if propVocab == nil {
			return nil, fmt.Errorf("model %q needs a proposition vocabulary", cfg.Model)
		}
		return NewSemantic(cfg, wordEmb, propVocab)
	default:
		return nil, fmt.Errorf("unknown model: %q", cfg.Model)
	}
}

// base carries the state and plumbing shared by all models. Concrete
// models set scoresFn at compile time; everything else runs through the
// base.
type base struct {
	cfg     *config.Config
	wordEmb *nn.Embedding
	act     nn.Activation

	// stack is the encoder stack; layers is the full checkpoint order
	// (the stack, plus any model-specific parameter holders appended
	// after it).
	stack  []nn.Layer
	layers []nn.HasParams
	params []*nn.Parameter

	opt optim.Optimizer
	rng *rand.Rand
	out io.Writer

	// scoresFn runs the model-specific forward pass, producing one
	// match probability per pair as a [n_pairs, 1] tensor.
	scoresFn func(g *autodiff.Engine, sample *corpus.Sample, phase Phase) *tensor.Tensor
}

func newBase(cfg *config.Config, wordEmb *nn.Embedding) base {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return base{
		cfg:     cfg,
		wordEmb: wordEmb,
		rng:     rand.New(rand.NewSource(seed)),
		out:     os.Stderr,
	}
}

// SetOutput redirects progress logging, which defaults to stderr.
func (m *base) SetOutput(w io.Writer) {
	m.out = w
}

func (m *base) say(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// buildStack constructs the encoder stack: layer 0 maps the embedding
// width to hidden_dim, deeper layers map hidden_dim to hidden_dim.
// Unknown layer names fall back to RCNN with a warning.
func (m *base) buildStack() error {
	act, err := nn.ActivationByName(m.cfg.Activation)
	if err != nil {
		return err
	}
	m.act = act

	kind, known := m.cfg.LayerKind()
	if !known {
		m.say("unknown layer %q, using rcnn\n", m.cfg.Layer)
	}

	nE := m.wordEmb.Dim()
	nD := m.cfg.HiddenDim
	for i := 0; i < m.cfg.Depth; i++ {
		nIn := nD
		if i == 0 {
			nIn = nE
		}
		var layer nn.Layer
		switch kind {
		case config.LayerLSTM:
			layer = nn.NewLSTM(nIn, nD, act, m.rng)
		case config.LayerGRU:
			layer = nn.NewGRU(nIn, nD, act, m.rng)
		case config.LayerGRNN:
			layer = nn.NewGRNN(nIn, nD, act, m.rng)
		case config.LayerCNN:
			layer = nn.NewCNN(nIn, nD, m.cfg.Order, act, m.rng)
		case config.LayerStrCNN:
			layer = nn.NewStrCNN(nIn, nD, m.cfg.Order, act, m.rng)
		default:
			layer = nn.NewRCNN(nIn, nD, m.cfg.Order, m.cfg.Mode, m.cfg.Outgate, act, m.rng)
		}
		m.stack = append(m.stack, layer)
		m.layers = append(m.layers, layer)
	}
	return nil
}

// setParams aggregates the parameters of every registered layer and
// creates the optimizer over them.
func (m *base) setParams() error {
	total := 0
	for _, l := range m.layers {
		for _, p := range l.Params() {
			m.params = append(m.params, p)
			total += p.Tensor().NumElements()
		}
	}
	m.say("num of parameters: %d\n", total)

	opt, err := optim.New(m.cfg.Learning, m.params, m.cfg.LearningRate)
	if err != nil {
		return err
	}
	m.opt = opt
	return nil
}

func (m *base) dropoutRate(phase Phase) float64 {
	if phase == TrainPhase {
		return m.cfg.Dropout
	}
	return 0
}

// inputLayer embeds a token id matrix and applies dropout.
func (m *base) inputLayer(g *autodiff.Engine, emb *nn.Embedding, ids [][]int, phase Phase) []*tensor.Tensor {
	seq := emb.ForwardSeq(g, ids)
	return nn.DropoutSeq(g, seq, m.dropoutRate(phase), m.rng)
}

// midLayer runs the encoder stack and collapses the sequence into one
// [n_sents, hidden_dim] representation: non-pad mean pooling when
// averaging is on (always for the convolutional encoders), the last
// time step otherwise.
func (m *base) midLayer(g *autodiff.Engine, seq []*tensor.Tensor, ids [][]int, phase Phase) *tensor.Tensor {
	for _, layer := range m.stack {
		seq = layer.ForwardAll(g, seq)
	}
	if m.cfg.Normalize {
		seq = nn.NormalizeSeq(g, seq)
	}

	kind, _ := m.cfg.LayerKind()
	var h *tensor.Tensor
	if m.cfg.Average || kind == config.LayerCNN || kind == config.LayerStrCNN {
		h = nn.MeanWithoutPadding(g, seq, ids, m.wordEmb.PadID())
	} else {
		h = seq[len(seq)-1]
	}

	h = nn.Dropout(g, h, m.dropoutRate(phase), m.rng)
	if m.cfg.Normalize {
		h = nn.NormalizeRows(g, h)
	}
	return h
}

// outputLayer scores each pair: sentence 1 sits in even rows, sentence
// 2 in odd rows, and the match probability is the sigmoid of their dot
// product.
func (m *base) outputLayer(g *autodiff.Engine, h *tensor.Tensor) *tensor.Tensor {
	nPairs := h.Rows() / 2
	evens := make([]int, nPairs)
	odds := make([]int, nPairs)
	for i := 0; i < nPairs; i++ {
		evens[i] = 2 * i
		odds[i] = 2*i + 1
	}
	sent1 := g.Gather(h, evens)
	sent2 := g.Gather(h, odds)
	return g.Sigmoid(g.SumRows(g.Mul(sent1, sent2)))
}

// costOf adds the L2 penalty to the loss: the sum of the raw parameter
// norms scaled by l2_reg. A zero l2_reg leaves the loss untouched, so
// cost and loss agree exactly.
func (m *base) costOf(g *autodiff.Engine, loss *tensor.Tensor) *tensor.Tensor {
	if m.cfg.L2Reg == 0 {
		return loss
	}
	var penalty *tensor.Tensor
	for _, p := range m.params {
		norm := g.L2Norm(p.Tensor())
		if penalty == nil {
			penalty = norm
		} else {
			penalty = g.Add(penalty, norm)
		}
	}
	return g.Add(loss, g.Scale(penalty, m.cfg.L2Reg))
}

func predsOf(scores *tensor.Tensor) []int {
	preds := make([]int, scores.NumElements())
	for i, s := range scores.Data() {
		if s >= 0.5 {
			preds[i] = 1
		}
	}
	return preds
}

// gradNorm computes the global L2 norm of the parameter gradients.
func (m *base) gradNorm(grads map[*tensor.Tensor]*tensor.Tensor) float64 {
	sum := 0.0
	for _, p := range m.params {
		if grad, ok := grads[p.Tensor()]; ok {
			n := tensor.Norm2(grad)
			sum += n * n
		}
	}
	return math.Sqrt(sum)
}

// TrainStep runs one recorded forward pass, backpropagates the cost,
// and applies the optimizer update.
func (m *base) TrainStep(sample *corpus.Sample) *StepResult {
	g := autodiff.NewEngine()
	g.Tape().StartRecording()

	scores := m.scoresFn(g, sample, TrainPhase)
	loss := g.BCE(scores, sample.Labels)
	cost := m.costOf(g, loss)

	grads := g.Backward(cost)
	gnorm := m.gradNorm(grads)
	m.opt.Step(grads)

	return &StepResult{
		Cost:     cost.Item(),
		Loss:     loss.Item(),
		GradNorm: gnorm,
		Preds:    predsOf(scores),
	}
}

// Predict scores a mini-batch with dropout off and no tape recording.
func (m *base) Predict(sample *corpus.Sample) []int {
	g := autodiff.NewEngine()
	return predsOf(m.scoresFn(g, sample, EvalPhase))
}

// Evaluate returns pair accuracy over the samples. Scoring zero
// predictions is an error rather than a division by zero.
func (m *base) Evaluate(samples []*corpus.Sample) (float64, error) {
	crr, ttl := 0, 0
	for _, sample := range samples {
		preds := m.Predict(sample)
		crr += countMatches(sample.Labels, preds)
		ttl += len(preds)
	}
	if ttl == 0 {
		return 0, fmt.Errorf("no predictions to score")
	}
	return float64(crr) / float64(ttl), nil
}

func countMatches(labels *tensor.Tensor, preds []int) int {
	crr := 0
	for i, p := range preds {
		if (labels.Data()[i] >= 0.5) == (p == 1) {
			crr++
		}
	}
	return crr
}

// Params returns all trainable parameters in registration order.
func (m *base) Params() []*nn.Parameter {
	return m.params
}

// PnormStats formats the L2 norm of each parameter to three decimals,
// in registration order.
func (m *base) PnormStats() []string {
	stats := make([]string, len(m.params))
	for i, p := range m.params {
		stats[i] = fmt.Sprintf("%.3f", tensor.Norm2(p.Tensor()))
	}
	return stats
}

// Train runs the epoch loop: shuffle batches, step through them, score
// the dev set, checkpoint on strict improvement, and stop after
// earlyStopPatience epochs without one. A NaN loss halts immediately.
func (m *base) Train(train, dev, test []*corpus.Sample) error {
	if len(train) == 0 {
		return fmt.Errorf("no training samples")
	}
	unchanged := 0
	bestAcc := -1.0

	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < m.cfg.MaxEpoch; epoch++ {
		unchanged++
		if unchanged > earlyStopPatience {
			break
		}

		m.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		trainLoss, trainCost := 0.0, 0.0
		crr, ttl := 0, 0
		lastGradNorm := 0.0
		start := time.Now()

		for i, idx := range order {
			sample := train[idx]
			res := m.TrainStep(sample)
			if math.IsNaN(res.Loss) {
				return fmt.Errorf("NaN loss at sample %d of epoch %d", i, epoch)
			}

			trainLoss += res.Loss
			trainCost += res.Cost
			lastGradNorm = res.GradNorm
			crr += countMatches(sample.Labels, res.Preds)
			ttl += len(res.Preds)

			if i%10 == 0 {
				m.say("\r%d/%d", i, len(order))
			}
		}

		devAcc := 0.0
		if dev != nil {
			acc, err := m.Evaluate(dev)
			if err != nil {
				return fmt.Errorf("dev evaluation: %w", err)
			}
			devAcc = acc
		}

		if devAcc > bestAcc {
			unchanged = 0
			bestAcc = devAcc
			if m.cfg.SaveModel != "" {
				if err := m.SaveModel(m.cfg.SaveModel); err != nil {
					return fmt.Errorf("save checkpoint: %w", err)
				}
			}
		}

		n := float64(len(order))
		m.say("\r\n\n")
		m.say("Epoch %d\tcost=%.3f\tloss=%.3f\tACC=%.2f%%,%.2f%%\t|g|=%.3f\t[%.3fm]\n",
			epoch, trainCost/n, trainLoss/n, devAcc*100, bestAcc*100,
			lastGradNorm, time.Since(start).Minutes())
		m.say("\tTrain Accuracy: %f (%d/%d)\n", float64(crr)/float64(ttl), crr, ttl)
		if test != nil {
			testAcc, err := m.Evaluate(test)
			if err != nil {
				return fmt.Errorf("test evaluation: %w", err)
			}
			m.say("\tTest Accuracy: %f\n", testAcc)
		}
		m.say("\tp_norm: [%s]\n\n", strings.Join(m.PnormStats(), " "))
	}
	return nil
}
