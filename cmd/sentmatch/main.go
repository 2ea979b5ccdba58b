// Package main provides the sentence matching train/eval CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/hiroki13/neural-sentence-matching-system/internal/config"
	"github.com/hiroki13/neural-sentence-matching-system/internal/corpus"
	"github.com/hiroki13/neural-sentence-matching-system/internal/model"
	"github.com/hiroki13/neural-sentence-matching-system/internal/nn"
)

const defaultBatchSize = 32

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	trainPath := flag.String("train", "", "Training pairs file (label\\tsent1\\tsent2)")
	devPath := flag.String("dev", "", "Dev pairs file")
	testPath := flag.String("test", "", "Test pairs file")
	propsPath := flag.String("props", "", "Proposition annotations for the sem model")
	embPath := flag.String("emb", "", "Pretrained word embeddings (word2vec text format)")
	batchSize := flag.Int("batch", defaultBatchSize, "Pairs per mini-batch")
	savePath := flag.String("save", "", "Checkpoint path (overrides config save_model)")
	loadPath := flag.String("load", "", "Warm-start checkpoint (overrides config load_pretrain)")
	modelName := flag.String("model", "", "Model: pair or sem (overrides config)")
	flag.Parse()

	if *trainPath == "" {
		log.Fatal("missing -train file")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *modelName != "" {
		cfg.Model = *modelName
	}
	if *savePath != "" {
		cfg.SaveModel = *savePath
	}
	if *loadPath != "" {
		cfg.LoadPretrain = *loadPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	fmt.Printf("Loading %s\n", *trainPath)
	trainPairs, err := corpus.LoadPairs(*trainPath)
	if err != nil {
		log.Fatalf("load training pairs: %v", err)
	}
	fmt.Printf("  %d pairs\n", len(trainPairs))

	var devPairs, testPairs []corpus.Pair
	if *devPath != "" {
		if devPairs, err = corpus.LoadPairs(*devPath); err != nil {
			log.Fatalf("load dev pairs: %v", err)
		}
	}
	if *testPath != "" {
		if testPairs, err = corpus.LoadPairs(*testPath); err != nil {
			log.Fatalf("load test pairs: %v", err)
		}
	}

	wordEmb, vocab, err := buildWordEmbedding(*embPath, trainPairs, cfg.HiddenDim, rng)
	if err != nil {
		log.Fatalf("build word embedding: %v", err)
	}
	fmt.Printf("Vocabulary: %d words, embedding dim %d\n", vocab.Size(), wordEmb.Dim())

	trainSamples, devSamples, testSamples, propVocabMap, err := buildSamples(
		cfg, trainPairs, devPairs, testPairs, *propsPath, vocab, *batchSize)
	if err != nil {
		log.Fatalf("build samples: %v", err)
	}

	mdl, err := model.New(cfg, wordEmb, propVocabMap)
	if err != nil {
		log.Fatalf("create model: %v", err)
	}
	if err := mdl.Compile(); err != nil {
		log.Fatalf("compile model: %v", err)
	}
	if cfg.LoadPretrain != "" {
		if err := mdl.LoadPretrainedParams(cfg.LoadPretrain); err != nil {
			log.Fatalf("load pretrained parameters: %v", err)
		}
		fmt.Printf("Warm-started from %s\n", cfg.LoadPretrain)
	}

	if err := mdl.Train(trainSamples, devSamples, testSamples); err != nil {
		log.Fatalf("training: %v", err)
	}

	if testSamples != nil {
		acc, err := mdl.Evaluate(testSamples)
		if err != nil {
			log.Fatalf("final evaluation: %v", err)
		}
		fmt.Printf("Final Test Accuracy: %f\n", acc)
	}
}

// buildWordEmbedding loads pretrained vectors when a path is given,
// otherwise builds the vocabulary from the training pairs and draws a
// random table of width dim.
func buildWordEmbedding(embPath string, pairs []corpus.Pair, dim int, rng *rand.Rand) (*nn.Embedding, *corpus.Vocab, error) {
	if embPath != "" {
		vocab, weights, err := corpus.LoadEmbeddings(embPath)
		if err != nil {
			return nil, nil, err
		}
		emb, err := nn.NewEmbeddingFromWeights(vocab.Map(), corpus.PadToken, weights)
		if err != nil {
			return nil, nil, err
		}
		return emb, vocab, nil
	}
	vocab := corpus.BuildVocab(pairs)
	emb, err := nn.NewEmbedding(vocab.Map(), corpus.PadToken, dim, rng)
	if err != nil {
		return nil, nil, err
	}
	return emb, vocab, nil
}

// buildSamples batches all three splits. The sem model additionally
// needs proposition annotations, consumed from one file in split order
// (train, then dev, then test); splits the file runs short on fall back
// to empty annotations.
func buildSamples(cfg *config.Config, train, dev, test []corpus.Pair, propsPath string,
	vocab *corpus.Vocab, batchSize int) (trainS, devS, testS []*corpus.Sample, propVocab map[string]int, err error) {

	if cfg.Model != "sem" {
		// Length bucketing keeps padding down; the sem model skips it
		// because its annotation file is aligned to pair order.
		corpus.SortPairsByLength(train)
		trainS = corpus.BuildSamples(train, vocab, batchSize)
		if dev != nil {
			devS = corpus.BuildSamples(dev, vocab, batchSize)
		}
		if test != nil {
			testS = corpus.BuildSamples(test, vocab, batchSize)
		}
		return trainS, devS, testS, nil, nil
	}

	if propsPath == "" {
		return nil, nil, nil, nil, fmt.Errorf("model sem needs -props")
	}
	props, err := corpus.LoadProps(propsPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pv := corpus.BuildPropVocab(props)

	nTrain := 2 * len(train)
	if len(props) < nTrain {
		return nil, nil, nil, nil, fmt.Errorf("props file covers %d sentences, need %d for training pairs", len(props), nTrain)
	}
	trainS, err = corpus.BuildSemSamples(train, props[:nTrain], vocab, pv, batchSize)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rest := props[nTrain:]
	if dev != nil {
		devS, rest, err = semSplit(dev, rest, vocab, pv, batchSize)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if test != nil {
		testS, _, err = semSplit(test, rest, vocab, pv, batchSize)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return trainS, devS, testS, pv.Map(), nil
}

// semSplit consumes the annotations for one split from the front of
// rest, padding with empty annotations when the file runs short.
func semSplit(pairs []corpus.Pair, rest [][][]string, vocab, propVocab *corpus.Vocab,
	batchSize int) ([]*corpus.Sample, [][][]string, error) {

	need := 2 * len(pairs)
	split := make([][][]string, need)
	for i := 0; i < need; i++ {
		if i < len(rest) {
			split[i] = rest[i]
		} else {
			split[i] = [][]string{}
		}
	}
	if len(rest) > need {
		rest = rest[need:]
	} else {
		rest = nil
	}
	samples, err := corpus.BuildSemSamples(pairs, split, vocab, propVocab, batchSize)
	return samples, rest, err
}
