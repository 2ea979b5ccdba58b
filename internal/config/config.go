// Package config holds the immutable training configuration record.
//
// The configuration is read once, validated once, and consumed at model
// compile time; nothing mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LayerKind enumerates the encoder layer architectures.
type LayerKind int

const (
	LayerLSTM LayerKind = iota
	LayerGRU
	LayerGRNN
	LayerCNN
	LayerStrCNN
	LayerRCNN
)

// String returns the configuration name of the layer kind.
func (k LayerKind) String() string {
	switch k {
	case LayerLSTM:
		return "lstm"
	case LayerGRU:
		return "gru"
	case LayerGRNN:
		return "grnn"
	case LayerCNN:
		return "cnn"
	case LayerStrCNN:
		return "str_cnn"
	default:
		return "rcnn"
	}
}

// Config is the training configuration. Field names follow the original
// system's option names.
type Config struct {
	Model      string `yaml:"model"`      // "pair" or "sem"
	Activation string `yaml:"activation"` // tanh (default), relu, sigmoid, linear
	HiddenDim  int    `yaml:"hidden_dim"`
	Layer      string `yaml:"layer"` // one of the six encoder kinds, case-insensitive
	Depth      int    `yaml:"depth"` // number of stacked encoder layers

	// Encoder-specific options (CNN/StrCNN/RCNN family)
	Order   int  `yaml:"order"`
	Mode    int  `yaml:"mode"`
	Outgate bool `yaml:"outgate"`

	Average   bool    `yaml:"average"`   // pool by non-pad mean instead of last step
	Normalize bool    `yaml:"normalize"` // L2-normalize encoded and pooled vectors
	Dropout   float64 `yaml:"dropout"`
	L2Reg     float64 `yaml:"l2_reg"`

	LearningRate float64 `yaml:"learning_rate"`
	Learning     string  `yaml:"learning"` // optimizer name: sgd, adagrad, adam
	MaxEpoch     int     `yaml:"max_epoch"`

	SaveModel    string `yaml:"save_model"`    // checkpoint path; empty disables saving
	LoadPretrain string `yaml:"load_pretrain"` // warm-start checkpoint path

	Seed int64 `yaml:"seed"` // RNG seed; 0 means time-based
}

// Default returns the configuration with the original system's defaults.
func Default() *Config {
	return &Config{
		Model:        "pair",
		Activation:   "tanh",
		HiddenDim:    50,
		Layer:        "rcnn",
		Depth:        1,
		Order:        2,
		Mode:         1,
		Average:      true,
		Dropout:      0.0,
		L2Reg:        1e-6,
		LearningRate: 0.001,
		Learning:     "adam",
		MaxEpoch:     100,
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// LayerKind resolves the configured layer name, case-insensitively.
// Unrecognized names fall back to RCNN; the second return reports
// whether the name was recognized so callers can warn about the
// fallback.
func (c *Config) LayerKind() (LayerKind, bool) {
	switch strings.ToLower(c.Layer) {
	case "lstm":
		return LayerLSTM, true
	case "gru":
		return LayerGRU, true
	case "grnn":
		return LayerGRNN, true
	case "cnn":
		return LayerCNN, true
	case "str_cnn":
		return LayerStrCNN, true
	case "rcnn":
		return LayerRCNN, true
	default:
		return LayerRCNN, false
	}
}

// Validate checks the configuration's numeric and enumerated fields.
func (c *Config) Validate() error {
	if c.HiddenDim < 1 {
		return fmt.Errorf("hidden_dim must be >= 1, got %d", c.HiddenDim)
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be >= 1, got %d", c.Depth)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout must be in [0, 1), got %g", c.Dropout)
	}
	if c.L2Reg < 0 {
		return fmt.Errorf("l2_reg must be >= 0, got %g", c.L2Reg)
	}
	if c.MaxEpoch < 1 {
		return fmt.Errorf("max_epoch must be >= 1, got %d", c.MaxEpoch)
	}
	switch c.Model {
	case "pair", "sem":
	default:
		return fmt.Errorf("model must be \"pair\" or \"sem\", got %q", c.Model)
	}
	switch c.Learning {
	case "sgd", "adagrad", "adam":
	default:
		return fmt.Errorf("unknown optimizer: %q", c.Learning)
	}
	switch c.Activation {
	case "", "tanh", "relu", "sigmoid", "linear":
	default:
		return fmt.Errorf("unknown activation: %q", c.Activation)
	}
	return nil
}
