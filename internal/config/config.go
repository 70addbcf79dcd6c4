package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run. It is read once at
// startup and never mutated afterwards.
type Config struct {
	DataPath         string  `yaml:"data_path"`
	ArtifactDir      string  `yaml:"artifact_dir"`
	Slots            int     `yaml:"slots"`
	FeatureWidth     int     `yaml:"feature_width"`
	HiddenWidth      int     `yaml:"hidden_width"`
	BatchSize        int     `yaml:"batch_size"`
	Epochs           int     `yaml:"epochs"`
	LearningRate     float64 `yaml:"learning_rate"`
	RegressionWeight float64 `yaml:"regression_weight"`
	Seed             int64   `yaml:"seed"`
	SyntheticSamples int     `yaml:"synthetic_samples"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataPath         string
	ArtifactDir      string
	BatchSize        int
	Epochs           int
	LearningRate     float64
	RegressionWeight float64
	Seed             int64
	SyntheticSamples int
}

// Default returns the configuration matching the original pipe-network
// pipeline: 1365 slots (a depth-5 tree with up to 4 children per pipe),
// 7 feature fields with the mask bit last.
func Default() *Config {
	return &Config{
		ArtifactDir:      "artifacts",
		Slots:            1365,
		FeatureWidth:     7,
		HiddenWidth:      2048,
		BatchSize:        64,
		Epochs:           40,
		LearningRate:     3e-4,
		RegressionWeight: 10.0,
		Seed:             42,
	}
}

// Load reads and validates a Config from YAML. Keys absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.ArtifactDir != "" {
		c.ArtifactDir = o.ArtifactDir
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.RegressionWeight > 0 {
		c.RegressionWeight = o.RegressionWeight
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.SyntheticSamples > 0 {
		c.SyntheticSamples = o.SyntheticSamples
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataPath == "" && c.SyntheticSamples <= 0 {
		return errors.New("either data_path or synthetic_samples must be set")
	}
	if c.Slots <= 0 {
		return fmt.Errorf("slots must be > 0 (got %d)", c.Slots)
	}
	if c.FeatureWidth < 1 {
		return fmt.Errorf("feature_width must be >= 1 (got %d)", c.FeatureWidth)
	}
	if c.HiddenWidth < 2 {
		return fmt.Errorf("hidden_width must be >= 2 (got %d)", c.HiddenWidth)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.RegressionWeight <= 0 {
		return fmt.Errorf("regression_weight must be > 0 (got %g)", c.RegressionWeight)
	}
	return nil
}
