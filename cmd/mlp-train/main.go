package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/config"
	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/dataset"
	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/model"
	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	dataPath := flag.String("data", "", "Override path to pipe_network_data.npz")
	artifactDir := flag.String("artifact-dir", "", "Override artifact output directory")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	learningRate := flag.Float64("lr", 0, "Learning rate")
	regWeight := flag.Float64("lambda", 0, "Regression loss weight")
	seed := flag.Int64("seed", 0, "PRNG seed")
	synthetic := flag.Int("synthetic", 0, "Train on N generated samples instead of an npz archive")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(config.Overrides{
		DataPath:         *dataPath,
		ArtifactDir:      *artifactDir,
		BatchSize:        *batchSize,
		Epochs:           *epochs,
		LearningRate:     *learningRate,
		RegressionWeight: *regWeight,
		Seed:             *seed,
		SyntheticSamples: *synthetic,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	var train, val *dataset.Split
	if cfg.SyntheticSamples > 0 {
		full, err := dataset.GenerateSynthetic(cfg.SyntheticSamples, cfg.Slots, cfg.FeatureWidth, cfg.Seed)
		if err != nil {
			log.Fatalf("generate synthetic data: %v", err)
		}
		rng := rand.New(rand.NewSource(cfg.Seed))
		var test *dataset.Split
		train, val, test, err = full.Partition(0.7, 0.15, rng)
		if err != nil {
			log.Fatalf("partition synthetic data: %v", err)
		}
		log.Printf("source=synthetic train_samples=%d val_samples=%d test_samples=%d", train.Len(), val.Len(), test.Len())
	} else {
		splits, err := dataset.LoadNPZ(cfg.DataPath, cfg.Slots, cfg.FeatureWidth)
		if err != nil {
			log.Fatalf("load dataset: %v", err)
		}
		train, val = splits.Train, splits.Val
		log.Printf("source=%s train_samples=%d val_samples=%d test_samples=%d", cfg.DataPath, train.Len(), val.Len(), splits.Test.Len())
	}

	net, err := model.NewDualHead(cfg.Slots, cfg.FeatureWidth, cfg.HiddenWidth, cfg.Seed)
	if err != nil {
		log.Fatalf("build model: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := trainer.RunConfig{
		Epochs:           cfg.Epochs,
		BatchSize:        cfg.BatchSize,
		LearningRate:     cfg.LearningRate,
		RegressionWeight: cfg.RegressionWeight,
		Seed:             cfg.Seed,
		ArtifactDir:      cfg.ArtifactDir,
	}

	if err := trainer.Run(ctx, runCfg, net, train, val); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}
