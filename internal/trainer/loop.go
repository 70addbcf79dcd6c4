package trainer

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/dataset"
	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/model"
)

// SnapshotName is the artifact written after the final epoch.
const SnapshotName = "pipe_mlp_params.json"

// RunConfig captures the knobs required by the training driver.
type RunConfig struct {
	Epochs           int
	BatchSize        int
	LearningRate     float64
	RegressionWeight float64
	Seed             int64
	ArtifactDir      string
}

// Run trains the net for cfg.Epochs epochs: each epoch is one training pass
// over train followed by one evaluation pass over val, logged as a single
// six-scalar line. After the final epoch the parameter snapshot is persisted
// under SnapshotName; a run that fails produces no artifact.
func Run(ctx context.Context, cfg RunConfig, net *model.DualHead, train, val *dataset.Split) error {
	if cfg.Epochs <= 0 {
		return fmt.Errorf("trainer: epochs must be > 0 (got %d)", cfg.Epochs)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("trainer: learning rate must be > 0 (got %g)", cfg.LearningRate)
	}
	if train.Len() == 0 {
		return fmt.Errorf("trainer: train split: %w", ErrEmptySource)
	}
	if val.Len() == 0 {
		return fmt.Errorf("trainer: validation split: %w", ErrEmptySource)
	}

	opt := model.NewAdam(cfg.LearningRate)
	shuffle := rand.New(rand.NewSource(cfg.Seed))
	epochCfg := EpochConfig{
		BatchSize:        cfg.BatchSize,
		RegressionWeight: cfg.RegressionWeight,
		Shuffle:          shuffle,
	}

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		trainRates, err := RunEpoch(model.Train, train, net, opt, epochCfg)
		if err != nil {
			return fmt.Errorf("epoch %d train pass: %w", epoch, err)
		}
		valRates, err := RunEpoch(model.Eval, val, net, nil, epochCfg)
		if err != nil {
			return fmt.Errorf("epoch %d validation pass: %w", epoch, err)
		}

		log.Printf("epoch=%d train_class_loss=%.4f train_reg_loss=%.4f train_acc=%.4f val_class_loss=%.4f val_reg_loss=%.4f val_acc=%.4f",
			epoch,
			trainRates.ClassLoss,
			trainRates.RegLoss,
			trainRates.Accuracy,
			valRates.ClassLoss,
			valRates.RegLoss,
			valRates.Accuracy,
		)
	}

	if err := os.MkdirAll(cfg.ArtifactDir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(cfg.ArtifactDir, SnapshotName)
	if err := net.SaveSnapshot(path); err != nil {
		return err
	}
	log.Printf("artifact=%s", path)
	return nil
}
