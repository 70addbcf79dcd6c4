package trainer

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/dataset"
	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/metrics"
	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/model"
)

// ErrEmptySource reports a batch source that yields zero samples, a
// precondition violation checked before any work begins.
var ErrEmptySource = errors.New("empty data source")

// EpochConfig carries the per-pass knobs.
type EpochConfig struct {
	BatchSize        int
	RegressionWeight float64
	// Shuffle orders the training pass; ignored in Eval mode, which always
	// iterates in stable ascending order.
	Shuffle *rand.Rand
}

// RunEpoch executes one full pass over the split: mask, forward, objective,
// and in Train mode zero-grad, backward and one optimizer step per batch.
// It returns the pass's mean class loss, mean regression loss and accuracy.
//
// The mode is explicit: Train requires an optimizer, Eval ignores one. The
// runner owns neither the net nor the optimizer; their state persists across
// calls by reference.
func RunEpoch(mode model.Mode, split *dataset.Split, net *model.DualHead, opt *model.Adam, cfg EpochConfig) (metrics.Rates, error) {
	if mode == model.Train && opt == nil {
		return metrics.Rates{}, errors.New("trainer: train mode requires an optimizer")
	}
	if cfg.BatchSize <= 0 {
		return metrics.Rates{}, fmt.Errorf("trainer: batch size must be > 0 (got %d)", cfg.BatchSize)
	}
	if cfg.RegressionWeight <= 0 {
		return metrics.Rates{}, fmt.Errorf("trainer: regression weight must be > 0 (got %g)", cfg.RegressionWeight)
	}
	if split.Len() == 0 {
		return metrics.Rates{}, fmt.Errorf("trainer: %w", ErrEmptySource)
	}

	net.SetMode(mode)
	var order *rand.Rand
	if mode == model.Train {
		order = cfg.Shuffle
	}

	var tally metrics.Tally
	it := split.Batches(cfg.BatchSize, order)
	for {
		batch, ok := it.Next()
		if !ok {
			break
		}

		masked, err := model.MaskEmptySlots(batch)
		if err != nil {
			return metrics.Rates{}, err
		}
		logits, z, err := net.Forward(masked.Features)
		if err != nil {
			return metrics.Rates{}, err
		}
		losses, dLogits, dZ, err := model.Objective(logits, z, masked.Labels, masked.Targets, cfg.RegressionWeight)
		if err != nil {
			return metrics.Rates{}, err
		}

		if mode == model.Train {
			net.ZeroGrad()
			net.Backward(dLogits, dZ)
			opt.Step(net.Params())
		}

		correct := 0
		for i, label := range masked.Labels {
			if floats.MaxIdx(logits.RawRowView(i)) == label {
				correct++
			}
		}
		tally.AddBatch(losses.Class, losses.Reg, correct, batch.Size())
	}

	rates, err := tally.Rates()
	if err != nil {
		return metrics.Rates{}, fmt.Errorf("trainer: %w", err)
	}
	return rates, nil
}
