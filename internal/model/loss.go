package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LossValues carries the three scalars of one objective evaluation.
// Combined = Class + λ·Reg.
type LossValues struct {
	Class    float64
	Reg      float64
	Combined float64
}

// Objective computes the combined training objective: mean softmax
// cross-entropy between the slot logits and the true slot, plus lambda times
// the mean squared error between the scalar prediction and the true z.
//
// It also returns the gradients of the combined loss with respect to the
// logits and the scalar prediction; the regression gradient is pre-scaled by
// lambda so a single Backward call propagates the combined objective. The
// function has no side effects.
func Objective(logits, z *mat.Dense, labels []int, targets []float64, lambda float64) (LossValues, *mat.Dense, *mat.Dense, error) {
	rows, slots := logits.Dims()
	zRows, zCols := z.Dims()
	if zCols != 1 {
		return LossValues{}, nil, nil, fmt.Errorf("loss: scalar prediction must have 1 column, got %d", zCols)
	}
	if zRows != rows || len(labels) != rows || len(targets) != rows {
		return LossValues{}, nil, nil, fmt.Errorf("loss: batch size mismatch: %d logit rows, %d z rows, %d labels, %d targets", rows, zRows, len(labels), len(targets))
	}
	if rows == 0 {
		return LossValues{}, nil, nil, fmt.Errorf("loss: empty batch")
	}

	n := float64(rows)
	dLogits := mat.NewDense(rows, slots, nil)
	dZ := mat.NewDense(rows, 1, nil)

	var classLoss float64
	for i := 0; i < rows; i++ {
		label := labels[i]
		if label < 0 || label >= slots {
			return LossValues{}, nil, nil, fmt.Errorf("loss: slot label %d out of range [0, %d)", label, slots)
		}

		row := logits.RawRowView(i)
		maxLogit := row[0]
		for _, v := range row {
			if v > maxLogit {
				maxLogit = v
			}
		}
		var sum float64
		probs := dLogits.RawRowView(i)
		for j, v := range row {
			e := math.Exp(v - maxLogit)
			probs[j] = e
			sum += e
		}
		inv := 1 / sum
		for j := range probs {
			probs[j] *= inv
		}
		classLoss += -math.Log(math.Max(probs[label], 1e-9))

		probs[label] -= 1
		for j := range probs {
			probs[j] /= n
		}
	}
	classLoss /= n

	var regLoss float64
	for i := 0; i < rows; i++ {
		d := z.At(i, 0) - targets[i]
		regLoss += d * d
		dZ.Set(i, 0, lambda*2*d/n)
	}
	regLoss /= n

	return LossValues{
		Class:    classLoss,
		Reg:      regLoss,
		Combined: classLoss + lambda*regLoss,
	}, dLogits, dZ, nil
}
