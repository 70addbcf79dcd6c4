package metrics

import "errors"

// ErrNoSamples reports a pass that accumulated nothing; normalizing would
// divide by zero.
var ErrNoSamples = errors.New("metrics: no samples accumulated")

// Tally accumulates per-sample sums across the batches of one pass.
// The zero value is ready to use.
type Tally struct {
	classLoss float64 // Σ mean batch class loss × batch size
	regLoss   float64 // Σ mean batch reg loss × batch size
	correct   int
	samples   int
}

// AddBatch folds one batch's results into the tally. classLoss and regLoss
// are the batch means; they are weighted by the batch size so partial final
// batches do not skew the epoch rates.
func (t *Tally) AddBatch(classLoss, regLoss float64, correct, samples int) {
	t.classLoss += classLoss * float64(samples)
	t.regLoss += regLoss * float64(samples)
	t.correct += correct
	t.samples += samples
}

// Samples returns the number of samples accumulated so far.
func (t *Tally) Samples() int { return t.samples }

// Rates carries the three normalized results of one pass.
type Rates struct {
	ClassLoss float64
	RegLoss   float64
	Accuracy  float64
}

// Rates normalizes the accumulated sums by the sample count.
func (t *Tally) Rates() (Rates, error) {
	if t.samples == 0 {
		return Rates{}, ErrNoSamples
	}
	n := float64(t.samples)
	return Rates{
		ClassLoss: t.classLoss / n,
		RegLoss:   t.regLoss / n,
		Accuracy:  float64(t.correct) / n,
	}, nil
}
