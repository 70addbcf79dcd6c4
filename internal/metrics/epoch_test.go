package metrics

import (
	"errors"
	"math"
	"testing"
)

func TestTallyRates(t *testing.T) {
	var tally Tally
	tally.AddBatch(1.0, 0.4, 3, 4)
	tally.AddBatch(0.5, 0.2, 0, 4)

	rates, err := tally.Rates()
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if math.Abs(rates.ClassLoss-0.75) > 1e-12 {
		t.Fatalf("class loss %v, want 0.75", rates.ClassLoss)
	}
	if math.Abs(rates.RegLoss-0.3) > 1e-12 {
		t.Fatalf("reg loss %v, want 0.3", rates.RegLoss)
	}
	if math.Abs(rates.Accuracy-0.375) > 1e-12 {
		t.Fatalf("accuracy %v, want 0.375", rates.Accuracy)
	}
	if tally.Samples() != 8 {
		t.Fatalf("samples %d, want 8", tally.Samples())
	}
}

func TestTallyAccuracyExtremes(t *testing.T) {
	var all Tally
	all.AddBatch(0, 0, 4, 4)
	rates, err := all.Rates()
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if rates.Accuracy != 1.0 {
		t.Fatalf("accuracy %v, want 1.0", rates.Accuracy)
	}

	var none Tally
	none.AddBatch(0, 0, 0, 4)
	rates, err = none.Rates()
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if rates.Accuracy != 0.0 {
		t.Fatalf("accuracy %v, want 0.0", rates.Accuracy)
	}
}

func TestTallyEmptyFails(t *testing.T) {
	var tally Tally
	if _, err := tally.Rates(); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}
