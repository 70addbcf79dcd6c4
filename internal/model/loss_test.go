package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestObjectiveCombinesWithWeight(t *testing.T) {
	logits := mat.NewDense(2, 3, []float64{1.5, -0.2, 0.3, 0.1, 0.9, -1.0})
	z := mat.NewDense(2, 1, []float64{0.4, 0.6})

	for _, lambda := range []float64{1, 10, 0.25} {
		losses, _, _, err := Objective(logits, z, []int{0, 1}, []float64{0.2, 0.6}, lambda)
		if err != nil {
			t.Fatalf("objective: %v", err)
		}
		want := losses.Class + lambda*losses.Reg
		if losses.Combined != want {
			t.Fatalf("lambda=%g: combined=%v, want %v", lambda, losses.Combined, want)
		}
	}
}

func TestObjectiveKnownValues(t *testing.T) {
	// Uniform logits over 4 slots: class loss is exactly ln 4. The scalar
	// misses by 0.5, so reg loss is 0.25 and combined is ln 4 + 10·0.25.
	logits := mat.NewDense(1, 4, []float64{2, 2, 2, 2})
	z := mat.NewDense(1, 1, []float64{0.7})

	losses, dLogits, dZ, err := Objective(logits, z, []int{1}, []float64{0.2}, 10)
	if err != nil {
		t.Fatalf("objective: %v", err)
	}
	if math.Abs(losses.Class-math.Log(4)) > 1e-12 {
		t.Fatalf("class loss %v, want ln 4", losses.Class)
	}
	if math.Abs(losses.Reg-0.25) > 1e-12 {
		t.Fatalf("reg loss %v, want 0.25", losses.Reg)
	}
	if math.Abs(losses.Combined-(math.Log(4)+2.5)) > 1e-12 {
		t.Fatalf("combined %v, want ln4 + 2.5", losses.Combined)
	}

	// Logit gradient rows sum to zero for softmax cross-entropy.
	sum := 0.0
	for _, v := range dLogits.RawRowView(0) {
		sum += v
	}
	if math.Abs(sum) > 1e-12 {
		t.Fatalf("dLogits row sums to %v, want 0", sum)
	}

	// dZ = λ·2·(pred−target)/n = 10·2·0.5 = 10.
	if math.Abs(dZ.At(0, 0)-10) > 1e-12 {
		t.Fatalf("dZ = %v, want 10", dZ.At(0, 0))
	}
}

func TestObjectiveRejectsBadLabel(t *testing.T) {
	logits := mat.NewDense(1, 3, []float64{0, 0, 0})
	z := mat.NewDense(1, 1, []float64{0})
	if _, _, _, err := Objective(logits, z, []int{3}, []float64{0}, 10); err == nil {
		t.Fatal("expected out-of-range label error")
	}
	if _, _, _, err := Objective(logits, z, []int{-1}, []float64{0}, 10); err == nil {
		t.Fatal("expected negative label error")
	}
}

func TestObjectiveRejectsShapeMismatch(t *testing.T) {
	logits := mat.NewDense(2, 3, nil)
	z := mat.NewDense(1, 1, nil)
	if _, _, _, err := Objective(logits, z, []int{0, 1}, []float64{0, 0}, 10); err == nil {
		t.Fatal("expected batch size mismatch error")
	}
}
