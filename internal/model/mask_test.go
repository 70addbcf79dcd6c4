package model

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/dataset"
)

func maskedBatch(features []float64, rows, slots, width int) dataset.Batch {
	return dataset.Batch{
		Features:     mat.NewDense(rows, slots*width, features),
		Labels:       make([]int, rows),
		Targets:      make([]float64, rows),
		Slots:        slots,
		FeatureWidth: width,
	}
}

func TestMaskZeroesEmptySlots(t *testing.T) {
	// Two slots, two fields each. Slot 0 present, slot 1 empty (all-ones row
	// as the processing pipeline writes it).
	batch := maskedBatch([]float64{
		0.5, 0, 1, 1,
	}, 1, 2, 2)

	out, err := MaskEmptySlots(batch)
	if err != nil {
		t.Fatalf("mask: %v", err)
	}

	want := []float64{0.5, 0, 0, 1}
	got := out.Features.RawRowView(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("masked row mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestMaskPreservesPresentSlots(t *testing.T) {
	row := []float64{0.1, 0.2, 0.3, 0, 0.4, 0.5, 0.6, 0}
	batch := maskedBatch(append([]float64(nil), row...), 1, 2, 4)

	out, err := MaskEmptySlots(batch)
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	got := out.Features.RawRowView(0)
	for i := range row {
		if got[i] != row[i] {
			t.Fatalf("present slot changed at %d: got %v, want %v", i, got, row)
		}
	}
}

func TestMaskDoesNotMutateInput(t *testing.T) {
	original := []float64{0.5, 0, 1, 1, 1, 1, 0.9, 0}
	batch := maskedBatch(append([]float64(nil), original...), 1, 4, 2)

	if _, err := MaskEmptySlots(batch); err != nil {
		t.Fatalf("mask: %v", err)
	}

	after := batch.Features.RawRowView(0)
	for i := range original {
		if after[i] != original[i] {
			t.Fatalf("input mutated at %d: got %v, want %v", i, after, original)
		}
	}
}

func TestMaskOnlyTargetSlotSurvives(t *testing.T) {
	// All slots empty except slot 2: after masking, the only nonzero
	// non-mask content must sit in slot 2's fields.
	batch := maskedBatch([]float64{
		1, 1, 1, 1, 0.7, 0, 1, 1,
	}, 1, 4, 2)

	out, err := MaskEmptySlots(batch)
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	got := out.Features.RawRowView(0)
	for s := 0; s < 4; s++ {
		v := got[s*2]
		if s == 2 {
			if v != 0.7 {
				t.Fatalf("target slot content lost: got %v", got)
			}
		} else if v != 0 {
			t.Fatalf("slot %d leaked content %v", s, v)
		}
	}
}

func TestMaskWidthOneIsContentNoop(t *testing.T) {
	batch := maskedBatch([]float64{1, 0, 1}, 1, 3, 1)
	out, err := MaskEmptySlots(batch)
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	want := []float64{1, 0, 1}
	got := out.Features.RawRowView(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mask channel changed: got %v, want %v", got, want)
		}
	}
}

func TestMaskRejectsShapeMismatch(t *testing.T) {
	batch := maskedBatch([]float64{1, 2, 3, 4}, 1, 2, 2)
	batch.Slots = 3 // claims 3×2 = 6 columns, tensor has 4
	if _, err := MaskEmptySlots(batch); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}
