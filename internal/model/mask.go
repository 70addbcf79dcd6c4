package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/daghanerdonmez/molecular-simulation-mlp/internal/dataset"
)

// MaskEmptySlots returns a copy of the batch in which every slot whose mask
// bit reads 1 has all of its other fields zeroed. The mask bit itself is
// preserved in both cases so the network can condition on which slots are
// absent. The caller's batch is never mutated.
//
// Empty slots arrive from the processing pipeline as all-ones rows, so
// without this transform the trunk would read fabricated feature content
// for pipes that do not exist.
func MaskEmptySlots(b dataset.Batch) (dataset.Batch, error) {
	if b.Features == nil {
		return dataset.Batch{}, fmt.Errorf("mask: batch has no feature tensor")
	}
	rows, cols := b.Features.Dims()
	want := b.Slots * b.FeatureWidth
	if b.Slots <= 0 || b.FeatureWidth < 1 || cols != want {
		return dataset.Batch{}, fmt.Errorf("mask: feature shape mismatch: expected %d columns (%d slots × %d fields), got %d", want, b.Slots, b.FeatureWidth, cols)
	}

	masked := mat.DenseCopyOf(b.Features)
	for i := 0; i < rows; i++ {
		row := masked.RawRowView(i)
		for s := 0; s < b.Slots; s++ {
			base := s * b.FeatureWidth
			if row[base+b.FeatureWidth-1] != 1 {
				continue
			}
			for j := 0; j < b.FeatureWidth-1; j++ {
				row[base+j] = 0
			}
		}
	}

	out := b
	out.Features = masked
	return out, nil
}
