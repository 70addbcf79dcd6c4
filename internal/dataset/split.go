package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Batch is one minibatch of pipe-network samples. Features has shape
// (B, slots·featureWidth), row-major: featureWidth contiguous fields per
// slot, mask bit last. A mask bit of 1 marks the slot as empty.
type Batch struct {
	Features     *mat.Dense
	Labels       []int     // emitter slot index per sample
	Targets      []float64 // normalized emitter z per sample
	Slots        int
	FeatureWidth int
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	if b.Features == nil {
		return 0
	}
	r, _ := b.Features.Dims()
	return r
}

// Split is a finite, re-iterable partition of the dataset held in memory.
type Split struct {
	features     *mat.Dense // N × slots·featureWidth
	labels       []int
	targets      []float64
	slots        int
	featureWidth int
}

// NewSplit wraps pre-built tensors into a Split, validating their shapes
// against each other and the configured slot/feature dimensions.
func NewSplit(features *mat.Dense, labels []int, targets []float64, slots, featureWidth int) (*Split, error) {
	if slots <= 0 || featureWidth < 1 {
		return nil, fmt.Errorf("dataset: invalid dimensions slots=%d feature_width=%d", slots, featureWidth)
	}
	rows, cols := 0, 0
	if features != nil {
		rows, cols = features.Dims()
	}
	if want := slots * featureWidth; cols != want && rows > 0 {
		return nil, fmt.Errorf("dataset: feature width mismatch: expected %d columns (%d slots × %d fields), got %d", want, slots, featureWidth, cols)
	}
	if len(labels) != rows || len(targets) != rows {
		return nil, fmt.Errorf("dataset: label shape mismatch: %d feature rows, %d slot labels, %d z labels", rows, len(labels), len(targets))
	}
	return &Split{
		features:     features,
		labels:       labels,
		targets:      targets,
		slots:        slots,
		featureWidth: featureWidth,
	}, nil
}

// Len returns the number of samples in the split.
func (s *Split) Len() int {
	if s == nil || s.features == nil {
		return 0
	}
	r, _ := s.features.Dims()
	return r
}

// Batches returns an iterator over minibatches of at most batchSize samples.
// A nil rng yields the stable ascending order used for evaluation passes;
// otherwise the sample order is a fresh shuffled permutation. Every batch
// copies its rows out of the split so callers can never alias the backing
// array.
func (s *Split) Batches(batchSize int, rng *rand.Rand) *BatchIter {
	n := s.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return &BatchIter{split: s, order: order, batchSize: batchSize}
}

// BatchIter walks a Split in a fixed sample order.
type BatchIter struct {
	split     *Split
	order     []int
	batchSize int
	pos       int
}

// Next returns the next batch, or ok=false when the split is exhausted.
func (it *BatchIter) Next() (Batch, bool) {
	if it.pos >= len(it.order) || it.batchSize <= 0 {
		return Batch{}, false
	}
	end := it.pos + it.batchSize
	if end > len(it.order) {
		end = len(it.order)
	}
	idx := it.order[it.pos:end]
	it.pos = end

	width := it.split.slots * it.split.featureWidth
	features := mat.NewDense(len(idx), width, nil)
	labels := make([]int, len(idx))
	targets := make([]float64, len(idx))
	for row, src := range idx {
		features.SetRow(row, it.split.features.RawRowView(src))
		labels[row] = it.split.labels[src]
		targets[row] = it.split.targets[src]
	}
	return Batch{
		Features:     features,
		Labels:       labels,
		Targets:      targets,
		Slots:        it.split.slots,
		FeatureWidth: it.split.featureWidth,
	}, true
}

// Partition shuffles the split and cuts it into train/val/test parts by
// ratio, mirroring the original processing pipeline's 0.7/0.15/0.15 split.
// The remainder after train and val goes to test.
func (s *Split) Partition(trainRatio, valRatio float64, rng *rand.Rand) (*Split, *Split, *Split, error) {
	if trainRatio <= 0 || valRatio < 0 || trainRatio+valRatio > 1 {
		return nil, nil, nil, fmt.Errorf("dataset: invalid partition ratios train=%g val=%g", trainRatio, valRatio)
	}
	n := s.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	nTrain := int(float64(n) * trainRatio)
	nVal := int(float64(n) * valRatio)

	take := func(idx []int) (*Split, error) {
		if len(idx) == 0 {
			return NewSplit(nil, nil, nil, s.slots, s.featureWidth)
		}
		width := s.slots * s.featureWidth
		features := mat.NewDense(len(idx), width, nil)
		labels := make([]int, len(idx))
		targets := make([]float64, len(idx))
		for row, src := range idx {
			features.SetRow(row, s.features.RawRowView(src))
			labels[row] = s.labels[src]
			targets[row] = s.targets[src]
		}
		return NewSplit(features, labels, targets, s.slots, s.featureWidth)
	}

	train, err := take(order[:nTrain])
	if err != nil {
		return nil, nil, nil, err
	}
	val, err := take(order[nTrain : nTrain+nVal])
	if err != nil {
		return nil, nil, nil, err
	}
	test, err := take(order[nTrain+nVal:])
	if err != nil {
		return nil, nil, nil, err
	}
	return train, val, test, nil
}
