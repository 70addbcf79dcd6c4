package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Tree shape limits used by the simulation config generators: a pipe network
// is at most 5 levels deep with up to 4 children per pipe, which is where the
// 1365-slot default comes from (sum of 4^i for i ≤ 5).
const (
	maxTreeDepth = 5
	maxChildren  = 4
)

type synthPipe struct {
	slot     int
	depth    int
	length   float64
	radius   float64
	children int
}

// GenerateSynthetic builds n random pipe-network samples with the same slot
// layout the processing pipeline produces: heap-style slot indices (child k
// of slot p sits at p·4+1+k), all-ones rows for empty slots, mask bit 0 for
// pipes that exist. One active pipe is chosen as the emitter; the regression
// target is its normalized z offset, and receiver peak times grow with hop
// distance from the emitter so the task is learnable.
func GenerateSynthetic(n, slots, featureWidth int, seed int64) (*Split, error) {
	if n <= 0 {
		return NewSplit(nil, nil, nil, slots, featureWidth)
	}
	rng := rand.New(rand.NewSource(seed))
	width := slots * featureWidth
	features := mat.NewDense(n, width, nil)
	labels := make([]int, n)
	targets := make([]float64, n)

	for i := 0; i < n; i++ {
		row := make([]float64, width)
		// Empty slots mirror the processor's np.ones initialization: every
		// field including the mask bit reads 1 until a pipe claims the slot.
		for j := range row {
			row[j] = 1
		}

		pipes := growTree(rng, slots)
		emitter := pipes[rng.Intn(len(pipes))]
		zNorm := rng.Float64() * emitter.length

		for _, p := range pipes {
			hasReceiver := 0.0
			tPeak := 0.0
			if rng.Float64() < 0.5 {
				hasReceiver = 1
				hops := math.Abs(float64(p.depth - emitter.depth))
				tPeak = clamp01(hops/maxTreeDepth + 0.1*rng.Float64())
			}
			vals := []float64{
				p.length,
				p.radius,
				float64(p.depth) / maxTreeDepth,
				float64(p.children) / maxChildren,
				hasReceiver,
				tPeak,
			}
			base := p.slot * featureWidth
			for j := 0; j < featureWidth-1; j++ {
				if j < len(vals) {
					row[base+j] = vals[j]
				} else {
					row[base+j] = 0
				}
			}
			row[base+featureWidth-1] = 0 // mask 0: pipe exists
		}

		features.SetRow(i, row)
		labels[i] = emitter.slot
		targets[i] = zNorm
	}

	return NewSplit(features, labels, targets, slots, featureWidth)
}

func growTree(rng *rand.Rand, slots int) []synthPipe {
	root := synthPipe{
		slot:   0,
		length: 0.2 + 0.8*rng.Float64(),
		radius: 0.2 + 0.8*rng.Float64(),
	}
	pipes := []synthPipe{root}
	queue := []int{0} // indices into pipes

	for len(queue) > 0 {
		pi := queue[0]
		queue = queue[1:]
		parent := pipes[pi]
		if parent.depth >= maxTreeDepth {
			continue
		}
		nc := rng.Intn(maxChildren + 1)
		for k := 0; k < nc; k++ {
			slot := parent.slot*maxChildren + 1 + k
			if slot >= slots {
				continue
			}
			child := synthPipe{
				slot:   slot,
				depth:  parent.depth + 1,
				length: 0.2 + 0.8*rng.Float64(),
				radius: 0.2 + 0.8*rng.Float64(),
			}
			pipes[pi].children++
			pipes = append(pipes, child)
			queue = append(queue, len(pipes)-1)
		}
	}
	return pipes
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
