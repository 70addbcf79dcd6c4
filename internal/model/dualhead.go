package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// DropoutProb is the trunk's dropout probability, fixed by the architecture.
const DropoutProb = 0.3

// DualHead is the masked pipe predictor: a shared two-block trunk over the
// flattened slot features feeding two independent heads, one producing a
// logit per slot (which pipe holds the emitter) and one producing the
// emitter's normalized z offset.
type DualHead struct {
	slots        int
	featureWidth int
	hidden       int

	block1    *block
	block2    *block
	classHead *linear
	zHead     *linear

	mode Mode
}

// NewDualHead constructs the predictor with seeded random initialization.
// The trunk maps slots·featureWidth → hidden → hidden/2; the heads map
// hidden/2 → slots and hidden/2 → 1. The net starts in Train mode.
func NewDualHead(slots, featureWidth, hidden int, seed int64) (*DualHead, error) {
	if slots <= 0 || featureWidth < 1 {
		return nil, fmt.Errorf("model: invalid dimensions slots=%d feature_width=%d", slots, featureWidth)
	}
	if hidden < 2 {
		return nil, fmt.Errorf("model: hidden width must be >= 2 (got %d)", hidden)
	}
	rng := rand.New(rand.NewSource(seed))
	in := slots * featureWidth
	half := hidden / 2
	return &DualHead{
		slots:        slots,
		featureWidth: featureWidth,
		hidden:       hidden,
		block1:       newBlock("block1", in, hidden, DropoutProb, rng),
		block2:       newBlock("block2", hidden, half, DropoutProb, rng),
		classHead:    newLinear("class_head", half, slots, rng),
		zHead:        newLinear("z_head", half, 1, rng),
	}, nil
}

// SetMode switches between Train and Eval behavior. Callers must select the
// mode explicitly before Forward; the net never infers it.
func (n *DualHead) SetMode(m Mode) { n.mode = m }

// CurrentMode reports the active mode.
func (n *DualHead) CurrentMode() Mode { return n.mode }

// Slots returns the configured slot count.
func (n *DualHead) Slots() int { return n.slots }

// Forward runs the trunk and both heads over a batch of masked, flattened
// features of shape (B, slots·featureWidth). It returns the slot logits
// (B, slots) and the scalar prediction (B, 1).
func (n *DualHead) Forward(features *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if features == nil {
		return nil, nil, fmt.Errorf("model: nil feature tensor")
	}
	_, cols := features.Dims()
	if want := n.slots * n.featureWidth; cols != want {
		return nil, nil, fmt.Errorf("model: feature shape mismatch: expected %d columns (%d slots × %d fields), got %d", want, n.slots, n.featureWidth, cols)
	}
	h := n.block2.forward(n.block1.forward(features, n.mode), n.mode)
	return n.classHead.forward(h), n.zHead.forward(h), nil
}

// Backward propagates the loss gradients from both heads down through the
// trunk, leaving every parameter's gradient populated for the optimizer.
// Must follow a Forward call in Train mode.
func (n *DualHead) Backward(dLogits, dZ *mat.Dense) {
	dTrunk := n.classHead.backward(dLogits)
	dTrunk.Add(dTrunk, n.zHead.backward(dZ))
	n.block1.backward(n.block2.backward(dTrunk))
}

// Params enumerates every trainable parameter tensor.
func (n *DualHead) Params() []Param {
	var out []Param
	out = append(out, n.block1.params()...)
	out = append(out, n.block2.params()...)
	out = append(out, n.classHead.params()...)
	out = append(out, n.zHead.params()...)
	return out
}

// ZeroGrad clears all accumulated gradients before a backward pass.
func (n *DualHead) ZeroGrad() {
	for _, p := range n.Params() {
		for i := range p.Grad {
			p.Grad[i] = 0
		}
	}
}

func (n *DualHead) stateTensors() []Param {
	out := n.Params()
	out = append(out, n.block1.bn.state()...)
	out = append(out, n.block2.bn.state()...)
	return out
}
