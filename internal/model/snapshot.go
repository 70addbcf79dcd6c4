package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is the opaque parameter state of a DualHead: every trainable
// tensor plus the batchnorm running statistics, enough to reproduce Eval
// mode behavior exactly.
type Snapshot struct {
	Slots        int              `json:"slots"`
	FeatureWidth int              `json:"feature_width"`
	HiddenWidth  int              `json:"hidden_width"`
	Tensors      []TensorSnapshot `json:"tensors"`
}

// TensorSnapshot is one named flat tensor.
type TensorSnapshot struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Snapshot captures a deep copy of the current parameter state.
func (n *DualHead) Snapshot() Snapshot {
	state := n.stateTensors()
	snap := Snapshot{
		Slots:        n.slots,
		FeatureWidth: n.featureWidth,
		HiddenWidth:  n.hidden,
		Tensors:      make([]TensorSnapshot, 0, len(state)),
	}
	for _, p := range state {
		data := make([]float64, len(p.Data))
		copy(data, p.Data)
		snap.Tensors = append(snap.Tensors, TensorSnapshot{Name: p.Name, Data: data})
	}
	return snap
}

// Restore loads a snapshot into a structurally identical net.
func (n *DualHead) Restore(snap Snapshot) error {
	if snap.Slots != n.slots || snap.FeatureWidth != n.featureWidth || snap.HiddenWidth != n.hidden {
		return fmt.Errorf("snapshot: architecture mismatch: snapshot is (%d, %d, %d), net is (%d, %d, %d)",
			snap.Slots, snap.FeatureWidth, snap.HiddenWidth, n.slots, n.featureWidth, n.hidden)
	}
	byName := make(map[string][]float64, len(snap.Tensors))
	for _, t := range snap.Tensors {
		byName[t.Name] = t.Data
	}
	for _, p := range n.stateTensors() {
		data, ok := byName[p.Name]
		if !ok {
			return fmt.Errorf("snapshot: missing tensor %q", p.Name)
		}
		if len(data) != len(p.Data) {
			return fmt.Errorf("snapshot: tensor %q has %d values, expected %d", p.Name, len(data), len(p.Data))
		}
		copy(p.Data, data)
	}
	return nil
}

// SaveSnapshot persists the net's parameter state as a JSON artifact.
func (n *DualHead) SaveSnapshot(path string) error {
	raw, err := json.Marshal(n.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot previously written by SaveSnapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
