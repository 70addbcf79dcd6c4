package dataset

import (
	"archive/zip"
	"fmt"
	"log"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Splits bundles the three partitions stored in pipe_network_data.npz.
type Splits struct {
	Train *Split
	Val   *Split
	Test  *Split
}

// LoadNPZ reads the archive written by the pipe-network processing pipeline:
// a zip of numpy arrays keyed {train,val,test}_features (N × slots ×
// feature_width), {train,val,test}_pipe_labels and {train,val,test}_z_labels.
// Samples whose pipe label is negative (the emitter was never matched to a
// slot) are dropped with a counted log line.
func LoadNPZ(path string, slots, featureWidth int) (*Splits, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer zr.Close()

	out := &Splits{}
	for _, part := range []struct {
		name string
		dst  **Split
	}{
		{"train", &out.Train},
		{"val", &out.Val},
		{"test", &out.Test},
	} {
		split, err := loadSplit(&zr.Reader, part.name, slots, featureWidth)
		if err != nil {
			return nil, fmt.Errorf("load %s split: %w", part.name, err)
		}
		*part.dst = split
	}
	return out, nil
}

func loadSplit(zr *zip.Reader, name string, slots, featureWidth int) (*Split, error) {
	features, shape, err := readFloatArray(zr, name+"_features.npy")
	if err != nil {
		return nil, err
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("%s_features: expected rank 3 (samples × slots × fields), got shape %v", name, shape)
	}
	if shape[1] != slots || shape[2] != featureWidth {
		return nil, fmt.Errorf("%s_features: expected shape (N, %d, %d), got (N, %d, %d)", name, slots, featureWidth, shape[1], shape[2])
	}
	n := shape[0]

	labels, err := readIntArray(zr, name+"_pipe_labels.npy")
	if err != nil {
		return nil, err
	}
	targets, zShape, err := readFloatArray(zr, name+"_z_labels.npy")
	if err != nil {
		return nil, err
	}
	if len(labels) != n || len(zShape) != 1 || zShape[0] != n {
		return nil, fmt.Errorf("%s labels: %d feature rows, %d pipe labels, %v z labels", name, n, len(labels), zShape)
	}

	width := slots * featureWidth
	kept := 0
	for _, l := range labels {
		if l >= 0 {
			kept++
		}
	}
	if dropped := n - kept; dropped > 0 {
		log.Printf("split=%s samples=%d dropped_unlabeled=%d", name, n, dropped)
	}
	if kept == 0 {
		return NewSplit(nil, nil, nil, slots, featureWidth)
	}

	dense := mat.NewDense(kept, width, nil)
	keptLabels := make([]int, 0, kept)
	keptTargets := make([]float64, 0, kept)
	row := 0
	for i := 0; i < n; i++ {
		if labels[i] < 0 {
			continue
		}
		dense.SetRow(row, features[i*width:(i+1)*width])
		keptLabels = append(keptLabels, labels[i])
		keptTargets = append(keptTargets, targets[i])
		row++
	}
	return NewSplit(dense, keptLabels, keptTargets, slots, featureWidth)
}

func openEntry(zr *zip.Reader, name string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("archive entry %q not found", name)
}

func readFloatArray(zr *zip.Reader, name string) ([]float64, []int, error) {
	entry, err := openEntry(zr, name)
	if err != nil {
		return nil, nil, err
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", name, err)
	}
	shape := r.Header.Descr.Shape

	switch r.Header.Descr.Type {
	case "<f4":
		var raw []float32
		if err := r.Read(&raw); err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}
		data := make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
		return data, shape, nil
	case "<f8":
		var data []float64
		if err := r.Read(&data); err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, shape, nil
	default:
		return nil, nil, fmt.Errorf("%s: unsupported dtype %q (want <f4 or <f8)", name, r.Header.Descr.Type)
	}
}

func readIntArray(zr *zip.Reader, name string) ([]int, error) {
	entry, err := openEntry(zr, name)
	if err != nil {
		return nil, err
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}

	switch r.Header.Descr.Type {
	case "<i4":
		var raw []int32
		if err := r.Read(&raw); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		data := make([]int, len(raw))
		for i, v := range raw {
			data[i] = int(v)
		}
		return data, nil
	case "<i8":
		var raw []int64
		if err := r.Read(&raw); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		data := make([]int, len(raw))
		for i, v := range raw {
			data[i] = int(v)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%s: unsupported dtype %q (want <i4 or <i8)", name, r.Header.Descr.Type)
	}
}
