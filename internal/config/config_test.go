package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "data_path: data.npz\nepochs: 5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Epochs != 5 {
		t.Fatalf("epochs = %d, want 5", cfg.Epochs)
	}
	if cfg.Slots != 1365 || cfg.FeatureWidth != 7 || cfg.HiddenWidth != 2048 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.RegressionWeight != 10.0 {
		t.Fatalf("regression weight = %v, want 10.0", cfg.RegressionWeight)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no source":  "epochs: 5\n",
		"bad epochs": "data_path: d.npz\nepochs: -1\n",
		"bad batch":  "data_path: d.npz\nbatch_size: 0\n",
		"bad lr":     "data_path: d.npz\nlearning_rate: -0.1\n",
		"bad yaml":   "data_path: [unterminated\n",
		"bad slots":  "data_path: d.npz\nslots: 0\n",
		"bad reg":    "data_path: d.npz\nregression_weight: -1\n",
		"bad feat":   "data_path: d.npz\nfeature_width: 0\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.DataPath = "original.npz"

	cfg.ApplyOverrides(Overrides{
		DataPath:  "override.npz",
		Epochs:    3,
		BatchSize: 16,
		Seed:      9,
	})

	if cfg.DataPath != "override.npz" || cfg.Epochs != 3 || cfg.BatchSize != 16 || cfg.Seed != 9 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LearningRate != 3e-4 {
		t.Fatalf("zero override clobbered learning rate: %v", cfg.LearningRate)
	}
}

func TestSyntheticOnlyConfigValidates(t *testing.T) {
	cfg := Default()
	cfg.SyntheticSamples = 100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
