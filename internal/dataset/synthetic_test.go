package dataset

import "testing"

func TestGenerateSyntheticInvariants(t *testing.T) {
	const (
		n     = 20
		slots = 21
		width = 7
	)
	s, err := GenerateSynthetic(n, slots, width, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if s.Len() != n {
		t.Fatalf("generated %d samples, want %d", s.Len(), n)
	}

	for i := 0; i < n; i++ {
		row := s.features.RawRowView(i)
		label := s.labels[i]
		if label < 0 || label >= slots {
			t.Fatalf("sample %d: emitter slot %d out of range", i, label)
		}
		if row[label*width+width-1] != 0 {
			t.Fatalf("sample %d: emitter slot %d is masked empty", i, label)
		}
		if z := s.targets[i]; z < 0 || z > 1 {
			t.Fatalf("sample %d: z target %v out of [0, 1]", i, z)
		}

		active := 0
		for slot := 0; slot < slots; slot++ {
			base := slot * width
			mask := row[base+width-1]
			switch mask {
			case 0:
				active++
				for j := 0; j < width-1; j++ {
					if row[base+j] < 0 || row[base+j] > 1 {
						t.Fatalf("sample %d slot %d field %d out of range: %v", i, slot, j, row[base+j])
					}
				}
			case 1:
				// Empty slots keep the processor's all-ones fill.
				for j := 0; j < width-1; j++ {
					if row[base+j] != 1 {
						t.Fatalf("sample %d slot %d: empty slot carries %v", i, slot, row[base+j])
					}
				}
			default:
				t.Fatalf("sample %d slot %d: mask bit %v", i, slot, mask)
			}
		}
		if active == 0 {
			t.Fatalf("sample %d has no active pipes", i)
		}
	}
}

func TestGenerateSyntheticZeroSamples(t *testing.T) {
	s, err := GenerateSynthetic(0, 4, 2, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty split, got %d samples", s.Len())
	}
}
