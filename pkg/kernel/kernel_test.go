package kernel

import "testing"

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, 5, -2, -3, 0, 4, 2, 2, 2}}
	min, max := m.Bounds()
	if min != [3]float32{-3, 0, -2} {
		t.Errorf("min = %v, want [-3 0 -2]", min)
	}
	if max != [3]float32{2, 5, 4} {
		t.Errorf("max = %v, want [2 5 4]", max)
	}

	min, max = (&Mesh{}).Bounds()
	if min != [3]float32{} || max != [3]float32{} {
		t.Errorf("empty mesh bounds = %v %v, want zeros", min, max)
	}
}

func TestRoundModeString(t *testing.T) {
	if RoundClosed.String() != "closed" || RoundOpen.String() != "open" {
		t.Errorf("unexpected names %q %q", RoundClosed, RoundOpen)
	}
	if got := RoundMode(9).String(); got != "RoundMode(9)" {
		t.Errorf("RoundMode(9).String() = %q", got)
	}
}

func TestParseBeamMode(t *testing.T) {
	for _, m := range []BeamMode{BeamFreeEnds, BeamForwardOnly, BeamAbsoluteAngles} {
		got, err := ParseBeamMode(m.String())
		if err != nil {
			t.Fatalf("ParseBeamMode(%q) error = %v", m, err)
		}
		if got != m {
			t.Errorf("ParseBeamMode(%q) = %v", m, got)
		}
	}
	if _, err := ParseBeamMode("sideways"); err == nil {
		t.Error("expected error for unknown beam mode")
	}
}
