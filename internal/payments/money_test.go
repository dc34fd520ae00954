package payments

import "testing"

func TestMajorToMinor(t *testing.T) {
	tests := []struct {
		major float64
		want  int64
	}{
		{250.00, 25000},
		{249.99, 24999},
		{0.01, 1},
		{24999.00, 2499900},
		{19.999999, 2000}, // float noise rounds to the nearest paisa
	}

	for _, tt := range tests {
		if got := MajorToMinor(tt.major); got != tt.want {
			t.Errorf("MajorToMinor(%v) = %d, want %d", tt.major, got, tt.want)
		}
	}
}

func TestMinorToMajor(t *testing.T) {
	tests := []struct {
		minor int64
		want  float64
	}{
		{25000, 250.00},
		{1, 0.01},
		{2499900, 24999.00},
		{0, 0},
	}

	for _, tt := range tests {
		if got := MinorToMajor(tt.minor); got != tt.want {
			t.Errorf("MinorToMajor(%d) = %v, want %v", tt.minor, got, tt.want)
		}
	}
}
