package util

import "testing"

func TestClampInt(t *testing.T) {
	tests := []struct {
		name       string
		v, lo, hi  int
		want       int
	}{
		{"below range", -5, 0, 20, 0},
		{"at lower bound", 0, 0, 20, 0},
		{"inside range", 13, 0, 20, 13},
		{"at upper bound", 20, 0, 20, 20},
		{"above range", 47, 0, 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampInt(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("ClampInt(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}
