package components

import (
	"testing"

	"github.com/pthm-cable/drape/cloth"
)

func TestFormatField(t *testing.T) {
	s := cloth.Stats{KineticEnergy: 0.5, MaxStretch: 0.012, Pairs: 42, MinY: -0.25}
	tests := []struct {
		id   string
		want string
	}{
		{"kinetic", "0.5000 J"},
		{"stretch_max", "1.20%"},
		{"pairs", "42"},
		{"contacts", "0"},
		{"min_y", "-0.250 m"},
	}

	byID := make(map[string]FieldDescriptor)
	for _, f := range StatsFieldDescriptors() {
		byID[f.ID] = f
	}
	for _, tt := range tests {
		f, ok := byID[tt.id]
		if !ok {
			t.Fatalf("no descriptor %q", tt.id)
		}
		if got := FormatField(s, f); got != tt.want {
			t.Errorf("FormatField(%s) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
