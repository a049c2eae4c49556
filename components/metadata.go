package components

import (
	"fmt"

	"github.com/pthm-cable/drape/cloth"
)

// FieldDescriptor describes a stats field for UI display.
type FieldDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Max    float32 // Bar full scale, 0 for plain text
}

// StatsFieldDescriptors returns metadata for the cloth stats shown in the HUD.
func StatsFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "kinetic", Label: "Kinetic", Format: "%.4f J"},
		{ID: "stretch_max", Label: "Stretch max", Format: "%.2f%%", Max: 5},
		{ID: "stretch_mean", Label: "Stretch mean", Format: "%.3f%%", Max: 1},
		{ID: "pairs", Label: "Pairs", Format: "%d"},
		{ID: "contacts", Label: "Contacts", Format: "%d"},
		{ID: "min_y", Label: "Lowest", Format: "%.3f m"},
	}
}

// FieldValue returns the numeric value of field id in s, as shown in the HUD.
func FieldValue(s cloth.Stats, id string) float64 {
	switch id {
	case "kinetic":
		return s.KineticEnergy
	case "stretch_max":
		return 100 * s.MaxStretch
	case "stretch_mean":
		return 100 * s.MeanStretch
	case "pairs":
		return float64(s.Pairs)
	case "contacts":
		return float64(s.Contacts)
	case "min_y":
		return float64(s.MinY)
	default:
		return 0
	}
}

// FormatField renders field f of s.
func FormatField(s cloth.Stats, f FieldDescriptor) string {
	v := FieldValue(s, f.ID)
	switch f.ID {
	case "pairs", "contacts":
		return fmt.Sprintf(f.Format, int(v))
	default:
		return fmt.Sprintf(f.Format, v)
	}
}
