package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/drape/cloth"
)

// StateVersion is incremented when the format changes.
const StateVersion = 1

// State holds the particle state of every cloth for resuming a run.
type State struct {
	Version int          `json:"version"`
	Seed    int64        `json:"seed"`
	Frame   int32        `json:"frame"`
	Cloths  []ClothState `json:"cloths"`
}

// ClothState holds one cloth's particle buffers.
type ClothState struct {
	Name      string    `json:"name"`
	Positions []float32 `json:"positions"`
	Prev      []float32 `json:"prev"`
	Velocity  []float32 `json:"velocity"`
	InvMass   []float32 `json:"inv_mass"`
}

// CaptureCloth copies the particle state of c.
func CaptureCloth(name string, c *cloth.Cloth) ClothState {
	p := c.Particles()
	return ClothState{
		Name:      name,
		Positions: append([]float32(nil), p.Pos...),
		Prev:      append([]float32(nil), p.Prev...),
		Velocity:  append([]float32(nil), p.Vel...),
		InvMass:   append([]float32(nil), p.InvMass...),
	}
}

// Check reports whether the captured buffers fit c.
func (s ClothState) Check(c *cloth.Cloth) error {
	p := c.Particles()
	if len(s.Positions) != len(p.Pos) || len(s.Velocity) != len(p.Vel) ||
		len(s.Prev) != len(p.Prev) || len(s.InvMass) != len(p.InvMass) {
		return fmt.Errorf("restore %q: state has %d particles, cloth has %d", s.Name, len(s.InvMass), p.Len())
	}
	return nil
}

// Restore writes the captured state back into c and refreshes its normals.
func (s ClothState) Restore(c *cloth.Cloth) error {
	if err := s.Check(c); err != nil {
		return err
	}
	p := c.Particles()
	copy(p.Pos, s.Positions)
	copy(p.Prev, s.Prev)
	copy(p.Vel, s.Velocity)
	copy(p.InvMass, s.InvMass)
	c.UpdateVertexNormals()
	return nil
}

// SaveState writes a state to dir and returns the file path.
func SaveState(state *State, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("state_%d.json", state.Frame))

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write state: %w", err)
	}
	return path, nil
}

// LoadState reads a state from disk.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if state.Version != StateVersion {
		return nil, fmt.Errorf("state version %d, want %d", state.Version, StateVersion)
	}
	return &state, nil
}
