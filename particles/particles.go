// Package particles holds the per-particle state buffers shared by the
// constraint and collision solvers.
package particles

import "github.com/pthm-cable/drape/vecmath"

// Buffers is the flat particle state of one simulated object.
// Vector buffers hold 3 floats per particle; InvMass holds one.
// Slices are allocated once and mutated in place.
type Buffers struct {
	Pos     []float32 // current positions
	Prev    []float32 // positions at the start of the substep
	Rest    []float32 // positions at construction, never mutated
	Vel     []float32
	InvMass []float32 // 0 = pinned
}

// New allocates buffers for the given initial positions.
// Positions are copied; invMass is used as-is.
func New(positions, invMass []float32) *Buffers {
	n := len(positions) / 3
	if len(invMass) != n {
		panic("particles: inverse mass length does not match particle count")
	}
	return &Buffers{
		Pos:     append([]float32(nil), positions...),
		Prev:    append([]float32(nil), positions...),
		Rest:    append([]float32(nil), positions...),
		Vel:     make([]float32, 3*n),
		InvMass: invMass,
	}
}

// Len returns the number of particles.
func (b *Buffers) Len() int {
	return len(b.InvMass)
}

// Pin makes the given particles immovable.
func (b *Buffers) Pin(ids ...uint32) {
	for _, id := range ids {
		b.InvMass[id] = 0
		vecmath.Zero(b.Vel, int(id))
	}
}

// Pinned reports whether particle i is immovable.
func (b *Buffers) Pinned(i int) bool {
	return b.InvMass[i] == 0
}

// Reset restores rest positions and clears velocities.
func (b *Buffers) Reset() {
	copy(b.Pos, b.Rest)
	copy(b.Prev, b.Rest)
	clear(b.Vel)
}

// KineticEnergy returns sum(0.5 * m * |v|^2) over free particles.
func (b *Buffers) KineticEnergy() float64 {
	var e float64
	for i, w := range b.InvMass {
		if w == 0 {
			continue
		}
		e += 0.5 * float64(vecmath.LengthSquared(b.Vel, i)) / float64(w)
	}
	return e
}
