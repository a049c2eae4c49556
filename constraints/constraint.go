// Package constraints implements the XPBD constraints used by the cloth
// solver: a stretch distance constraint and two bending variants.
//
// Every constraint owns its rest quantities and mutates shared particle
// buffers in place when solved. Constraints are solved Gauss-Seidel style in
// the order they were registered.
package constraints

import (
	"github.com/pthm-cable/drape/particles"
	"github.com/pthm-cable/drape/vecmath"
)

// Kind identifies a constraint variant.
type Kind uint8

const (
	KindDistance Kind = iota
	KindPerformantBending
	KindIsometricBending
)

// String returns the config name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDistance:
		return "distance"
	case KindPerformantBending:
		return "performant_bending"
	case KindIsometricBending:
		return "isometric_bending"
	default:
		return "unknown"
	}
}

// Constraint is one solvable constraint set.
type Constraint interface {
	Kind() Kind
	// Solve projects every constraint in the set once.
	Solve(p *particles.Buffers, dt float32)
}

// solvePair applies one XPBD distance projection between particles id0 and
// id1. grad is scratch space for one vector.
func solvePair(p *particles.Buffers, id0, id1 int, restLen, alpha float32, grad []float32) {
	w0 := p.InvMass[id0]
	w1 := p.InvMass[id1]
	w := w0 + w1
	if w == 0 {
		return
	}

	vecmath.SetDiff(grad, 0, p.Pos, id0, p.Pos, id1, 1)
	length := vecmath.Length(grad, 0)
	if length == 0 {
		return
	}

	c := length - restLen
	s := -c / (w + alpha) / length
	vecmath.Add(p.Pos, id0, grad, 0, s*w0)
	vecmath.Add(p.Pos, id1, grad, 0, -s*w1)
}

func restLength(rest []float32, id0, id1 uint32) float32 {
	return vecmath.Sqrt(vecmath.DistSquared(rest, int(id0), rest, int(id1)))
}
