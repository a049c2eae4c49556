// Package collision resolves particle contacts after the constraint pass.
package collision

import (
	"github.com/pthm-cable/drape/particles"
	"github.com/pthm-cable/drape/spatial"
	"github.com/pthm-cable/drape/vecmath"
)

// Collider is solved once per substep after all constraints.
type Collider interface {
	Solve(p *particles.Buffers, dt float32)
}

// SelfCollision keeps cloth particles at least thickness apart, using the
// adjacency built by a spatial hash. Pairs closer than thickness at rest are
// only kept at their rest distance.
type SelfCollision struct {
	thickness float32
	friction  float32
	hash      *spatial.Hash
	vecs      [9]float32

	contacts int
}

// NewSelfCollision creates a resolver over the adjacency of hash. Friction in
// [0, 1] damps the relative velocity of colliding pairs; 0 disables it.
func NewSelfCollision(thickness, friction float32, hash *spatial.Hash) *SelfCollision {
	return &SelfCollision{
		thickness: thickness,
		friction:  friction,
		hash:      hash,
	}
}

// Thickness returns the minimum separation.
func (s *SelfCollision) Thickness() float32 { return s.thickness }

// Contacts returns the number of pairs corrected by the last Solve.
func (s *SelfCollision) Contacts() int { return s.contacts }

// Solve implements Collider.
func (s *SelfCollision) Solve(p *particles.Buffers, dt float32) {
	thickness2 := s.thickness * s.thickness
	v := s.vecs[:]
	s.contacts = 0

	for id0 := 0; id0 < p.Len(); id0++ {
		if p.InvMass[id0] == 0 {
			continue
		}
		for _, adj := range s.hash.Adjacent(id0) {
			id1 := int(adj)
			if p.InvMass[id1] == 0 {
				continue
			}

			vecmath.SetDiff(v, 0, p.Pos, id1, p.Pos, id0, 1)
			dist2 := vecmath.LengthSquared(v, 0)
			if dist2 > thickness2 || dist2 == 0 {
				continue
			}

			restDist2 := vecmath.DistSquared(p.Rest, id0, p.Rest, id1)
			if dist2 > restDist2 {
				continue
			}
			minDist := s.thickness
			if restDist2 < thickness2 {
				minDist = vecmath.Sqrt(restDist2)
			}

			dist := vecmath.Sqrt(dist2)
			if minDist-dist <= 0 {
				continue
			}
			s.contacts++

			vecmath.Scale(v, 0, (minDist-dist)/dist)
			vecmath.Add(p.Pos, id0, v, 0, -0.5)
			vecmath.Add(p.Pos, id1, v, 0, 0.5)

			if s.friction == 0 {
				continue
			}

			// Pull both velocities toward their average.
			vecmath.SetDiff(v, 0, p.Pos, id0, p.Prev, id0, 1)
			vecmath.SetDiff(v, 1, p.Pos, id1, p.Prev, id1, 1)
			vecmath.SetSum(v, 2, v, 0, v, 1, 0.5)
			vecmath.SetDiff(v, 0, v, 2, v, 0, 1)
			vecmath.SetDiff(v, 1, v, 2, v, 1, 1)
			vecmath.Add(p.Pos, id0, v, 0, s.friction)
			vecmath.Add(p.Pos, id1, v, 1, s.friction)
		}
	}
}
