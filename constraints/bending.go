package constraints

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/drape/mesh"
	"github.com/pthm-cable/drape/particles"
	"github.com/pthm-cable/drape/vecmath"
)

// PerformantBending resists folding with a distance constraint between the
// two apexes of every bending quad. Cheap, but only an approximation.
type PerformantBending struct {
	quads      []mesh.Quad
	restLen    []float32
	compliance float32
	grad       [3]float32
}

// NewPerformantBending creates the constraint, taking apex rest distances
// from rest.
func NewPerformantBending(quads []mesh.Quad, rest []float32, compliance float32) *PerformantBending {
	b := &PerformantBending{
		quads:      quads,
		restLen:    make([]float32, len(quads)),
		compliance: compliance,
	}
	for i, q := range quads {
		b.restLen[i] = restLength(rest, q.ID2, q.ID3)
	}
	return b
}

// Kind implements Constraint.
func (b *PerformantBending) Kind() Kind { return KindPerformantBending }

// Solve implements Constraint.
func (b *PerformantBending) Solve(p *particles.Buffers, dt float32) {
	alpha := b.compliance / dt / dt
	for i, q := range b.quads {
		solvePair(p, int(q.ID2), int(q.ID3), b.restLen[i], alpha, b.grad[:])
	}
}

// IsometricBending is the quadratic bending energy of discrete shells: each
// quad carries a 4x4 matrix Q built from cotangent weights of the rest pose,
// and the constraint drives sum_jk Q[j,k] (p_j . p_k) towards zero.
//
// Q = s K K^T is rank one, so it is stored factored as the weight vector K
// and the scale s. Solving through the factors keeps a nearly flat quad
// stable; a rounded dense Q is not exactly singular on the flat pose.
type IsometricBending struct {
	quads      []mesh.Quad
	k          []float32 // 4 cotangent weights per quad
	scale      []float32
	compliance float32
	v          [3]float32
}

// NewIsometricBending creates the constraint, deriving Q from rest.
func NewIsometricBending(quads []mesh.Quad, rest []float32, compliance float32) *IsometricBending {
	b := &IsometricBending{
		quads:      quads,
		k:          make([]float32, 4*len(quads)),
		scale:      make([]float32, len(quads)),
		compliance: compliance,
	}
	for i, quad := range quads {
		k, s := restWeights(rest, quad)
		for j := range k {
			b.k[4*i+j] = float32(k[j])
		}
		b.scale[i] = float32(s)
	}
	return b
}

// Kind implements Constraint.
func (b *IsometricBending) Kind() Kind { return KindIsometricBending }

// Q returns the rest matrix of quad i.
func (b *IsometricBending) Q(i int) *mat.SymDense {
	k := make([]float64, 4)
	for j := range k {
		k[j] = float64(b.k[4*i+j])
	}
	q := mat.NewSymDense(4, nil)
	q.SymOuterK(float64(b.scale[i]), mat.NewVecDense(4, k))
	return q
}

// Solve implements Constraint.
func (b *IsometricBending) Solve(p *particles.Buffers, dt float32) {
	alpha := b.compliance / dt / dt
	v := b.v[:]

	for i, quad := range b.quads {
		s := b.scale[i]
		if s == 0 {
			continue
		}
		ids := [4]int{int(quad.ID0), int(quad.ID1), int(quad.ID2), int(quad.ID3)}
		k := b.k[4*i : 4*i+4]

		// C = s |v|^2 with v = sum_j K_j p_j, and grad_j = s K_j v.
		weightedSum(v, p.Pos, ids, k)
		vv := vecmath.LengthSquared(v, 0)
		c := s * vv
		if c == 0 {
			continue
		}

		var sum float32
		for j, id := range ids {
			sum += p.InvMass[id] * k[j] * k[j]
		}
		sum *= s * s * vv
		if sum+alpha == 0 {
			continue
		}

		dLambda := -(0.5 * c) / (sum + alpha)
		for j, id := range ids {
			if w := p.InvMass[id]; w != 0 {
				vecmath.Add(p.Pos, id, v, 0, w*dLambda*s*k[j])
			}
		}
	}
}

// Energy returns the summed bending energy of all quads at the current
// positions.
func (b *IsometricBending) Energy(p *particles.Buffers) float64 {
	var v [3]float32
	var e float64
	for i, quad := range b.quads {
		ids := [4]int{int(quad.ID0), int(quad.ID1), int(quad.ID2), int(quad.ID3)}
		weightedSum(v[:], p.Pos, ids, b.k[4*i:4*i+4])
		e += float64(b.scale[i]) * float64(vecmath.LengthSquared(v[:], 0))
	}
	return e
}

func weightedSum(dst, pos []float32, ids [4]int, k []float32) {
	vecmath.Zero(dst, 0)
	for j, id := range ids {
		vecmath.Add(dst, 0, pos, id, k[j])
	}
}

// restWeights returns K and s such that Q = s K K^T, with s = 3/(A0+A1).
// Degenerate quads (collinear edges or zero area) get s = 0.
func restWeights(rest []float32, quad mesh.Quad) (k [4]float64, s float64) {
	p0 := point(rest, quad.ID0)
	p1 := point(rest, quad.ID1)
	p2 := point(rest, quad.ID2)
	p3 := point(rest, quad.ID3)

	e0 := r3.Sub(p1, p0)
	e1 := r3.Sub(p2, p1)
	e2 := r3.Sub(p0, p2)
	e3 := r3.Sub(p3, p0)
	e4 := r3.Sub(p1, p3)

	cot1, ok1 := cotangent(e0, r3.Scale(-1, e1))
	cot2, ok2 := cotangent(e0, r3.Scale(-1, e2))
	cot3, ok3 := cotangent(e0, e3)
	cot4, ok4 := cotangent(e0, e4)

	area := 0.5*r3.Norm(r3.Cross(e0, e1)) + 0.5*r3.Norm(r3.Cross(e0, e3))
	if !(ok1 && ok2 && ok3 && ok4) || area == 0 {
		return k, 0
	}

	k = [4]float64{
		cot1 + cot4,
		cot2 + cot3,
		-cot1 - cot2,
		-cot3 - cot4,
	}
	return k, 3 / area
}

// cotangent returns the cotangent of the angle between a and b.
func cotangent(a, b r3.Vec) (float64, bool) {
	sin := r3.Norm(r3.Cross(a, b))
	if sin == 0 {
		return 0, false
	}
	cot := r3.Dot(a, b) / sin
	return cot, !math.IsInf(cot, 0) && !math.IsNaN(cot)
}

func point(buf []float32, id uint32) r3.Vec {
	i := 3 * int(id)
	return r3.Vec{X: float64(buf[i]), Y: float64(buf[i+1]), Z: float64(buf[i+2])}
}
