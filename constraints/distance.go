package constraints

import (
	"math"

	"github.com/pthm-cable/drape/mesh"
	"github.com/pthm-cable/drape/particles"
	"github.com/pthm-cable/drape/vecmath"
)

// Distance keeps each stretch edge at its rest length.
// With zero compliance it acts as a rigid edge constraint.
type Distance struct {
	edges      []mesh.Edge
	restLen    []float32
	compliance float32
	grad       [3]float32
}

// NewDistance creates a distance constraint over edges, taking rest lengths
// from rest.
func NewDistance(edges []mesh.Edge, rest []float32, compliance float32) *Distance {
	d := &Distance{
		edges:      edges,
		restLen:    make([]float32, len(edges)),
		compliance: compliance,
	}
	for i, e := range edges {
		d.restLen[i] = restLength(rest, e.ID0, e.ID1)
	}
	return d
}

// Kind implements Constraint.
func (d *Distance) Kind() Kind { return KindDistance }

// Solve implements Constraint.
func (d *Distance) Solve(p *particles.Buffers, dt float32) {
	alpha := d.compliance / dt / dt
	for i, e := range d.edges {
		solvePair(p, int(e.ID0), int(e.ID1), d.restLen[i], alpha, d.grad[:])
	}
}

// Len returns the number of edges.
func (d *Distance) Len() int { return len(d.edges) }

// StretchError returns the maximum and mean relative deviation of edge
// lengths from their rest lengths.
func (d *Distance) StretchError(p *particles.Buffers) (maxErr, meanErr float64) {
	if len(d.edges) == 0 {
		return 0, 0
	}
	var sum float64
	for i, e := range d.edges {
		rest := float64(d.restLen[i])
		if rest == 0 {
			continue
		}
		length := float64(vecmath.Sqrt(vecmath.DistSquared(p.Pos, int(e.ID0), p.Pos, int(e.ID1))))
		rel := math.Abs(length-rest) / rest
		sum += rel
		maxErr = max(maxErr, rel)
	}
	return maxErr, sum / float64(len(d.edges))
}
