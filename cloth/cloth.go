// Package cloth advances a triangle mesh with XPBD: particles integrated
// under gravity, projected by the registered constraints and resolved
// against self-collision each substep.
package cloth

import (
	"log/slog"

	"github.com/pthm-cable/drape/collision"
	"github.com/pthm-cable/drape/constraints"
	"github.com/pthm-cable/drape/mesh"
	"github.com/pthm-cable/drape/particles"
	"github.com/pthm-cable/drape/spatial"
	"github.com/pthm-cable/drape/vecmath"
)

// Options configures a cloth.
type Options struct {
	// Thickness is the default collision distance and hash cell size, and
	// scales the speed cap. A thicker self-collision widens the hash.
	Thickness float32
	// Friction damps relative velocity of colliding particles, 0 disables it.
	Friction float32
	// Substeps per frame used by Step and by the hash query radius.
	Substeps int
	// MaxSpeedScale caps particle speed at MaxSpeedScale*Thickness/dt.
	MaxSpeedScale float32
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		Thickness:     0.01,
		Friction:      0,
		Substeps:      15,
		MaxSpeedScale: 0.2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Thickness <= 0 {
		o.Thickness = d.Thickness
	}
	if o.Substeps <= 0 {
		o.Substeps = d.Substeps
	}
	if o.MaxSpeedScale <= 0 {
		o.MaxSpeedScale = d.MaxSpeedScale
	}
	return o
}

// Cloth owns the particle state of one mesh and the constraints acting on it.
type Cloth struct {
	opts    Options
	indices []uint32
	normals []float32
	topo    *mesh.Topology

	p    *particles.Buffers
	hash *spatial.Hash

	constraints []constraints.Constraint
	colliders   []collision.Collider

	// Kept for diagnostics.
	stretch *constraints.Distance
	self    *collision.SelfCollision

	scratch [9]float32
}

// New builds topology and masses for m. It panics if m has out-of-range
// indices. The mesh slices are copied.
func New(m *mesh.Mesh, opts Options) *Cloth {
	m.MustValidate()
	opts = opts.withDefaults()

	c := &Cloth{
		opts:    opts,
		indices: append([]uint32(nil), m.Indices...),
		normals: make([]float32, len(m.Positions)),
		topo:    mesh.BuildTopology(m.Indices),
		p:       particles.New(m.Positions, mesh.InverseMass(m.Positions, m.Indices)),
	}
	copy(c.normals, m.Normals)
	c.hash = spatial.NewHash(opts.Thickness, max(c.p.Len(), 1))

	slog.Debug("cloth created",
		"particles", c.p.Len(),
		"triangles", len(c.indices)/3,
		"stretch_edges", len(c.topo.StretchEdges),
		"bending_quads", len(c.topo.BendingQuads),
	)
	return c
}

// Options returns the effective options.
func (c *Cloth) Options() Options { return c.opts }

// Particles exposes the particle buffers.
func (c *Cloth) Particles() *particles.Buffers { return c.p }

// Topology returns the preprocessed mesh topology.
func (c *Cloth) Topology() *mesh.Topology { return c.topo }

// Positions returns the live position buffer, 3 floats per vertex.
func (c *Cloth) Positions() []float32 { return c.p.Pos }

// Normals returns the unnormalized vertex normals from the last
// UpdateVertexNormals.
func (c *Cloth) Normals() []float32 { return c.normals }

// Indices returns the triangle index list.
func (c *Cloth) Indices() []uint32 { return c.indices }

// Constraints returns the registered constraints in solve order.
func (c *Cloth) Constraints() []constraints.Constraint { return c.constraints }

// RegisterDistanceConstraint adds a stretch constraint over every edge.
func (c *Cloth) RegisterDistanceConstraint(compliance float32) {
	d := constraints.NewDistance(c.topo.StretchEdges, c.p.Rest, compliance)
	if c.stretch == nil {
		c.stretch = d
	}
	c.constraints = append(c.constraints, d)
}

// RegisterPerformantBendingConstraint adds apex-distance bending.
func (c *Cloth) RegisterPerformantBendingConstraint(compliance float32) {
	c.constraints = append(c.constraints,
		constraints.NewPerformantBending(c.topo.BendingQuads, c.p.Rest, compliance))
}

// RegisterIsometricBendingConstraint adds cotangent-weighted bending.
// It may be combined with performant bending; the resistances add up.
func (c *Cloth) RegisterIsometricBendingConstraint(compliance float32) {
	c.constraints = append(c.constraints,
		constraints.NewIsometricBending(c.topo.BendingQuads, c.p.Rest, compliance))
}

// RegisterSelfCollision adds particle self-collision at the given thickness
// using the cloth's friction. The hash cell size and query radius grow to
// the largest registered thickness. A non-positive thickness uses
// Options.Thickness.
func (c *Cloth) RegisterSelfCollision(thickness float32) {
	if thickness <= 0 {
		thickness = c.opts.Thickness
	}
	if thickness > c.hash.Spacing() {
		c.hash.SetSpacing(thickness)
	}
	s := collision.NewSelfCollision(thickness, c.opts.Friction, c.hash)
	if c.self == nil {
		c.self = s
	}
	c.colliders = append(c.colliders, s)
	slog.Debug("self-collision registered",
		"thickness", s.Thickness(),
		"cell_size", c.hash.Spacing(),
	)
}

// AddCollider registers an external collider, solved after self-collision.
func (c *Cloth) AddCollider(col collision.Collider) {
	c.colliders = append(c.colliders, col)
}

// Pin makes the given vertices immovable.
func (c *Cloth) Pin(ids ...uint32) {
	c.p.Pin(ids...)
}

// PinTopRow pins row 0 of a grid cloth with cols columns.
func (c *Cloth) PinTopRow(cols int) {
	c.Pin(mesh.Row(cols, 0)...)
}

// PinCorners pins the two corners of row 0 of a grid cloth.
func (c *Cloth) PinCorners(cols int) {
	c.Pin(0, uint32(cols-1))
}

// QueryRadius returns the adjacency radius for a frame of length dt: the
// farthest a particle can travel in one frame at the speed cap, and never
// less than the collision thickness.
func (c *Cloth) QueryRadius(dt float32) float32 {
	subDT := dt / float32(c.opts.Substeps)
	return max(c.CollisionThickness(), c.maxSpeed(subDT)*dt)
}

// CollisionThickness returns the largest self-collision thickness, or
// Options.Thickness if none is thicker.
func (c *Cloth) CollisionThickness() float32 { return c.hash.Spacing() }

func (c *Cloth) maxSpeed(dt float32) float32 {
	return c.opts.MaxSpeedScale * c.opts.Thickness / dt
}

// PreIntegration rebuilds the spatial hash and the collision adjacency for a
// frame of length dt.
func (c *Cloth) PreIntegration(dt float32) {
	c.hash.Create(c.p.Pos)
	c.hash.QueryAll(c.p.Pos, c.QueryRadius(dt))
}

// PreSolve integrates velocity and position of every free particle.
func (c *Cloth) PreSolve(dt float32, gravity [3]float32) {
	p := c.p
	g := gravity[:]
	maxV := c.maxSpeed(dt)
	maxV2 := maxV * maxV

	for i := 0; i < p.Len(); i++ {
		if p.InvMass[i] == 0 {
			continue
		}
		vecmath.Add(p.Vel, i, g, 0, dt)

		if v2 := vecmath.LengthSquared(p.Vel, i); v2 > maxV2 {
			vecmath.Scale(p.Vel, i, maxV/vecmath.Sqrt(v2))
		}

		vecmath.Copy(p.Prev, i, p.Pos, i)
		vecmath.Add(p.Pos, i, p.Vel, i, dt)
	}
}

// Solve runs every constraint in registration order, then every collider.
func (c *Cloth) Solve(dt float32) {
	for _, con := range c.constraints {
		con.Solve(c.p, dt)
	}
	for _, col := range c.colliders {
		col.Solve(c.p, dt)
	}
}

// PostSolve derives velocities from the positional change of the substep.
func (c *Cloth) PostSolve(dt float32) {
	p := c.p
	for i := 0; i < p.Len(); i++ {
		if p.InvMass[i] == 0 {
			continue
		}
		vecmath.SetDiff(p.Vel, i, p.Pos, i, p.Prev, i, 1/dt)
	}
}

// UpdateVertexNormals accumulates area-weighted face normals into each
// vertex. The result is not normalized.
func (c *Cloth) UpdateVertexNormals() {
	clear(c.normals)
	v := c.scratch[:]
	pos := c.p.Pos

	for t := 0; t+2 < len(c.indices); t += 3 {
		id0 := int(c.indices[t])
		id1 := int(c.indices[t+1])
		id2 := int(c.indices[t+2])

		vecmath.SetDiff(v, 0, pos, id1, pos, id0, 1)
		vecmath.SetDiff(v, 1, pos, id2, pos, id0, 1)
		vecmath.SetCross(v, 2, v, 0, v, 1)

		vecmath.Add(c.normals, id0, v, 2, 1.0/3)
		vecmath.Add(c.normals, id1, v, 2, 1.0/3)
		vecmath.Add(c.normals, id2, v, 2, 1.0/3)
	}
}

// Step advances one frame of length dt with Options.Substeps substeps.
func (c *Cloth) Step(dt float32, gravity [3]float32) {
	c.PreIntegration(dt)
	subDT := dt / float32(c.opts.Substeps)
	for range c.opts.Substeps {
		c.PreSolve(subDT, gravity)
		c.Solve(subDT)
		c.PostSolve(subDT)
	}
	c.UpdateVertexNormals()
}

// Reset returns the cloth to its rest pose. Pins are kept.
func (c *Cloth) Reset() {
	c.p.Reset()
	c.UpdateVertexNormals()
}
