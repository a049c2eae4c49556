package cloth

import (
	"math"
	"testing"

	"github.com/pthm-cable/drape/mesh"
	"github.com/pthm-cable/drape/particles"
)

var gravity = [3]float32{0, -9.8, 0}

func newGridCloth(cols, rows int, opts Options) *Cloth {
	return New(mesh.NewGrid(cols, rows, 1, 1, [3]float32{}), opts)
}

func TestNewPanicsOnBadIndices(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New did not panic on out-of-range index")
		}
	}()
	New(&mesh.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 3},
	}, Options{})
}

func TestOptionsDefaults(t *testing.T) {
	c := newGridCloth(2, 2, Options{Friction: 0.3})
	got := c.Options()
	if got.Thickness != 0.01 || got.Substeps != 15 || got.MaxSpeedScale != 0.2 {
		t.Errorf("defaults not applied: %+v", got)
	}
	if got.Friction != 0.3 {
		t.Errorf("Friction = %v, want 0.3", got.Friction)
	}
}

func TestQueryRadius(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want float32
	}{
		{"default covers three thicknesses", Options{Thickness: 0.01, Substeps: 15, MaxSpeedScale: 0.2}, 0.03},
		{"never below thickness", Options{Thickness: 0.01, Substeps: 2, MaxSpeedScale: 0.2}, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGridCloth(2, 2, tt.opts)
			if got := c.QueryRadius(1.0 / 60); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("QueryRadius = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreSolveClampsSpeed(t *testing.T) {
	c := newGridCloth(2, 2, Options{Thickness: 0.01, MaxSpeedScale: 0.2})
	dt := float32(1.0 / 60 / 15)
	c.PreSolve(dt, [3]float32{0, -1e6, 0})

	maxV := 0.2 * 0.01 / float64(dt)
	p := c.Particles()
	for i := 0; i < p.Len(); i++ {
		vy := float64(p.Vel[3*i+1])
		if math.Abs(vy+maxV) > 1e-3*maxV {
			t.Errorf("particle %d vy = %v, want %v", i, vy, -maxV)
		}
	}
}

func TestPinnedParticlesUntouched(t *testing.T) {
	c := newGridCloth(3, 3, Options{})
	c.PinCorners(3)
	c.RegisterDistanceConstraint(0)

	for range 5 {
		c.Step(1.0/60, gravity)
	}
	p := c.Particles()
	for _, id := range []int{0, 2} {
		for k := 0; k < 3; k++ {
			if p.Pos[3*id+k] != p.Rest[3*id+k] {
				t.Errorf("pinned particle %d moved to %v", id, p.Pos[3*id:3*id+3])
			}
		}
	}
}

func TestUpdateVertexNormalsIdempotent(t *testing.T) {
	c := newGridCloth(4, 4, Options{})
	c.PinTopRow(4)
	c.RegisterDistanceConstraint(0)
	c.RegisterIsometricBendingConstraint(0.01)
	for range 3 {
		c.Step(1.0/60, gravity)
	}

	c.UpdateVertexNormals()
	first := append([]float32(nil), c.Normals()...)
	c.UpdateVertexNormals()
	for i, v := range c.Normals() {
		if v != first[i] {
			t.Fatalf("normal[%d] = %v, then %v", i, first[i], v)
		}
	}
}

func TestUpdateVertexNormalsFlat(t *testing.T) {
	// 2x2 grid, unit square, two triangles of area 1/2.
	c := newGridCloth(2, 2, Options{})
	c.UpdateVertexNormals()

	n := c.Normals()
	var sumY float64
	for i := 0; i < len(n)/3; i++ {
		if n[3*i] != 0 || n[3*i+2] != 0 {
			t.Errorf("vertex %d normal %v has tangential part", i, n[3*i:3*i+3])
		}
		sumY += float64(n[3*i+1])
	}
	// Each triangle adds |cross| = 2*area to the total.
	if math.Abs(math.Abs(sumY)-2) > 1e-6 {
		t.Errorf("total normal length = %v, want 2", sumY)
	}
}

func TestHangingGrid(t *testing.T) {
	const cols = 3
	c := New(mesh.NewGrid(cols, 3, 1, 1, [3]float32{}), Options{
		Thickness:     0.01,
		Substeps:      15,
		MaxSpeedScale: 0.2,
	})
	c.PinTopRow(cols)
	c.RegisterDistanceConstraint(0)
	c.RegisterPerformantBendingConstraint(0)
	c.RegisterSelfCollision(0.01)

	p := c.Particles()
	initial := append([]float32(nil), p.Pos...)

	c.Step(1.0/60, gravity)

	assertHanging(t, p, initial, cols)
}

func TestHangingGridStaged(t *testing.T) {
	const cols, substeps = 3, 15
	c := newGridCloth(cols, 3, Options{})
	c.PinTopRow(cols)
	c.RegisterDistanceConstraint(0)
	c.RegisterPerformantBendingConstraint(0)
	c.RegisterSelfCollision(0.01)

	p := c.Particles()
	initial := append([]float32(nil), p.Pos...)

	dt := float32(1.0 / 60)
	subDT := dt / substeps
	c.PreIntegration(dt)
	for range substeps {
		c.PreSolve(subDT, gravity)
		c.Solve(subDT)
		c.PostSolve(subDT)
	}
	c.UpdateVertexNormals()

	assertHanging(t, p, initial, cols)
}

func assertHanging(t *testing.T, p *particles.Buffers, initial []float32, cols int) {
	t.Helper()
	for i := 0; i < p.Len(); i++ {
		if i < cols {
			for k := 0; k < 3; k++ {
				if p.Pos[3*i+k] != initial[3*i+k] {
					t.Errorf("pinned particle %d moved: %v", i, p.Pos[3*i:3*i+3])
				}
			}
			continue
		}
		if y0, y := initial[3*i+1], p.Pos[3*i+1]; !(y < y0) {
			t.Errorf("particle %d y = %v, want below %v", i, y, y0)
		}
	}
}

func TestStatsAndReset(t *testing.T) {
	c := newGridCloth(5, 5, Options{})
	c.PinTopRow(5)
	c.RegisterDistanceConstraint(0)
	c.RegisterSelfCollision(0.01)
	for range 10 {
		c.Step(1.0/60, gravity)
	}

	s := c.Stats()
	if s.KineticEnergy <= 0 {
		t.Errorf("KineticEnergy = %v, want > 0", s.KineticEnergy)
	}
	if s.MinY >= 0 {
		t.Errorf("MinY = %v, want below 0", s.MinY)
	}
	if s.MaxStretch < s.MeanStretch {
		t.Errorf("MaxStretch %v < MeanStretch %v", s.MaxStretch, s.MeanStretch)
	}

	c.Reset()
	s = c.Stats()
	if s.KineticEnergy != 0 || s.MinY != 0 || s.MaxStretch != 0 {
		t.Errorf("after Reset: %+v", s)
	}
}

type countingCollider struct{ calls int }

func (cc *countingCollider) Solve(*particles.Buffers, float32) { cc.calls++ }

func TestAddColliderSolvedEverySubstep(t *testing.T) {
	c := newGridCloth(2, 2, Options{Substeps: 4})
	cc := &countingCollider{}
	c.AddCollider(cc)
	c.Step(1.0/60, gravity)
	if cc.calls != 4 {
		t.Errorf("collider solved %d times, want 4", cc.calls)
	}
}

// twoSheets returns two parallel unit triangles gap apart along y.
func twoSheets(gap float32) *mesh.Mesh {
	return &mesh.Mesh{
		Positions: []float32{
			0, 0, 0, 1, 0, 0, 0, 0, 1,
			0, gap, 0, 1, gap, 0, 0, gap, 1,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
}

func TestSelfCollisionThickerThanOptions(t *testing.T) {
	c := New(twoSheets(0.05), Options{})
	c.RegisterSelfCollision(0.1)

	if got := c.CollisionThickness(); got != 0.1 {
		t.Errorf("CollisionThickness = %v, want 0.1", got)
	}
	if got := c.self.Thickness(); got != 0.1 {
		t.Errorf("resolver thickness = %v, want 0.1", got)
	}
	if got := c.QueryRadius(1.0 / 60); got < 0.1 {
		t.Errorf("QueryRadius = %v, want >= 0.1", got)
	}

	// Squeeze the sheets below their rest gap.
	p := c.Particles()
	for i := 3; i < 6; i++ {
		p.Pos[3*i+1] = 0.04
		p.Prev[3*i+1] = 0.04
	}

	c.Step(1.0/60, [3]float32{})

	if got := c.Stats().Pairs; got < 3 {
		t.Errorf("Pairs = %d, want at least the 3 stacked pairs", got)
	}
	for i := 0; i < 3; i++ {
		if gap := p.Pos[3*(i+3)+1] - p.Pos[3*i+1]; gap < 0.05-1e-4 {
			t.Errorf("vertex %d gap = %v, want >= 0.05", i, gap)
		}
	}
}

func TestSelfCollisionThinnerKeepsOptionsThickness(t *testing.T) {
	c := newGridCloth(2, 2, Options{Thickness: 0.02})
	c.RegisterSelfCollision(0.005)
	if got := c.CollisionThickness(); got != 0.02 {
		t.Errorf("CollisionThickness = %v, want 0.02", got)
	}
	if got := c.self.Thickness(); got != 0.005 {
		t.Errorf("resolver thickness = %v, want 0.005", got)
	}
}
