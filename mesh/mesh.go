// Package mesh holds triangle mesh data and derives the topology and mass
// tables the cloth solver is built from.
package mesh

import "fmt"

// Mesh is the input handed to the simulation by a loader.
// Positions and Normals hold 3 floats per vertex, UVs 2 floats per vertex,
// Indices 3 vertex ids per triangle.
type Mesh struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// NumVertices returns the number of vertices in the mesh.
func (m *Mesh) NumVertices() int {
	return len(m.Positions) / 3
}

// NumTriangles returns the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int {
	return len(m.Indices) / 3
}

// Validate checks buffer shapes and that every index references a vertex.
func (m *Mesh) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d is not a multiple of 3", len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("indices length %d is not a multiple of 3", len(m.Indices))
	}
	n := m.NumVertices()
	if len(m.Normals) != 0 && len(m.Normals) != 3*n {
		return fmt.Errorf("normals length %d does not match %d vertices", len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != 2*n {
		return fmt.Errorf("uvs length %d does not match %d vertices", len(m.UVs), n)
	}
	for i, id := range m.Indices {
		if int(id) >= n {
			return fmt.Errorf("index %d at position %d out of range [0, %d)", id, i, n)
		}
	}
	return nil
}

// MustValidate is like Validate but panics on error.
// A malformed mesh is a loader defect, not a runtime condition.
func (m *Mesh) MustValidate() {
	if err := m.Validate(); err != nil {
		panic(fmt.Sprintf("mesh: invalid mesh: %v", err))
	}
}

// NewGrid builds a flat rectangular cloth of cols x rows vertices lying in the
// XZ plane at origin, spanning width along X and height along Z.
// Row 0 is at origin Z; normals point +Y.
func NewGrid(cols, rows int, width, height float32, origin [3]float32) *Mesh {
	if cols < 2 || rows < 2 {
		panic(fmt.Sprintf("mesh: grid needs at least 2x2 vertices, got %dx%d", cols, rows))
	}

	n := cols * rows
	m := &Mesh{
		Positions: make([]float32, 0, 3*n),
		Normals:   make([]float32, 0, 3*n),
		UVs:       make([]float32, 0, 2*n),
		Indices:   make([]uint32, 0, 6*(cols-1)*(rows-1)),
	}

	dx := width / float32(cols-1)
	dz := height / float32(rows-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Positions = append(m.Positions,
				origin[0]+float32(c)*dx,
				origin[1],
				origin[2]+float32(r)*dz,
			)
			m.Normals = append(m.Normals, 0, 1, 0)
			m.UVs = append(m.UVs, float32(c)/float32(cols-1), float32(r)/float32(rows-1))
		}
	}

	// Alternate the diagonal so the cloth has no preferred fold direction.
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			i0 := uint32(r*cols + c)
			i1 := i0 + 1
			i2 := i0 + uint32(cols)
			i3 := i2 + 1
			if (r+c)%2 == 0 {
				m.Indices = append(m.Indices, i0, i2, i1, i1, i2, i3)
			} else {
				m.Indices = append(m.Indices, i0, i2, i3, i0, i3, i1)
			}
		}
	}

	return m
}

// Row returns the vertex ids of grid row r for a mesh built by NewGrid.
func Row(cols, r int) []uint32 {
	ids := make([]uint32, cols)
	for c := range ids {
		ids[c] = uint32(r*cols + c)
	}
	return ids
}
