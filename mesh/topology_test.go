package mesh

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func dumpTopology(topo *Topology) string {
	var sb strings.Builder
	sb.WriteString("neighbors:")
	for _, n := range topo.Neighbors {
		fmt.Fprintf(&sb, " %d", n)
	}
	sb.WriteString("\nedges:")
	for _, e := range topo.StretchEdges {
		fmt.Fprintf(&sb, " %d-%d", e.ID0, e.ID1)
	}
	sb.WriteString("\nquads:")
	for _, q := range topo.BendingQuads {
		fmt.Fprintf(&sb, " %d,%d,%d,%d", q.ID0, q.ID1, q.ID2, q.ID3)
	}
	sb.WriteString("\n")
	return sb.String()
}

var expectedSquareTopology = `neighbors: -1 3 -1 1 -1 -1
edges: 0-2 1-0 1-2 2-3 3-1
quads: 2,1,0,3 1,2,3,0
`

func TestTopologyGolden(t *testing.T) {
	m := NewGrid(2, 2, 1, 1, [3]float32{})
	got := dumpTopology(BuildTopology(m.Indices))

	if got != expectedSquareTopology {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(expectedSquareTopology),
			B:        difflib.SplitLines(got),
			FromFile: "Expected",
			ToFile:   "Current",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("topology mismatch:\n%s", text)
	}
}

func TestNeighborsSymmetric(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
	}{
		{"grid 3x3", NewGrid(3, 3, 1, 1, [3]float32{}).Indices},
		{"grid 7x4", NewGrid(7, 4, 2, 1, [3]float32{}).Indices},
		{"single triangle", []uint32{0, 1, 2}},
		{"fan", []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 1}},
		{"random triangles", randomTriangles(rand.New(rand.NewSource(7)), 12, 40)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			neighbors := FindTriNeighbors(tc.indices)
			for e, n := range neighbors {
				if n == OpenEdge {
					continue
				}
				if neighbors[n] != int32(e) {
					t.Errorf("neighbor[%d] = %d but neighbor[%d] = %d", e, n, n, neighbors[n])
				}
			}
		})
	}
}

func TestStretchEdgesUnique(t *testing.T) {
	m := NewGrid(4, 5, 1, 1, [3]float32{})
	topo := BuildTopology(m.Indices)

	seen := make(map[[2]uint32]bool)
	for _, e := range topo.StretchEdges {
		key := [2]uint32{min(e.ID0, e.ID1), max(e.ID0, e.ID1)}
		if seen[key] {
			t.Errorf("edge %v listed twice", key)
		}
		seen[key] = true
	}

	// A cols x rows grid has (cols-1)*rows + cols*(rows-1) axis edges plus one
	// diagonal per cell.
	cols, rows := 4, 5
	want := (cols-1)*rows + cols*(rows-1) + (cols-1)*(rows-1)
	if len(seen) != want {
		t.Errorf("got %d unique edges, want %d", len(seen), want)
	}
}

func TestBendingQuadsShareEdge(t *testing.T) {
	m := NewGrid(3, 3, 1, 1, [3]float32{})
	topo := BuildTopology(m.Indices)

	// 3x3 grid: 8 triangles with 8 interior edges, two quads per edge.
	if len(topo.BendingQuads) != 16 {
		t.Errorf("got %d bending quads, want 16", len(topo.BendingQuads))
	}

	for _, q := range topo.BendingQuads {
		ids := map[uint32]bool{q.ID0: true, q.ID1: true, q.ID2: true, q.ID3: true}
		if len(ids) != 4 {
			t.Errorf("quad %+v does not have four distinct vertices", q)
		}
	}
}

func randomTriangles(rng *rand.Rand, numVerts, numTris int) []uint32 {
	indices := make([]uint32, 0, 3*numTris)
	for len(indices) < 3*numTris {
		a := uint32(rng.Intn(numVerts))
		b := uint32(rng.Intn(numVerts))
		c := uint32(rng.Intn(numVerts))
		if a == b || b == c || a == c {
			continue
		}
		indices = append(indices, a, b, c)
	}
	return indices
}
