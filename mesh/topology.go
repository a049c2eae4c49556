package mesh

import (
	"cmp"
	"slices"
)

// OpenEdge marks a triangle edge slot with no neighboring triangle.
const OpenEdge int32 = -1

// Edge is an undirected stretch edge between two vertices.
type Edge struct {
	ID0, ID1 uint32
}

// Quad is a pair of triangles sharing the edge ID0-ID1.
// ID2 is the apex of the first triangle, ID3 the apex of its neighbor.
//
//	    id2
//	   /   \
//	id0 --- id1
//	   \   /
//	    id3
type Quad struct {
	ID0, ID1, ID2, ID3 uint32
}

type edgeEntry struct {
	id0, id1 uint32
	slot     int32
}

// FindTriNeighbors returns the neighbor table for a triangle list.
// Slot 3*t+j describes edge j of triangle t, running from vertex j to vertex
// (j+1)%3. Its value is the slot of the matching edge in the adjacent
// triangle, or OpenEdge. The table is symmetric.
func FindTriNeighbors(indices []uint32) []int32 {
	numTris := len(indices) / 3
	edges := make([]edgeEntry, 0, 3*numTris)
	for t := 0; t < numTris; t++ {
		for j := 0; j < 3; j++ {
			a := indices[3*t+j]
			b := indices[3*t+(j+1)%3]
			edges = append(edges, edgeEntry{
				id0:  min(a, b),
				id1:  max(a, b),
				slot: int32(3*t + j),
			})
		}
	}

	// Shared edges end up next to each other.
	slices.SortStableFunc(edges, func(a, b edgeEntry) int {
		if c := cmp.Compare(a.id0, b.id0); c != 0 {
			return c
		}
		return cmp.Compare(a.id1, b.id1)
	})

	neighbors := make([]int32, len(indices))
	for i := range neighbors {
		neighbors[i] = OpenEdge
	}

	for i := 0; i+1 < len(edges); {
		e0, e1 := edges[i], edges[i+1]
		if e0.id0 == e1.id0 && e0.id1 == e1.id1 {
			neighbors[e0.slot] = e1.slot
			neighbors[e1.slot] = e0.slot
			i += 2
			continue
		}
		i++
	}

	return neighbors
}

// StretchEdges lists every undirected mesh edge exactly once.
// Interior edges are taken from the side where id0 < id1; open edges are
// always kept so boundary edges are never dropped.
func StretchEdges(indices []uint32, neighbors []int32) []Edge {
	numTris := len(indices) / 3
	edges := make([]Edge, 0, 3*numTris/2+1)
	for t := 0; t < numTris; t++ {
		for j := 0; j < 3; j++ {
			id0 := indices[3*t+j]
			id1 := indices[3*t+(j+1)%3]
			if neighbors[3*t+j] == OpenEdge || id0 < id1 {
				edges = append(edges, Edge{ID0: id0, ID1: id1})
			}
		}
	}
	return edges
}

// BendingQuads lists one quad per triangle edge that has a neighbor.
// Each shared edge therefore yields two quads, one seen from each side.
func BendingQuads(indices []uint32, neighbors []int32) []Quad {
	numTris := len(indices) / 3
	var quads []Quad
	for t := 0; t < numTris; t++ {
		for j := 0; j < 3; j++ {
			n := neighbors[3*t+j]
			if n == OpenEdge {
				continue
			}
			nt := int(n) / 3
			nj := int(n) % 3
			quads = append(quads, Quad{
				ID0: indices[3*t+j],
				ID1: indices[3*t+(j+1)%3],
				ID2: indices[3*t+(j+2)%3],
				ID3: indices[3*nt+(nj+2)%3],
			})
		}
	}
	return quads
}

// Topology bundles the tables derived from a triangle list.
type Topology struct {
	Neighbors    []int32
	StretchEdges []Edge
	BendingQuads []Quad
}

// BuildTopology derives neighbors, stretch edges and bending quads.
func BuildTopology(indices []uint32) *Topology {
	neighbors := FindTriNeighbors(indices)
	return &Topology{
		Neighbors:    neighbors,
		StretchEdges: StretchEdges(indices, neighbors),
		BendingQuads: BendingQuads(indices, neighbors),
	}
}
