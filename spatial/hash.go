// Package spatial provides a uniform spatial hash for particle neighbor
// queries.
package spatial

import (
	"math"

	"github.com/pthm-cable/drape/vecmath"
)

// Hash buckets particles into grid cells of size spacing using a dense
// counting-sort layout. After Create, Query finds candidates near one particle
// and QueryAll builds the full adjacency list of close pairs.
type Hash struct {
	spacing       float32
	maxNumObjects int
	tableSize     int

	cellStart   []int32 // tableSize+1 entries, last is a guard
	particleMap []int32
	queryIDs    []int32

	// Dedupe stamps: seen[id] == stamp means id was already collected by the
	// current query. Distinct cells can share a bucket.
	seen  []uint32
	stamp uint32

	firstAdjID []int32 // maxNumObjects+1 entries
	adjIDs     []int32
	numAdj     int
}

// NewHash creates a hash for up to maxNumObjects particles.
func NewHash(spacing float32, maxNumObjects int) *Hash {
	if spacing <= 0 {
		panic("spatial: spacing must be positive")
	}
	if maxNumObjects < 1 {
		panic("spatial: maxNumObjects must be at least 1")
	}
	tableSize := 5 * maxNumObjects
	return &Hash{
		spacing:       spacing,
		maxNumObjects: maxNumObjects,
		tableSize:     tableSize,
		cellStart:     make([]int32, tableSize+1),
		particleMap:   make([]int32, maxNumObjects),
		queryIDs:      make([]int32, 0, maxNumObjects),
		seen:          make([]uint32, maxNumObjects),
		firstAdjID:    make([]int32, maxNumObjects+1),
		adjIDs:        make([]int32, 10*maxNumObjects),
	}
}

// Spacing returns the cell size.
func (h *Hash) Spacing() float32 { return h.spacing }

// SetSpacing changes the cell size. It takes effect at the next Create.
func (h *Hash) SetSpacing(spacing float32) {
	if spacing <= 0 {
		panic("spatial: spacing must be positive")
	}
	h.spacing = spacing
}

func (h *Hash) hashCoords(xi, yi, zi int) int {
	// Products wrap to 32 bits before mixing.
	v := int32(int64(xi)*92837111) ^ int32(int64(yi)*689287499) ^ int32(int64(zi)*283923481)
	a := int64(v)
	if a < 0 {
		a = -a
	}
	return int(a % int64(h.tableSize))
}

func (h *Hash) intCoord(coord float32) int {
	return int(math.Floor(float64(coord / h.spacing)))
}

func (h *Hash) hashPos(pos []float32, nr int) int {
	return h.hashCoords(
		h.intCoord(pos[3*nr]),
		h.intCoord(pos[3*nr+1]),
		h.intCoord(pos[3*nr+2]),
	)
}

func (h *Hash) numObjects(pos []float32) int {
	return min(len(pos)/3, h.maxNumObjects)
}

// Create rebuilds the table from pos.
func (h *Hash) Create(pos []float32) {
	n := h.numObjects(pos)
	clear(h.cellStart)
	clear(h.particleMap)

	for i := 0; i < n; i++ {
		h.cellStart[h.hashPos(pos, i)]++
	}

	var start int32
	for i := 0; i < h.tableSize; i++ {
		start += h.cellStart[i]
		h.cellStart[i] = start
	}
	h.cellStart[h.tableSize] = start

	for i := 0; i < n; i++ {
		c := h.hashPos(pos, i)
		h.cellStart[c]--
		h.particleMap[h.cellStart[c]] = int32(i)
	}
}

// Query returns the ids bucketed in every cell overlapping the box of
// half-size maxDist around particle nr. Each id appears once. The result
// includes nr itself and is only valid until the next query.
func (h *Hash) Query(pos []float32, nr int, maxDist float32) []int32 {
	x, y, z := pos[3*nr], pos[3*nr+1], pos[3*nr+2]
	x0, y0, z0 := h.intCoord(x-maxDist), h.intCoord(y-maxDist), h.intCoord(z-maxDist)
	x1, y1, z1 := h.intCoord(x+maxDist), h.intCoord(y+maxDist), h.intCoord(z+maxDist)

	h.nextStamp()
	h.queryIDs = h.queryIDs[:0]

	for xi := x0; xi <= x1; xi++ {
		for yi := y0; yi <= y1; yi++ {
			for zi := z0; zi <= z1; zi++ {
				c := h.hashCoords(xi, yi, zi)
				for _, id := range h.particleMap[h.cellStart[c]:h.cellStart[c+1]] {
					if h.seen[id] == h.stamp {
						continue
					}
					h.seen[id] = h.stamp
					h.queryIDs = append(h.queryIDs, id)
				}
			}
		}
	}
	return h.queryIDs
}

func (h *Hash) nextStamp() {
	h.stamp++
	if h.stamp == 0 {
		clear(h.seen)
		h.stamp = 1
	}
}

// QueryAll rebuilds the adjacency list: for every particle i it stores the
// ids j < i within maxDist. Each unordered pair is stored once.
func (h *Hash) QueryAll(pos []float32, maxDist float32) {
	n := h.numObjects(pos)
	maxDist2 := maxDist * maxDist
	idx := 0

	for i := 0; i < n; i++ {
		h.firstAdjID[i] = int32(idx)
		for _, id1 := range h.Query(pos, i, maxDist) {
			if int(id1) >= i {
				continue
			}
			if vecmath.DistSquared(pos, i, pos, int(id1)) > maxDist2 {
				continue
			}
			if idx >= len(h.adjIDs) {
				grown := make([]int32, max(2*idx, 16))
				copy(grown, h.adjIDs)
				h.adjIDs = grown
			}
			h.adjIDs[idx] = id1
			idx++
		}
	}
	for i := n; i <= h.maxNumObjects; i++ {
		h.firstAdjID[i] = int32(idx)
	}
	h.numAdj = idx
}

// Adjacent returns the neighbors of id found by the last QueryAll, all with
// smaller ids.
func (h *Hash) Adjacent(id int) []int32 {
	return h.adjIDs[h.firstAdjID[id]:h.firstAdjID[id+1]]
}

// NumPairs returns the number of pairs found by the last QueryAll.
func (h *Hash) NumPairs() int { return h.numAdj }

// Capacity returns the current length of the adjacency buffer.
func (h *Hash) Capacity() int { return len(h.adjIDs) }
