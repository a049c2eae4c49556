package mesh

import "github.com/pthm-cable/drape/vecmath"

// InverseMass returns a per-vertex inverse mass proportional to incident
// triangle area. Each triangle of area A adds 1/(3A) to its three vertices;
// zero-area triangles add nothing. Pinning is applied by the caller.
func InverseMass(positions []float32, indices []uint32) []float32 {
	invMass := make([]float32, len(positions)/3)
	var e [9]float32 // e0, e1, cross
	buf := e[:]

	numTris := len(indices) / 3
	for t := 0; t < numTris; t++ {
		id0 := int(indices[3*t])
		id1 := int(indices[3*t+1])
		id2 := int(indices[3*t+2])

		vecmath.SetDiff(buf, 0, positions, id1, positions, id0, 1)
		vecmath.SetDiff(buf, 1, positions, id2, positions, id0, 1)
		vecmath.SetCross(buf, 2, buf, 0, buf, 1)
		area := 0.5 * vecmath.Length(buf, 2)

		var w float32
		if area > 0 {
			w = 1 / area / 3
		}
		invMass[id0] += w
		invMass[id1] += w
		invMass[id2] += w
	}
	return invMass
}
