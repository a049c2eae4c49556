// Package vecmath provides 3-vector arithmetic over flat float32 buffers.
//
// Every function addresses vectors by index: vector i of buffer a occupies
// a[3*i], a[3*i+1], a[3*i+2]. This matches the particle buffer layout used by
// the solver, so no per-particle structs are allocated in hot paths.
package vecmath

import "math"

// Zero sets vector an of a to zero.
func Zero(a []float32, an int) {
	an *= 3
	a[an] = 0
	a[an+1] = 0
	a[an+2] = 0
}

// Scale multiplies vector an of a by s.
func Scale(a []float32, an int, s float32) {
	an *= 3
	a[an] *= s
	a[an+1] *= s
	a[an+2] *= s
}

// Copy sets vector an of a to vector bn of b.
func Copy(a []float32, an int, b []float32, bn int) {
	an *= 3
	bn *= 3
	a[an] = b[bn]
	a[an+1] = b[bn+1]
	a[an+2] = b[bn+2]
}

// Add adds s times vector bn of b to vector an of a.
func Add(a []float32, an int, b []float32, bn int, s float32) {
	an *= 3
	bn *= 3
	a[an] += b[bn] * s
	a[an+1] += b[bn+1] * s
	a[an+2] += b[bn+2] * s
}

// SetDiff sets dst[dn] = (a[an] - b[bn]) * s.
func SetDiff(dst []float32, dn int, a []float32, an int, b []float32, bn int, s float32) {
	dn *= 3
	an *= 3
	bn *= 3
	dst[dn] = (a[an] - b[bn]) * s
	dst[dn+1] = (a[an+1] - b[bn+1]) * s
	dst[dn+2] = (a[an+2] - b[bn+2]) * s
}

// SetSum sets dst[dn] = (a[an] + b[bn]) * s.
func SetSum(dst []float32, dn int, a []float32, an int, b []float32, bn int, s float32) {
	dn *= 3
	an *= 3
	bn *= 3
	dst[dn] = (a[an] + b[bn]) * s
	dst[dn+1] = (a[an+1] + b[bn+1]) * s
	dst[dn+2] = (a[an+2] + b[bn+2]) * s
}

// SetCross sets dst[dn] = a[an] x b[bn].
// dst must not alias either operand vector.
func SetCross(dst []float32, dn int, a []float32, an int, b []float32, bn int) {
	dn *= 3
	an *= 3
	bn *= 3
	dst[dn] = a[an+1]*b[bn+2] - a[an+2]*b[bn+1]
	dst[dn+1] = a[an+2]*b[bn] - a[an]*b[bn+2]
	dst[dn+2] = a[an]*b[bn+1] - a[an+1]*b[bn]
}

// Dot returns a[an] . b[bn].
func Dot(a []float32, an int, b []float32, bn int) float32 {
	an *= 3
	bn *= 3
	return a[an]*b[bn] + a[an+1]*b[bn+1] + a[an+2]*b[bn+2]
}

// LengthSquared returns |a[an]|^2.
func LengthSquared(a []float32, an int) float32 {
	an *= 3
	x, y, z := a[an], a[an+1], a[an+2]
	return x*x + y*y + z*z
}

// Length returns |a[an]|.
func Length(a []float32, an int) float32 {
	return Sqrt(LengthSquared(a, an))
}

// DistSquared returns |a[an] - b[bn]|^2.
func DistSquared(a []float32, an int, b []float32, bn int) float32 {
	an *= 3
	bn *= 3
	x := a[an] - b[bn]
	y := a[an+1] - b[bn+1]
	z := a[an+2] - b[bn+2]
	return x*x + y*y + z*z
}

// Sqrt is a float32 square root.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
