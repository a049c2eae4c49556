// Package camera provides an orbit camera for viewing the cloth scene.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point at a given distance.
// Yaw and Pitch are in degrees; yaw 0 looks down -Z from +Z.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	FOV      float32 // Vertical field of view in degrees

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	home orbit // restored by Reset
}

type orbit struct {
	target               mgl32.Vec3
	distance, yaw, pitch float32
}

const (
	maxPitch = 89
	near     = 0.01
	far      = 100
)

// New creates a camera orbiting target.
func New(viewportW, viewportH float32, target mgl32.Vec3, distance, yaw, pitch, fov float32) *Camera {
	c := &Camera{
		Target:      target,
		Distance:    distance,
		Yaw:         yaw,
		Pitch:       clamp(pitch, -maxPitch, maxPitch),
		FOV:         fov,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 0.1,
		MaxDistance: 50,
	}
	c.home = orbit{target: target, distance: distance, yaw: yaw, pitch: c.Pitch}
	return c
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	dir := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Cos(yaw)),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

// Up returns the world up vector.
func (c *Camera) Up() mgl32.Vec3 {
	return mgl32.Vec3{0, 1, 0}
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, c.Up())
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := c.ViewportW / c.ViewportH
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, near, far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// WorldToScreen converts a world point to screen pixels, y down.
// ok is false for points behind the camera.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip.W() <= near {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	sx = (ndc.X() + 1) / 2 * c.ViewportW
	sy = (1 - ndc.Y()) / 2 * c.ViewportH
	return sx, sy, clip.W(), true
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Orbit rotates the camera around the target by the given degrees.
func (c *Camera) Orbit(dyaw, dpitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dyaw), 360))
	c.Pitch = clamp(c.Pitch+dpitch, -maxPitch, maxPitch)
}

// Pan moves the target in the view plane by a delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	forward := c.Target.Sub(c.Eye()).Normalize()
	right := forward.Cross(c.Up()).Normalize()
	up := right.Cross(forward)

	// World units per pixel at the target depth.
	scale := 2 * c.Distance * float32(math.Tan(float64(mgl32.DegToRad(c.FOV))/2)) / c.ViewportH
	c.Target = c.Target.Add(right.Mul(-dx * scale)).Add(up.Mul(dy * scale))
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor, so factors above 1 move closer.
func (c *Camera) ZoomBy(factor float32) {
	c.SetDistance(c.Distance / factor)
}

// Reset returns the camera to its initial orbit.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Distance = c.home.distance
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
