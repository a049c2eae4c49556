// Package snapshot renders the cloth scene to an image without a window and
// encodes it as WebP, TGA or PNG.
package snapshot

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/pthm-cable/drape/camera"
)

// Mesh is one drawable triangle mesh. Normals may be unnormalized.
type Mesh struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
	Color     [3]uint8
}

// Light holds the shading parameters.
type Light struct {
	Dir     mgl32.Vec3
	Ambient float32
	Hemi    float32
	Direct  float32
}

// DefaultLight returns a key light from the upper front right.
func DefaultLight() Light {
	return Light{
		Dir:     mgl32.Vec3{0.45, 0.65, 0.35}.Normalize(),
		Ambient: 0.30,
		Hemi:    0.15,
		Direct:  0.65,
	}
}

// Shade returns the light scalar for normal n, lit from both sides.
func (l Light) Shade(n mgl32.Vec3) float32 {
	ndl := float32(math.Abs(float64(n.Dot(l.Dir))))
	hemi := (1-float32(math.Abs(float64(n.Y()))))*0.5 + 0.5
	return min(l.Ambient+hemi*l.Hemi+ndl*l.Direct, 1)
}

// Renderer draws meshes through an orbit camera.
type Renderer struct {
	Width, Height int
	Supersample   int
	Background    color.RGBA
	Light         Light

	z    vector.Rasterizer
	tris []projected
}

type projected struct {
	p     [3][2]float32
	depth float32
	color color.RGBA
}

// NewRenderer creates a renderer for width x height output images.
func NewRenderer(width, height, supersample int) *Renderer {
	return &Renderer{
		Width:       width,
		Height:      height,
		Supersample: max(supersample, 1),
		Background:  color.RGBA{R: 24, G: 26, B: 32, A: 255},
		Light:       DefaultLight(),
	}
}

// Render draws meshes back to front and returns the downscaled image.
// The camera viewport is resized to the render target for the duration.
func (r *Renderer) Render(cam *camera.Camera, meshes []Mesh) *image.RGBA {
	ss := r.Supersample
	w, h := r.Width*ss, r.Height*ss

	savedW, savedH := cam.ViewportW, cam.ViewportH
	cam.Resize(float32(w), float32(h))
	defer cam.Resize(savedW, savedH)

	r.tris = r.tris[:0]
	for i := range meshes {
		r.project(cam, &meshes[i], float32(w), float32(h))
	}
	// Farthest first.
	slices.SortFunc(r.tris, func(a, b projected) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})

	big := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(big, big.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
	for i := range r.tris {
		r.fill(big, &r.tris[i])
	}

	if ss == 1 {
		return big
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), draw.Src, nil)
	return out
}

// project appends the visible triangles of m. Triangles with a vertex
// behind the camera or off screen are culled.
func (r *Renderer) project(cam *camera.Camera, m *Mesh, w, h float32) {
	pos := m.Positions
	for t := 0; t+2 < len(m.Indices); t += 3 {
		var tri projected
		var normal mgl32.Vec3
		visible := true
		for k := 0; k < 3; k++ {
			id := int(m.Indices[t+k])
			p := mgl32.Vec3{pos[3*id], pos[3*id+1], pos[3*id+2]}
			sx, sy, depth, ok := cam.WorldToScreen(p)
			if !ok || sx < 0 || sy < 0 || sx > w || sy > h {
				visible = false
				break
			}
			tri.p[k] = [2]float32{sx, sy}
			tri.depth += depth / 3
			if len(m.Normals) >= 3*id+3 {
				normal = normal.Add(mgl32.Vec3{m.Normals[3*id], m.Normals[3*id+1], m.Normals[3*id+2]})
			}
		}
		if !visible {
			continue
		}
		if normal.Len() > 0 {
			normal = normal.Normalize()
		} else {
			normal = mgl32.Vec3{0, 1, 0}
		}
		s := r.Light.Shade(normal)
		tri.color = color.RGBA{
			R: uint8(float32(m.Color[0]) * s),
			G: uint8(float32(m.Color[1]) * s),
			B: uint8(float32(m.Color[2]) * s),
			A: 255,
		}
		r.tris = append(r.tris, tri)
	}
}

// fill rasterizes one triangle within its bounding box.
func (r *Renderer) fill(dst *image.RGBA, tri *projected) {
	minX, minY := tri.p[0][0], tri.p[0][1]
	maxX, maxY := minX, minY
	for _, p := range tri.p[1:] {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	box := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	r.z.Reset(box.Dx(), box.Dy())
	r.z.DrawOp = draw.Over
	r.z.MoveTo(tri.p[0][0]-ox, tri.p[0][1]-oy)
	r.z.LineTo(tri.p[1][0]-ox, tri.p[1][1]-oy)
	r.z.LineTo(tri.p[2][0]-ox, tri.p[2][1]-oy)
	r.z.ClosePath()
	r.z.Draw(dst, box, image.NewUniform(tri.color), image.Point{})
}
