// Package viewer is the raylib window front end for a scene: a lit 3D view
// of the cloths through an orbit camera, a stats HUD and a control panel.
package viewer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drape/camera"
	"github.com/pthm-cable/drape/scene"
	"github.com/pthm-cable/drape/snapshot"
	"github.com/pthm-cable/drape/ui"
)

// hudTop is the y of the first HUD panel, below the frame counters.
const hudTop = 90

// Viewer draws a scene and turns input into scene and camera changes.
// rl.InitWindow must have been called before New.
type Viewer struct {
	scene  *scene.Scene
	camera *camera.Camera
	light  snapshot.Light

	screenWidth, screenHeight float32

	widgets    *ui.Renderer
	statsPanel *ui.StatsPanel
	perfPanel  *ui.PerfPanel

	paused    bool
	showPanel bool
	showPerf  bool
	selected  int
	stateDir  string

	// Panel values mirrored into the scene each frame
	windStrength float32
	windEnabled  bool
	gravityY     float32
}

// New creates a viewer for s. stateDir receives F5 state dumps; empty
// disables them.
func New(s *scene.Scene, stateDir string) *Viewer {
	cfg := s.Config()
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	return &Viewer{
		scene:        s,
		camera:       scene.CameraFromConfig(cfg.Camera, w, h),
		light:        snapshot.DefaultLight(),
		screenWidth:  w,
		screenHeight: h,
		widgets:      ui.NewRenderer(),
		statsPanel:   ui.NewStatsPanel(10, hudTop, 340),
		perfPanel:    ui.NewPerfPanel(10, hudTop),
		showPanel:    true,
		stateDir:     stateDir,
		windStrength: s.Wind().Strength,
		windEnabled:  s.Wind().Enabled,
		gravityY:     s.Gravity()[1],
	}
}

// Update handles input and advances the scene unless paused.
func (v *Viewer) Update() {
	v.handleInput()

	if v.paused {
		return
	}
	v.scene.UpdateHeadless()
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.scene.PerfCollector().RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(24, 26, 32, 255))

	rl.BeginMode3D(v.camera3D())
	rl.DrawGrid(20, 0.25)
	for _, e := range v.scene.Entries() {
		if e.Appearance.Wireframe {
			drawWireframe(e)
		} else {
			v.drawShaded(e)
		}
	}
	rl.EndMode3D()

	v.drawHUD()
	if v.showPanel {
		v.drawPanel()
	}

	rl.EndDrawing()
}

// camera3D converts the orbit camera to raylib's camera.
func (v *Viewer) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(v.camera.Eye()),
		Target:     vec3(v.camera.Target),
		Up:         vec3(v.camera.Up()),
		Fovy:       v.camera.FOV,
		Projection: rl.CameraPerspective,
	}
}

// drawShaded draws both faces of every triangle with flat two-sided
// lighting.
func (v *Viewer) drawShaded(e scene.Entry) {
	c := e.Body.Cloth
	pos := c.Positions()
	idx := c.Indices()
	base := e.Appearance.Color

	for t := 0; t+2 < len(idx); t += 3 {
		a := point(pos, idx[t])
		b := point(pos, idx[t+1])
		d := point(pos, idx[t+2])

		n := b.Sub(a).Cross(d.Sub(a))
		if n.Len() == 0 {
			continue
		}
		s := v.light.Shade(n.Normalize())
		col := rl.NewColor(
			uint8(float32(base[0])*s),
			uint8(float32(base[1])*s),
			uint8(float32(base[2])*s),
			255,
		)
		ra, rb, rd := vec3(a), vec3(b), vec3(d)
		rl.DrawTriangle3D(ra, rb, rd, col)
		rl.DrawTriangle3D(ra, rd, rb, col)
	}
}

// drawWireframe draws the triangle edges of a cloth.
func drawWireframe(e scene.Entry) {
	c := e.Body.Cloth
	pos := c.Positions()
	idx := c.Indices()
	base := e.Appearance.Color
	col := rl.NewColor(base[0], base[1], base[2], 255)

	for t := 0; t+2 < len(idx); t += 3 {
		a := vec3(point(pos, idx[t]))
		b := vec3(point(pos, idx[t+1]))
		d := vec3(point(pos, idx[t+2]))
		rl.DrawLine3D(a, b, col)
		rl.DrawLine3D(b, d, col)
		rl.DrawLine3D(d, a, col)
	}
}

// drawHUD shows frame info, the stats of the selected cloth and optionally
// the perf breakdown.
func (v *Viewer) drawHUD() {
	s := v.scene
	rl.DrawText(fmt.Sprintf("Frame: %d  t=%.2fs", s.Frame(), s.SimTime()), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]  FPS: %d", s.StepsPerUpdate(), rl.GetFPS()), 10, 35, 20, rl.White)
	if v.paused {
		rl.DrawText("PAUSED", 10, 60, 20, rl.Yellow)
	}

	entries := s.Entries()
	if len(entries) > 0 {
		e := entries[v.selected%len(entries)]
		title := e.Name + "  [Tab]"
		if e.Paused {
			title = e.Name + " (paused)  [Tab]"
		}
		st, _ := s.LastStats(e.Name)
		v.statsPanel.Draw(title, st)
	}

	if v.showPerf {
		v.perfPanel.SetPosition(10, hudTop+v.statsPanel.Height()+10)
		v.perfPanel.Draw(s.PerfCollector().Stats())
	}

	rl.DrawText("[Space] pause  [R] reset  [W] wireframe  [F3] perf  [F12] snapshot  [Home] camera",
		10, int32(v.screenHeight)-24, 14, rl.Gray)
}

// Unload releases viewer resources and logs the final camera.
func (v *Viewer) Unload() {
	slog.Debug("viewer closed",
		"yaw", v.camera.Yaw,
		"pitch", v.camera.Pitch,
		"distance", v.camera.Distance,
	)
}

func point(pos []float32, id uint32) mgl32.Vec3 {
	i := 3 * int(id)
	return mgl32.Vec3{pos[i], pos[i+1], pos[i+2]}
}

func vec3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}
