package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	orbitDegPerPixel = 0.3
	orbitKeyDeg      = 1.5
	maxStepsPerFrame = 10
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.scene.Reset()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.showPanel = !v.showPanel
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		v.showPerf = !v.showPerf
	}

	// Steps-per-update control with < > keys (comma and period)
	steps := v.scene.StepsPerUpdate()
	if rl.IsKeyPressed(rl.KeyComma) && steps > 1 {
		v.scene.SetStepsPerUpdate(steps - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && steps < maxStepsPerFrame {
		v.scene.SetStepsPerUpdate(steps + 1)
	}

	entries := v.scene.Entries()
	if n := len(entries); n > 0 {
		if rl.IsKeyPressed(rl.KeyTab) {
			v.selected = (v.selected + 1) % n
		}
		e := entries[v.selected%n]
		if rl.IsKeyPressed(rl.KeyW) {
			e.Appearance.Wireframe = !e.Appearance.Wireframe
		}
		if rl.IsKeyPressed(rl.KeyP) {
			if err := v.scene.SetPaused(e.Name, !e.Paused); err != nil {
				slog.Error("failed to pause cloth", "error", err)
			}
		}
	}

	if rl.IsKeyPressed(rl.KeyF5) && v.stateDir != "" {
		if _, err := v.scene.DumpState(v.stateDir); err != nil {
			slog.Error("failed to dump state", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		if _, err := v.scene.SaveSnapshot(); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		}
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.camera.Resize(w, h)
}

// handleCameraInput processes orbit, pan and zoom controls.
func (v *Viewer) handleCameraInput() {
	mouse := rl.GetMousePosition()
	overPanel := v.showPanel && rl.CheckCollisionPointRec(mouse, v.panelBounds())

	if !overPanel {
		delta := rl.GetMouseDelta()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			v.camera.Orbit(-delta.X*orbitDegPerPixel, delta.Y*orbitDegPerPixel)
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			v.camera.Pan(delta.X, delta.Y)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			v.camera.ZoomBy(1 + wheel*0.1)
		}
	}

	// Arrow keys orbit
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Orbit(orbitKeyDeg, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Orbit(-orbitKeyDeg, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Orbit(0, orbitKeyDeg)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Orbit(0, -orbitKeyDeg)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}
