package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panelWidth  = 260
	panelHeight = 250
	panelMargin = 10
)

// panelBounds returns the screen rectangle of the control panel.
func (v *Viewer) panelBounds() rl.Rectangle {
	return rl.Rectangle{
		X:      v.screenWidth - panelWidth - panelMargin,
		Y:      panelMargin,
		Width:  panelWidth,
		Height: panelHeight,
	}
}

// drawPanel draws the wind and gravity controls and applies changes.
func (v *Viewer) drawPanel() {
	b := v.panelBounds()
	v.widgets.DrawPanel(int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height))

	x := b.X + 10
	y := b.Y + 10
	sliderW := float32(panelWidth - 90)

	y = float32(v.widgets.DrawSectionHeader(int32(x), int32(y), "Scene")) + 6

	v.windEnabled = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Wind", v.windEnabled)
	y += 26

	rl.DrawText("Wind strength", int32(x), int32(y), 14, rl.LightGray)
	y += 18
	v.windStrength = gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
		"", "",
		v.windStrength, 0, 10,
	)
	rl.DrawText(fmt.Sprintf("%.1f", v.windStrength), int32(x+sliderW+8), int32(y), 16, rl.White)
	y += 26

	rl.DrawText("Gravity", int32(x), int32(y), 14, rl.LightGray)
	y += 18
	v.gravityY = gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
		"", "",
		v.gravityY, -20, 0,
	)
	rl.DrawText(fmt.Sprintf("%.1f", v.gravityY), int32(x+sliderW+8), int32(y), 16, rl.White)
	y += 32

	w := v.scene.Wind()
	w.Enabled = v.windEnabled
	w.Strength = v.windStrength
	g := v.scene.Gravity()
	g[1] = v.gravityY
	v.scene.SetGravity(g)

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 115, Height: 28}, pauseLabel(v.paused)) {
		v.paused = !v.paused
	}
	if gui.Button(rl.Rectangle{X: x + 125, Y: y, Width: 115, Height: 28}, "Reset") {
		v.scene.Reset()
	}
	y += 38

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 115, Height: 28}, "Reset Camera") {
		v.camera.Reset()
	}
	if gui.Button(rl.Rectangle{X: x + 125, Y: y, Width: 115, Height: 28}, "Wireframe") {
		for _, e := range v.scene.Entries() {
			e.Appearance.Wireframe = !e.Appearance.Wireframe
		}
	}
	y += 38

	rl.DrawText("[H] hide  [P] pause cloth  [F5] dump", int32(x), int32(y), 12, rl.Gray)
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}
