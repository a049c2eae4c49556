package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 4
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a label, a value and a bar filled to frac of its width.
func (r *Renderer) DrawBar(x, y int32, label, value string, frac float32, width int32) int32 {
	frac = min(max(frac, 0), 1)

	barX := x + r.Theme.LabelWidth + r.Theme.ValueWidth
	barWidth := width - r.Theme.LabelWidth - r.Theme.ValueWidth

	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)

	if barWidth > 0 {
		rl.DrawRectangle(barX, y+3, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
		fillWidth := int32(float32(barWidth) * frac)
		rl.DrawRectangle(barX, y+3, fillWidth, r.Theme.BarHeight, r.Theme.BarColor(frac))
	}

	return y + r.Theme.LineHeight
}
