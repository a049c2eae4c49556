// Package components defines ECS components for the cloth scene.
package components

import (
	"github.com/pthm-cable/drape/cloth"
	"github.com/pthm-cable/drape/config"
)

// ClothBody is a simulated cloth and the grid it was built from.
type ClothBody struct {
	Cloth *cloth.Cloth
	Cols  int
	Rows  int
}

// Appearance controls how a cloth is drawn.
type Appearance struct {
	Color     [3]uint8
	Wireframe bool
}

// Label names an entity in the HUD and in telemetry.
type Label struct {
	Name string
}

// WindResponse scales the scene wind for one cloth. Zero ignores wind.
type WindResponse struct {
	Scale float32
}

// Paused stops one cloth from stepping.
type Paused struct{}

// AppearanceFromConfig returns the appearance of a configured cloth.
func AppearanceFromConfig(cc *config.ClothConfig) Appearance {
	return Appearance{Color: cc.Color}
}
