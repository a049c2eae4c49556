// Package main tunes cloth material parameters with CMA-ES.
package main

import (
	"github.com/pthm-cable/drape/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the material parameters applied to every cloth.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "stretch_compliance", Path: "cloths[*].stretch_compliance", Min: 0, Max: 1e-3, Default: 0},
			{Name: "bend_compliance", Path: "cloths[*].bend_compliance", Min: 0, Max: 2, Default: 0.5},
			{Name: "friction", Path: "cloths[*].friction", Min: 0, Max: 1, Default: 0},
			{Name: "thickness", Path: "cloths[*].thickness", Min: 0.005, Max: 0.03, Default: 0.01},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into every cloth of cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i := range cfg.Cloths {
		cl := &cfg.Cloths[i]
		cl.StretchCompliance = clamped[0]
		cl.BendCompliance = clamped[1]
		cl.Friction = clamped[2]
		cl.Thickness = clamped[3]
	}
}

// ExtractFromConfig returns the parameter values of the first cloth.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	if len(cfg.Cloths) == 0 {
		return pv.DefaultVector()
	}
	cl := cfg.Cloths[0]
	return []float64{cl.StretchCompliance, cl.BendCompliance, cl.Friction, cl.Thickness}
}
