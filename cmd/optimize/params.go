// Package main provides CMA-ES optimization for colony foraging parameters.
package main

import (
	"github.com/pthm-cable/colony/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Defaults mirror config/defaults.yaml.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Movement
			{Name: "ant_speed", Path: "ant.speed", Min: 20, Max: 120, Default: 50,
				field: func(c *config.Config) *float64 { return &c.Ant.Speed }},
			{Name: "max_turn_rate", Path: "ant.max_turn_rate", Min: 1, Max: 12, Default: 6.283185307179586,
				field: func(c *config.Config) *float64 { return &c.Ant.MaxTurnRate }},
			// Sensing
			{Name: "sense_angle", Path: "ant.sense_angle", Min: 0.1, Max: 1.2, Default: 0.5890486225480862,
				field: func(c *config.Config) *float64 { return &c.Ant.SenseAngle }},
			{Name: "sense_distance", Path: "ant.sense_distance", Min: 4, Max: 40, Default: 10,
				field: func(c *config.Config) *float64 { return &c.Ant.SenseDistance }},
			{Name: "sense_radius", Path: "ant.sense_radius", Min: 2, Max: 15, Default: 5,
				field: func(c *config.Config) *float64 { return &c.Ant.SenseRadius }},
			{Name: "detect_weight", Path: "steering.detect_weight", Min: 1, Max: 50, Default: 10,
				field: func(c *config.Config) *float64 { return &c.Steering.DetectWeight }},
			// Trails
			{Name: "ant_track_concentration", Path: "ant.track_concentration", Min: 0.2, Max: 5, Default: 1,
				field: func(c *config.Config) *float64 { return &c.Ant.TrackConcentration }},
			{Name: "nest_track_concentration", Path: "nest.track_concentration", Min: 0.2, Max: 5, Default: 1,
				field: func(c *config.Config) *float64 { return &c.Nest.TrackConcentration }},
			{Name: "concentration_factor", Path: "track.concentration_factor", Min: 0.9, Max: 0.999, Default: 0.99,
				field: func(c *config.Config) *float64 { return &c.Track.ConcentrationFactor }},
			{Name: "diffusion_factor", Path: "track.diffusion_factor", Min: 0, Max: 0.2, Default: 0.01,
				field: func(c *config.Config) *float64 { return &c.Track.DiffusionFactor }},
			// Economy
			{Name: "max_carry", Path: "ant.max_carry", Min: 0.2, Max: 3, Default: 1,
				field: func(c *config.Config) *float64 { return &c.Ant.MaxCarry }},
			{Name: "spawn_interval", Path: "nest.spawn_interval", Min: 5, Max: 120, Default: 60,
				field: func(c *config.Config) *float64 { return &c.Nest.SpawnInterval }},
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

// ApplyToConfig writes clamped parameter values into cfg and recomputes
// its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		*spec.field(cfg) = clamped[i]
	}
	return cfg.Finalize()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
