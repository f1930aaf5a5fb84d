package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.World.Width != 1920 || cfg.World.Height != 1080 {
		t.Errorf("expected world 1920x1080, got %.0fx%.0f", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Derived.GridWidth != 960 || cfg.Derived.GridHeight != 540 {
		t.Errorf("expected grid 960x540, got %dx%d", cfg.Derived.GridWidth, cfg.Derived.GridHeight)
	}
	if math.Abs(cfg.Ant.SenseAngle-3*math.Pi/16) > 1e-9 {
		t.Errorf("expected sense angle 3pi/16, got %.6f", cfg.Ant.SenseAngle)
	}

	wantDecay := math.Pow(0.99, cfg.Derived.DT)
	if math.Abs(cfg.Derived.DecayPerTick-wantDecay) > 1e-12 {
		t.Errorf("decay per tick = %.8f, want %.8f", cfg.Derived.DecayPerTick, wantDecay)
	}
	if len(cfg.Ant.KindWeights) != 2 {
		t.Errorf("expected 2 kind weights, got %d", len(cfg.Ant.KindWeights))
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("physics:\n  time_scale: 4.0\ntrack:\n  diffusion_factor: 0.1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading %s: %v", path, err)
	}

	if cfg.Track.DiffusionFactor != 0.1 {
		t.Errorf("expected diffusion 0.1, got %.4f", cfg.Track.DiffusionFactor)
	}
	// Untouched fields keep their defaults
	if cfg.Track.ConcentrationFactor != 0.99 {
		t.Errorf("expected default concentration factor 0.99, got %.4f", cfg.Track.ConcentrationFactor)
	}
	if math.Abs(cfg.Derived.DT-4*cfg.Physics.DT) > 1e-12 {
		t.Errorf("expected scaled dt %.6f, got %.6f", 4*cfg.Physics.DT, cfg.Derived.DT)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unstable diffusion", func(c *Config) { c.Track.DiffusionFactor = 0.25 }},
		{"negative diffusion", func(c *Config) { c.Track.DiffusionFactor = -0.01 }},
		{"zero concentration factor", func(c *Config) { c.Track.ConcentrationFactor = 0 }},
		{"growing concentration factor", func(c *Config) { c.Track.ConcentrationFactor = 1.01 }},
		{"zero dt", func(c *Config) { c.Physics.DT = 0 }},
		{"zero resolution", func(c *Config) { c.Track.Resolution = 0 }},
		{"empty food range", func(c *Config) { c.Food.MinAmount = 300 }},
		{"no kinds", func(c *Config) { c.Ant.KindWeights = nil }},
		{"inverted edge margins", func(c *Config) { c.Steering.EdgeSoftDistance = 5 }},
		{"negative speed", func(c *Config) { c.Ant.Speed = -1 }},
		{"negative sense radius", func(c *Config) { c.Ant.SenseRadius = -0.5 }},
		{"negative segment radius", func(c *Config) { c.Ant.SegmentRadius = -2 }},
		{"body wider than the world", func(c *Config) { c.Ant.SegmentRadius = 180 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Finalize()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestWalkMarginFitsWorld(t *testing.T) {
	cfg := Defaults()
	cfg.World.Width, cfg.World.Height = 120, 60
	cfg.Ant.SegmentRadius = 9.9 // margin 29.7 < 30
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("expected margin just inside half height to validate: %v", err)
	}
	if cfg.Derived.WalkMargin >= cfg.Derived.HalfHeight {
		t.Errorf("walk margin %.2f reaches half height %.2f", cfg.Derived.WalkMargin, cfg.Derived.HalfHeight)
	}

	cfg.Ant.SegmentRadius = 10 // margin 30 == half height
	if err := cfg.Finalize(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for margin at half height, got %v", err)
	}
}

func TestCloneIsolatesKindWeights(t *testing.T) {
	cfg := Defaults()
	cp := cfg.Clone()
	cp.Ant.KindWeights[0].Weight = 99

	if cfg.Ant.KindWeights[0].Weight == 99 {
		t.Error("clone shares kind weight storage with original")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Nest.SpawnInterval = 12.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading yaml: %v", err)
	}
	if loaded.Nest.SpawnInterval != 12.5 {
		t.Errorf("expected spawn interval 12.5, got %.2f", loaded.Nest.SpawnInterval)
	}
}
