// Package config loads the settings that shape a world: seed, streaming
// radius, worker count and noise field parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tileworld/internal/noise"
	"tileworld/internal/world"
)

const (
	MinVisibleRange = 1
	MaxVisibleRange = 32
	MinWorkers      = 1
	MaxWorkers      = 64
)

var ErrFieldsCorrelated = errors.New("noise fields share a frequency")

// Settings is the full configuration of a run.
type Settings struct {
	Seed         uint32            `yaml:"seed"`
	VisibleRange int               `yaml:"visible_range"` // in chunks
	Workers      int               `yaml:"workers"`
	Noise        string            `yaml:"noise"`
	Fields       world.FieldParams `yaml:"fields"`
	// Catalog is a biome catalog file; empty uses the built-in catalog.
	Catalog    string `yaml:"catalog"`
	SlowTickMs int    `yaml:"slow_tick_ms"`
}

// Defaults returns the stock settings.
func Defaults() Settings {
	return Settings{
		Seed:         1337,
		VisibleRange: world.DefaultVisibleRange,
		Workers:      1,
		Noise:        string(noise.KindPerlin),
		Fields:       world.DefaultFieldParams(),
		SlowTickMs:   50,
	}
}

// Load reads a YAML settings file over the defaults and validates it.
// Keys missing from the file keep their default value.
func Load(path string) (Settings, error) {
	s := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate clamps the streaming radius and worker count into range and
// rejects noise settings that cannot produce a usable world.
func (s *Settings) Validate() error {
	s.VisibleRange = clamp(s.VisibleRange, MinVisibleRange, MaxVisibleRange)
	s.Workers = clamp(s.Workers, MinWorkers, MaxWorkers)
	s.SlowTickMs = max(s.SlowTickMs, 0)

	if _, err := noise.ParseKind(s.Noise); err != nil {
		return err
	}
	named := []struct {
		name string
		p    noise.Params
	}{
		{"biome", s.Fields.Biome},
		{"tile", s.Fields.Tile},
		{"foliage", s.Fields.Foliage},
	}
	for _, f := range named {
		if f.p.Octaves <= 0 {
			return fmt.Errorf("%s field: octaves must be positive, got %d", f.name, f.p.Octaves)
		}
		if !(f.p.Frequency > 0) {
			return fmt.Errorf("%s field: frequency must be positive, got %v", f.name, f.p.Frequency)
		}
	}
	for i := range named {
		for j := i + 1; j < len(named); j++ {
			if named[i].p.Frequency == named[j].p.Frequency {
				return fmt.Errorf("%s and %s: %w", named[i].name, named[j].name, ErrFieldsCorrelated)
			}
		}
	}
	return nil
}

// NoiseKind returns the parsed primitive kind. Call after Validate.
func (s Settings) NoiseKind() noise.Kind {
	k, err := noise.ParseKind(s.Noise)
	if err != nil {
		return noise.KindPerlin
	}
	return k
}

// SlowTick returns the slow tick threshold.
func (s Settings) SlowTick() time.Duration {
	return time.Duration(s.SlowTickMs) * time.Millisecond
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
