package main

import (
	"image"
	"log/slog"

	"tileworld/internal/biome"
	"tileworld/internal/config"
	"tileworld/internal/noise"
	"tileworld/internal/present"
	"tileworld/internal/world"
)

// components holds everything a run needs
type components struct {
	Settings  config.Settings
	Table     *biome.Table
	Observer  *world.Observer
	Generator *world.Generator
	Streamer  *world.Streamer
	Memory    *present.Memory
	Preview   *present.Preview
	Trace     *present.Trace
}

func setup(s config.Settings, opts options, log *slog.Logger) (*components, error) {
	table, err := loadTable(s.Catalog)
	if err != nil {
		return nil, err
	}

	c := &components{
		Settings: s,
		Table:    table,
		Observer: world.NewObserver(world.Coord{}.Anchor()),
		Memory:   present.NewMemory(),
	}
	presenters := present.Multi{c.Memory}

	if opts.previewPath != "" {
		var atlas image.Image = present.ProceduralAtlas(world.AtlasWidth, 16)
		if opts.atlasPath != "" {
			if atlas, err = present.LoadAtlas(opts.atlasPath); err != nil {
				return nil, err
			}
		}
		c.Preview = present.NewPreview(atlas, opts.pixels)
		presenters = append(presenters, c.Preview)
	}
	if opts.tracePath != "" {
		if c.Trace, err = present.CreateTrace(opts.tracePath); err != nil {
			return nil, err
		}
		presenters = append(presenters, c.Trace)
	}

	sampler := noise.NewSampler(s.NoiseKind(), world.ChunkSize)
	c.Generator = world.NewGenerator(s.Seed, table, sampler, s.Fields)
	c.Streamer = world.NewStreamer(world.NewChunkStore(), c.Generator, c.Observer, presenters, world.StreamerConfig{
		VisibleRange: s.VisibleRange,
		Workers:      s.Workers,
		Decorations:  presenters,
		Logger:       log,
		SlowTick:     s.SlowTick(),
	})

	log.Info("world ready",
		"seed", s.Seed,
		"noise", s.NoiseKind(),
		"range", s.VisibleRange,
		"workers", s.Workers,
		"biomes", table.Registered(),
		"catalog", catalogName(s.Catalog))
	return c, nil
}

func loadTable(path string) (*biome.Table, error) {
	if path == "" {
		return biome.Default(), nil
	}
	return biome.LoadCatalog(path)
}

func catalogName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// Close stops the workers and flushes the trace.
func (c *components) Close(log *slog.Logger) {
	c.Streamer.Close()
	if c.Trace != nil {
		if err := c.Trace.Close(); err != nil {
			log.Error("close trace", "error", err)
		}
	}
}
