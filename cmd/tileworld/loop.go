package main

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"tileworld/internal/biome"
	"tileworld/internal/profiling"
	"tileworld/internal/world"
)

const (
	headingTurn = 0.004 // radians per tick
	reportEvery = 120
)

func runLoop(ctx context.Context, c *components, opts options, log *slog.Logger) {
	var totals world.TickStats
	heading := 0.0
	start := time.Now()
	paint := world.Tile{Kind: biome.TileStone, Biome: biome.Plains}
	limiter := newTickLimiter(opts.rate)

	for tick := 0; tick < opts.ticks; tick++ {
		if ctx.Err() != nil {
			log.Info("interrupted", "tick", tick)
			break
		}
		profiling.ResetFrame()
		if c.Trace != nil {
			c.Trace.SetTick(uint64(tick))
		}

		dir := mgl32.Vec2{float32(math.Cos(heading)), float32(math.Sin(heading))}
		c.Observer.Push(dir.Mul(float32(opts.accel)))
		func() { defer profiling.Track("observer.Update")(); c.Observer.Update(float32(opts.dt)) }()
		heading += headingTurn

		stats := c.Streamer.Tick()
		totals.Generated += stats.Generated
		totals.Evicted += stats.Evicted
		totals.Remeshed += stats.Remeshed

		// The observer's chunk always exists right after a tick; the
		// remesh lands on the next one.
		if opts.editEvery > 0 && tick > 0 && tick%opts.editEvery == 0 {
			coord := c.Streamer.EditTile(c.Observer.Position, paint)
			log.Debug("painted tile", "chunk", coord, "pos", c.Observer.Position)
		}

		if tick%reportEvery == 0 {
			log.Info("streaming",
				"tick", tick,
				"observer", c.Observer.Position,
				"chunk", world.CoordFromWorld(c.Observer.Position),
				"chunks", c.Streamer.Store().Len(),
				"presented", c.Memory.Len(),
				"world", profiling.SumWithPrefix("world."))
		}
		limiter.Wait()
	}

	log.Info("run finished",
		"elapsed", time.Since(start),
		"generated", totals.Generated,
		"evicted", totals.Evicted,
		"remeshed", totals.Remeshed,
		"chunks", c.Streamer.Store().Len(),
		"quads", c.Memory.Quads(),
		"seed", c.Generator.Seed(),
		slog.Group("biomes", biomeShares(c.Generator.Table(), c.Streamer.Store().BiomeCounts())...))
	if c.Trace != nil {
		if err := c.Trace.Err(); err != nil {
			log.Error("trace write failed", "error", err)
		}
	}
}

// biomeShares returns, in registration order, the fraction of stored cells
// belonging to each biome as slog key/value pairs.
func biomeShares(table *biome.Table, counts map[biome.ID]int) []any {
	total := 0
	for _, n := range counts {
		total += n
	}
	var out []any
	for _, id := range table.Registered() {
		share := 0.0
		if total > 0 {
			share = float64(counts[id]) / float64(total)
		}
		out = append(out, id.String(), math.Round(share*1000)/1000)
	}
	return out
}
