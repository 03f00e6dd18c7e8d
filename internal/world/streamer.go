package world

import (
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"tileworld/internal/meshing"
	"tileworld/internal/profiling"
)

// ObserverSource supplies the position streaming is centred on.
// TakeDistanceMoved returns the distance travelled since the previous call
// and resets it.
type ObserverSource interface {
	CurrentPosition() mgl32.Vec2
	TakeDistanceMoved() float32
}

// Presenter receives chunk geometry. Present is called once per generated
// or remeshed chunk; Retire when the geometry must be discarded.
type Presenter interface {
	Present(coord Coord, mesh *meshing.Mesh)
	Retire(coord Coord)
}

// DecorationPresenter receives the foliage of each presented chunk.
type DecorationPresenter interface {
	Decorate(coord Coord, decorations []Decoration)
	Undecorate(coord Coord)
}

// TickStats reports what one Tick did.
type TickStats struct {
	Generated int
	Evicted   int
	Remeshed  int
	// Evicting is set when the eviction scan ran this tick.
	Evicting bool
}

// StreamerConfig holds the optional parts of a Streamer.
type StreamerConfig struct {
	// VisibleRange is the streaming radius in chunks. Values below 1 use
	// DefaultVisibleRange.
	VisibleRange int
	// Workers > 1 generates the chunks of a tick concurrently.
	Workers int
	// Decorations receives foliage; nil skips it.
	Decorations DecorationPresenter
	Logger      *slog.Logger
	// SlowTick logs ticks slower than this at Warn. Zero disables it.
	SlowTick time.Duration
}

// Streamer keeps the chunks around an observer generated and presented.
// It owns its ChunkStore and must be driven from a single goroutine.
//
// Each Tick first drains the remesh queue, then evicts far chunks (only once
// the observer has moved more than half a chunk since the last scan), then
// generates every missing chunk of the square around the observer.
type Streamer struct {
	store       *ChunkStore
	gen         TerrainGenerator
	observer    ObserverSource
	presenter   Presenter
	decorations DecorationPresenter
	pool        *GenPool

	visibleRange int
	moved        float32

	log      *slog.Logger
	slowTick time.Duration
}

// NewStreamer wires a streamer over an empty or pre-filled store.
func NewStreamer(store *ChunkStore, gen TerrainGenerator, observer ObserverSource, presenter Presenter, cfg StreamerConfig) *Streamer {
	s := &Streamer{
		store:        store,
		gen:          gen,
		observer:     observer,
		presenter:    presenter,
		decorations:  cfg.Decorations,
		visibleRange: DefaultVisibleRange,
		log:          cfg.Logger,
		slowTick:     cfg.SlowTick,
	}
	if cfg.VisibleRange > 0 {
		s.visibleRange = cfg.VisibleRange
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if cfg.Workers > 1 {
		s.pool = NewGenPool(gen, cfg.Workers, 4*cfg.Workers)
	}
	return s
}

// Close stops the generation workers, if any.
func (s *Streamer) Close() {
	if s.pool != nil {
		s.pool.Shutdown()
		s.pool = nil
	}
}

// Store returns the chunk store.
func (s *Streamer) Store() *ChunkStore { return s.store }

// VisibleRange returns the streaming radius in chunks.
func (s *Streamer) VisibleRange() int { return s.visibleRange }

// SetVisibleRange changes the streaming radius, clamped to at least 1. It
// takes effect on the next Tick.
func (s *Streamer) SetVisibleRange(r int) {
	s.visibleRange = max(r, 1)
}

// MarkDirty queues a remesh of coord for the next Tick. The chunk must be
// stored.
func (s *Streamer) MarkDirty(coord Coord) {
	s.store.QueueRemesh(coord)
}

// EditTile replaces the tile under world position pos and queues a remesh of
// its chunk. It panics if that chunk is not stored.
func (s *Streamer) EditTile(pos mgl32.Vec2, t Tile) Coord {
	ch, x, y := s.store.ChunkAt(pos)
	ch.SetTile(x, y, t)
	s.store.QueueRemesh(ch.Coord)
	return ch.Coord
}

// Required returns the coordinates that must be generated for an observer
// at pos, row by row: the square of side 2*VisibleRange-1 centred on the
// observer's chunk.
func (s *Streamer) Required(pos mgl32.Vec2) []Coord {
	center := CoordFromWorld(pos)
	r := s.visibleRange - 1
	out := make([]Coord, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			out = append(out, center.Add(dx, dy))
		}
	}
	return out
}

// Tick runs one streaming update.
func (s *Streamer) Tick() TickStats {
	defer profiling.Track("world.Tick")()
	start := time.Now()

	var stats TickStats
	stats.Remeshed = s.drainRemesh()

	pos := s.observer.CurrentPosition()
	s.moved += s.observer.TakeDistanceMoved()
	required := s.Required(pos)

	if s.moved > ChunkSide/2 {
		s.moved = 0
		stats.Evicting = true
		stats.Evicted = s.evict(pos, required)
	}

	stats.Generated = s.generateMissing(required)

	if stats != (TickStats{}) {
		s.log.Debug("tick",
			"observer", pos,
			"generated", stats.Generated,
			"evicted", stats.Evicted,
			"remeshed", stats.Remeshed,
			"chunks", s.store.Len())
	}
	if elapsed := time.Since(start); s.slowTick > 0 && elapsed > s.slowTick {
		s.log.Warn("slow tick", "elapsed", elapsed, "top", profiling.TopN(5))
	}
	return stats
}

// drainRemesh rebuilds each queued chunk that is still stored: the old
// geometry is retired and the chunk's full mesh presented again.
func (s *Streamer) drainRemesh() int {
	defer profiling.Track("world.drainRemesh")()
	n := 0
	for _, coord := range s.store.DrainRemesh() {
		ch, ok := s.store.Lookup(coord)
		if !ok {
			continue
		}
		s.presenter.Retire(coord)
		s.presenter.Present(coord, ch.Mesh())
		if s.decorations != nil {
			s.decorations.Undecorate(coord)
			s.decorations.Decorate(coord, ch.Decorations())
		}
		n++
	}
	return n
}

// evict removes every chunk whose anchor lies strictly farther than
// VisibleRange chunk sides from pos. Chunks in required are kept.
func (s *Streamer) evict(pos mgl32.Vec2, required []Coord) int {
	defer profiling.Track("world.evict")()
	keep := make(map[Coord]struct{}, len(required))
	for _, c := range required {
		keep[c] = struct{}{}
	}
	limit := float64(s.visibleRange) * float64(ChunkSide)
	limitSq := limit * limit

	n := 0
	for _, coord := range s.store.Coords() {
		if _, ok := keep[coord]; ok {
			continue
		}
		if distSqToAnchor(pos, coord) <= limitSq {
			continue
		}
		ch := s.store.RemoveChunk(coord)
		ch.ClearBuilder()
		s.presenter.Retire(coord)
		if s.decorations != nil {
			s.decorations.Undecorate(coord)
		}
		n++
	}
	return n
}

func distSqToAnchor(pos mgl32.Vec2, coord Coord) float64 {
	a := coord.Anchor()
	dx := float64(pos.X()) - float64(a.X())
	dy := float64(pos.Y()) - float64(a.Y())
	return dx*dx + dy*dy
}

// generateMissing generates, stores and presents every required chunk not
// yet stored, in the order of required.
func (s *Streamer) generateMissing(required []Coord) int {
	defer profiling.Track("world.generate")()
	var missing []Coord
	for _, c := range required {
		if !s.store.HasChunk(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return 0
	}

	var built []Generated
	if s.pool != nil && len(missing) > 1 {
		built = s.pool.Generate(missing)
	} else {
		built = make([]Generated, len(missing))
		for i, c := range missing {
			built[i] = generate(s.gen, c)
		}
	}

	for _, g := range built {
		s.store.AddChunk(g.Chunk)
		s.presenter.Present(g.Chunk.Coord, g.Mesh)
		if s.decorations != nil {
			s.decorations.Decorate(g.Chunk.Coord, g.Chunk.Decorations())
		}
	}
	return len(built)
}
