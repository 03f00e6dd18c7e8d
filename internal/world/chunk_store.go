package world

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"tileworld/internal/biome"
)

// ChunkStore maps chunk coordinates to generated chunks and holds the queue
// of coordinates waiting for a remesh. Asking for a coordinate that is not
// stored panics: callers are expected to check HasChunk first.
type ChunkStore struct {
	chunks   map[Coord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove

	remesh       []Coord
	remeshQueued map[Coord]struct{}
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks:       make(map[Coord]*Chunk),
		remeshQueued: make(map[Coord]struct{}),
	}
}

// HasChunk reports whether coord is stored.
func (cs *ChunkStore) HasChunk(coord Coord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// Lookup returns the chunk at coord if present.
func (cs *ChunkStore) Lookup(coord Coord) (*Chunk, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	ch, ok := cs.chunks[coord]
	return ch, ok
}

// GetChunk returns the chunk at coord and panics if it is absent.
func (cs *ChunkStore) GetChunk(coord Coord) *Chunk {
	ch, ok := cs.Lookup(coord)
	if !ok {
		panic(fmt.Sprintf("world: no chunk at %s", coord))
	}
	return ch
}

// AddChunk stores chunk under its own coordinate. Storing a second chunk at
// the same coordinate panics.
func (cs *ChunkStore) AddChunk(chunk *Chunk) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[chunk.Coord]; ok {
		panic(fmt.Sprintf("world: chunk %s already stored", chunk.Coord))
	}
	cs.chunks[chunk.Coord] = chunk
	cs.modCount++
}

// RemoveChunk deletes and returns the chunk at coord. It panics if the chunk
// is absent. Pending remesh entries for coord are left in the queue and
// skipped when drained.
func (cs *ChunkStore) RemoveChunk(coord Coord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ch, ok := cs.chunks[coord]
	if !ok {
		panic(fmt.Sprintf("world: cannot remove missing chunk %s", coord))
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return ch
}

// Len returns the number of stored chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// Coords returns the stored coordinates ordered by row, then column.
func (cs *ChunkStore) Coords() []Coord {
	cs.mu.RLock()
	out := make([]Coord, 0, len(cs.chunks))
	for c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	slices.SortFunc(out, CompareCoords)
	return out
}

// BiomeCounts tallies cells per biome over every stored chunk.
func (cs *ChunkStore) BiomeCounts() map[biome.ID]int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	total := make(map[biome.ID]int)
	for _, ch := range cs.chunks {
		for id, n := range ch.BiomeCounts() {
			total[id] += n
		}
	}
	return total
}

// ModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) ModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// QueueRemesh marks coord for a rebuild on the next drain. A coordinate
// already queued is not queued again. The chunk must be stored.
func (cs *ChunkStore) QueueRemesh(coord Coord) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; !ok {
		panic(fmt.Sprintf("world: remesh requested for missing chunk %s", coord))
	}
	if _, ok := cs.remeshQueued[coord]; ok {
		return
	}
	cs.remeshQueued[coord] = struct{}{}
	cs.remesh = append(cs.remesh, coord)
}

// DrainRemesh empties the remesh queue and returns it in request order.
func (cs *ChunkStore) DrainRemesh() []Coord {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := cs.remesh
	cs.remesh = nil
	clear(cs.remeshQueued)
	return out
}

// PendingRemesh returns the number of queued remeshes.
func (cs *ChunkStore) PendingRemesh() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.remesh)
}

// ChunkAt returns the chunk containing world position pos and the local cell
// under it. It panics if that chunk is absent.
func (cs *ChunkStore) ChunkAt(pos mgl32.Vec2) (ch *Chunk, x, y int) {
	tx := floorToInt(pos.X() / TileSize)
	ty := floorToInt(pos.Y() / TileSize)
	coord := Coord{X: floorDiv(tx, ChunkSize), Y: floorDiv(ty, ChunkSize)}
	return cs.GetChunk(coord), mod(tx, ChunkSize), mod(ty, ChunkSize)
}

// UpdateTile replaces one cell of the chunk at coord. It panics if the chunk
// is absent and reports false if (x, y) lies outside the chunk. The caller
// decides whether to queue a remesh.
func (cs *ChunkStore) UpdateTile(coord Coord, x, y int, t Tile) bool {
	return cs.GetChunk(coord).SetTile(x, y, t)
}
