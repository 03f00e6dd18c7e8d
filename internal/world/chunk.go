package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"tileworld/internal/biome"
	"tileworld/internal/meshing"
)

// Tile is the content of one grid cell.
type Tile struct {
	Kind  biome.TileKind
	Biome biome.ID
}

// DefaultTile fills cells that were never generated.
var DefaultTile = Tile{Kind: biome.TileDirt, Biome: biome.Plains}

// Decoration is a foliage sprite placed at the centre of a cell.
type Decoration struct {
	Pos  mgl32.Vec2
	Kind biome.FoliageKind
}

// Chunk is a ChunkSize x ChunkSize grid of tiles with one foliage slot per
// cell. Cells are addressed with local coordinates in [0, ChunkSize).
type Chunk struct {
	Coord Coord

	tiles   [ChunkSize * ChunkSize]Tile
	foliage [ChunkSize * ChunkSize]biome.FoliageKind

	// mesh scratch, reused across remeshes
	builder *meshing.TileMapBuilder
}

// NewChunk creates a chunk at coord filled with DefaultTile and no foliage.
func NewChunk(coord Coord) *Chunk {
	c := &Chunk{Coord: coord}
	for i := range c.tiles {
		c.tiles[i] = DefaultTile
	}
	return c
}

func index(x, y int) int {
	return x*ChunkSize + y
}

func inBounds(x, y int) bool {
	return x >= 0 && x < ChunkSize && y >= 0 && y < ChunkSize
}

// Tile returns the tile at local (x, y), or DefaultTile outside the chunk.
func (c *Chunk) Tile(x, y int) Tile {
	if !inBounds(x, y) {
		return DefaultTile
	}
	return c.tiles[index(x, y)]
}

// SetTile replaces the tile at local (x, y). It reports false outside the
// chunk.
func (c *Chunk) SetTile(x, y int, t Tile) bool {
	if !inBounds(x, y) {
		return false
	}
	c.tiles[index(x, y)] = t
	return true
}

// Foliage returns the foliage at local (x, y).
func (c *Chunk) Foliage(x, y int) biome.FoliageKind {
	if !inBounds(x, y) {
		return biome.FoliageNone
	}
	return c.foliage[index(x, y)]
}

// SetFoliage replaces the foliage at local (x, y). It reports false outside
// the chunk.
func (c *Chunk) SetFoliage(x, y int, f biome.FoliageKind) bool {
	if !inBounds(x, y) {
		return false
	}
	c.foliage[index(x, y)] = f
	return true
}

// CellCenter returns the world position of the centre of local cell (x, y).
func (c *Chunk) CellCenter(x, y int) mgl32.Vec2 {
	half := TileSize / 2
	return c.Coord.Anchor().Add(mgl32.Vec2{float32(x)*TileSize + half, float32(y)*TileSize + half})
}

// Mesh rebuilds the chunk's geometry from its current tiles: one quad per
// cell in world space. The scratch builder is cleared first so repeated
// calls never accumulate stale quads.
func (c *Chunk) Mesh() *meshing.Mesh {
	if c.builder == nil {
		c.builder = meshing.NewTileMapBuilder(TileSize, AtlasWidth)
		c.builder.Grow(ChunkSize * ChunkSize)
	}
	c.builder.Clear()
	anchor := c.Coord.Anchor()
	for x := range ChunkSize {
		for y := range ChunkSize {
			off := anchor.Add(mgl32.Vec2{float32(x) * TileSize, float32(y) * TileSize})
			c.builder.AddTile(off, uint16(c.tiles[index(x, y)].Kind))
		}
	}
	return c.builder.Build()
}

// ClearBuilder drops the mesh scratch buffers.
func (c *Chunk) ClearBuilder() {
	c.builder = nil
}

// Decorations lists every cell carrying foliage, in cell order.
func (c *Chunk) Decorations() []Decoration {
	var out []Decoration
	for x := range ChunkSize {
		for y := range ChunkSize {
			if f := c.foliage[index(x, y)]; f != biome.FoliageNone {
				out = append(out, Decoration{Pos: c.CellCenter(x, y), Kind: f})
			}
		}
	}
	return out
}

// BiomeCounts tallies cells per biome.
func (c *Chunk) BiomeCounts() map[biome.ID]int {
	counts := make(map[biome.ID]int)
	for _, t := range c.tiles {
		counts[t.Biome]++
	}
	return counts
}
