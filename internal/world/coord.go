package world

import (
	"cmp"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkSize is the number of tiles along each side of a chunk.
	ChunkSize = 16
	// TileSize is the world-space side of one tile.
	TileSize float32 = 1
	// ChunkSide is the world-space side of one chunk.
	ChunkSide = ChunkSize * TileSize
	// AtlasWidth is the number of cells per row of the tile atlas.
	AtlasWidth = 8
	// DefaultVisibleRange is the streaming radius in chunks.
	DefaultVisibleRange = 3
)

// Coord is a chunk index on the 2D chunk grid. Chunk (X, Y) covers world
// positions [X*ChunkSide, (X+1)*ChunkSide) on each axis.
type Coord struct {
	X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Anchor returns the world-space position of the chunk's lower-left corner.
func (c Coord) Anchor() mgl32.Vec2 {
	return mgl32.Vec2{float32(c.X) * ChunkSide, float32(c.Y) * ChunkSide}
}

// Add offsets c by (dx, dy) chunks.
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// CoordFromWorld returns the chunk containing world position pos.
func CoordFromWorld(pos mgl32.Vec2) Coord {
	return Coord{
		X: floorToInt(pos.X() / ChunkSide),
		Y: floorToInt(pos.Y() / ChunkSide),
	}
}

// CompareCoords orders coordinates row by row (Y, then X), the order in
// which the streamer scans its required square.
func CompareCoords(a, b Coord) int {
	if a.Y != b.Y {
		return cmp.Compare(a.Y, b.Y)
	}
	return cmp.Compare(a.X, b.X)
}

func floorToInt(f float32) int {
	return int(math.Floor(float64(f)))
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a non-negative remainder for positive b.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
