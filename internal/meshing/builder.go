// Package meshing turns tile grids into quad meshes UV-mapped into a square
// texture atlas.
package meshing

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// quadIndices is the index pattern of one tile, offset by 4*k for tile k.
// Vertices are ordered bottom-left, top-left, bottom-right, top-right, so
// both triangles wind counter-clockwise seen from +Z.
var quadIndices = [6]uint32{1, 0, 2, 1, 2, 3}

var up = mgl32.Vec3{0, 0, 1}

// Mesh is the static geometry for one chunk. Positions lie in the z=0 plane.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int { return len(m.Indices) }

// Quads returns the number of tiles in the mesh.
func (m *Mesh) Quads() int { return len(m.Positions) / 4 }

// AtlasCell returns the row and column of kind in an atlas atlasWidth cells
// wide.
func AtlasCell(kind uint16, atlasWidth int) (row, col int) {
	return int(kind) / atlasWidth, int(kind) % atlasWidth
}

// TileUV returns the UV rectangle of kind. Row 0 is the top row of the atlas
// image and v grows downward, so (u0,v0) is the cell's top-left corner and
// (u1,v1) its bottom-right.
func TileUV(kind uint16, atlasWidth int) (u0, v0, u1, v1 float32) {
	row, col := AtlasCell(kind, atlasWidth)
	cell := 1 / float32(atlasWidth)
	u0 = float32(col) * cell
	v0 = float32(row) * cell
	return u0, v0, u0 + cell, v0 + cell
}

// TileMapBuilder accumulates one quad per tile. The zero value is not usable;
// call NewTileMapBuilder.
type TileMapBuilder struct {
	tileSize   float32
	atlasWidth int

	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
}

// NewTileMapBuilder returns a builder emitting quads of side tileSize mapped
// into an atlas atlasWidth cells wide.
func NewTileMapBuilder(tileSize float32, atlasWidth int) *TileMapBuilder {
	if atlasWidth <= 0 {
		panic(fmt.Sprintf("meshing: atlas width %d", atlasWidth))
	}
	if tileSize <= 0 {
		panic(fmt.Sprintf("meshing: tile size %v", tileSize))
	}
	return &TileMapBuilder{tileSize: tileSize, atlasWidth: atlasWidth}
}

// Grow reserves room for n more tiles.
func (b *TileMapBuilder) Grow(n int) {
	b.positions = grow(b.positions, 4*n)
	b.normals = grow(b.normals, 4*n)
	b.uvs = grow(b.uvs, 4*n)
	b.indices = grow(b.indices, 6*n)
}

func grow[T any](s []T, n int) []T {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]T, len(s), len(s)+n)
	copy(out, s)
	return out
}

// AddTile appends a quad whose bottom-left corner sits at offset.
func (b *TileMapBuilder) AddTile(offset mgl32.Vec2, kind uint16) {
	base := uint32(len(b.positions))
	s := b.tileSize
	x, y := offset.X(), offset.Y()

	b.positions = append(b.positions,
		mgl32.Vec3{x, y, 0},
		mgl32.Vec3{x, y + s, 0},
		mgl32.Vec3{x + s, y, 0},
		mgl32.Vec3{x + s, y + s, 0},
	)
	b.normals = append(b.normals, up, up, up, up)

	u0, v0, u1, v1 := TileUV(kind, b.atlasWidth)
	b.uvs = append(b.uvs,
		mgl32.Vec2{u0, v1},
		mgl32.Vec2{u0, v0},
		mgl32.Vec2{u1, v1},
		mgl32.Vec2{u1, v0},
	)

	for _, i := range quadIndices {
		b.indices = append(b.indices, base+i)
	}
}

// Len returns the number of tiles added since the last Clear.
func (b *TileMapBuilder) Len() int { return len(b.positions) / 4 }

// Build copies the accumulated buffers into a new Mesh. The builder keeps its
// contents.
func (b *TileMapBuilder) Build() *Mesh {
	return &Mesh{
		Positions: append([]mgl32.Vec3(nil), b.positions...),
		Normals:   append([]mgl32.Vec3(nil), b.normals...),
		UVs:       append([]mgl32.Vec2(nil), b.uvs...),
		Indices:   append([]uint32(nil), b.indices...),
	}
}

// Clear empties the builder, keeping allocated capacity.
func (b *TileMapBuilder) Clear() {
	b.positions = b.positions[:0]
	b.normals = b.normals[:0]
	b.uvs = b.uvs[:0]
	b.indices = b.indices[:0]
}
