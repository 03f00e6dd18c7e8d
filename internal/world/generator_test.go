package world

import (
	"crypto/sha256"
	"testing"

	"tileworld/internal/biome"
	"tileworld/internal/noise"
)

func TestStandardGeneratorImplementsInterface(t *testing.T) {
	var _ TerrainGenerator = newTestGenerator(123)
}

func TestFlatGeneratorImplementsInterface(t *testing.T) {
	var _ TerrainGenerator = NewFlatGenerator(DefaultTile)
}

func newTestGenerator(seed uint32) *Generator {
	return NewGenerator(seed, biome.Default(), noise.NewSampler(noise.KindPerlin, ChunkSize), DefaultFieldParams())
}

func TestGeneratorAccessors(t *testing.T) {
	table := biome.Default()
	g := NewGenerator(77, table, noise.NewSampler(noise.KindValue, ChunkSize), DefaultFieldParams())
	if g.Seed() != 77 {
		t.Errorf("Seed: got %d", g.Seed())
	}
	if g.Table() != table {
		t.Error("Table: not the table passed in")
	}
}

func TestFlatGeneratorPopulate(t *testing.T) {
	c := NewChunk(Coord{X: 3, Y: -2})
	g := NewFlatGenerator(Tile{Kind: biome.TileSand, Biome: biome.Desert})
	g.Foliage = biome.FoliageCactus
	g.PopulateChunk(c)

	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			if tile := c.Tile(x, y); tile.Kind != biome.TileSand || tile.Biome != biome.Desert {
				t.Fatalf("cell (%d,%d): got %+v", x, y, tile)
			}
			if f := c.Foliage(x, y); f != biome.FoliageCactus {
				t.Fatalf("cell (%d,%d) foliage: got %s", x, y, f)
			}
		}
	}
	if n := len(c.Decorations()); n != ChunkSize*ChunkSize {
		t.Errorf("decorations: got %d, want %d", n, ChunkSize*ChunkSize)
	}
}

// hashChunkTiles computes a SHA-256 hash of all tiles and foliage in a chunk
func hashChunkTiles(c *Chunk) [32]byte {
	h := sha256.New()
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			tile := c.Tile(x, y)
			h.Write([]byte{byte(tile.Kind), byte(tile.Kind >> 8), byte(tile.Biome), byte(c.Foliage(x, y))})
		}
	}
	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result
}

// TestGeneratorDeterminism verifies same seed produces identical chunks
func TestGeneratorDeterminism(t *testing.T) {
	coords := []Coord{{0, 0}, {1, 0}, {0, 1}, {-1, -1}, {7, -12}}
	for _, kind := range []noise.Kind{noise.KindPerlin, noise.KindSimplex, noise.KindValue} {
		for _, coord := range coords {
			g1 := NewGenerator(12345, biome.Default(), noise.NewSampler(kind, ChunkSize), DefaultFieldParams())
			c1 := NewChunk(coord)
			g1.PopulateChunk(c1)

			g2 := NewGenerator(12345, biome.Default(), noise.NewSampler(kind, ChunkSize), DefaultFieldParams())
			c2 := NewChunk(coord)
			g2.PopulateChunk(c2)

			if hashChunkTiles(c1) != hashChunkTiles(c2) {
				t.Errorf("%s chunk %s not deterministic", kind, coord)
			}
		}
	}
}

func TestGeneratorUsesRegisteredContent(t *testing.T) {
	tab := biome.Default()
	g := NewGenerator(99, tab, noise.NewSampler(noise.KindSimplex, ChunkSize), DefaultFieldParams())
	for _, coord := range []Coord{{0, 0}, {5, 5}, {-9, 4}} {
		c := NewChunk(coord)
		g.PopulateChunk(c)
		for x := 0; x < ChunkSize; x++ {
			for y := 0; y < ChunkSize; y++ {
				tile := c.Tile(x, y)
				b := tab.Biome(tile.Biome)
				found := false
				for _, wt := range b.Tiles {
					if wt.Kind == tile.Kind && wt.Weight > 0 {
						found = true
					}
				}
				if !found {
					t.Fatalf("%s cell (%d,%d): tile %s not in biome %s", coord, x, y, tile.Kind, b.ID)
				}
				f := c.Foliage(x, y)
				if f == biome.FoliageNone {
					continue
				}
				allowed := false
				for _, wf := range b.Foliage {
					if wf.Kind != f {
						continue
					}
					for _, on := range wf.On {
						if on == tile.Kind {
							allowed = true
						}
					}
				}
				if !allowed {
					t.Fatalf("%s cell (%d,%d): foliage %s on %s in %s", coord, x, y, f, tile.Kind, b.ID)
				}
			}
		}
	}
}

func TestGeneratorSeedChangesOutput(t *testing.T) {
	c1 := NewChunk(Coord{2, 2})
	newTestGenerator(1).PopulateChunk(c1)
	c2 := NewChunk(Coord{2, 2})
	newTestGenerator(2).PopulateChunk(c2)
	c3 := NewChunk(Coord{30, -30})
	newTestGenerator(1).PopulateChunk(c3)
	if hashChunkTiles(c1) == hashChunkTiles(c2) && hashChunkTiles(c1) == hashChunkTiles(c3) {
		t.Error("seed and coordinate have no effect on generation")
	}
}

func TestNewGeneratorRejectsMismatchedSampler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewGenerator(1, biome.Default(), noise.NewSampler(noise.KindPerlin, 8), DefaultFieldParams())
}

// BenchmarkPopulateChunk measures chunk generation performance
func BenchmarkPopulateChunk(b *testing.B) {
	g := newTestGenerator(12345)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewChunk(Coord{X: i % 32, Y: i / 32})
		g.PopulateChunk(c)
	}
}
