package world

import (
	"tileworld/internal/biome"
	"tileworld/internal/noise"
	"tileworld/internal/profiling"
)

// TerrainGenerator fills a freshly created chunk. Implementations must be
// deterministic in the chunk coordinate and safe for concurrent use on
// distinct chunks.
type TerrainGenerator interface {
	PopulateChunk(c *Chunk)
}

// FieldParams configures the three noise fields a Generator samples.
type FieldParams struct {
	Biome   noise.Params `yaml:"biome"`
	Tile    noise.Params `yaml:"tile"`
	Foliage noise.Params `yaml:"foliage"`
}

// DefaultFieldParams returns the stock frequencies and octave counts.
func DefaultFieldParams() FieldParams {
	return FieldParams{
		Biome:   noise.Params{Frequency: 0.1, Octaves: 3},
		Tile:    noise.Params{Frequency: 0.7, Octaves: 5},
		Foliage: noise.Params{Frequency: 2.3, Octaves: 2},
	}
}

// Generator draws biomes, tiles and foliage from three noise fields sharing
// one seed.
type Generator struct {
	seed    uint32
	table   *biome.Table
	sampler *noise.Sampler
	params  FieldParams
}

// NewGenerator creates a generator over a frozen biome table. The sampler
// must produce ChunkSize fields.
func NewGenerator(seed uint32, table *biome.Table, sampler *noise.Sampler, params FieldParams) *Generator {
	if table == nil {
		panic("world: generator needs a biome table")
	}
	if sampler.Size() != ChunkSize {
		panic("world: sampler grid does not match chunk size")
	}
	return &Generator{
		seed:    seed,
		table:   table,
		sampler: sampler,
		params:  params,
	}
}

// Seed returns the world seed.
func (g *Generator) Seed() uint32 { return g.seed }

// Table returns the biome table in use.
func (g *Generator) Table() *biome.Table { return g.table }

// PopulateChunk overwrites every cell of c. Each cell depends only on the
// chunk coordinate and its own position.
func (g *Generator) PopulateChunk(c *Chunk) {
	defer profiling.Track("world.PopulateChunk")()
	ox, oy := c.Coord.X, c.Coord.Y
	biomeField := g.sampler.Sample(ox, oy, g.seed, g.params.Biome)
	tileField := g.sampler.Sample(ox, oy, g.seed, g.params.Tile)
	foliageField := g.sampler.Sample(ox, oy, g.seed, g.params.Foliage)

	for x := range ChunkSize {
		for y := range ChunkSize {
			b := g.table.Biome(g.table.SelectBiome(biomeField.At(x, y)))
			kind := b.SelectTile(tileField.At(x, y))
			i := index(x, y)
			c.tiles[i] = Tile{Kind: kind, Biome: b.ID}
			c.foliage[i] = b.SelectFoliage(foliageField.At(x, y), kind)
		}
	}
}

// FlatGenerator fills every cell with the same tile and foliage.
type FlatGenerator struct {
	Tile    Tile
	Foliage biome.FoliageKind
}

// NewFlatGenerator creates a flat generator with no foliage.
func NewFlatGenerator(t Tile) *FlatGenerator {
	return &FlatGenerator{Tile: t}
}

// PopulateChunk implements TerrainGenerator.
func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	for i := range c.tiles {
		c.tiles[i] = g.Tile
		c.foliage[i] = g.Foliage
	}
}
