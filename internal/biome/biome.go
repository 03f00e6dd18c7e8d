// Package biome holds the weighted catalogs that turn noise samples into
// biomes, ground tiles and foliage.
//
// A Table is assembled with a Builder and is read-only afterwards, so one
// Table may be shared by any number of concurrent chunk generations.
// Every draw is a roulette-wheel draw: u in [0,1) is scaled by the scope's
// weight sum and entries are walked in registration order until the
// cumulative weight exceeds the scaled value. Registration order therefore
// breaks ties.
package biome

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrEmptyWeights    = errors.New("weights sum to zero")
	ErrUnknownBiome    = errors.New("unknown biome")
	ErrDuplicateBiome  = errors.New("biome registered twice")
	ErrDensityRange    = errors.New("foliage density outside [0,1)")
	ErrUnknownTileKind = errors.New("tile kind outside atlas")
	ErrNoCompatibility = errors.New("foliage has no compatible tiles")
)

var maxUnit = math.Nextafter(1, 0)

// WeightedTile is one entry of a biome's ground catalog.
type WeightedTile struct {
	Kind   TileKind
	Weight uint16
}

// WeightedFoliage is one entry of a biome's foliage catalog. On lists the
// tile kinds the foliage may stand on.
type WeightedFoliage struct {
	Kind   FoliageKind
	Weight uint16
	On     []TileKind
}

func (f WeightedFoliage) allows(tile TileKind) bool {
	return slices.Contains(f.On, tile)
}

// Biome is a region type with its own tile and foliage catalogs.
//
// A Biome literal is only a definition for Builder.Register. Draws need the
// weight sums computed when a Table is built, so SelectTile and
// SelectFoliage may only be called on biomes returned by Table.Biome; on a
// hand-built value they panic as an empty scope.
type Biome struct {
	ID     ID
	Weight uint16

	Tiles   []WeightedTile
	Foliage []WeightedFoliage

	// FoliageDensity is the fraction of cells, in [0,1), that attempt a
	// foliage draw.
	FoliageDensity float64

	tileSum    uint32
	foliageSum uint32
}

// TileWeight returns the sum of the biome's tile weights.
func (b *Biome) TileWeight() uint32 { return b.tileSum }

// FoliageWeight returns the sum of the biome's foliage weights.
func (b *Biome) FoliageWeight() uint32 { return b.foliageSum }

// SelectTile draws a ground tile kind for u in [0,1). b must come from a
// Table.
func (b *Biome) SelectTile(u float64) TileKind {
	i := roulette(u, b.tileSum, len(b.Tiles), func(i int) uint16 { return b.Tiles[i].Weight })
	return b.Tiles[i].Kind
}

// SelectFoliage draws a foliage kind for a cell whose ground is tile. b must
// come from a Table.
//
// Cells with u >= FoliageDensity get FoliageNone without drawing. Otherwise
// u/FoliageDensity is drawn against the foliage weights; when the drawn kind
// cannot stand on tile the cell stays bare. There is no re-roll.
func (b *Biome) SelectFoliage(u float64, tile TileKind) FoliageKind {
	checkUnit(u)
	if u >= b.FoliageDensity {
		return FoliageNone
	}
	v := min(u/b.FoliageDensity, maxUnit)
	i := roulette(v, b.foliageSum, len(b.Foliage), func(i int) uint16 { return b.Foliage[i].Weight })
	f := b.Foliage[i]
	if !f.allows(tile) {
		return FoliageNone
	}
	return f.Kind
}

func (b *Biome) clone() *Biome {
	c := *b
	c.Tiles = slices.Clone(b.Tiles)
	c.Foliage = make([]WeightedFoliage, len(b.Foliage))
	for i, f := range b.Foliage {
		f.On = slices.Clone(f.On)
		c.Foliage[i] = f
	}
	c.tileSum, c.foliageSum = 0, 0
	for _, t := range c.Tiles {
		c.tileSum += uint32(t.Weight)
	}
	for _, f := range c.Foliage {
		c.foliageSum += uint32(f.Weight)
	}
	return &c
}

func (b *Biome) validate() error {
	if b.ID >= numIDs {
		return fmt.Errorf("biome %d: %w", b.ID, ErrUnknownBiome)
	}
	if len(b.Tiles) == 0 || b.tileSum == 0 {
		return fmt.Errorf("biome %s tiles: %w", b.ID, ErrEmptyWeights)
	}
	for _, t := range b.Tiles {
		if t.Kind >= MaxTileKinds {
			return fmt.Errorf("biome %s tile %d: %w", b.ID, t.Kind, ErrUnknownTileKind)
		}
	}
	if b.FoliageDensity < 0 || b.FoliageDensity >= 1 || math.IsNaN(b.FoliageDensity) {
		return fmt.Errorf("biome %s density %v: %w", b.ID, b.FoliageDensity, ErrDensityRange)
	}
	if b.FoliageDensity > 0 && b.foliageSum == 0 {
		return fmt.Errorf("biome %s foliage: %w", b.ID, ErrEmptyWeights)
	}
	for _, f := range b.Foliage {
		if f.Kind == FoliageNone || f.Kind >= numFoliage {
			return fmt.Errorf("biome %s foliage kind %d is not placeable", b.ID, f.Kind)
		}
		if len(f.On) == 0 {
			return fmt.Errorf("biome %s foliage %s: %w", b.ID, f.Kind, ErrNoCompatibility)
		}
	}
	return nil
}

// Table is the frozen set of registered biomes.
type Table struct {
	biomes []*Biome
	byID   [numIDs]*Biome
	sum    uint32
}

// TotalWeight returns the running biome weight sum.
func (t *Table) TotalWeight() uint32 { return t.sum }

// Len returns the number of registered biomes.
func (t *Table) Len() int { return len(t.biomes) }

// Registered returns the biome ids in registration order.
func (t *Table) Registered() []ID {
	ids := make([]ID, len(t.biomes))
	for i, b := range t.biomes {
		ids[i] = b.ID
	}
	return ids
}

// Has reports whether id was registered.
func (t *Table) Has(id ID) bool {
	return id < numIDs && t.byID[id] != nil
}

// Biome returns the registered biome for id. Asking for an id that was
// never registered is a programming error and panics.
func (t *Table) Biome(id ID) *Biome {
	if !t.Has(id) {
		panic(fmt.Sprintf("biome: %s was never registered", id))
	}
	return t.byID[id]
}

// SelectBiome draws a biome for u in [0,1).
func (t *Table) SelectBiome(u float64) ID {
	i := roulette(u, t.sum, len(t.biomes), func(i int) uint16 { return t.biomes[i].Weight })
	return t.biomes[i].ID
}

// SelectTile draws a tile kind within biome id.
func (t *Table) SelectTile(id ID, u float64) TileKind {
	return t.Biome(id).SelectTile(u)
}

// SelectFoliage draws a foliage kind within biome id, gated by density and
// by compatibility with tile.
func (t *Table) SelectFoliage(id ID, u float64, tile TileKind) FoliageKind {
	return t.Biome(id).SelectFoliage(u, tile)
}

// Builder registers biomes before a Table is frozen.
type Builder struct {
	biomes []*Biome
	sum    uint32
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register appends def and adds its weight to the running sum. The
// definition is copied; later changes to def do not affect the builder.
func (b *Builder) Register(def Biome) *Builder {
	c := def.clone()
	b.biomes = append(b.biomes, c)
	b.sum += uint32(c.Weight)
	return b
}

// Build validates the registered biomes and freezes them into a Table.
func (b *Builder) Build() (*Table, error) {
	t := &Table{sum: b.sum}
	if len(b.biomes) == 0 || b.sum == 0 {
		return nil, fmt.Errorf("biome table: %w", ErrEmptyWeights)
	}
	for _, def := range b.biomes {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if t.byID[def.ID] != nil {
			return nil, fmt.Errorf("biome %s: %w", def.ID, ErrDuplicateBiome)
		}
		c := def.clone()
		t.byID[c.ID] = c
		t.biomes = append(t.biomes, c)
	}
	return t, nil
}

// MustBuild is Build for static catalogs; it panics on error.
func (b *Builder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func checkUnit(u float64) {
	if !(u >= 0 && u < 1) {
		panic(fmt.Sprintf("biome: draw value %v outside [0,1)", u))
	}
}

// roulette returns the index of the first entry whose cumulative weight
// exceeds u*sum.
func roulette(u float64, sum uint32, n int, weight func(i int) uint16) int {
	checkUnit(u)
	if sum == 0 {
		panic("biome: weighted draw against an empty scope")
	}
	scaled := u * float64(sum)
	if scaled >= float64(sum) {
		// u just below 1 can round up to sum.
		scaled = math.Nextafter(float64(sum), 0)
	}
	var cum uint32
	for i := 0; i < n; i++ {
		cum += uint32(weight(i))
		if float64(cum) > scaled {
			return i
		}
	}
	panic(fmt.Sprintf("biome: draw %v fell through cumulative weight %d", u, sum))
}
