package biome

// Default returns the built-in catalog. Registration order (and so the
// tie-break order) is plains, grassland, desert, beach, ocean.
func Default() *Table {
	return DefaultBuilder().MustBuild()
}

// DefaultBuilder returns a builder preloaded with the built-in catalog so
// callers can append to it before freezing.
func DefaultBuilder() *Builder {
	return NewBuilder().
		Register(Biome{
			ID:     Plains,
			Weight: 30,
			Tiles: []WeightedTile{
				{Kind: TileGrass, Weight: 20},
				{Kind: TileDirt, Weight: 4},
				{Kind: TileFlowers, Weight: 2},
				{Kind: TileStone, Weight: 1},
			},
			Foliage: []WeightedFoliage{
				{Kind: FoliageBush, Weight: 6, On: []TileKind{TileGrass, TileFlowers}},
				{Kind: FoliageTree, Weight: 3, On: []TileKind{TileGrass}},
				{Kind: FoliageRock, Weight: 1, On: []TileKind{TileDirt, TileStone}},
			},
			FoliageDensity: 0.08,
		}).
		Register(Biome{
			ID:     Grassland,
			Weight: 25,
			Tiles: []WeightedTile{
				{Kind: TileTallGrass, Weight: 12},
				{Kind: TileGrass, Weight: 8},
				{Kind: TileDryGrass, Weight: 3},
			},
			Foliage: []WeightedFoliage{
				{Kind: FoliageBush, Weight: 5, On: []TileKind{TileGrass, TileTallGrass}},
				{Kind: FoliageTree, Weight: 1, On: []TileKind{TileGrass}},
			},
			FoliageDensity: 0.12,
		}).
		Register(Biome{
			ID:     Desert,
			Weight: 15,
			Tiles: []WeightedTile{
				{Kind: TileSand, Weight: 16},
				{Kind: TileRedSand, Weight: 3},
				{Kind: TileGravel, Weight: 1},
			},
			Foliage: []WeightedFoliage{
				{Kind: FoliageCactus, Weight: 4, On: []TileKind{TileSand, TileRedSand}},
				{Kind: FoliageRock, Weight: 1, On: []TileKind{TileGravel, TileRedSand}},
			},
			FoliageDensity: 0.05,
		}).
		Register(Biome{
			ID:     Beach,
			Weight: 10,
			Tiles: []WeightedTile{
				{Kind: TileSand, Weight: 10},
				{Kind: TileWetSand, Weight: 5},
			},
			Foliage: []WeightedFoliage{
				{Kind: FoliagePalm, Weight: 2, On: []TileKind{TileSand}},
				{Kind: FoliageShell, Weight: 3, On: []TileKind{TileWetSand}},
			},
			FoliageDensity: 0.04,
		}).
		Register(Biome{
			ID:     Ocean,
			Weight: 20,
			Tiles: []WeightedTile{
				{Kind: TileWater, Weight: 10},
				{Kind: TileDeepWater, Weight: 10},
			},
			Foliage: []WeightedFoliage{
				{Kind: FoliageReeds, Weight: 1, On: []TileKind{TileWater}},
			},
			FoliageDensity: 0.02,
		})
}
