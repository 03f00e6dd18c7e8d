package biome

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func threeWay() *Table {
	return NewBuilder().
		Register(Biome{ID: Plains, Weight: 10, Tiles: []WeightedTile{{Kind: TileGrass, Weight: 1}}}).
		Register(Biome{ID: Desert, Weight: 5, Tiles: []WeightedTile{{Kind: TileSand, Weight: 1}}}).
		Register(Biome{ID: Ocean, Weight: 5, Tiles: []WeightedTile{{Kind: TileWater, Weight: 1}}}).
		MustBuild()
}

func TestSelectBiomeBoundaries(t *testing.T) {
	tab := threeWay()
	if tab.TotalWeight() != 20 {
		t.Fatalf("total weight: got %d, want 20", tab.TotalWeight())
	}

	cases := []struct {
		u    float64
		want ID
	}{
		{0, Plains},
		{0.49, Plains},
		{0.5, Desert},
		{0.74, Desert},
		{0.75, Ocean},
		{0.999, Ocean},
		{math.Nextafter(1, 0), Ocean},
	}
	for _, c := range cases {
		if got := tab.SelectBiome(c.u); got != c.want {
			t.Errorf("SelectBiome(%v): got %s, want %s", c.u, got, c.want)
		}
	}
}

func TestSelectBiomeFrequencies(t *testing.T) {
	tab := threeWay()
	const n = 10000
	counts := map[ID]int{}
	for i := 0; i < n; i++ {
		u := (float64(i) + 0.5) / n
		counts[tab.SelectBiome(u)]++
	}
	want := map[ID]float64{Plains: 0.5, Desert: 0.25, Ocean: 0.25}
	for id, frac := range want {
		got := float64(counts[id]) / n
		if math.Abs(got-frac) > 0.01 {
			t.Errorf("%s frequency: got %.3f, want %.3f", id, got, frac)
		}
	}
}

func TestSelectTileWeights(t *testing.T) {
	tab := NewBuilder().Register(Biome{
		ID:     Plains,
		Weight: 1,
		Tiles: []WeightedTile{
			{Kind: TileGrass, Weight: 10},
			{Kind: TileDirt, Weight: 5},
			{Kind: TileStone, Weight: 5},
		},
	}).MustBuild()

	if k := tab.SelectTile(Plains, 0); k != TileGrass {
		t.Errorf("u=0: got %s, want grass", k)
	}
	if k := tab.SelectTile(Plains, 0.999); k != TileStone {
		t.Errorf("u=0.999: got %s, want stone", k)
	}
	if w := tab.Biome(Plains).TileWeight(); w != 20 {
		t.Errorf("tile weight: got %d, want 20", w)
	}
}

func TestZeroWeightNeverDrawn(t *testing.T) {
	b := Biome{
		ID:     Plains,
		Weight: 1,
		Tiles: []WeightedTile{
			{Kind: TileDirt, Weight: 0},
			{Kind: TileGrass, Weight: 3},
			{Kind: TileStone, Weight: 0},
		},
	}
	tab := NewBuilder().Register(b).MustBuild()
	for i := 0; i < 100; i++ {
		if k := tab.SelectTile(Plains, float64(i)/100); k != TileGrass {
			t.Fatalf("u=%v drew %s", float64(i)/100, k)
		}
	}
}

func TestSelectFoliageDensityGate(t *testing.T) {
	tab := NewBuilder().Register(Biome{
		ID:     Desert,
		Weight: 1,
		Tiles:  []WeightedTile{{Kind: TileSand, Weight: 1}},
		Foliage: []WeightedFoliage{
			{Kind: FoliageCactus, Weight: 1, On: []TileKind{TileSand}},
			{Kind: FoliageRock, Weight: 1, On: []TileKind{TileGravel}},
		},
		FoliageDensity: 0.3,
	}).MustBuild()

	if f := tab.SelectFoliage(Desert, 0.3, TileSand); f != FoliageNone {
		t.Errorf("u at density: got %s, want none", f)
	}
	if f := tab.SelectFoliage(Desert, 0.9, TileSand); f != FoliageNone {
		t.Errorf("u above density: got %s, want none", f)
	}
	// u/density = 0.1 lands on cactus.
	if f := tab.SelectFoliage(Desert, 0.03, TileSand); f != FoliageCactus {
		t.Errorf("low u on sand: got %s, want cactus", f)
	}
	// u/density = 0.9 lands on rock, which cannot stand on sand.
	if f := tab.SelectFoliage(Desert, 0.27, TileSand); f != FoliageNone {
		t.Errorf("incompatible draw: got %s, want none", f)
	}
	if f := tab.SelectFoliage(Desert, 0.27, TileGravel); f != FoliageRock {
		t.Errorf("rock on gravel: got %s, want rock", f)
	}
}

func TestSelectFoliageZeroDensity(t *testing.T) {
	tab := NewBuilder().Register(Biome{
		ID:     Ocean,
		Weight: 1,
		Tiles:  []WeightedTile{{Kind: TileWater, Weight: 1}},
	}).MustBuild()
	if f := tab.SelectFoliage(Ocean, 0, TileWater); f != FoliageNone {
		t.Errorf("zero density: got %s, want none", f)
	}
}

func TestBuildErrors(t *testing.T) {
	grass := []WeightedTile{{Kind: TileGrass, Weight: 1}}
	cases := []struct {
		name string
		defs []Biome
		want error
	}{
		{"empty", nil, ErrEmptyWeights},
		{"zero biome weights", []Biome{{ID: Plains, Weight: 0, Tiles: grass}}, ErrEmptyWeights},
		{"no tiles", []Biome{{ID: Plains, Weight: 1}}, ErrEmptyWeights},
		{"duplicate", []Biome{{ID: Plains, Weight: 1, Tiles: grass}, {ID: Plains, Weight: 2, Tiles: grass}}, ErrDuplicateBiome},
		{"unknown id", []Biome{{ID: ID(42), Weight: 1, Tiles: grass}}, ErrUnknownBiome},
		{"density", []Biome{{ID: Plains, Weight: 1, Tiles: grass, FoliageDensity: 1}}, ErrDensityRange},
		{"tile outside atlas", []Biome{{ID: Plains, Weight: 1, Tiles: []WeightedTile{{Kind: 99, Weight: 1}}}}, ErrUnknownTileKind},
		{"density without foliage", []Biome{{ID: Plains, Weight: 1, Tiles: grass, FoliageDensity: 0.5}}, ErrEmptyWeights},
		{"foliage without tiles", []Biome{{
			ID: Plains, Weight: 1, Tiles: grass, FoliageDensity: 0.5,
			Foliage: []WeightedFoliage{{Kind: FoliageBush, Weight: 1}},
		}}, ErrNoCompatibility},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := NewBuilder()
			for _, d := range c.defs {
				b.Register(d)
			}
			if _, err := b.Build(); !errors.Is(err, c.want) {
				t.Fatalf("Build: got %v, want %v", err, c.want)
			}
		})
	}
}

func TestRegisterCopiesDefinition(t *testing.T) {
	tiles := []WeightedTile{{Kind: TileGrass, Weight: 1}}
	b := NewBuilder().Register(Biome{ID: Plains, Weight: 1, Tiles: tiles})
	tiles[0].Kind = TileStone
	tab := b.MustBuild()
	if k := tab.SelectTile(Plains, 0); k != TileGrass {
		t.Fatalf("builder aliased caller slice: drew %s", k)
	}
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestPanics(t *testing.T) {
	tab := threeWay()
	expectPanic(t, "unregistered biome", func() { tab.Biome(Beach) })
	expectPanic(t, "select tile in unregistered biome", func() { tab.SelectTile(Grassland, 0.5) })
	expectPanic(t, "u = 1", func() { tab.SelectBiome(1) })
	expectPanic(t, "negative u", func() { tab.SelectBiome(-0.1) })
	expectPanic(t, "NaN u", func() { tab.SelectBiome(math.NaN()) })
}

func TestDrawNeedsTableBiome(t *testing.T) {
	def := Biome{ID: Plains, Weight: 1, Tiles: []WeightedTile{{Kind: TileGrass, Weight: 1}}}
	expectPanic(t, "hand-built biome", func() { def.SelectTile(0.5) })

	tab := NewBuilder().Register(def).MustBuild()
	if k := tab.Biome(Plains).SelectTile(0.5); k != TileGrass {
		t.Errorf("table biome: got %s, want grass", k)
	}
	if w := tab.Biome(Plains).TileWeight(); w != 1 {
		t.Errorf("table biome tile weight: got %d", w)
	}
}

func TestDefaultCatalog(t *testing.T) {
	tab := Default()
	want := []ID{Plains, Grassland, Desert, Beach, Ocean}
	got := tab.Registered()
	if len(got) != len(want) {
		t.Fatalf("registered: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("registered[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
	if tab.TotalWeight() != 100 {
		t.Errorf("total weight: got %d, want 100", tab.TotalWeight())
	}
	for _, id := range want {
		b := tab.Biome(id)
		for _, f := range b.Foliage {
			if f.Kind.AssetPath() == "" {
				t.Errorf("%s foliage %s has no asset", id, f.Kind)
			}
		}
	}
}

func TestKindNames(t *testing.T) {
	for _, id := range IDs() {
		back, ok := ParseID(id.String())
		if !ok || back != id {
			t.Errorf("ParseID(%q): got %v, %v", id.String(), back, ok)
		}
	}
	if k, ok := ParseTileKind(" Deep_Water "); !ok || k != TileDeepWater {
		t.Errorf("ParseTileKind: got %v, %v", k, ok)
	}
	if _, ok := ParseFoliageKind("fern"); ok {
		t.Error("ParseFoliageKind accepted unknown name")
	}
	if FoliageNone.AssetPath() != "" {
		t.Error("FoliageNone should have no asset")
	}
	if s := TileKind(40).String(); s != "tile(40)" {
		t.Errorf("unnamed tile: got %q", s)
	}
}

const testCatalog = `
biomes:
  - id: ocean
    weight: 3
    tiles:
      - {kind: water, weight: 2}
      - {kind: 9, weight: 1}
  - id: beach
    weight: 1
    foliage_density: 0.25
    tiles:
      - {kind: sand, weight: 1}
    foliage:
      - kind: palm
        weight: 1
        on: [sand]
`

func TestParseCatalog(t *testing.T) {
	tab, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if tab.Len() != 2 || tab.TotalWeight() != 4 {
		t.Fatalf("got %d biomes weighing %d", tab.Len(), tab.TotalWeight())
	}
	if id := tab.SelectBiome(0.8); id != Beach {
		t.Errorf("SelectBiome(0.8): got %s, want beach", id)
	}
	if k := tab.SelectTile(Ocean, 0.9); k != TileDeepWater {
		t.Errorf("numeric tile ref: got %s, want deep_water", k)
	}
	if f := tab.SelectFoliage(Beach, 0.1, TileSand); f != FoliagePalm {
		t.Errorf("foliage: got %s, want palm", f)
	}
}

func TestParseCatalogRejects(t *testing.T) {
	cases := map[string]string{
		"missing biomes":  "foo: 1\n",
		"unknown id":      "biomes:\n  - {id: tundra, weight: 1, tiles: [{kind: dirt, weight: 1}]}\n",
		"negative weight": "biomes:\n  - {id: plains, weight: -1, tiles: [{kind: dirt, weight: 1}]}\n",
		"density of one":  "biomes:\n  - {id: plains, weight: 1, foliage_density: 1, tiles: [{kind: dirt, weight: 1}]}\n",
		"unknown tile":    "biomes:\n  - {id: plains, weight: 1, tiles: [{kind: lava, weight: 1}]}\n",
		"tile index":      "biomes:\n  - {id: plains, weight: 1, tiles: [{kind: 64, weight: 1}]}\n",
		"unknown foliage": "biomes:\n  - {id: plains, weight: 1, foliage_density: 0.1, tiles: [{kind: dirt, weight: 1}], foliage: [{kind: fern, weight: 1, on: [dirt]}]}\n",
		"extra field":     "biomes:\n  - {id: plains, weight: 1, colour: red, tiles: [{kind: dirt, weight: 1}]}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	if err := validateCatalog([]byte(testCatalog)); err != nil {
		t.Fatalf("valid catalog rejected: %v", err)
	}
	for _, doc := range []string{
		"biomes:\n  - {id: plains, weight: 1, colour: red, tiles: [{kind: dirt, weight: 1}]}\n",
		"biomes:\n  - {id: plains, weight: 70000, tiles: [{kind: 3, weight: 1}]}\n",
		"biomes:\n  - {id: plains, weight: 1, foliage_density: 1.5, tiles: [{kind: dirt, weight: 1}]}\n",
	} {
		err := validateCatalog([]byte(doc))
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%q: got %v, want a schema validation error", doc, err)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "biomes.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	_, err := LoadCatalog(filepath.Join(dir, "missing.yaml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("biomes: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadCatalog(bad)
	if err == nil || !strings.Contains(err.Error(), bad) {
		t.Fatalf("bad catalog: got %v", err)
	}
}

func BenchmarkSelectBiome(b *testing.B) {
	tab := Default()
	for i := 0; i < b.N; i++ {
		tab.SelectBiome(float64(i%1000) / 1000)
	}
}

func TestShippedCatalogMatchesDefault(t *testing.T) {
	shipped, err := LoadCatalog(filepath.Join("..", "..", "configs", "biomes.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	def := Default()
	if shipped.TotalWeight() != def.TotalWeight() || shipped.Len() != def.Len() {
		t.Fatalf("shipped catalog: %d biomes / %d weight", shipped.Len(), shipped.TotalWeight())
	}
	for i, id := range def.Registered() {
		if shipped.Registered()[i] != id {
			t.Fatalf("order differs at %d: %s vs %s", i, shipped.Registered()[i], id)
		}
		a, b := shipped.Biome(id), def.Biome(id)
		if a.TileWeight() != b.TileWeight() || a.FoliageWeight() != b.FoliageWeight() || a.FoliageDensity != b.FoliageDensity {
			t.Errorf("%s differs from the built-in definition", id)
		}
	}
}
