package biome

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaText string

var catalogSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("catalog.schema.json", catalogSchemaText)
})

type catalogFile struct {
	Biomes []biomeEntry `yaml:"biomes"`
}

type biomeEntry struct {
	ID             string         `yaml:"id"`
	Weight         uint16         `yaml:"weight"`
	FoliageDensity float64        `yaml:"foliage_density"`
	Tiles          []tileEntry    `yaml:"tiles"`
	Foliage        []foliageEntry `yaml:"foliage"`
}

type tileEntry struct {
	Kind   tileRef `yaml:"kind"`
	Weight uint16  `yaml:"weight"`
}

type foliageEntry struct {
	Kind   string    `yaml:"kind"`
	Weight uint16    `yaml:"weight"`
	On     []tileRef `yaml:"on"`
}

// tileRef accepts either a tile name or a raw atlas index.
type tileRef TileKind

func (r *tileRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: tile kind must be a name or an atlas index", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseUint(node.Value, 10, 16)
		if err != nil {
			return fmt.Errorf("line %d: tile index: %w", node.Line, err)
		}
		*r = tileRef(n)
		return nil
	}
	k, ok := ParseTileKind(node.Value)
	if !ok {
		return fmt.Errorf("line %d: unknown tile %q", node.Line, node.Value)
	}
	*r = tileRef(k)
	return nil
}

// LoadCatalog reads a YAML biome catalog from path and freezes it into a
// Table.
func LoadCatalog(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog: %w", err)
	}
	t, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseCatalog validates a YAML catalog against the catalog schema and
// builds a Table from it. Biomes are registered in file order.
func ParseCatalog(data []byte) (*Table, error) {
	if err := validateCatalog(data); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not decode catalog: %w", err)
	}

	b := NewBuilder()
	for _, e := range file.Biomes {
		def, err := e.toBiome()
		if err != nil {
			return nil, err
		}
		b.Register(def)
	}
	return b.Build()
}

func validateCatalog(data []byte) error {
	schema, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("could not compile catalog schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("could not decode catalog: %w", err)
	}
	// The validator expects JSON-shaped values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not convert catalog: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return fmt.Errorf("could not convert catalog: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

func (e biomeEntry) toBiome() (Biome, error) {
	id, ok := ParseID(e.ID)
	if !ok {
		return Biome{}, fmt.Errorf("biome %q: %w", e.ID, ErrUnknownBiome)
	}
	def := Biome{
		ID:             id,
		Weight:         e.Weight,
		FoliageDensity: e.FoliageDensity,
	}
	for _, t := range e.Tiles {
		def.Tiles = append(def.Tiles, WeightedTile{Kind: TileKind(t.Kind), Weight: t.Weight})
	}
	for _, f := range e.Foliage {
		kind, ok := ParseFoliageKind(f.Kind)
		if !ok || kind == FoliageNone {
			return Biome{}, fmt.Errorf("biome %s: unknown foliage %q", id, f.Kind)
		}
		wf := WeightedFoliage{Kind: kind, Weight: f.Weight}
		for _, on := range f.On {
			wf.On = append(wf.On, TileKind(on))
		}
		def.Foliage = append(def.Foliage, wf)
	}
	return def, nil
}
