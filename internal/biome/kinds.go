package biome

import (
	"strconv"
	"strings"
)

// ID identifies a biome. The set is closed.
type ID uint8

const (
	Plains ID = iota
	Desert
	Grassland
	Beach
	Ocean

	numIDs
)

var idNames = [numIDs]string{
	Plains:    "plains",
	Desert:    "desert",
	Grassland: "grassland",
	Beach:     "beach",
	Ocean:     "ocean",
}

func (id ID) String() string {
	if id < numIDs {
		return idNames[id]
	}
	return "biome(" + strconv.Itoa(int(id)) + ")"
}

// IDs returns every biome id in declaration order.
func IDs() []ID {
	ids := make([]ID, 0, numIDs)
	for id := ID(0); id < numIDs; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseID resolves a biome name (case-insensitive).
func ParseID(name string) (ID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range idNames {
		if n == name {
			return ID(id), true
		}
	}
	return 0, false
}

// TileKind indexes a ground texture in the tile atlas. With an atlas of
// width 8, kind k sits at row k/8, column k%8.
type TileKind uint16

const (
	TileDirt      TileKind = 0
	TileGrass     TileKind = 1
	TileStone     TileKind = 2
	TileSand      TileKind = 3
	TileGravel    TileKind = 4
	TileDryGrass  TileKind = 5
	TileTallGrass TileKind = 6
	TileFlowers   TileKind = 7
	TileWater     TileKind = 8
	TileDeepWater TileKind = 9
	TileWetSand   TileKind = 10
	TileRedSand   TileKind = 11
)

// MaxTileKinds is the number of cells in the default 8x8 atlas.
const MaxTileKinds = 64

var tileNames = map[TileKind]string{
	TileDirt:      "dirt",
	TileGrass:     "grass",
	TileStone:     "stone",
	TileSand:      "sand",
	TileGravel:    "gravel",
	TileDryGrass:  "dry_grass",
	TileTallGrass: "tall_grass",
	TileFlowers:   "flowers",
	TileWater:     "water",
	TileDeepWater: "deep_water",
	TileWetSand:   "wet_sand",
	TileRedSand:   "red_sand",
}

func (k TileKind) String() string {
	if n, ok := tileNames[k]; ok {
		return n
	}
	return "tile(" + strconv.Itoa(int(k)) + ")"
}

// ParseTileKind resolves a tile name.
func ParseTileKind(name string) (TileKind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range tileNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// FoliageKind identifies a decoration placed on top of a tile.
// FoliageNone means the cell is bare.
type FoliageKind uint8

const (
	FoliageNone FoliageKind = iota
	FoliageCactus
	FoliageBush
	FoliageTree
	FoliageReeds
	FoliagePalm
	FoliageRock
	FoliageShell

	numFoliage
)

var foliageNames = [numFoliage]string{
	FoliageNone:   "none",
	FoliageCactus: "cactus",
	FoliageBush:   "bush",
	FoliageTree:   "tree",
	FoliageReeds:  "reeds",
	FoliagePalm:   "palm",
	FoliageRock:   "rock",
	FoliageShell:  "shell",
}

var foliagePaths = [numFoliage]string{
	FoliageNone:   "",
	FoliageCactus: "foliage/cactus.png",
	FoliageBush:   "foliage/bush.png",
	FoliageTree:   "foliage/tree.png",
	FoliageReeds:  "foliage/reeds.png",
	FoliagePalm:   "foliage/palm.png",
	FoliageRock:   "foliage/rock.png",
	FoliageShell:  "foliage/shell.png",
}

func (k FoliageKind) String() string {
	if k < numFoliage {
		return foliageNames[k]
	}
	return "foliage(" + strconv.Itoa(int(k)) + ")"
}

// AssetPath returns the sprite path for k, or "" for FoliageNone and
// unknown kinds.
func (k FoliageKind) AssetPath() string {
	if k < numFoliage {
		return foliagePaths[k]
	}
	return ""
}

// ParseFoliageKind resolves a foliage name.
func ParseFoliageKind(name string) (FoliageKind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range foliageNames {
		if n == name {
			return FoliageKind(k), true
		}
	}
	return FoliageNone, false
}
