package present

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sync"

	"golang.org/x/image/draw"

	"tileworld/internal/biome"
	"tileworld/internal/meshing"
	"tileworld/internal/world"
)

var tilePalette = map[biome.TileKind]color.RGBA{
	biome.TileDirt:      {0x8b, 0x5a, 0x2b, 0xff},
	biome.TileGrass:     {0x4c, 0x9a, 0x2a, 0xff},
	biome.TileStone:     {0x80, 0x80, 0x80, 0xff},
	biome.TileSand:      {0xe6, 0xd3, 0x8c, 0xff},
	biome.TileGravel:    {0x9a, 0x94, 0x8a, 0xff},
	biome.TileDryGrass:  {0xb5, 0xa6, 0x42, 0xff},
	biome.TileTallGrass: {0x2f, 0x7d, 0x1f, 0xff},
	biome.TileFlowers:   {0xc8, 0x5a, 0xb4, 0xff},
	biome.TileWater:     {0x3a, 0x7b, 0xd5, 0xff},
	biome.TileDeepWater: {0x1c, 0x3f, 0x8a, 0xff},
	biome.TileWetSand:   {0xbf, 0xa7, 0x6a, 0xff},
	biome.TileRedSand:   {0xc2, 0x6a, 0x3a, 0xff},
}

var foliageColor = color.RGBA{0x1d, 0x2b, 0x12, 0xff}

// ProceduralAtlas paints a width x width atlas with cellPx-pixel cells, one
// flat colour per tile kind. Kinds without a palette entry get a colour
// derived from their index.
func ProceduralAtlas(width, cellPx int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width*cellPx, width*cellPx))
	for k := 0; k < width*width; k++ {
		row, col := meshing.AtlasCell(uint16(k), width)
		c, ok := tilePalette[biome.TileKind(k)]
		if !ok {
			h := uint32(k) * 2654435761
			c = color.RGBA{uint8(h >> 24), uint8(h >> 16), uint8(h >> 8), 0xff}
		}
		r := image.Rect(col*cellPx, row*cellPx, (col+1)*cellPx, (row+1)*cellPx)
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	return img
}

// LoadAtlas decodes a PNG atlas image.
func LoadAtlas(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open atlas: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode atlas: %w", err)
	}
	return img, nil
}

// Preview rasterises presented meshes into a top-down image by copying the
// atlas region each quad's UVs point at. World +Y is drawn upward.
type Preview struct {
	atlas         image.Image
	pixelsPerTile int

	mu     sync.Mutex
	meshes map[world.Coord]*meshing.Mesh
	decor  map[world.Coord][]world.Decoration
}

// NewPreview creates a preview drawing each tile as pixelsPerTile square
// pixels sampled from atlas.
func NewPreview(atlas image.Image, pixelsPerTile int) *Preview {
	return &Preview{
		atlas:         atlas,
		pixelsPerTile: max(pixelsPerTile, 1),
		meshes:        make(map[world.Coord]*meshing.Mesh),
		decor:         make(map[world.Coord][]world.Decoration),
	}
}

func (p *Preview) Present(coord world.Coord, mesh *meshing.Mesh) {
	p.mu.Lock()
	p.meshes[coord] = mesh
	p.mu.Unlock()
}

func (p *Preview) Retire(coord world.Coord) {
	p.mu.Lock()
	delete(p.meshes, coord)
	p.mu.Unlock()
}

func (p *Preview) Decorate(coord world.Coord, decorations []world.Decoration) {
	p.mu.Lock()
	p.decor[coord] = decorations
	p.mu.Unlock()
}

func (p *Preview) Undecorate(coord world.Coord) {
	p.mu.Lock()
	delete(p.decor, coord)
	p.mu.Unlock()
}

// bounds returns the world-space rectangle covered by all quads.
func (p *Preview) bounds() (minX, minY, maxX, maxY float32, ok bool) {
	minX, minY = math.MaxFloat32, math.MaxFloat32
	maxX, maxY = -math.MaxFloat32, -math.MaxFloat32
	for _, m := range p.meshes {
		for _, v := range m.Positions {
			minX, minY = min(minX, v.X()), min(minY, v.Y())
			maxX, maxY = max(maxX, v.X()), max(maxY, v.Y())
			ok = true
		}
	}
	return
}

// Render draws the current state. It returns an empty image when nothing
// is presented.
func (p *Preview) Render() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	minX, minY, maxX, maxY, ok := p.bounds()
	if !ok {
		return image.NewRGBA(image.Rectangle{})
	}
	ppt := float32(p.pixelsPerTile)
	w := int(math.Round(float64((maxX - minX) / world.TileSize * ppt)))
	h := int(math.Round(float64((maxY - minY) / world.TileSize * ppt)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	toPx := func(x, y float32) image.Point {
		return image.Point{
			X: int(math.Round(float64((x - minX) / world.TileSize * ppt))),
			Y: int(math.Round(float64((maxY - y) / world.TileSize * ppt))),
		}
	}

	ab := p.atlas.Bounds()
	for _, m := range p.meshes {
		for q := 0; q < m.Quads(); q++ {
			// vertex 1 is top-left, vertex 2 bottom-right
			tl, br := m.Positions[4*q+1], m.Positions[4*q+2]
			uvTL, uvBR := m.UVs[4*q+1], m.UVs[4*q+2]
			dr := image.Rectangle{Min: toPx(tl.X(), tl.Y()), Max: toPx(br.X(), br.Y())}
			sr := image.Rect(
				ab.Min.X+int(math.Round(float64(uvTL.X()*float32(ab.Dx())))),
				ab.Min.Y+int(math.Round(float64(uvTL.Y()*float32(ab.Dy())))),
				ab.Min.X+int(math.Round(float64(uvBR.X()*float32(ab.Dx())))),
				ab.Min.Y+int(math.Round(float64(uvBR.Y()*float32(ab.Dy())))),
			)
			draw.NearestNeighbor.Scale(dst, dr, p.atlas, sr, draw.Src, nil)
		}
	}

	dot := max(p.pixelsPerTile/3, 1)
	for _, decs := range p.decor {
		for _, d := range decs {
			c := toPx(d.Pos.X(), d.Pos.Y())
			r := image.Rect(c.X-dot/2, c.Y-dot/2, c.X-dot/2+dot, c.Y-dot/2+dot)
			draw.Draw(dst, r.Intersect(dst.Bounds()), &image.Uniform{C: foliageColor}, image.Point{}, draw.Over)
		}
	}
	return dst
}

// WritePNG renders the current state to a PNG file at path.
func (p *Preview) WritePNG(path string) error {
	img := p.Render()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not encode preview: %w", err)
	}
	return f.Close()
}
