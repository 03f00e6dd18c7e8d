// Package noise samples deterministic fractal scalar fields over chunk grids.
package noise

import (
	"math"
	"sync"
)

// maxUnit is the largest value a unit field may hold; fields feed roulette
// draws which require u < 1.
var maxUnit = math.Nextafter(1, 0)

// Params configures one fractal field. Fields that must look unrelated
// (biome regions, tile texture, foliage placement) use different frequencies.
type Params struct {
	Frequency float64 `yaml:"frequency"`
	Octaves   int     `yaml:"octaves"`
}

// Field is a square grid of samples normalised to [0, 1). It is immutable
// once returned by Sample.
type Field struct {
	size   int
	values []float64
}

// Size returns the side length of the field.
func (f Field) Size() int { return f.size }

// At returns the unit sample at cell (x, y).
func (f Field) At(x, y int) float64 {
	return f.values[x*f.size+y]
}

// Signed returns the sample at (x, y) remapped to [-1, 1).
func (f Field) Signed(x, y int) float64 {
	return f.At(x, y)*2 - 1
}

// Sampler produces Fields for chunk-sized grids. Primitives are built once
// per seed and shared; Sample is safe for concurrent use.
type Sampler struct {
	kind Kind
	size int

	mu    sync.Mutex
	prims map[uint32]Primitive
}

// NewSampler creates a sampler for grids of side size using the given
// primitive kind.
func NewSampler(kind Kind, size int) *Sampler {
	if size <= 0 {
		panic("noise: grid size must be positive")
	}
	return &Sampler{
		kind:  kind,
		size:  size,
		prims: make(map[uint32]Primitive),
	}
}

// Kind returns the primitive kind in use.
func (s *Sampler) Kind() Kind { return s.kind }

// Size returns the side length of the fields this sampler produces.
func (s *Sampler) Size() int { return s.size }

func (s *Sampler) primitive(seed uint32) Primitive {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prims[seed]
	if !ok {
		p = newPrimitive(s.kind, seed)
		s.prims[seed] = p
	}
	return p
}

// Sample evaluates the fractal field for the chunk at (originX, originY).
//
// Cell (x, y) is sampled at ((x/size + originX) * frequency, ...). Octave i
// contributes 0.5^i * (1 + n(pos * 2^i)) / 2 and the sum is divided by the
// sum of amplitudes, which keeps the result in [0, 1] for primitives bounded
// by [-1, 1]. The result is clamped into [0, 1).
func (s *Sampler) Sample(originX, originY int, seed uint32, p Params) Field {
	prim := s.primitive(seed)
	octaves := max(p.Octaves, 1)

	f := Field{size: s.size, values: make([]float64, s.size*s.size)}
	inv := 1.0 / float64(s.size)
	for x := range s.size {
		for y := range s.size {
			px := (float64(x)*inv + float64(originX)) * p.Frequency
			py := (float64(y)*inv + float64(originY)) * p.Frequency
			f.values[x*s.size+y] = octaveSample(prim, px, py, octaves)
		}
	}
	return f
}

func octaveSample(prim Primitive, x, y float64, octaves int) float64 {
	amplitude := 1.0
	lacunarity := 1.0
	sum := 0.0
	norm := 0.0
	for range octaves {
		n := prim.Eval(x*lacunarity, y*lacunarity)
		sum += amplitude * (1 + n) * 0.5
		norm += amplitude
		amplitude *= 0.5
		lacunarity *= 2
	}
	return clampUnit(sum / norm)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Abs(v)
	if v > maxUnit {
		return maxUnit
	}
	return v
}
