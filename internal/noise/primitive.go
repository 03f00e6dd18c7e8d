package noise

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Primitive is a single-octave coherent 2D noise function. Eval returns
// values roughly in [-1, 1] and must be deterministic for a given seed and
// position.
type Primitive interface {
	Eval(x, y float64) float64
}

// Kind names a primitive implementation.
type Kind string

const (
	KindPerlin  Kind = "perlin"
	KindSimplex Kind = "simplex"
	KindValue   Kind = "value"
)

// ParseKind maps a settings string onto a Kind. The empty string selects Perlin.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindPerlin:
		return KindPerlin, nil
	case KindSimplex:
		return KindSimplex, nil
	case KindValue:
		return KindValue, nil
	}
	return "", fmt.Errorf("unknown noise primitive %q", s)
}

func newPrimitive(kind Kind, seed uint32) Primitive {
	switch kind {
	case KindSimplex:
		return simplexPrimitive{n: opensimplex.New(int64(seed))}
	case KindValue:
		return valuePrimitive{seed: int64(seed)}
	default:
		// alpha/beta only matter for n > 1; octaves are summed by the sampler.
		return perlinPrimitive{p: perlin.NewPerlin(2, 2, 1, int64(seed))}
	}
}

// perlinPeriod is the lattice period of go-perlin's permutation table.
const perlinPeriod = 256

type perlinPrimitive struct{ p *perlin.Perlin }

// Eval wraps positions into one table period first. go-perlin truncates
// x+4096 to int32, which breaks below -4096; the noise repeats every
// perlinPeriod units, so the wrap does not change the field.
func (p perlinPrimitive) Eval(x, y float64) float64 {
	return p.p.Noise2D(wrapPeriod(x), wrapPeriod(y))
}

func wrapPeriod(v float64) float64 {
	return v - perlinPeriod*math.Floor(v/perlinPeriod)
}

type simplexPrimitive struct{ n opensimplex.Noise }

func (s simplexPrimitive) Eval(x, y float64) float64 { return s.n.Eval2(x, y) }

// valuePrimitive is hashed lattice value noise with quintic fade, remapped
// from [0,1] to [-1,1]. It needs no permutation tables, so it is cheap to
// construct per seed.
type valuePrimitive struct{ seed int64 }

func (v valuePrimitive) Eval(x, y float64) float64 {
	return valueNoise2D(x, y, v.seed)*2 - 1
}

func fade(t float64) float64 {
	// 6t^5 - 15t^4 + 10t^3
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash2 is a SplitMix64 style integer hash, stable across runs and platforms.
func hash2(x, y, seed int64) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func latticeValue(x, y, seed int64) float64 {
	return float64(hash2(x, y, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise2D(x, y float64, seed int64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)

	fx := fade(x - x0)
	fy := fade(y - y0)

	ix, iy := int64(x0), int64(y0)
	v00 := latticeValue(ix, iy, seed)
	v10 := latticeValue(ix+1, iy, seed)
	v01 := latticeValue(ix, iy+1, seed)
	v11 := latticeValue(ix+1, iy+1, seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fy)
}
