package terrain

import (
	"math"
)

// Deterministic 2D value noise. Lattice values come from an integer hash, so
// the same (x, y, seed) always yields the same height on every platform.

func fade(t float64) float64 {
	// 6t^5 - 15t^4 + 10t^3
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash2(x, y, seed int64) uint64 {
	// SplitMix64 finalizer over the mixed lattice coordinates
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func latticeValue(x, y, seed int64) float64 {
	return float64(hash2(x, y, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// valueNoise2D returns smoothly interpolated lattice noise in [0,1].
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

// Band is one noise layer: noise sampled at Frequency cycles per world unit,
// mapped onto [Min, Max].
type Band struct {
	Frequency float64
	Min, Max  float64
}

// DefaultBands are the layers summed into the ground height.
var DefaultBands = []Band{
	{Frequency: 1.0 / 40000, Min: -40, Max: 500},
	{Frequency: 1.0 / 400000, Min: 0, Max: 1000},
	{Frequency: 1.0 / 2500, Min: -12, Max: 12},
}

// Generator evaluates the ground height function.
type Generator struct {
	seed  int64
	bands []Band
}

// NewGenerator creates a generator over DefaultBands.
func NewGenerator(seed int64) *Generator {
	return NewGeneratorWithBands(seed, DefaultBands)
}

func NewGeneratorWithBands(seed int64, bands []Band) *Generator {
	return &Generator{seed: seed, bands: append([]Band(nil), bands...)}
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 { return g.seed }

// HeightAt returns the ground height at world (x, y).
func (g *Generator) HeightAt(x, y float64) float32 {
	h := 0.0
	for i, b := range g.bands {
		n := valueNoise2D(x*b.Frequency, y*b.Frequency, g.seed+int64(i*131))
		h += lerp(b.Min, b.Max, n)
	}
	return float32(h)
}

// HeightRange returns the lowest and highest heights HeightAt can produce.
func (g *Generator) HeightRange() (float32, float32) {
	lo, hi := 0.0, 0.0
	for _, b := range g.bands {
		lo += min(b.Min, b.Max)
		hi += max(b.Min, b.Max)
	}
	return float32(lo), float32(hi)
}
