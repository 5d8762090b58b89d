package noise

import (
	"math"

	"github.com/outofforest/voxel/hash"
	"github.com/outofforest/voxel/types"
)

// Config stores configuration of fractal noise.
type Config struct {
	// Octaves is the number of summed noise layers. Each octave doubles the frequency and halves the amplitude.
	Octaves uint8

	// Period is the distance between lattice points of the first octave.
	Period uint32

	Seed uint64

	// Threshold is the value below which voxels are empty.
	Threshold float64

	// Materials is the number of non-empty materials values above threshold are mapped to.
	Materials uint16
}

// New creates fractal noise generator.
func New(config Config) *Fractal {
	if config.Octaves == 0 {
		config.Octaves = 1
	}
	if config.Period == 0 {
		config.Period = 1 << min(config.Octaves, 31)
	}
	if config.Materials == 0 {
		config.Materials = 1
	}

	var norm float64
	amplitude := 1.0
	for range config.Octaves {
		norm += amplitude
		amplitude /= 2
	}

	return &Fractal{
		config: config,
		norm:   norm,
	}
}

// Fractal is a deterministic fractal value noise. It is stateless, so it may be used concurrently.
type Fractal struct {
	config Config
	norm   float64
}

// Value returns noise value in range [0, 1) at the point.
func (f *Fractal) Value(x, y, z int32) float64 {
	var sum float64
	amplitude := 1.0
	period := float64(f.config.Period)
	for octave := range f.config.Octaves {
		sum += amplitude * f.lattice(float64(x)/period, float64(y)/period, float64(z)/period, octave)
		amplitude /= 2
		period = math.Max(period/2, 1)
	}
	return sum / f.norm
}

// Material maps noise value at the point to material.
func (f *Fractal) Material(x, y, z int32) types.MaterialID {
	value := f.Value(x, y, z)
	if value < f.config.Threshold {
		return types.Empty
	}
	band := uint16((value - f.config.Threshold) / (1 - f.config.Threshold) * float64(f.config.Materials))
	return types.MaterialID(min(band, f.config.Materials-1) + 1)
}

type latticePoint struct {
	X, Y, Z int64
	Octave  uint8
	_       [7]byte
}

func (f *Fractal) random(x, y, z int64, octave uint8) float64 {
	h := hash.Key(latticePoint{X: x, Y: y, Z: z, Octave: octave}, f.config.Seed)
	return float64(h>>11) / (1 << 53)
}

// lattice interpolates random values assigned to integer lattice points surrounding the point.
func (f *Fractal) lattice(x, y, z float64, octave uint8) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	tx, ty, tz := smooth(x-x0), smooth(y-y0), smooth(z-z0)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	var corners [types.ChildCount]float64
	for i := range corners {
		corners[i] = f.random(ix+int64(i&0x01), iy+int64(i>>1&0x01), iz+int64(i>>2&0x01), octave)
	}

	// Corners are numbered the same way as octants.
	x00 := lerp(corners[0], corners[1], tx)
	x10 := lerp(corners[2], corners[3], tx)
	x01 := lerp(corners[4], corners[5], tx)
	x11 := lerp(corners[6], corners[7], tx)
	return lerp(lerp(x00, x10, ty), lerp(x01, x11, ty), tz)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
