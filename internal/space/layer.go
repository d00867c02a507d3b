// Property layers: named scalar fields over the lattice, seeded from layered
// simplex noise. Used by landscape-style models for resource distributions.
package space

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Layer is a named float64 field with the same dimensions as its grid.
type Layer struct {
	name   string
	width  int
	height int
	values []float64
}

// NewLayer creates a layer filled with the initial value.
func NewLayer(name string, width, height int, initial float64) *Layer {
	l := &Layer{
		name:   name,
		width:  width,
		height: height,
		values: make([]float64, width*height),
	}
	if initial != 0 {
		for i := range l.values {
			l.values[i] = initial
		}
	}
	return l
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// At returns the value at (x, y). Out-of-range coordinates read as 0.
func (l *Layer) At(x, y int) float64 {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return 0
	}
	return l.values[y*l.width+x]
}

// Set writes the value at (x, y). Out-of-range coordinates are ignored.
func (l *Layer) Set(x, y int, v float64) {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return
	}
	l.values[y*l.width+x] = v
}

// Add adjusts the value at (x, y) by delta and returns the new value.
func (l *Layer) Add(x, y int, delta float64) float64 {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return 0
	}
	l.values[y*l.width+x] += delta
	return l.values[y*l.width+x]
}

// FillNoise fills the layer with multi-octave simplex noise in [0, scale].
// The same seed always produces the same field.
func (l *Layer) FillNoise(seed int64, octaves int, frequency, persistence, scale float64) {
	noise := opensimplex.NewNormalized(seed)
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			v := octaveNoise(noise, float64(x), float64(y), octaves, frequency, persistence)
			l.values[y*l.width+x] = v * scale
		}
	}
}

// octaveNoise layers the noise function at doubling frequencies with decaying
// amplitude, normalized back into [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
