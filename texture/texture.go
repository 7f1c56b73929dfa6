// Package texture defines the surface palettes of the environment. Surfaces
// are flat-shaded polygons; a palette supplies the base color plus sample
// variants used for debris chunks and blotch variation.
package texture

import (
	"github.com/aquilax/go-perlin"
)

type Surface uint8

const (
	Carpet Surface = iota
	Ceiling
	Wall
	Baseboard
	Pillar
)

// Palette is the color family of one surface kind.
type Palette struct {
	Base    [3]uint8
	Samples [][3]uint8
	// BlotchDepth scales how far perlin staining darkens the base.
	BlotchDepth float64
}

var palettes = map[Surface]Palette{
	Carpet: {
		Base:        [3]uint8{158, 139, 84},
		Samples:     [][3]uint8{{158, 139, 84}, {148, 130, 78}, {167, 148, 92}, {140, 122, 70}},
		BlotchDepth: 0.22,
	},
	Ceiling: {
		Base:        [3]uint8{214, 208, 180},
		Samples:     [][3]uint8{{214, 208, 180}, {222, 216, 190}, {204, 198, 170}},
		BlotchDepth: 0.10,
	},
	Wall: {
		Base:        [3]uint8{199, 186, 122},
		Samples:     [][3]uint8{{199, 186, 122}, {190, 177, 114}, {208, 196, 132}, {182, 169, 106}},
		BlotchDepth: 0.16,
	},
	Baseboard: {
		Base:        [3]uint8{120, 108, 72},
		Samples:     [][3]uint8{{120, 108, 72}, {110, 99, 64}},
		BlotchDepth: 0.08,
	},
	Pillar: {
		Base:        [3]uint8{186, 174, 118},
		Samples:     [][3]uint8{{186, 174, 118}, {176, 164, 110}},
		BlotchDepth: 0.12,
	},
}

// Get returns the palette of a surface kind.
func Get(s Surface) Palette { return palettes[s] }

// Stainer produces slow perlin staining over world coordinates, shared by
// the renderer so adjacent polygons agree on the blotch field.
type Stainer struct {
	noise *perlin.Perlin
}

func NewStainer(seed int64) *Stainer {
	return &Stainer{noise: perlin.NewPerlin(2, 2, 3, seed^0x57A1)}
}

// Shade darkens the palette base by the blotch field at a world position.
// The result stays within [0,255].
func (st *Stainer) Shade(s Surface, x, z float64) [3]uint8 {
	p := palettes[s]
	n := st.noise.Noise2D(x*0.011, z*0.011) // [-1,1]
	if n < 0 {
		n = 0
	}
	k := 1 - n*p.BlotchDepth
	var out [3]uint8
	for i, c := range p.Base {
		out[i] = uint8(float64(c) * k)
	}
	return out
}
