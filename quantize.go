package surface

import (
	"fmt"
	"image"
	stdcolor "image/color"

	"github.com/bodgit/surface/color"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// Palettize converts m into a new indexed surface of the given depth, 1-8.
// The palette is chosen by median cut quantization and, if dither is set,
// the error of each pixel is diffused to its neighbours.
func Palettize(m image.Image, depth int, dither bool) (*Surface, error) {
	if depth < 1 || depth > 8 {
		return nil, fmt.Errorf("%w: depth %d is not indexed", ErrFormat, depth)
	}
	b := m.Bounds()
	s, err := New(b.Dx(), b.Dy(), &Options{Depth: depth})
	if err != nil {
		return nil, err
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(stdcolor.Palette, 0, len(s.palette)), m)
	switch {
	case len(p) == 0:
		p = append(p, stdcolor.Black)
	case len(p) > len(s.palette):
		p = p[:len(s.palette)]
	}

	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), p)
	if dither {
		draw.FloydSteinberg.Draw(pm, pm.Bounds(), m, b.Min)
	} else {
		draw.Draw(pm, pm.Bounds(), m, b.Min, draw.Src)
	}

	for i, c := range p {
		s.palette[i] = color.FromStd(c)
	}
	for y := 0; y < s.height; y++ {
		copy(s.pix[y*s.pitch:(y+1)*s.pitch], pm.Pix[y*pm.Stride:])
	}
	return s, nil
}
