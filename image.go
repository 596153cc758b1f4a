package surface

import (
	"image"
	stdcolor "image/color"

	"github.com/bodgit/surface/color"
	"golang.org/x/image/draw"
)

// FromImage copies m into a new 32-bit surface with an alpha channel.
func FromImage(m image.Image) (*Surface, error) {
	b := m.Bounds()
	s, err := New(b.Dx(), b.Dy(), &Options{Alpha: true})
	if err != nil {
		return nil, err
	}
	bpp := s.format.BytesPerPixel()
	for y := 0; y < s.height; y++ {
		off := y * s.pitch
		for x := 0; x < s.width; x++ {
			s.putPacked(off, s.codec.encode(color.FromStd(m.At(b.Min.X+x, b.Min.Y+y))))
			off += bpp
		}
	}
	return s, nil
}

type view struct {
	s *Surface
}

// Image returns a live draw.Image view of the surface. Reads return stored
// colors without colorkey or opacity applied. Writes to a frozen surface, or
// outside it, are ignored.
func (s *Surface) Image() draw.Image {
	return view{s: s}
}

func (v view) ColorModel() stdcolor.Model {
	if !v.s.format.Indexed() {
		return stdcolor.NRGBAModel
	}
	p := make(stdcolor.Palette, len(v.s.palette))
	for i, c := range v.s.palette {
		p[i] = c
	}
	return p
}

func (v view) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.s.width, v.s.height)
}

func (v view) At(x, y int) stdcolor.Color {
	c, err := v.s.ColorAt(x, y)
	if err != nil {
		return stdcolor.NRGBA{}
	}
	return stdcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (v view) Set(x, y int, c stdcolor.Color) {
	_ = v.s.SetAt(x, y, color.FromStd(c))
}
