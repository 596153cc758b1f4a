package surface

import (
	"github.com/bodgit/surface/color"
)

// mix blends s over d with alpha a, rounding to nearest.
func mix(s, d, a uint8) uint8 {
	return uint8((uint32(s)*uint32(a) + uint32(d)*(255-uint32(a)) + 127) / 255)
}

// over composites src over dst using the alpha of src. The result keeps the
// alpha of dst.
func over(src, dst color.RGB255) color.RGB255 {
	return color.RGB255{
		R: mix(src.R, dst.R, src.A),
		G: mix(src.G, dst.G, src.A),
		B: mix(src.B, dst.B, src.A),
		A: dst.A,
	}
}

// Flatten returns a new opaque surface with every pixel composited over
// backdrop, or over opaque black when backdrop is nil. Colorkey, alpha and
// opacity are all honoured. A direct color surface keeps its depth and color
// masks but loses its alpha mask; an indexed surface flattens to 24 bits.
// The result has no colorkey, full opacity and a full clipping rectangle.
func (s *Surface) Flatten(backdrop color.Value) (*Surface, error) {
	bg := color.Black
	if backdrop != nil {
		c, err := backdrop.Resolve()
		if err != nil {
			return nil, err
		}
		bg = c.Opaque()
	}

	f := Format{Depth: 24, Masks: DefaultMasks(24, false)}
	if !s.format.Indexed() {
		f = s.format
		f.Masks.A = 0
	}
	out := newSurface(s.width, s.height, f)

	tr := s.transparency(s.decode)
	sbpp, dbpp := s.format.BytesPerPixel(), f.BytesPerPixel()
	for y := 0; y < s.height; y++ {
		soff, doff := y*s.pitch, y*out.pitch
		for x := 0; x < s.width; x++ {
			c := tr.apply(s.decode(s.packed(soff)))
			out.putPacked(doff, out.codec.encode(over(c, bg)))
			soff += sbpp
			doff += dbpp
		}
	}
	return out, nil
}
