package surface

import (
	"fmt"
	"image"
)

// Blit draws the area src of s onto dst with its top left corner at at. A
// nil src draws the whole surface. The drawn area is limited by the bounds
// of s and the clipping rectangle of dst, and is returned in dst
// coordinates.
//
// A flat s is copied directly. Otherwise colorkey pixels are skipped and the
// rest are blended over dst using their effective alpha, keeping the alpha
// of dst. Indexed destinations store the nearest palette entry.
func (s *Surface) Blit(dst *Surface, at image.Point, src *Rect) (Rect, error) {
	if dst == nil {
		return Rect{}, fmt.Errorf("%w: nil destination surface", ErrType)
	}
	if err := dst.mutable(); err != nil {
		return Rect{}, err
	}

	sr := s.Bounds().Rectangle()
	if src != nil {
		sr = src.Rectangle()
	}
	delta := at.Sub(sr.Min)
	sr = sr.Intersect(s.Bounds().Rectangle())
	dr := sr.Add(delta).Intersect(dst.clip.Rectangle())
	if dr.Empty() {
		return Rect{}, nil
	}
	sr = dr.Sub(delta)

	pix := s.pix
	if s == dst {
		pix = s.Pixels()
	}

	flat := s.Flat()
	tr := s.transparency(s.decode)
	sbpp, dbpp := s.format.BytesPerPixel(), dst.format.BytesPerPixel()
	for y := 0; y < dr.Dy(); y++ {
		soff := (sr.Min.Y+y)*s.pitch + sr.Min.X*sbpp
		doff := (dr.Min.Y+y)*dst.pitch + dr.Min.X*dbpp
		for x := 0; x < dr.Dx(); x++ {
			c := s.decode(unpack(pix[soff:], sbpp))
			if !flat {
				c = tr.apply(c)
				switch c.A {
				case 0:
					soff += sbpp
					doff += dbpp
					continue
				case 0xff:
					c.A = dst.decode(dst.packed(doff)).A
				default:
					c = over(c, dst.decode(dst.packed(doff)))
				}
			}
			dst.putPacked(doff, dst.encode(c))
			soff += sbpp
			doff += dbpp
		}
	}
	return rectOf(dr), nil
}
