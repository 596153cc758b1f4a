package surface

import (
	"github.com/bodgit/surface/color"
)

// TextureFormat is an OpenGL pixel format enumerant.
type TextureFormat uint32

// ElementType is an OpenGL pixel data type enumerant.
type ElementType uint32

const (
	// FormatRGB is GL_RGB.
	FormatRGB TextureFormat = 0x1907
	// FormatRGBA is GL_RGBA.
	FormatRGBA TextureFormat = 0x1908

	// UnsignedByte is GL_UNSIGNED_BYTE.
	UnsignedByte ElementType = 0x1401
)

// Texture is pixel data laid out for upload to a graphics API, top row
// first.
type Texture struct {
	Format TextureFormat
	Type   ElementType
	Width  int
	Height int
	Data   []byte
}

// transparency tells how a surface's pixels gain their effective alpha when
// composited or exported.
type transparency struct {
	keyed   bool
	key     color.RGB255
	alpha   bool
	opacity float64
}

// transparency compares pixels against the colorkey as it would be stored
// and then read back by decode.
func (s *Surface) transparency(decode func(uint32) color.RGB255) transparency {
	t := transparency{alpha: s.format.Alpha(), opacity: s.opacity}
	if s.keyed {
		t.keyed = true
		t.key = decode(s.encode(s.colorkey))
	}
	return t
}

// exported reads a stored pixel the way Texture lays it out: direct color
// channels are shifted to 8 bits without rescaling.
func (s *Surface) exported(p uint32) color.RGB255 {
	if s.format.Indexed() {
		return s.decode(p)
	}
	return s.codec.shifted(p)
}

// apply returns c with its effective alpha. Colorkey pixels become fully
// transparent black. Otherwise alpha comes from the pixel when the format
// has an alpha channel, else from the surface opacity.
func (t transparency) apply(c color.RGB255) color.RGB255 {
	switch {
	case t.keyed && c.R == t.key.R && c.G == t.key.G && c.B == t.key.B:
		return color.RGB255{}
	case t.alpha:
		return c
	case t.opacity != 1:
		c.A = uint8(255 * t.opacity)
	default:
		c.A = 0xff
	}
	return c
}

// Texture exports the pixels. A flat surface exports as FormatRGB with each
// row padded to a multiple of 4 bytes. Any other surface exports as
// FormatRGBA with transparency applied. Channels narrower than 8 bits are
// shifted into the high bits, so a 5-bit 31 exports as 248.
func (s *Surface) Texture() Texture {
	t := Texture{
		Type:   UnsignedByte,
		Width:  s.width,
		Height: s.height,
	}
	bpp := s.format.BytesPerPixel()

	if s.Flat() {
		t.Format = FormatRGB
		row := s.width * 3
		stride := row + (4-row%4)%4
		t.Data = make([]byte, stride*s.height)
		for y := 0; y < s.height; y++ {
			off, o := y*s.pitch, y*stride
			for x := 0; x < s.width; x++ {
				c := s.exported(s.packed(off))
				t.Data[o], t.Data[o+1], t.Data[o+2] = c.R, c.G, c.B
				off += bpp
				o += 3
			}
		}
		return t
	}

	t.Format = FormatRGBA
	tr := s.transparency(s.exported)
	t.Data = make([]byte, 4*s.width*s.height)
	o := 0
	for y := 0; y < s.height; y++ {
		off := y * s.pitch
		for x := 0; x < s.width; x++ {
			c := tr.apply(s.exported(s.packed(off)))
			t.Data[o], t.Data[o+1], t.Data[o+2], t.Data[o+3] = c.R, c.G, c.B, c.A
			off += bpp
			o += 4
		}
	}
	return t
}
