/*
Package surface implements in-memory pixel surfaces with indexed (1-8 bit)
and packed direct color (9-32 bit) formats, their palettes, colorkey and
opacity, compositing between surfaces and export to graphics APIs.
*/
package surface

import (
	"fmt"
	"math"

	"github.com/bodgit/surface/color"
)

// Options configures a new surface. The zero value gives a 32-bit surface
// without an alpha channel.
type Options struct {
	// Depth is the bit depth, 1-32. Zero means 32.
	Depth int
	// Alpha requests an alpha channel. Only 32-bit surfaces carry one, so
	// any other depth is raised to 32.
	Alpha bool
	// Masks overrides the default channel masks of a direct color depth.
	Masks *Masks
	// Colorkey marks one color as fully transparent.
	Colorkey color.Value
	// Opacity sets the surface opacity, clamped to 0.0-1.0. Nil means 1.
	Opacity *float64
	// Clip restricts drawing. It is intersected with the surface bounds.
	Clip *Rect
}

// Surface is a rectangular grid of pixels in a fixed format. The dimensions
// and format never change after creation.
type Surface struct {
	width, height int
	format        Format
	codec         codec
	pitch         int
	pix           []byte
	palette       []color.RGB255
	colorkey      color.RGB255
	keyed         bool
	opacity       float64
	clip          Rect
	frozen        bool
}

func newSurface(width, height int, f Format) *Surface {
	s := &Surface{
		width:   width,
		height:  height,
		format:  f,
		codec:   newCodec(f.Masks),
		pitch:   width * f.BytesPerPixel(),
		opacity: 1,
		clip:    Rect{W: width, H: height},
	}
	s.pix = make([]byte, s.pitch*height)
	if n := f.PaletteSize(); n > 0 {
		s.palette = make([]color.RGB255, n)
		for i := range s.palette {
			s.palette[i] = color.Black
		}
		if f.Depth == 1 {
			s.palette[1] = color.White
		}
	}
	return s
}

// New returns a surface of the given size filled with pixel value zero.
// Opts may be nil.
func New(width, height int, opts *Options) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size must be two positive integers, got %dx%d", ErrType, width, height)
	}
	if opts == nil {
		opts = &Options{}
	}

	depth := opts.Depth
	if depth == 0 {
		depth = 32
	}
	if depth < 1 || depth > 32 {
		return nil, fmt.Errorf("%w: depth %d, want 1-32", ErrFormat, depth)
	}
	if opts.Alpha && depth != 32 {
		Logger().Warn("alpha channel needs a 32-bit surface, raising depth", "requested_depth", depth, "depth", 32)
		depth = 32
	}

	f := Format{Depth: depth}
	if !f.Indexed() {
		if opts.Masks != nil {
			f.Masks = *opts.Masks
			if opts.Alpha && f.Masks.A == 0 {
				return nil, fmt.Errorf("%w: alpha requested with an empty alpha mask", ErrFormat)
			}
		} else {
			f.Masks = DefaultMasks(depth, opts.Alpha)
		}
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	s := newSurface(width, height, f)
	if opts.Colorkey != nil {
		if err := s.SetColorkey(opts.Colorkey); err != nil {
			return nil, err
		}
	}
	if opts.Opacity != nil {
		if err := s.SetOpacity(*opts.Opacity); err != nil {
			return nil, err
		}
	}
	if opts.Clip != nil {
		s.clip = opts.Clip.Intersect(s.Bounds())
	}
	return s, nil
}

// Width returns the width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the height in pixels.
func (s *Surface) Height() int { return s.height }

// Size returns the width and height in pixels.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Bounds returns the full surface rectangle.
func (s *Surface) Bounds() Rect { return Rect{W: s.width, H: s.height} }

// Depth returns the bit depth.
func (s *Surface) Depth() int { return s.format.Depth }

// Format returns the pixel format.
func (s *Surface) Format() Format { return s.format }

// Masks returns the channel masks. They are all zero for indexed surfaces.
func (s *Surface) Masks() Masks { return s.format.Masks }

// HasAlpha reports whether pixels carry their own alpha channel.
func (s *Surface) HasAlpha() bool { return s.format.Alpha() }

// Flat reports whether the surface has no alpha channel, no colorkey and
// full opacity, so every pixel is opaque.
func (s *Surface) Flat() bool {
	return !s.format.Alpha() && !s.keyed && s.opacity == 1
}

// Freeze makes the surface and its palette read-only. It cannot be undone.
func (s *Surface) Freeze() { s.frozen = true }

// Frozen reports whether Freeze has been called.
func (s *Surface) Frozen() bool { return s.frozen }

func (s *Surface) mutable() error {
	if s.frozen {
		return fmt.Errorf("%w: cannot modify a frozen surface", ErrFrozen)
	}
	return nil
}

// Palette returns the palette of an indexed surface, or nil for a direct
// color surface.
func (s *Surface) Palette() *Palette {
	if !s.format.Indexed() {
		return nil
	}
	return &Palette{s: s}
}

// SetPalette replaces the palette entries, see Palette.Replace.
func (s *Surface) SetPalette(v []color.Value) error {
	p := s.Palette()
	if p == nil {
		return fmt.Errorf("%w: %d-bit surface has no palette", ErrFormat, s.format.Depth)
	}
	_, err := p.Replace(v)
	return err
}

// Colorkey returns the colorkey, always with full alpha, and whether one is
// set.
func (s *Surface) Colorkey() (color.RGB255, bool) {
	return s.colorkey, s.keyed
}

// SetColorkey sets the color treated as fully transparent. A nil v removes
// the colorkey.
func (s *Surface) SetColorkey(v color.Value) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if v == nil {
		s.colorkey, s.keyed = color.RGB255{}, false
		return nil
	}
	c, err := v.Resolve()
	if err != nil {
		return err
	}
	s.colorkey, s.keyed = c.Opaque(), true
	return nil
}

// Opacity returns the surface opacity in 0.0-1.0.
func (s *Surface) Opacity() float64 { return s.opacity }

// SetOpacity sets the surface opacity, clamping it to 0.0-1.0.
func (s *Surface) SetOpacity(o float64) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if math.IsNaN(o) {
		return fmt.Errorf("%w: opacity is NaN", ErrType)
	}
	s.opacity = math.Max(0, math.Min(1, o))
	return nil
}

// OpacityOf converts any Go numeric value to an opacity, clamped to
// 0.0-1.0. Anything else is an ErrType error.
func OpacityOf(v interface{}) (float64, error) {
	var f float64
	switch v := v.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	default:
		return 0, fmt.Errorf("%w: opacity must be a number, got %T", ErrType, v)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%w: opacity is NaN", ErrType)
	}
	return math.Max(0, math.Min(1, f)), nil
}

// Clip returns the clipping rectangle.
func (s *Surface) Clip() Rect { return s.clip }

// SetClip sets the clipping rectangle, intersected with the surface bounds.
func (s *Surface) SetClip(r Rect) error {
	if err := s.mutable(); err != nil {
		return err
	}
	s.clip = r.Intersect(s.Bounds())
	return nil
}

func (s *Surface) offset(x, y int) (int, error) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return 0, fmt.Errorf("%w: (%d, %d) outside %dx%d surface", ErrBounds, x, y, s.width, s.height)
	}
	return y*s.pitch + x*s.format.BytesPerPixel(), nil
}

// unpack reads a little-endian pixel of bpp bytes from the start of b.
func unpack(b []byte, bpp int) uint32 {
	var p uint32
	for i := bpp - 1; i >= 0; i-- {
		p = p<<8 | uint32(b[i])
	}
	return p
}

func (s *Surface) packed(off int) uint32 {
	return unpack(s.pix[off:], s.format.BytesPerPixel())
}

func (s *Surface) putPacked(off int, p uint32) {
	for i := 0; i < s.format.BytesPerPixel(); i++ {
		s.pix[off+i] = byte(p)
		p >>= 8
	}
}

func (s *Surface) decode(p uint32) color.RGB255 {
	if s.format.Indexed() {
		return s.palette[int(p)&(len(s.palette)-1)]
	}
	return s.codec.decode(p)
}

func (s *Surface) encode(c color.RGB255) uint32 {
	if s.format.Indexed() {
		return uint32(s.nearest(c))
	}
	return s.codec.encode(c)
}

// nearest returns the palette index closest to c by squared RGB distance,
// preferring the lowest index on ties.
func (s *Surface) nearest(c color.RGB255) int {
	best, bestSum := 0, math.MaxInt
	for i, p := range s.palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		sum := dr*dr + dg*dg + db*db
		if sum < bestSum {
			best, bestSum = i, sum
			if sum == 0 {
				break
			}
		}
	}
	return best
}

// pack converts v into a stored pixel value. An Index writes the palette
// index directly.
func (s *Surface) pack(v color.Value) (uint32, error) {
	switch v := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: nil color", ErrType)
	case Index:
		if !s.format.Indexed() {
			return 0, fmt.Errorf("%w: palette index on a %d-bit surface", ErrFormat, s.format.Depth)
		}
		i := int(v)
		if i < 0 || i >= len(s.palette) {
			return 0, fmt.Errorf("%w: palette index %d, palette has %d entries", ErrBounds, i, len(s.palette))
		}
		return uint32(i), nil
	case Slot:
		if v.pal != nil && v.pal.s == s {
			return uint32(v.index), nil
		}
	}
	c, err := v.Resolve()
	if err != nil {
		return 0, err
	}
	return s.encode(c), nil
}

// GetAt returns the pixel at (x, y). Indexed surfaces return a Slot bound to
// the palette entry, direct color surfaces the decoded RGB255.
func (s *Surface) GetAt(x, y int) (color.Color, error) {
	off, err := s.offset(x, y)
	if err != nil {
		return nil, err
	}
	p := s.packed(off)
	if s.format.Indexed() {
		return Slot{pal: &Palette{s: s}, index: int(p) & (len(s.palette) - 1)}, nil
	}
	return s.codec.decode(p), nil
}

// ColorAt returns the color of the pixel at (x, y) as RGB255.
func (s *Surface) ColorAt(x, y int) (color.RGB255, error) {
	off, err := s.offset(x, y)
	if err != nil {
		return color.RGB255{}, err
	}
	return s.decode(s.packed(off)), nil
}

// SetAt sets the pixel at (x, y). Indexed surfaces store the palette entry
// nearest to the color, or the entry itself when v is an Index.
func (s *Surface) SetAt(x, y int, v color.Value) error {
	if err := s.mutable(); err != nil {
		return err
	}
	off, err := s.offset(x, y)
	if err != nil {
		return err
	}
	p, err := s.pack(v)
	if err != nil {
		return err
	}
	s.putPacked(off, p)
	return nil
}

// Fill sets every pixel in r to v, limited to the clipping rectangle. A nil
// r fills the whole clipping rectangle.
func (s *Surface) Fill(v color.Value, r *Rect) error {
	if err := s.mutable(); err != nil {
		return err
	}
	p, err := s.pack(v)
	if err != nil {
		return err
	}
	area := s.clip
	if r != nil {
		area = r.Intersect(s.clip)
	}
	bpp := s.format.BytesPerPixel()
	for y := area.Y; y < area.Y+area.H; y++ {
		off := y*s.pitch + area.X*bpp
		for x := 0; x < area.W; x++ {
			s.putPacked(off, p)
			off += bpp
		}
	}
	return nil
}

// Pixels returns a copy of the raw pixel data, row by row with no padding.
func (s *Surface) Pixels() []byte {
	b := make([]byte, len(s.pix))
	copy(b, s.pix)
	return b
}

// SetPixels replaces the raw pixel data. It must be exactly as long as the
// data returned by Pixels.
func (s *Surface) SetPixels(b []byte) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if len(b) != len(s.pix) {
		return fmt.Errorf("%w: pixel data is %d bytes, want %d", ErrFormat, len(b), len(s.pix))
	}
	copy(s.pix, b)
	return nil
}
