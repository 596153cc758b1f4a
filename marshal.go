package surface

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/bodgit/surface/color"
)

const version = 1

var magic = [4]byte{'S', 'U', 'R', 'F'}

const (
	flagFrozen = 1 << iota
	flagColorkey
)

type header struct {
	Magic    [4]byte
	Version  uint8
	Flags    uint8
	Depth    uint8
	Reserved uint8
	Width    uint32
	Height   uint32
	Masks    [4]uint32
	Colorkey [4]uint8
	Opacity  float64
	Clip     [4]int32
	Colors   uint32
	Pixels   uint32
}

// MarshalBinary encodes the surface, including its format, pixels, palette,
// colorkey, opacity, clipping rectangle and frozen state. It implements the
// encoding.BinaryMarshaler interface.
func (s *Surface) MarshalBinary() ([]byte, error) {
	h := header{
		Magic:   magic,
		Version: version,
		Depth:   uint8(s.format.Depth),
		Width:   uint32(s.width),
		Height:  uint32(s.height),
		Masks:   s.format.Masks.slice(),
		Opacity: s.opacity,
		Clip:    [4]int32{int32(s.clip.X), int32(s.clip.Y), int32(s.clip.W), int32(s.clip.H)},
		Colors:  uint32(len(s.palette)),
		Pixels:  uint32(len(s.pix)),
	}
	if s.frozen {
		h.Flags |= flagFrozen
	}
	if s.keyed {
		h.Flags |= flagColorkey
		h.Colorkey = [4]uint8{s.colorkey.R, s.colorkey.G, s.colorkey.B, s.colorkey.A}
	}

	b := new(bytes.Buffer)

	// Fixed header
	if err := binary.Write(b, binary.LittleEndian, &h); err != nil {
		return nil, err
	}

	// Palette entries as RGBA quads
	for _, c := range s.palette {
		if _, err := b.Write([]byte{c.R, c.G, c.B, c.A}); err != nil {
			return nil, err
		}
	}

	// Pixel data
	if _, err := b.Write(s.pix); err != nil {
		return nil, err
	}

	// Trailing checksum of everything before it
	crc := crc32.ChecksumIEEE(b.Bytes())
	if err := binary.Write(b, binary.LittleEndian, &crc); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalBinary replaces s with the surface encoded in b. It fails with
// ErrFrozen if s is frozen. It implements the encoding.BinaryUnmarshaler
// interface.
func (s *Surface) UnmarshalBinary(b []byte) error {
	if err := s.mutable(); err != nil {
		return err
	}

	if len(b) < 4 {
		return fmt.Errorf("%w: %d bytes", errCorrupt, len(b))
	}
	body, trailer := b[:len(b)-4], b[len(b)-4:]
	if crc := binary.LittleEndian.Uint32(trailer); crc != crc32.ChecksumIEEE(body) {
		return fmt.Errorf("%w: checksum mismatch", errCorrupt)
	}

	r := bytes.NewReader(body)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if h.Magic != magic {
		return fmt.Errorf("%w: bad magic %q", errCorrupt, h.Magic[:])
	}
	if h.Version != version {
		return fmt.Errorf("%w: unsupported version %d", errCorrupt, h.Version)
	}
	if h.Width == 0 || h.Height == 0 || h.Width > math.MaxInt32 || h.Height > math.MaxInt32 {
		return fmt.Errorf("%w: size %dx%d", errCorrupt, h.Width, h.Height)
	}

	f := Format{Depth: int(h.Depth), Masks: Masks{R: h.Masks[0], G: h.Masks[1], B: h.Masks[2], A: h.Masks[3]}}
	if err := f.validate(); err != nil {
		return err
	}
	if f.Indexed() {
		f.Masks = Masks{}
	}

	if int(h.Colors) != f.PaletteSize() {
		return fmt.Errorf("%w: %d palette entries for %v", errCorrupt, h.Colors, f)
	}
	if uint64(h.Pixels) != uint64(h.Width)*uint64(h.Height)*uint64(f.BytesPerPixel()) {
		return fmt.Errorf("%w: %d bytes of pixel data for %dx%d %v", errCorrupt, h.Pixels, h.Width, h.Height, f)
	}
	if uint64(r.Len()) != uint64(h.Colors)*4+uint64(h.Pixels) {
		return fmt.Errorf("%w: %d trailing bytes", errCorrupt, r.Len())
	}

	t := newSurface(int(h.Width), int(h.Height), f)
	quad := make([]byte, 4)
	for i := range t.palette {
		if _, err := r.Read(quad); err != nil {
			return fmt.Errorf("%w: %v", errCorrupt, err)
		}
		t.palette[i] = color.RGB255{R: quad[0], G: quad[1], B: quad[2], A: quad[3]}
	}
	if _, err := r.Read(t.pix); err != nil {
		return fmt.Errorf("%w: %v", errCorrupt, err)
	}

	if h.Flags&flagColorkey != 0 {
		t.colorkey = color.RGB255{R: h.Colorkey[0], G: h.Colorkey[1], B: h.Colorkey[2], A: h.Colorkey[3]}
		t.keyed = true
	}
	if math.IsNaN(h.Opacity) {
		return fmt.Errorf("%w: opacity is NaN", errCorrupt)
	}
	t.opacity = math.Max(0, math.Min(1, h.Opacity))
	t.clip = Rect{X: int(h.Clip[0]), Y: int(h.Clip[1]), W: int(h.Clip[2]), H: int(h.Clip[3])}.Intersect(t.Bounds())
	t.frozen = h.Flags&flagFrozen != 0

	*s = *t
	return nil
}

// Unmarshal returns a new surface decoded from b.
func Unmarshal(b []byte) (*Surface, error) {
	s := new(Surface)
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return s, nil
}
