package surface

import (
	"fmt"
	"math/bits"

	"github.com/bodgit/surface/color"
)

// Masks selects the bits of a packed pixel holding each channel. A zero
// mask means the channel is absent.
type Masks struct {
	R, G, B, A uint32
}

func (m Masks) slice() [4]uint32 {
	return [4]uint32{m.R, m.G, m.B, m.A}
}

// Format describes how pixels are stored. Depths 1-8 are indexed and their
// masks are unused. Depths 9-32 pack the channels selected by Masks into 2,
// 3 or 4 little-endian bytes.
type Format struct {
	Depth int
	Masks Masks
}

// Indexed reports whether pixels are palette indices.
func (f Format) Indexed() bool {
	return f.Depth <= 8
}

// Alpha reports whether pixels carry their own alpha channel.
func (f Format) Alpha() bool {
	return !f.Indexed() && f.Masks.A != 0
}

// BytesPerPixel returns the storage size of one pixel.
func (f Format) BytesPerPixel() int {
	return (f.Depth + 7) / 8
}

// PaletteSize returns the number of palette entries, or zero for direct
// color formats.
func (f Format) PaletteSize() int {
	if !f.Indexed() {
		return 0
	}
	return 1 << f.Depth
}

// DefaultMasks returns the masks used for depth when none are given. For 24
// and 32 bits each channel gets a byte with red highest. Other depths give
// red and blue depth/3 bits each and green the rest, with blue in the low
// bits. Alpha is only assigned at 32 bits.
func DefaultMasks(depth int, alpha bool) Masks {
	switch depth {
	case 24, 32:
		m := Masks{R: 0xff0000, G: 0xff00, B: 0xff}
		if depth == 32 && alpha {
			m.A = 0xff000000
		}
		return m
	}
	if depth <= 8 || depth > 32 {
		return Masks{}
	}
	b := uint(depth / 3)
	g := uint(depth) - 2*b
	return Masks{
		R: (1<<b - 1) << (b + g),
		G: (1<<g - 1) << b,
		B: 1<<b - 1,
	}
}

func (f Format) validate() error {
	if f.Depth < 1 || f.Depth > 32 {
		return fmt.Errorf("%w: depth %d", ErrFormat, f.Depth)
	}
	if f.Indexed() {
		return nil
	}
	m := f.Masks.slice()
	for i, mask := range m {
		if mask == 0 {
			continue
		}
		if f.Depth < 32 && mask>>uint(f.Depth) != 0 {
			return fmt.Errorf("%w: mask %#x exceeds %d bits", ErrFormat, mask, f.Depth)
		}
		if v := mask >> uint(bits.TrailingZeros32(mask)); v&(v+1) != 0 {
			return fmt.Errorf("%w: mask %#x is not contiguous", ErrFormat, mask)
		}
		for _, other := range m[i+1:] {
			if mask&other != 0 {
				return fmt.Errorf("%w: masks %#x and %#x overlap", ErrFormat, mask, other)
			}
		}
	}
	if f.Masks.R|f.Masks.G|f.Masks.B == 0 {
		return fmt.Errorf("%w: no color channels", ErrFormat)
	}
	return nil
}

type channel struct {
	mask  uint32
	shift uint
	bits  uint
}

func newChannel(mask uint32) channel {
	if mask == 0 {
		return channel{}
	}
	return channel{
		mask:  mask,
		shift: uint(bits.TrailingZeros32(mask)),
		bits:  uint(bits.OnesCount32(mask)),
	}
}

// decode scales the channel to 8 bits by 255/(2^bits-1), rounding to
// nearest, so a full channel reads as 255. An absent channel reads as 255.
func (ch channel) decode(p uint32) uint8 {
	if ch.mask == 0 {
		return 0xff
	}
	v := uint64((p & ch.mask) >> ch.shift)
	if ch.bits == 8 {
		return uint8(v)
	}
	top := uint64(1)<<ch.bits - 1
	return uint8((v*0xff + top/2) / top)
}

// shifted moves the channel to 8 bits by shifting alone, leaving the low
// bits of narrow channels zero. An absent channel reads as 255.
func (ch channel) shifted(p uint32) uint8 {
	if ch.mask == 0 {
		return 0xff
	}
	v := (p & ch.mask) >> ch.shift
	if ch.bits >= 8 {
		return uint8(v >> (ch.bits - 8))
	}
	return uint8(v << (8 - ch.bits))
}

func (ch channel) encode(v uint8) uint32 {
	if ch.mask == 0 {
		return 0
	}
	var x uint32
	if ch.bits >= 8 {
		x = uint32(v) << (ch.bits - 8)
	} else {
		x = uint32(v) >> (8 - ch.bits)
	}
	return (x << ch.shift) & ch.mask
}

// codec packs and unpacks direct color pixels.
type codec [4]channel

func newCodec(m Masks) codec {
	return codec{newChannel(m.R), newChannel(m.G), newChannel(m.B), newChannel(m.A)}
}

func (c codec) decode(p uint32) color.RGB255 {
	return color.RGB255{R: c[0].decode(p), G: c[1].decode(p), B: c[2].decode(p), A: c[3].decode(p)}
}

func (c codec) shifted(p uint32) color.RGB255 {
	return color.RGB255{R: c[0].shifted(p), G: c[1].shifted(p), B: c[2].shifted(p), A: c[3].shifted(p)}
}

func (c codec) encode(v color.RGB255) uint32 {
	return c[0].encode(v.R) | c[1].encode(v.G) | c[2].encode(v.B) | c[3].encode(v.A)
}

// Decode unpacks a direct color pixel, scaling each channel to the full
// 0-255 range. Absent channels read as 255.
func (f Format) Decode(p uint32) color.RGB255 {
	return newCodec(f.Masks).decode(p)
}

// Encode packs c into a direct color pixel, dropping the low bits of
// channels narrower than 8 bits.
func (f Format) Encode(c color.RGB255) uint32 {
	return newCodec(f.Masks).encode(c)
}

func (f Format) String() string {
	if f.Indexed() {
		return fmt.Sprintf("%d-bit indexed", f.Depth)
	}
	return fmt.Sprintf("%d-bit R=%#x G=%#x B=%#x A=%#x", f.Depth, f.Masks.R, f.Masks.G, f.Masks.B, f.Masks.A)
}
