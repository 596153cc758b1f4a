/*
Package color implements the color model shared by surfaces and palettes.

A color can be held in one of four representations: RGB with floating point
channels in 0.0-1.0, RGB255 with 8-bit integer channels, HSV and HSL. All four
convert losslessly into each other (within 8-bit rounding) and always carry the
alpha channel through unchanged. Colors are plain values and therefore
immutable.
*/
package color

import (
	"errors"
	"fmt"
	stdcolor "image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrType is returned when a value has the wrong shape or kind to be
	// used as a color, including out of range channels.
	ErrType = errors.New("color: wrong argument type")

	// ErrLookup is returned when a color name or hex string cannot be
	// resolved.
	ErrLookup = errors.New("color: unknown color")
)

// Color is implemented by every color representation. Two colors are equal
// when their RGB255 forms are equal.
type Color interface {
	Value
	RGB() RGB
	RGB255() RGB255
	HSV() HSV
	HSL() HSL
}

// Equal reports whether a and b are the same color once normalized to 8-bit
// channels.
func Equal(a, b Color) bool {
	return a.RGB255() == b.RGB255()
}

func unit(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: %s %v outside 0.0-1.0", ErrType, name, v)
	}
	return nil
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

// RGB is a color with red, green, blue and alpha channels in 0.0-1.0.
type RGB struct {
	R, G, B, A float64
}

// NewRGB returns an RGB color, rejecting channels outside 0.0-1.0.
func NewRGB(r, g, b, a float64) (RGB, error) {
	for _, ch := range []struct {
		name string
		v    float64
	}{{"red", r}, {"green", g}, {"blue", b}, {"alpha", a}} {
		if err := unit(ch.name, ch.v); err != nil {
			return RGB{}, err
		}
	}
	return RGB{R: r, G: g, B: b, A: a}, nil
}

// RGB returns c.
func (c RGB) RGB() RGB { return c }

// RGB255 converts c to 8-bit channels, rounding to nearest.
func (c RGB) RGB255() RGB255 {
	return RGB255{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// HSV converts c to hue, saturation and value.
func (c RGB) HSV() HSV {
	h, s, v := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsv()
	return HSV{H: h, S: s, V: v, A: c.A}
}

// HSL converts c to hue, saturation and lightness.
func (c RGB) HSL() HSL {
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	return HSL{H: h, S: s, L: l, A: c.A}
}

// Resolve implements Value.
func (c RGB) Resolve() (RGB255, error) { return c.RGB255(), nil }

// RGB255 is a color with 8-bit red, green, blue and alpha channels. It is
// comparable and may be used directly as a map key.
type RGB255 struct {
	R, G, B, A uint8
}

// Black is opaque black, the color of unset palette entries.
var Black = RGB255{A: 0xff}

// White is opaque white.
var White = RGB255{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// RGB converts c to floating point channels.
func (c RGB255) RGB() RGB {
	return RGB{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// RGB255 returns c.
func (c RGB255) RGB255() RGB255 { return c }

// HSV converts c to hue, saturation and value.
func (c RGB255) HSV() HSV { return c.RGB().HSV() }

// HSL converts c to hue, saturation and lightness.
func (c RGB255) HSL() HSL { return c.RGB().HSL() }

// Resolve implements Value.
func (c RGB255) Resolve() (RGB255, error) { return c, nil }

// RGBA implements the image/color.Color interface. The channels of c are not
// premultiplied.
func (c RGB255) RGBA() (r, g, b, a uint32) {
	return stdcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Opaque returns c with its alpha channel set to 255.
func (c RGB255) Opaque() RGB255 {
	c.A = 0xff
	return c
}

func (c RGB255) String() string {
	return fmt.Sprintf("RGB255(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

// FromStd converts any standard library color to RGB255 without
// premultiplication.
func FromStd(c stdcolor.Color) RGB255 {
	switch c := c.(type) {
	case RGB255:
		return c
	case stdcolor.NRGBA:
		return RGB255{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	n := stdcolor.NRGBAModel.Convert(c).(stdcolor.NRGBA)
	return RGB255{R: n.R, G: n.G, B: n.B, A: n.A}
}

// HSV is a color in hue (degrees, 0-360), saturation, value and alpha
// (0.0-1.0).
type HSV struct {
	H, S, V, A float64
}

// NewHSV returns an HSV color, rejecting out of range channels.
func NewHSV(h, s, v, a float64) (HSV, error) {
	if !(h >= 0 && h <= 360) {
		return HSV{}, fmt.Errorf("%w: hue %v outside 0-360", ErrType, h)
	}
	for _, err := range []error{unit("saturation", s), unit("value", v), unit("alpha", a)} {
		if err != nil {
			return HSV{}, err
		}
	}
	return HSV{H: h, S: s, V: v, A: a}, nil
}

// RGB converts c to floating point RGB.
func (c HSV) RGB() RGB {
	k := colorful.Hsv(c.H, c.S, c.V)
	return RGB{R: k.R, G: k.G, B: k.B, A: c.A}
}

// RGB255 converts c to 8-bit RGB.
func (c HSV) RGB255() RGB255 { return c.RGB().RGB255() }

// HSV returns c.
func (c HSV) HSV() HSV { return c }

// HSL converts c to hue, saturation and lightness.
func (c HSV) HSL() HSL { return c.RGB().HSL() }

// Resolve implements Value.
func (c HSV) Resolve() (RGB255, error) { return c.RGB255(), nil }

// HSL is a color in hue (degrees, 0-360), saturation, lightness and alpha
// (0.0-1.0).
type HSL struct {
	H, S, L, A float64
}

// NewHSL returns an HSL color, rejecting out of range channels.
func NewHSL(h, s, l, a float64) (HSL, error) {
	if !(h >= 0 && h <= 360) {
		return HSL{}, fmt.Errorf("%w: hue %v outside 0-360", ErrType, h)
	}
	for _, err := range []error{unit("saturation", s), unit("lightness", l), unit("alpha", a)} {
		if err != nil {
			return HSL{}, err
		}
	}
	return HSL{H: h, S: s, L: l, A: a}, nil
}

// RGB converts c to floating point RGB.
func (c HSL) RGB() RGB {
	k := colorful.Hsl(c.H, c.S, c.L)
	return RGB{R: k.R, G: k.G, B: k.B, A: c.A}
}

// RGB255 converts c to 8-bit RGB.
func (c HSL) RGB255() RGB255 { return c.RGB().RGB255() }

// HSV converts c to hue, saturation and value.
func (c HSL) HSV() HSV { return c.RGB().HSV() }

// HSL returns c.
func (c HSL) HSL() HSL { return c }

// Resolve implements Value.
func (c HSL) Resolve() (RGB255, error) { return c.RGB255(), nil }
