package color

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Value is anything that can be resolved to a color: one of the color types
// in this package, a component list, a color name or a hex string.
type Value interface {
	Resolve() (RGB255, error)
}

// Resolve resolves v to a color. A nil v is an ErrType error.
func Resolve(v Value) (RGB255, error) {
	if v == nil {
		return RGB255{}, fmt.Errorf("%w: nil color", ErrType)
	}
	return v.Resolve()
}

// Components is a list of three or four integer channels in 0-255. Alpha
// defaults to 255 when omitted.
type Components []int

// Resolve implements Value.
func (c Components) Resolve() (RGB255, error) {
	if len(c) != 3 && len(c) != 4 {
		return RGB255{}, fmt.Errorf("%w: want 3 or 4 components, got %d", ErrType, len(c))
	}
	v := [4]uint8{3: 0xff}
	for i, n := range c {
		if n < 0 || n > 0xff {
			return RGB255{}, fmt.Errorf("%w: component %d is %d, outside 0-255", ErrType, i, n)
		}
		v[i] = uint8(n)
	}
	return RGB255{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// Name is a color looked up in the name table, such as "sky_blue".
type Name string

// Resolve implements Value.
func (n Name) Resolve() (RGB255, error) { return Lookup(string(n)) }

// Hex is a "#rrggbb" string. The result is always opaque.
type Hex string

// Resolve implements Value.
func (h Hex) Resolve() (RGB255, error) { return ParseHex(string(h)) }

// ParseHex parses a "#rrggbb" string.
func ParseHex(s string) (RGB255, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB255{}, fmt.Errorf("%w: %q is not a #rrggbb string", ErrLookup, s)
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return RGB255{}, fmt.Errorf("%w: %q is not a #rrggbb string", ErrLookup, s)
		}
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB255{}, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	r, g, b := c.RGB255()
	return RGB255{R: r, G: g, B: b, A: 0xff}, nil
}

// Parse returns a Hex for strings starting with '#' and a Name otherwise.
// Nothing is resolved until the result is used.
func Parse(s string) Value {
	if strings.HasPrefix(s, "#") {
		return Hex(s)
	}
	return Name(s)
}
