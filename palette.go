package surface

import (
	"fmt"
	"math/rand"

	"github.com/bodgit/surface/color"
)

// Index refers to an existing palette entry. Assigning an Index copies the
// color of that entry, or on an indexed surface writes it as the pixel value.
type Index int

// Resolve implements color.Value. An Index has no color on its own, so it
// always fails outside a palette or indexed surface.
func (i Index) Resolve() (color.RGB255, error) {
	return color.RGB255{}, fmt.Errorf("%w: palette index %d used without a palette", ErrType, int(i))
}

// Palette is the color table of an indexed surface. It holds no colors of
// its own: every Palette returned for a surface reads and writes the same
// storage, and is frozen whenever the surface is.
type Palette struct {
	s *Surface
}

// NewPalette returns the palette of s.
func NewPalette(s *Surface) (*Palette, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", ErrType)
	}
	if !s.format.Indexed() {
		return nil, fmt.Errorf("%w: %d-bit surface has no palette", ErrFormat, s.format.Depth)
	}
	return &Palette{s: s}, nil
}

// Surface returns the surface owning the palette.
func (p *Palette) Surface() *Surface { return p.s }

// Len returns the number of entries, 2^depth.
func (p *Palette) Len() int { return len(p.s.palette) }

// Frozen reports whether the owning surface is frozen.
func (p *Palette) Frozen() bool { return p.s.frozen }

func (p *Palette) index(i int) (int, error) {
	n := len(p.s.palette)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: palette index %d, palette has %d entries", ErrBounds, i, n)
	}
	return i, nil
}

// At returns a Slot for entry i. Negative i counts from the end.
func (p *Palette) At(i int) (Slot, error) {
	j, err := p.index(i)
	if err != nil {
		return Slot{}, err
	}
	return Slot{pal: p, index: j}, nil
}

// ColorAt returns the color of entry i. Negative i counts from the end.
func (p *Palette) ColorAt(i int) (color.RGB255, error) {
	j, err := p.index(i)
	if err != nil {
		return color.RGB255{}, err
	}
	return p.s.palette[j], nil
}

func (p *Palette) resolve(v color.Value) (color.RGB255, error) {
	switch v := v.(type) {
	case nil:
		return color.RGB255{}, fmt.Errorf("%w: nil color", ErrType)
	case Index:
		return p.ColorAt(int(v))
	}
	return v.Resolve()
}

// Set sets entry i to v. An Index copies the current color of that entry.
func (p *Palette) Set(i int, v color.Value) error {
	if err := p.s.mutable(); err != nil {
		return err
	}
	j, err := p.index(i)
	if err != nil {
		return err
	}
	c, err := p.resolve(v)
	if err != nil {
		return err
	}
	p.s.palette[j] = c
	return nil
}

// Colors returns a copy of every entry.
func (p *Palette) Colors() []color.RGB255 {
	c := make([]color.RGB255, len(p.s.palette))
	copy(c, p.s.palette)
	return c
}

// Slots returns a Slot for every entry.
func (p *Palette) Slots() []Slot {
	s := make([]Slot, len(p.s.palette))
	for i := range s {
		s[i] = Slot{pal: p, index: i}
	}
	return s
}

// Replace sets every entry from v. Entries beyond the end of v become
// opaque black and extra elements of v are ignored without being resolved.
// Every other element is resolved before anything is written, so on error
// the palette is unchanged. Index elements refer to the palette as it was
// before the call.
func (p *Palette) Replace(v []color.Value) (*Palette, error) {
	if err := p.s.mutable(); err != nil {
		return p, err
	}
	c := make([]color.RGB255, len(p.s.palette))
	for i := range c {
		c[i] = color.Black
	}
	if len(v) > len(c) {
		v = v[:len(c)]
	}
	for i, e := range v {
		r, err := p.resolve(e)
		if err != nil {
			return p, fmt.Errorf("element %d: %w", i, err)
		}
		c[i] = r
	}
	copy(p.s.palette, c)
	return p, nil
}

// Reverse reverses the order of the entries.
func (p *Palette) Reverse() (*Palette, error) {
	if err := p.s.mutable(); err != nil {
		return p, err
	}
	c := p.s.palette
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
	return p, nil
}

// Rotate moves the first n entries to the end. A negative n moves the last
// -n entries to the front.
func (p *Palette) Rotate(n int) (*Palette, error) {
	if err := p.s.mutable(); err != nil {
		return p, err
	}
	size := len(p.s.palette)
	k := (n%size + size) % size
	if k == 0 {
		return p, nil
	}
	c := make([]color.RGB255, 0, size)
	c = append(c, p.s.palette[k:]...)
	c = append(c, p.s.palette[:k]...)
	copy(p.s.palette, c)
	return p, nil
}

// Shuffle randomly permutes the entries.
func (p *Palette) Shuffle() (*Palette, error) {
	if err := p.s.mutable(); err != nil {
		return p, err
	}
	c := p.s.palette
	rand.Shuffle(len(c), func(i, j int) {
		c[i], c[j] = c[j], c[i]
	})
	return p, nil
}

// Equal reports whether o has the same entries in the same order.
func (p *Palette) Equal(o *Palette) bool {
	if o == nil || len(o.s.palette) != len(p.s.palette) {
		return false
	}
	for i, c := range p.s.palette {
		if o.s.palette[i] != c {
			return false
		}
	}
	return true
}

// EqualValues reports whether v resolves to the same colors as the entries,
// in order. Any element that does not resolve makes the result false.
func (p *Palette) EqualValues(v []color.Value) bool {
	if len(v) != len(p.s.palette) {
		return false
	}
	for i, e := range v {
		if e == nil {
			return false
		}
		c, err := e.Resolve()
		if err != nil || c != p.s.palette[i] {
			return false
		}
	}
	return true
}

// Same reports whether p and o are views of the same surface palette.
func (p *Palette) Same(o *Palette) bool {
	return o != nil && p.s == o.s
}
