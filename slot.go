package surface

import (
	"fmt"

	"github.com/bodgit/surface/color"
)

// Slot is a live reference to one palette entry. Its color always reflects
// the current contents of the entry. A Slot implements color.Color, so it
// can be assigned anywhere a color is expected; the entry's color is copied
// at that point.
//
// The zero Slot refers to nothing and must not be used.
type Slot struct {
	pal   *Palette
	index int
}

// NewSlot returns a Slot for entry i of p. Negative i counts from the end.
func NewSlot(p *Palette, i int) (Slot, error) {
	if p == nil || p.s == nil {
		return Slot{}, fmt.Errorf("%w: nil palette", ErrType)
	}
	return p.At(i)
}

// Palette returns the palette holding the entry.
func (s Slot) Palette() *Palette { return s.pal }

// Index returns the entry index.
func (s Slot) Index() int { return s.index }

// RGB255 returns the current color of the entry.
func (s Slot) RGB255() color.RGB255 { return s.pal.s.palette[s.index] }

// RGB returns the current color of the entry as floating point channels.
func (s Slot) RGB() color.RGB { return s.RGB255().RGB() }

// HSV returns the current color of the entry as HSV.
func (s Slot) HSV() color.HSV { return s.RGB255().HSV() }

// HSL returns the current color of the entry as HSL.
func (s Slot) HSL() color.HSL { return s.RGB255().HSL() }

// Resolve implements color.Value.
func (s Slot) Resolve() (color.RGB255, error) { return s.RGB255(), nil }

// RGBA implements the image/color.Color interface.
func (s Slot) RGBA() (r, g, b, a uint32) { return s.RGB255().RGBA() }

// Equal is the loose comparison. Another Slot or any color compares by
// current color, and an int or Index compares with the entry index. Values
// that cannot be resolved, and any other type, are never equal.
func (s Slot) Equal(v interface{}) bool {
	switch v := v.(type) {
	case Slot:
		return v.pal != nil && (s.Identical(v) || s.RGB255() == v.RGB255())
	case int:
		return s.index == v
	case Index:
		return s.index == int(v)
	case color.Color:
		return s.RGB255() == v.RGB255()
	case color.Value:
		c, err := v.Resolve()
		return err == nil && c == s.RGB255()
	}
	return false
}

// Identical is the strict comparison: both slots refer to the same entry of
// the same surface palette.
func (s Slot) Identical(o Slot) bool {
	return s.pal != nil && o.pal != nil && s.pal.s == o.pal.s && s.index == o.index
}

func (s Slot) String() string {
	c := s.RGB255()
	return fmt.Sprintf("Slot(%d: %d, %d, %d, %d)", s.index, c.R, c.G, c.B, c.A)
}
