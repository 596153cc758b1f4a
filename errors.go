package surface

import (
	"errors"

	"github.com/bodgit/surface/color"
)

var (
	// ErrType is returned when an argument has the wrong shape or kind. It
	// is the same error value as color.ErrType.
	ErrType = color.ErrType

	// ErrLookup is returned when a color name or hex string cannot be
	// resolved. It is the same error value as color.ErrLookup.
	ErrLookup = color.ErrLookup

	// ErrBounds is returned for a coordinate or palette index outside its
	// valid range.
	ErrBounds = errors.New("surface: out of bounds")

	// ErrFormat is returned for an unsupported depth or channel mask
	// combination, or when an operation needs an indexed or direct color
	// surface and gets the other kind.
	ErrFormat = errors.New("surface: unsupported format")

	// ErrFrozen is returned when modifying a frozen surface or its palette.
	ErrFrozen = errors.New("surface: frozen")

	errCorrupt = errors.New("surface: corrupt serialized surface")
)
