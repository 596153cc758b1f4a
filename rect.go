package surface

import (
	"fmt"
	"image"
)

// Rect is an axis aligned rectangle with its origin at the top left.
type Rect struct {
	X, Y, W, H int
}

// RectFrom builds a rectangle from either a position ([x, y], with zero
// size) or a full [x, y, w, h] list.
func RectFrom(v ...int) (Rect, error) {
	switch len(v) {
	case 2:
		return Rect{X: v[0], Y: v[1]}, nil
	case 4:
		return Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
	}
	return Rect{}, fmt.Errorf("%w: rectangle needs 2 or 4 values, got %d", ErrType, len(v))
}

func rectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rectangle returns r as an image.Rectangle. A rectangle with a zero or
// negative size becomes the empty image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rectangle{Min: image.Pt(r.X, r.Y), Max: image.Pt(r.X+r.W, r.Y+r.H)}
}

// Intersect returns the largest rectangle contained by both r and o. If they
// do not overlap the zero Rect is returned.
func (r Rect) Intersect(o Rect) Rect {
	return rectOf(r.Rectangle().Intersect(o.Rectangle()))
}

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", r.X, r.Y, r.W, r.H)
}
