package surface

import (
	"image"
	"testing"

	"github.com/bodgit/surface/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenAlpha(t *testing.T) {
	s, err := New(4, 1, &Options{Alpha: true})
	require.NoError(t, err)
	for x, a := range []int{0, 128, 255, 64} {
		require.NoError(t, s.SetAt(x, 0, color.Components{0, 128, 255, a}))
	}

	tables := map[string]struct {
		backdrop color.Value
		want     []color.RGB255
	}{
		"default": {
			want: []color.RGB255{
				{R: 0, G: 0, B: 0, A: 255},
				{R: 0, G: 64, B: 128, A: 255},
				{R: 0, G: 128, B: 255, A: 255},
				{R: 0, G: 32, B: 64, A: 255},
			},
		},
		"sky blue": {
			backdrop: color.Name("sky_blue"),
			want: []color.RGB255{
				{R: 135, G: 206, B: 235, A: 255},
				{R: 67, G: 167, B: 245, A: 255},
				{R: 0, G: 128, B: 255, A: 255},
				{R: 101, G: 186, B: 240, A: 255},
			},
		},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			out, err := s.Flatten(table.backdrop)
			require.NoError(t, err)
			assert.Equal(t, 32, out.Depth())
			assert.Equal(t, Masks{R: 0xff0000, G: 0xff00, B: 0xff}, out.Masks())
			assert.False(t, out.HasAlpha())
			assert.True(t, out.Flat())
			for x, want := range table.want {
				c, err := out.ColorAt(x, 0)
				require.NoError(t, err)
				assert.Equal(t, want, c, "x=%d", x)
			}
		})
	}

	_, err = s.Flatten(color.Name("no_such_color"))
	assert.ErrorIs(t, err, ErrLookup)
}

func TestFlattenKeepsSource(t *testing.T) {
	s, err := New(2, 2, &Options{Depth: 16, Colorkey: color.Components{40, 50, 60}, Opacity: opacity(0.5), Clip: &Rect{W: 1, H: 1}})
	require.NoError(t, err)
	fill2x2(t, s, opaqueQuad...)
	s.Freeze()

	out, err := s.Flatten(color.White)
	require.NoError(t, err)
	assert.Equal(t, 16, out.Depth())
	assert.Equal(t, s.Masks(), out.Masks())
	assert.True(t, out.Flat())
	assert.False(t, out.Frozen())
	assert.Equal(t, out.Bounds(), out.Clip())
	_, keyed := out.Colorkey()
	assert.False(t, keyed)

	// Colorkey pixel shows the backdrop
	c, err := out.ColorAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, color.White, c)

	// Source is unchanged
	key, keyed := s.Colorkey()
	assert.True(t, keyed)
	assert.Equal(t, color.RGB255{R: 40, G: 50, B: 60, A: 255}, key)
	assert.Equal(t, 0.5, s.Opacity())
}

func TestFlattenIndexed(t *testing.T) {
	s, err := New(2, 2, &Options{Depth: 2, Colorkey: color.Components{40, 50, 60}})
	require.NoError(t, err)
	require.NoError(t, s.SetPalette(opaqueQuad))
	require.NoError(t, s.SetPixels([]byte{0, 1, 2, 3}))

	out, err := s.Flatten(nil)
	require.NoError(t, err)
	assert.Equal(t, 24, out.Depth())
	assert.Nil(t, out.Palette())
	assert.Equal(t, unhex(t, "0a141e 000000 0000 46505a 646e78 0000"), out.Texture().Data)
}

func TestBlit(t *testing.T) {
	src, err := New(2, 2, &Options{Depth: 24})
	require.NoError(t, err)
	fill2x2(t, src, opaqueQuad...)

	dst, err := New(4, 4, &Options{Depth: 24})
	require.NoError(t, err)

	r, err := src.Blit(dst, image.Pt(1, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 1, Y: 1, W: 2, H: 2}, r)
	c, err := dst.ColorAt(2, 2)
	require.NoError(t, err)
	assert.Equal(t, color.RGB255{R: 100, G: 110, B: 120, A: 255}, c)
	c, err = dst.ColorAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, color.Black, c)

	// Clipped by the destination bounds
	r, err = src.Blit(dst, image.Pt(3, 3), nil)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 3, Y: 3, W: 1, H: 1}, r)
	c, err = dst.ColorAt(3, 3)
	require.NoError(t, err)
	assert.Equal(t, color.RGB255{R: 10, G: 20, B: 30, A: 255}, c)

	// Source rectangle at a negative offset
	r, err = src.Blit(dst, image.Pt(0, 0), &Rect{X: 1, Y: 1, W: 2, H: 2})
	require.NoError(t, err)
	assert.Equal(t, Rect{W: 1, H: 1}, r)
	c, err = dst.ColorAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, color.RGB255{R: 100, G: 110, B: 120, A: 255}, c)

	// Clipped by the destination clip
	require.NoError(t, dst.SetClip(Rect{X: 2, Y: 0, W: 2, H: 4}))
	require.NoError(t, dst.Fill(color.Black, nil))
	r, err = src.Blit(dst, image.Pt(1, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 2, Y: 0, W: 1, H: 2}, r)

	// Completely outside
	r, err = src.Blit(dst, image.Pt(10, 10), nil)
	require.NoError(t, err)
	assert.True(t, r.Empty())

	_, err = src.Blit(nil, image.Pt(0, 0), nil)
	assert.ErrorIs(t, err, ErrType)

	dst.Freeze()
	_, err = src.Blit(dst, image.Pt(0, 0), nil)
	assert.ErrorIs(t, err, ErrFrozen)

	// A frozen source is fine
	src.Freeze()
	other, err := New(2, 2, nil)
	require.NoError(t, err)
	_, err = src.Blit(other, image.Pt(0, 0), nil)
	assert.NoError(t, err)
}

func TestBlitTransparency(t *testing.T) {
	dst, err := New(2, 1, &Options{Alpha: true})
	require.NoError(t, err)
	require.NoError(t, dst.Fill(color.Components{200, 200, 200, 100}, nil))

	// Colorkey pixels are skipped, opacity blends, the destination alpha
	// is kept.
	src, err := New(2, 1, &Options{Depth: 24, Colorkey: color.Components{1, 2, 3}, Opacity: opacity(0.5)})
	require.NoError(t, err)
	require.NoError(t, src.SetAt(0, 0, color.Components{1, 2, 3}))
	require.NoError(t, src.SetAt(1, 0, color.Components{0, 0, 0}))

	_, err = src.Blit(dst, image.Pt(0, 0), nil)
	require.NoError(t, err)
	c, err := dst.ColorAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, color.RGB255{R: 200, G: 200, B: 200, A: 100}, c)
	c, err = dst.ColorAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, color.RGB255{R: 100, G: 100, B: 100, A: 100}, c)
}

func TestBlitIndexed(t *testing.T) {
	dst, err := New(2, 1, &Options{Depth: 1})
	require.NoError(t, err)

	src, err := New(2, 1, &Options{Depth: 24})
	require.NoError(t, err)
	require.NoError(t, src.SetAt(0, 0, color.Components{200, 220, 240}))
	require.NoError(t, src.SetAt(1, 0, color.Components{20, 30, 40}))

	_, err = src.Blit(dst, image.Pt(0, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, dst.Pixels())
}

func TestBlitSelf(t *testing.T) {
	s, err := New(3, 1, &Options{Depth: 8})
	require.NoError(t, err)
	require.NoError(t, s.SetPalette(grays(256)))
	require.NoError(t, s.SetPixels([]byte{1, 2, 3}))

	_, err = s.Blit(s, image.Pt(1, 0), &Rect{W: 2, H: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 2}, s.Pixels())
}
