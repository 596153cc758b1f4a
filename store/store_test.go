package store

import (
	"context"
	"image"
	stdcolor "image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/surface"
	"github.com/bodgit/surface/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "surface.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, st.Close())
	})
	return st
}

func newSurface(t *testing.T, c color.Value) *surface.Surface {
	t.Helper()
	s, err := surface.New(8, 8, &surface.Options{Depth: 16, Colorkey: color.Name("sky_blue")})
	require.NoError(t, err)
	require.NoError(t, s.Fill(c, nil))
	return s
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	s := newSurface(t, color.Components{255, 0, 0})
	require.NoError(t, st.Put(ctx, "red", s))

	got, err := st.Get(ctx, "red")
	require.NoError(t, err)
	assert.Equal(t, s.Pixels(), got.Pixels())
	assert.Equal(t, s.Format(), got.Format())
	key, ok := got.Colorkey()
	assert.True(t, ok)
	assert.Equal(t, color.RGB255{R: 135, G: 206, B: 235, A: 255}, key)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeduplication(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	red := newSurface(t, color.Components{255, 0, 0})
	require.NoError(t, st.Put(ctx, "a", red))
	require.NoError(t, st.Put(ctx, "b", red))

	n, err := st.blobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Replacing a name drops the unused blob
	require.NoError(t, st.Put(ctx, "a", newSurface(t, color.Components{0, 0, 255})))
	require.NoError(t, st.Put(ctx, "b", newSurface(t, color.Components{0, 255, 0})))
	n, err = st.blobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := st.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, st.Delete(ctx, "a"))
	n, err = st.blobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, st.Delete(ctx, "a"), ErrNotFound)

	names, err = st.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func writePNG(t *testing.T, file string, c stdcolor.Color) {
	t.Helper()
	m := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func TestImportDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "red.png"), stdcolor.NRGBA{R: 255, G: 0, B: 0, A: 255})
	writePNG(t, filepath.Join(dir, "sub", "green.png"), stdcolor.NRGBA{R: 0, G: 255, B: 0, A: 128})
	writePNG(t, filepath.Join(dir, ".hidden", "blue.png"), stdcolor.NRGBA{R: 0, G: 0, B: 255, A: 255})
	writePNG(t, filepath.Join(dir, ".blue.png"), stdcolor.NRGBA{R: 0, G: 0, B: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644))

	t.Run("direct", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.ImportDir(ctx, dir, ImportOptions{Workers: 2}))

		names, err := st.Names(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"red.png", "sub/green.png"}, names)

		s, err := st.Get(ctx, "sub/green.png")
		require.NoError(t, err)
		assert.True(t, s.HasAlpha())
		c, err := s.ColorAt(3, 3)
		require.NoError(t, err)
		assert.Equal(t, color.RGB255{R: 0, G: 255, B: 0, A: 128}, c)
	})

	t.Run("indexed", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.ImportDir(ctx, dir, ImportOptions{Depth: 4}))

		s, err := st.Get(ctx, "red.png")
		require.NoError(t, err)
		assert.Equal(t, 4, s.Depth())
		require.NotNil(t, s.Palette())
		c, err := s.ColorAt(0, 0)
		require.NoError(t, err)
		assert.InDelta(t, 255, float64(c.R), 2)
		assert.InDelta(t, 0, float64(c.G), 2)
	})

	t.Run("bad depth", func(t *testing.T) {
		st := newStore(t)
		assert.ErrorIs(t, st.ImportDir(ctx, dir, ImportOptions{Depth: 16}), surface.ErrFormat)
	})
}
