package surface

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/bodgit/surface/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

// fill2x2 sets the four pixels of a 2x2 surface in row order.
func fill2x2(t *testing.T, s *Surface, colors ...color.Value) {
	t.Helper()
	for i, c := range colors {
		require.NoError(t, s.SetAt(i%2, i/2, c))
	}
}

var quad = []color.Value{
	color.Components{10, 20, 30, 40},
	color.Components{50, 60, 70, 80},
	color.Components{90, 100, 110, 120},
	color.Components{130, 140, 150, 160},
}

var opaqueQuad = []color.Value{
	color.Components{10, 20, 30},
	color.Components{40, 50, 60},
	color.Components{70, 80, 90},
	color.Components{100, 110, 120},
}

func TestTextureFlat(t *testing.T) {
	tables := map[string]struct {
		opts *Options
		data string
	}{
		"24-bit": {
			opts: &Options{Depth: 24},
			data: "0a141e 28323c 0000 46505a 646e78 0000",
		},
		"32-bit": {
			opts: &Options{Depth: 32},
			data: "0a141e 28323c 0000 46505a 646e78 0000",
		},
		"16-bit": {
			opts: &Options{Depth: 16},
			data: "081418 283038 0000 405058 606c78 0000",
		},
		"15-bit": {
			opts: &Options{Depth: 15},
			data: "081018 283038 0000 405058 606878 0000",
		},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			s, err := New(2, 2, table.opts)
			require.NoError(t, err)
			fill2x2(t, s, opaqueQuad...)

			tex := s.Texture()
			assert.Equal(t, FormatRGB, tex.Format)
			assert.Equal(t, TextureFormat(6407), tex.Format)
			assert.Equal(t, ElementType(5121), tex.Type)
			assert.Equal(t, 2, tex.Width)
			assert.Equal(t, 2, tex.Height)
			assert.Equal(t, unhex(t, table.data), tex.Data)
		})
	}
}

func TestTextureAlpha(t *testing.T) {
	tables := map[string]*Masks{
		"RGBA": {R: 0xff, G: 0xff00, B: 0xff0000, A: 0xff000000},
		"ARGB": {R: 0xff0000, G: 0xff00, B: 0xff, A: 0xff000000},
		"BGRA": {R: 0xff00, G: 0xff0000, B: 0xff000000, A: 0xff},
	}

	for name, masks := range tables {
		t.Run(name, func(t *testing.T) {
			s, err := New(2, 2, &Options{Alpha: true, Masks: masks})
			require.NoError(t, err)
			fill2x2(t, s, quad...)

			tex := s.Texture()
			assert.Equal(t, FormatRGBA, tex.Format)
			assert.Equal(t, TextureFormat(6408), tex.Format)
			assert.Equal(t, unhex(t, "0a141e28 323c4650 5a646e78 828c96a0"), tex.Data)
		})
	}
}

func TestTextureColorkey(t *testing.T) {
	s, err := New(2, 2, &Options{Depth: 24, Colorkey: color.Components{40, 50, 60}})
	require.NoError(t, err)
	fill2x2(t, s, opaqueQuad...)

	tex := s.Texture()
	assert.Equal(t, FormatRGBA, tex.Format)
	assert.Equal(t, unhex(t, "0a141eff 00000000 46505aff 646e78ff"), tex.Data)

	// The key matches after being packed, so a 15-bit key of (41, 52, 63)
	// still hides (40, 50, 60).
	s, err = New(2, 2, &Options{Depth: 15, Colorkey: color.Components{41, 52, 63}})
	require.NoError(t, err)
	fill2x2(t, s, opaqueQuad...)
	tex = s.Texture()
	assert.Equal(t, unhex(t, "00000000"), tex.Data[4:8])

	// Colorkey on an alpha surface keeps the other alpha values
	s, err = New(2, 2, &Options{Alpha: true, Colorkey: color.Components{50, 60, 70}})
	require.NoError(t, err)
	fill2x2(t, s, quad...)
	tex = s.Texture()
	assert.Equal(t, unhex(t, "0a141e28 00000000 5a646e78 828c96a0"), tex.Data)
}

func TestTextureOpacity(t *testing.T) {
	s, err := New(2, 2, &Options{Depth: 24, Opacity: opacity(0.5)})
	require.NoError(t, err)
	fill2x2(t, s, opaqueQuad...)

	tex := s.Texture()
	assert.Equal(t, FormatRGBA, tex.Format)
	assert.Equal(t, unhex(t, "0a141e7f 28323c7f 46505a7f 646e787f"), tex.Data)

	// Opacity does not override a native alpha channel
	s, err = New(2, 2, &Options{Alpha: true, Opacity: opacity(0.5)})
	require.NoError(t, err)
	fill2x2(t, s, quad...)
	tex = s.Texture()
	assert.Equal(t, unhex(t, "0a141e28 323c4650 5a646e78 828c96a0"), tex.Data)
}

func TestTextureIndexed(t *testing.T) {
	s, err := New(2, 2, &Options{Depth: 2})
	require.NoError(t, err)
	require.NoError(t, s.SetPalette(opaqueQuad))
	require.NoError(t, s.SetPixels([]byte{3, 2, 1, 0}))

	tex := s.Texture()
	assert.Equal(t, FormatRGB, tex.Format)
	assert.Equal(t, unhex(t, "646e78 46505a 0000 28323c 0a141e 0000"), tex.Data)
}

func TestTextureShiftsChannels(t *testing.T) {
	for _, depth := range []int{15, 16} {
		s, err := New(1, 1, &Options{Depth: depth})
		require.NoError(t, err)
		require.NoError(t, s.Fill(color.White, nil))

		c, err := s.ColorAt(0, 0)
		require.NoError(t, err)
		assert.Equal(t, color.White, c, depth)

		want := "f8f8f8 00"
		if depth == 16 {
			want = "f8fcf8 00"
		}
		assert.Equal(t, unhex(t, want), s.Texture().Data, depth)
	}
}

func TestCodec(t *testing.T) {
	f := Format{Depth: 16, Masks: DefaultMasks(16, false)}
	assert.Equal(t, uint32(0xffff), f.Encode(color.White))
	assert.Equal(t, color.White, f.Decode(0xffff))
	assert.Equal(t, color.RGB255{A: 255}, f.Decode(0))
	assert.Equal(t, uint8(255), f.Decode(0x1f).B)
	assert.Equal(t, uint8(132), f.Decode(0x10).B)
	assert.Equal(t, uint8(255), f.Decode(0x7e0).G)
	assert.Equal(t, uint8(8), f.Decode(0x1).B)

	// Channels wider than 8 bits are scaled down
	f = Format{Depth: 30, Masks: Masks{R: 0x3ff00000, G: 0xffc00, B: 0x3ff}}
	assert.Equal(t, color.RGB255{R: 255, G: 128, B: 0, A: 255}, f.Decode(0x3ff<<20|0x200<<10))
	assert.Equal(t, uint32(0x3fc<<20|0x200<<10), f.Encode(color.RGB255{R: 255, G: 128, B: 0, A: 255}))

	assert.Equal(t, 4, f.BytesPerPixel())
	assert.Equal(t, 2, Format{Depth: 15}.BytesPerPixel())
	assert.Equal(t, 3, Format{Depth: 24}.BytesPerPixel())
	assert.Equal(t, 1, Format{Depth: 1}.BytesPerPixel())
	assert.Equal(t, 0, f.PaletteSize())
	assert.Equal(t, 16, Format{Depth: 4}.PaletteSize())
}
