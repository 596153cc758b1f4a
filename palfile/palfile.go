/*
Package palfile reads and writes Microsoft RIFF palette (.pal) files.

A file is a RIFF form of type "PAL " holding one or more "data" chunks, each
a LOGPALETTE structure:

	WORD palVersion;     // 0x0300
	WORD palNumEntries;
	PALETTEENTRY entries[palNumEntries]; // R, G, B, flags

All values are little endian.
*/
package palfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/bodgit/surface"
	scolor "github.com/bodgit/surface/color"
	"golang.org/x/image/riff"
)

const palVersion = 0x0300

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

var errFormat = errors.New("palfile: bad palette file")

// ReadFrom reads every palette in a RIFF palette file. Colors are always
// opaque, the per-entry flags are discarded.
func ReadFrom(r io.Reader) ([]color.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errFormat, err)
	}
	if formType != palType {
		return nil, fmt.Errorf("%w: form type %q", errFormat, formType[:])
	}
	return readChunks(rd, "PAL")
}

func readChunks(r *riff.Reader, ident string) ([]color.Palette, error) {
	var res []color.Palette
	for {
		id, size, data, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return res, nil
			}
			return res, fmt.Errorf("%w: chunk %s#%d: %v", errFormat, ident, len(res), err)
		}

		switch id {
		case riff.LIST:
			listType, list, err := riff.NewListReader(size, data)
			if err != nil {
				return res, fmt.Errorf("%w: list %s#%d: %v", errFormat, ident, len(res), err)
			}
			if listType != palType {
				return res, fmt.Errorf("%w: list %s#%d has type %q", errFormat, ident, len(res), listType[:])
			}
			pals, err := readChunks(list, fmt.Sprintf("%s%d.%s", ident, len(res), listType[:]))
			res = append(res, pals...)
			if err != nil {
				return res, err
			}
		case dataType:
			pal, err := readPalette(data, size)
			if err != nil {
				return res, fmt.Errorf("chunk %s#%d: %w", ident, len(res), err)
			}
			res = append(res, pal)
		default:
			return res, fmt.Errorf("%w: unsupported chunk %q in %s", errFormat, id[:], ident)
		}
	}
}

func readPalette(r io.Reader, size uint32) (color.Palette, error) {
	var hdr [2]uint16
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", errFormat, err)
	}
	if hdr[0] != palVersion {
		return nil, fmt.Errorf("%w: version %#04x", errFormat, hdr[0])
	}
	if uint32(hdr[1])*4+4 > size {
		return nil, fmt.Errorf("%w: %d entries in a %d byte chunk", errFormat, hdr[1], size)
	}

	buf := make([]byte, int(hdr[1])*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", errFormat, err)
	}
	pal := make(color.Palette, hdr[1])
	for i := range pal {
		pal[i] = color.RGBA{R: buf[i*4], G: buf[i*4+1], B: buf[i*4+2], A: 0xff}
	}
	return pal, nil
}

// WriteTo writes pals as a RIFF palette file and returns the number of
// bytes written. Colors are written without premultiplication.
func WriteTo(w io.Writer, pals []color.Palette) (int64, error) {
	size := 4
	for _, pal := range pals {
		if len(pal) > 0xffff {
			return 0, fmt.Errorf("%w: %d colors in one palette", errFormat, len(pal))
		}
		size += 8 + 4 + len(pal)*4
	}

	b := make([]byte, 0, 8+size)
	b = append(b, riffType[:]...)
	b = binary.LittleEndian.AppendUint32(b, uint32(size))
	b = append(b, palType[:]...)
	for _, pal := range pals {
		b = append(b, dataType[:]...)
		b = binary.LittleEndian.AppendUint32(b, uint32(4+len(pal)*4))
		b = binary.LittleEndian.AppendUint16(b, palVersion)
		b = binary.LittleEndian.AppendUint16(b, uint16(len(pal)))
		for _, c := range pal {
			n := scolor.FromStd(c)
			b = append(b, n.R, n.G, n.B, 0)
		}
	}

	n, err := w.Write(b)
	return int64(n), err
}

// FromPalette returns the colors of a surface palette.
func FromPalette(p *surface.Palette) color.Palette {
	colors := p.Colors()
	pal := make(color.Palette, len(colors))
	for i, c := range colors {
		pal[i] = c
	}
	return pal
}

// Apply replaces the entries of a surface palette with pal. Surplus colors
// are ignored and missing ones become opaque black.
func Apply(p *surface.Palette, pal color.Palette) error {
	v := make([]scolor.Value, len(pal))
	for i, c := range pal {
		v[i] = scolor.FromStd(c)
	}
	_, err := p.Replace(v)
	return err
}
