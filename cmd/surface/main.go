package main

import (
	"fmt"
	"image"
	stdcolor "image/color"
	"image/gif"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bodgit/surface"
	"github.com/bodgit/surface/color"
	"github.com/bodgit/surface/palfile"
	"github.com/bodgit/surface/store"
	"github.com/urfave/cli/v2"
)

const defaultDB = "surface.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	if !c.Bool("verbose") {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openStore(c *cli.Context) (*store.Store, error) {
	logger := newLogger(c)
	surface.SetLogger(logger)
	return store.New(c.String("db"), logger)
}

// withSurface opens the library, loads the surface named by the first
// argument and calls fn with the library and the surface.
func withSurface(c *cli.Context, args int, fn func(*store.Store, *surface.Surface) error) error {
	if c.NArg() < args {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	st, err := openStore(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer st.Close()

	s, err := st.Get(c.Context, c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := fn(st, s); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func create(file string, fn func(*os.File) error) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func paletted(s *surface.Surface) (*image.Paletted, error) {
	p := s.Palette()
	if p == nil {
		return nil, fmt.Errorf("%w: %d-bit surface has no palette", surface.ErrFormat, s.Depth())
	}
	w, h := s.Size()
	m := image.NewPaletted(image.Rect(0, 0, w, h), palfile.FromPalette(p))
	copy(m.Pix, s.Pixels())
	return m, nil
}

func cycle(s *surface.Surface, frames int, mode string) (*gif.GIF, error) {
	if frames < 1 {
		return nil, fmt.Errorf("%w: %d frames", surface.ErrType, frames)
	}
	m, err := paletted(s)
	if err != nil {
		return nil, err
	}

	p := s.Palette()
	var step func() (*surface.Palette, error)
	switch mode {
	case "rotate":
		step = func() (*surface.Palette, error) { return p.Rotate(1) }
	case "reverse":
		step = p.Reverse
	case "shuffle":
		step = p.Shuffle
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", surface.ErrType, mode)
	}

	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		frame := &image.Paletted{
			Pix:     m.Pix,
			Stride:  m.Stride,
			Rect:    m.Rect,
			Palette: palfile.FromPalette(p),
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
		if _, err := step(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "surface"
	app.Usage = "Pixel surface library utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SURFACE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "import",
			Usage:       "Import images from a directory",
			Description: "Every decodable PNG, GIF, JPEG, BMP or TIFF image is stored under its path relative to DIRECTORY.",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "depth",
					Usage: "convert to an indexed surface of this depth, 1-8",
				},
				&cli.BoolFlag{
					Name:  "dither",
					Usage: "dither when converting to an indexed depth",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of concurrent decoders",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				st, err := openStore(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				opts := store.ImportOptions{
					Depth:   c.Int("depth"),
					Dither:  c.Bool("dither"),
					Workers: c.Int("workers"),
				}
				if err := st.ImportDir(c.Context, c.Args().First(), opts); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List stored surfaces",
			Action: func(c *cli.Context) error {
				st, err := openStore(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				names, err := st.Names(c.Context)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, name := range names {
					fmt.Println(name)
				}

				return nil
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a stored surface",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				st, err := openStore(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer st.Close()

				if err := st.Delete(c.Context, c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Describe a stored surface",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				return withSurface(c, 1, func(_ *store.Store, s *surface.Surface) error {
					w, h := s.Size()
					fmt.Printf("size:     %dx%d\n", w, h)
					fmt.Printf("format:   %v\n", s.Format())
					if key, ok := s.Colorkey(); ok {
						fmt.Printf("colorkey: #%02x%02x%02x\n", key.R, key.G, key.B)
					}
					fmt.Printf("opacity:  %g\n", s.Opacity())
					fmt.Printf("clip:     %v\n", s.Clip())
					fmt.Printf("flat:     %t\n", s.Flat())
					fmt.Printf("frozen:   %t\n", s.Frozen())
					return nil
				})
			},
		},
		{
			Name:        "export",
			Usage:       "Write raw texture data ready for upload",
			Description: "Flat surfaces are written as RGB rows padded to 4 bytes, all others as RGBA.",
			ArgsUsage:   "NAME FILE",
			Action: func(c *cli.Context) error {
				return withSurface(c, 2, func(_ *store.Store, s *surface.Surface) error {
					return os.WriteFile(c.Args().Get(1), s.Texture().Data, 0o644)
				})
			},
		},
		{
			Name:      "png",
			Usage:     "Write a surface as a PNG image",
			ArgsUsage: "NAME FILE",
			Action: func(c *cli.Context) error {
				return withSurface(c, 2, func(_ *store.Store, s *surface.Surface) error {
					return create(c.Args().Get(1), func(f *os.File) error {
						return png.Encode(f, s.Image())
					})
				})
			},
		},
		{
			Name:      "flatten",
			Usage:     "Composite a surface over a backdrop and write it as a PNG image",
			ArgsUsage: "NAME FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "backdrop",
					Value: "black",
					Usage: "backdrop color name or #rrggbb",
				},
			},
			Action: func(c *cli.Context) error {
				return withSurface(c, 2, func(_ *store.Store, s *surface.Surface) error {
					out, err := s.Flatten(color.Parse(c.String("backdrop")))
					if err != nil {
						return err
					}
					return create(c.Args().Get(1), func(f *os.File) error {
						return png.Encode(f, out.Image())
					})
				})
			},
		},
		{
			Name:      "palette",
			Usage:     "Write the palette of an indexed surface as a RIFF palette file",
			ArgsUsage: "NAME FILE",
			Action: func(c *cli.Context) error {
				return withSurface(c, 2, func(_ *store.Store, s *surface.Surface) error {
					p := s.Palette()
					if p == nil {
						return fmt.Errorf("%w: %d-bit surface has no palette", surface.ErrFormat, s.Depth())
					}
					return create(c.Args().Get(1), func(f *os.File) error {
						_, err := palfile.WriteTo(f, []stdcolor.Palette{palfile.FromPalette(p)})
						return err
					})
				})
			},
		},
		{
			Name:        "recolor",
			Usage:       "Replace the palette of an indexed surface from a RIFF palette file",
			Description: "The first palette in FILE replaces the palette of NAME and the result is stored back.",
			ArgsUsage:   "NAME FILE",
			Action: func(c *cli.Context) error {
				return withSurface(c, 2, func(st *store.Store, s *surface.Surface) error {
					p := s.Palette()
					if p == nil {
						return fmt.Errorf("%w: %d-bit surface has no palette", surface.ErrFormat, s.Depth())
					}
					f, err := os.Open(c.Args().Get(1))
					if err != nil {
						return err
					}
					defer f.Close()
					pals, err := palfile.ReadFrom(f)
					if err != nil {
						return err
					}
					if len(pals) == 0 {
						return fmt.Errorf("%s: no palettes", c.Args().Get(1))
					}
					if err := palfile.Apply(p, pals[0]); err != nil {
						return err
					}
					return st.Put(c.Context, c.Args().First(), s)
				})
			},
		},
		{
			Name:        "cycle",
			Usage:       "Write an animated GIF of palette effects",
			Description: "Each frame shows the indexed surface after rotating, reversing or shuffling its palette once more.",
			ArgsUsage:   "NAME FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "frames",
					Value: 16,
					Usage: "number of frames",
				},
				&cli.StringFlag{
					Name:  "mode",
					Value: "rotate",
					Usage: "palette effect: rotate, reverse or shuffle",
				},
			},
			Action: func(c *cli.Context) error {
				return withSurface(c, 2, func(_ *store.Store, s *surface.Surface) error {
					g, err := cycle(s, c.Int("frames"), c.String("mode"))
					if err != nil {
						return err
					}
					return create(c.Args().Get(1), func(f *os.File) error {
						return gif.EncodeAll(f, g)
					})
				})
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
