package store

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/surface"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImportOptions controls ImportDir.
type ImportOptions struct {
	// Depth converts each image to an indexed surface of this depth. Zero
	// keeps images as 32-bit surfaces with alpha.
	Depth int
	// Dither enables error diffusion when converting to an indexed depth.
	Dither bool
	// Workers is the number of concurrent decoders. Zero means 4.
	Workers int
}

type decoded struct {
	name string
	s    *surface.Surface
}

// maxFileSize is the largest file considered for import.
const maxFileSize = 64 << (10 * 2)

func findFiles(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || info.Size() > maxFileSize {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc
}

func (st *Store) decodeWorker(ctx context.Context, wg *sync.WaitGroup, base string, opts ImportOptions, in <-chan string, out chan<- decoded) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer wg.Done()
		for file := range in {
			s, err := decodeFile(file, opts)
			if err != nil {
				st.logger.Info("skipping file", "file", file, "error", err)
				continue
			}

			name, err := filepath.Rel(base, file)
			if err != nil {
				errc <- err
				return
			}

			select {
			case out <- decoded{name: filepath.ToSlash(name), s: s}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return errc
}

func decodeFile(file string, opts ImportOptions) (*surface.Surface, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	if opts.Depth == 0 {
		return surface.FromImage(m)
	}
	return surface.Palettize(m, opts.Depth, opts.Dither)
}

func (st *Store) writer(ctx context.Context, in <-chan decoded) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for d := range in {
			if err := st.Put(ctx, d.name, d.s); err != nil {
				errc <- err
				return
			}
			w, h := d.s.Size()
			st.logger.Info("imported", "name", d.name, "width", w, "height", h, "depth", d.s.Depth())
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ImportDir stores every decodable image found under dir, named by its slash
// separated path relative to dir. Files that are not images are skipped.
func (st *Store) ImportDir(ctx context.Context, dir string, opts ImportOptions) error {
	base, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if opts.Depth < 0 || opts.Depth > 8 {
		return fmt.Errorf("%w: depth %d is not indexed", surface.ErrFormat, opts.Depth)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc := findFiles(ctx, base)
	errcList = append(errcList, errc)

	surfaces := make(chan decoded)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		errcList = append(errcList, st.decodeWorker(ctx, &wg, base, opts, files, surfaces))
	}

	errcList = append(errcList, st.writer(ctx, surfaces))

	// Close the surfaces channel once every worker has finished
	go func() {
		wg.Wait()
		close(surfaces)
	}()

	return waitForPipeline(errcList...)
}
