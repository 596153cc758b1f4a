package color

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

var (
	namesMu sync.RWMutex
	names   = map[string]RGB255{}
)

func normalize(name string) string {
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(name))
}

// Lookup returns the named color. Names are case insensitive and ignore
// underscores, spaces and hyphens, so "sky_blue", "SkyBlue" and "sky blue"
// are the same color.
func Lookup(name string) (RGB255, error) {
	namesMu.RLock()
	defer namesMu.RUnlock()
	c, ok := names[normalize(name)]
	if !ok {
		return RGB255{}, fmt.Errorf("%w: no color named %q", ErrLookup, name)
	}
	return c, nil
}

// Register adds or replaces a named color.
func Register(name string, c Color) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: empty color name", ErrType)
	}
	namesMu.Lock()
	defer namesMu.Unlock()
	names[key] = c.RGB255()
	return nil
}

// Names returns the normalized names of all registered colors, sorted.
func Names() []string {
	namesMu.RLock()
	defer namesMu.RUnlock()
	s := make([]string, 0, len(names))
	for k := range names {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

func init() {
	for name, c := range colornames.Map {
		names[normalize(name)] = RGB255{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
}
