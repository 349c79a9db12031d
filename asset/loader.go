package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"showcase/gfx"
	"showcase/hal"
)

// DefaultPath is the model the viewer loads when none is configured.
const DefaultPath = "./RenderAssem.STL"

var ErrUnknownScheme = errors.New("asset: unknown scheme")

// Loader resolves a path to geometry.
type Loader interface {
	Load(ctx context.Context, path string) (*gfx.Geometry, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) (*gfx.Geometry, error)

func (f LoaderFunc) Load(ctx context.Context, p string) (*gfx.Geometry, error) { return f(ctx, p) }

// FileLoader reads STL files from FS, or from the OS when FS is nil.
type FileLoader struct {
	FS fs.FS
}

func (l FileLoader) Load(ctx context.Context, p string) (*gfx.Geometry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		f   io.ReadCloser
		err error
	)
	if l.FS != nil {
		f, err = l.FS.Open(strings.TrimPrefix(path.Clean(p), "/"))
	} else {
		f, err = os.Open(p)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	g, err := DecodeSTL(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// HTTPLoader fetches STL files over HTTP.
type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, url string) (*gfx.Geometry, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}
	g, err := DecodeSTL(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return g, nil
}

// Mux routes a path to a loader by its "scheme:" prefix. Paths without a
// scheme go to Default.
type Mux struct {
	Default Loader
	schemes map[string]Loader
}

// NewMux returns a mux with def for plain paths.
func NewMux(def Loader) *Mux {
	return &Mux{Default: def, schemes: make(map[string]Loader)}
}

// Handle registers l for paths starting with scheme + ":".
func (m *Mux) Handle(scheme string, l Loader) {
	m.schemes[strings.ToLower(scheme)] = l
}

func (m *Mux) Load(ctx context.Context, p string) (*gfx.Geometry, error) {
	scheme := Scheme(p)
	if scheme == "" {
		if m.Default == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, p)
		}
		return m.Default.Load(ctx, p)
	}
	l, ok := m.schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return l.Load(ctx, p)
}

// Scheme returns the lower-cased scheme of p, or "" for plain paths.
// Single letters are treated as drive names, not schemes.
func Scheme(p string) string {
	i := strings.IndexByte(p, ':')
	if i < 2 {
		return ""
	}
	for j, r := range p[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(p[:i])
}

// NewDefaultLoader serves plain paths from disk, http(s) URLs over the
// network and "sdf:" names from the procedural models.
func NewDefaultLoader() *Mux {
	m := NewMux(FileLoader{})
	web := HTTPLoader{}
	m.Handle("http", web)
	m.Handle("https", web)
	m.Handle("sdf", NewProceduralLoader())
	return m
}

// LoadAsync loads p on a new goroutine and posts done to d. It issues the
// load exactly once and never retries.
func LoadAsync(ctx context.Context, l Loader, p string, d hal.Dispatcher, done func(*gfx.Geometry, error)) {
	go func() {
		g, err := l.Load(ctx, p)
		d.Post(func() { done(g, err) })
	}()
}
