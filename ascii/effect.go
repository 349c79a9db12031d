// Package ascii turns rendered frames into character art.
//
// An Effect wraps a renderer and its raw surface: it renders at full size,
// then averages the surface into a coarse grid and maps each cell's
// brightness onto a glyph ramp. Every other sample row is dropped so glyph
// cells come out roughly square.
package ascii

import (
	"math"
	"strings"
	"sync"

	"showcase/gfx"
)

// DefaultRamp lists glyphs from dark to bright before inversion.
const DefaultRamp = " .:-+*=%@#steinmetz"

// Options configure an Effect.
type Options struct {
	Ramp       string
	Invert     bool
	Resolution float64 // sample cells per output pixel, 0..1
	Foreground gfx.Color
	Background gfx.Color
}

// DefaultOptions returns the showcase look: inverted ramp, quarter
// resolution, white on black.
func DefaultOptions() Options {
	return Options{
		Ramp:       DefaultRamp,
		Invert:     true,
		Resolution: 0.25,
		Foreground: gfx.White,
		Background: gfx.Black,
	}
}

// Frame is one converted image. Runes are row-major, Cols per row.
type Frame struct {
	Cols, Rows int
	Runes      []rune
	Seq        uint64
}

// Text returns the frame as newline-terminated rows.
func (f Frame) Text() string {
	if f.Cols <= 0 || f.Rows <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow((f.Cols + 1) * f.Rows)
	for r := 0; r < f.Rows; r++ {
		b.WriteString(string(f.Runes[r*f.Cols : (r+1)*f.Cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Effect is a stylized render target.
type Effect struct {
	r    *gfx.Renderer
	surf *gfx.Surface
	opts Options
	ramp []rune

	w, h   int
	iw, ih int

	mu    sync.RWMutex
	frame Frame
}

// New wraps r and s. Zero option fields fall back to DefaultOptions.
func New(r *gfx.Renderer, s *gfx.Surface, opts Options) *Effect {
	def := DefaultOptions()
	if opts.Ramp == "" {
		opts.Ramp = def.Ramp
	}
	if opts.Resolution <= 0 || opts.Resolution > 1 {
		opts.Resolution = def.Resolution
	}
	if opts.Foreground == (gfx.Color{}) && opts.Background == (gfx.Color{}) {
		opts.Foreground, opts.Background = def.Foreground, def.Background
	}
	return &Effect{r: r, surf: s, opts: opts, ramp: []rune(opts.Ramp)}
}

// Options returns the effective options.
func (e *Effect) Options() Options { return e.opts }

// Surface returns the wrapped raw surface.
func (e *Effect) Surface() *gfx.Surface { return e.surf }

// SetSize resizes the raw surface and recomputes the glyph grid.
func (e *Effect) SetSize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	e.surf.SetSize(w, h)
	e.w, e.h = w, h
	e.iw = int(math.Round(float64(w) * e.opts.Resolution))
	e.ih = int(math.Round(float64(h) * e.opts.Resolution))
}

// Grid returns the glyph grid size for the current size.
func (e *Effect) Grid() (cols, rows int) {
	return e.iw, (e.ih + 1) / 2
}

// Render draws the scene into the raw surface and converts it.
func (e *Effect) Render(s *gfx.Scene, cam *gfx.PerspectiveCamera) {
	e.r.Render(e.surf, s, cam)
	e.convert()
}

func (e *Effect) convert() {
	cols, rows := e.Grid()
	runes := make([]rune, cols*rows)
	n := len(e.ramp)
	for row := 0; row < rows; row++ {
		// Sample row 2*row of the ih-high grid, in surface pixels.
		y0 := (2 * row) * e.h / e.ih
		y1 := (2*row + 1) * e.h / e.ih
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for col := 0; col < cols; col++ {
			x0 := col * e.w / e.iw
			x1 := (col + 1) * e.w / e.iw
			if x1 <= x0 {
				x1 = x0 + 1
			}
			b := e.cellBrightness(x0, y0, x1, y1)
			idx := int(math.Floor(float64((1 - b) * float32(n-1))))
			if e.opts.Invert {
				idx = n - idx - 1
			}
			if idx < 0 {
				idx = 0
			}
			if idx >= n {
				idx = n - 1
			}
			runes[row*cols+col] = e.ramp[idx]
		}
	}

	e.mu.Lock()
	e.frame = Frame{Cols: cols, Rows: rows, Runes: runes, Seq: e.frame.Seq + 1}
	e.mu.Unlock()
}

func (e *Effect) cellBrightness(x0, y0, x1, y1 int) float32 {
	var r, g, b, a, count uint32
	for y := y0; y < y1 && y < e.h; y++ {
		for x := x0; x < x1 && x < e.w; x++ {
			c := e.surf.At(x, y)
			r += uint32(c.R)
			g += uint32(c.G)
			b += uint32(c.B)
			a += uint32(c.A)
			count++
		}
	}
	if count == 0 || a == 0 {
		// Transparent samples read as fully bright.
		return 1
	}
	avg := gfx.RGB(uint8(r/count), uint8(g/count), uint8(b/count))
	return avg.Luminance()
}

// Frame returns the latest converted frame. Safe for concurrent use.
func (e *Effect) Frame() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frame
}

// Text returns the latest frame as text. Safe for concurrent use.
func (e *Effect) Text() string { return e.Frame().Text() }
