package viewer

import (
	"image"

	"showcase/ascii"
	"showcase/gfx"
	"showcase/hal"
)

// rawElement shows the raw render surface.
type rawElement struct {
	surf *gfx.Surface
}

func (e *rawElement) Paint(fb hal.Framebuffer) {
	if img := e.surf.Image(); img != nil {
		hal.BlitImage(fb, img)
	}
}

// Image returns a copy of the last rendered frame.
func (e *rawElement) Image() image.Image { return e.surf.Snapshot() }

// glyphElement shows the stylized output overlaying the viewport.
type glyphElement struct {
	effect *ascii.Effect
}

func (e *glyphElement) Paint(fb hal.Framebuffer) {
	f := e.effect.Frame()
	if f.Cols == 0 || f.Rows == 0 {
		return
	}
	opts := e.effect.Options()
	hal.BlitImage(fb, ascii.Rasterize(f, opts.Foreground, opts.Background))
}

func (e *glyphElement) Text() string { return e.effect.Text() }

var (
	_ hal.ImageElement = (*rawElement)(nil)
	_ hal.TextElement  = (*glyphElement)(nil)
)
