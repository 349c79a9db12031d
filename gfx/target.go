package gfx

import "image"

// Target is a minimal pixel target for software rendering.
//
// Implementations clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// RenderMode selects the rasterization mode.
type RenderMode uint8

const (
	RenderSolidFlat RenderMode = iota
	RenderWireframe
)

// Surface is a resizable RGBA render surface.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a surface; zero sizes yield an empty surface.
func NewSurface(w, h int) *Surface {
	s := &Surface{}
	s.SetSize(w, h)
	return s
}

// SetSize reallocates the pixel buffer when the size changes.
func (s *Surface) SetSize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if s.img != nil && s.img.Rect.Dx() == w && s.img.Rect.Dy() == h {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (s *Surface) Size() (w, h int) {
	if s == nil || s.img == nil {
		return 0, 0
	}
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

func (s *Surface) Clear(c Color) {
	if s == nil || s.img == nil {
		return
	}
	pix := s.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

func (s *Surface) SetPixel(x, y int, c Color) {
	if s == nil || s.img == nil {
		return
	}
	w, h := s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	off := y*s.img.Stride + x*4
	s.img.Pix[off+0] = c.R
	s.img.Pix[off+1] = c.G
	s.img.Pix[off+2] = c.B
	s.img.Pix[off+3] = c.A
}

// At returns the pixel at (x, y), or transparent black outside the surface.
func (s *Surface) At(x, y int) Color {
	if s == nil || s.img == nil {
		return Color{}
	}
	w, h := s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return Color{}
	}
	off := y*s.img.Stride + x*4
	p := s.img.Pix[off : off+4 : off+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Image exposes the backing image. Callers must not retain it across frames.
func (s *Surface) Image() *image.RGBA {
	if s == nil {
		return nil
	}
	return s.img
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	if s == nil || s.img == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}
