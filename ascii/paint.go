package ascii

import (
	"image"
	"image/color"

	"showcase/gfx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Font is the glyph font used to paint frames.
var Font = &proggy.TinySZ8pt7b

// GlyphSize returns the pixel cell of one painted glyph.
func GlyphSize() (w, h int16) {
	_, outer := tinyfont.LineWidth(Font, "0")
	return int16(outer), int16(Font.GetYAdvance())
}

type filler interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Paint draws f onto d at native glyph size from the top-left corner.
func Paint(d drivers.Displayer, f Frame, fg, bg gfx.Color) {
	gw, gh := GlyphSize()
	dw, dh := d.Size()
	bgc := rgba(bg)
	if fd, ok := d.(filler); ok {
		fd.FillRectangle(0, 0, dw, dh, bgc)
	} else {
		for y := int16(0); y < dh; y++ {
			for x := int16(0); x < dw; x++ {
				d.SetPixel(x, y, bgc)
			}
		}
	}
	fgc := rgba(fg)
	baseline := gh - 2
	for row := 0; row < f.Rows; row++ {
		y := int16(row)*gh + baseline
		if y-gh >= dh {
			break
		}
		for col := 0; col < f.Cols; col++ {
			r := f.Runes[row*f.Cols+col]
			if r == ' ' {
				continue
			}
			x := int16(col) * gw
			if x >= dw {
				break
			}
			tinyfont.DrawChar(d, Font, x, y, r, fgc)
		}
	}
}

// Rasterize paints f into a new image sized to fit every glyph.
func Rasterize(f Frame, fg, bg gfx.Color) *image.RGBA {
	gw, gh := GlyphSize()
	img := image.NewRGBA(image.Rect(0, 0, f.Cols*int(gw), f.Rows*int(gh)))
	Paint(imageDisplay{img}, f, fg, bg)
	return img
}

func rgba(c gfx.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// imageDisplay lets tinyfont draw into an image.RGBA.
type imageDisplay struct {
	img *image.RGBA
}

func (d imageDisplay) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d imageDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.img.SetRGBA(int(x), int(y), c)
}

func (d imageDisplay) Display() error { return nil }

func (d imageDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)).Intersect(d.img.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			d.img.SetRGBA(px, py, c)
		}
	}
	return nil
}
