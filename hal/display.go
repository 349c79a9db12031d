package hal

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// FBDisplay adapts a Framebuffer to the tinygo drivers.Displayer interface
// and the extra methods tinyterm expects.
type FBDisplay struct {
	fb Framebuffer
}

// NewDisplayer wraps fb.
func NewDisplayer(fb Framebuffer) *FBDisplay {
	return &FBDisplay{fb: fb}
}

var _ drivers.Displayer = (*FBDisplay)(nil)

func (d *FBDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *FBDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}

	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	pixel := rgb565(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	put565(buf, off, pixel)
}

func (d *FBDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *FBDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	if d.fb == nil || d.fb.Format() != PixelFormatRGB565 || lines <= 0 {
		return nil
	}
	buf := d.fb.Buffer()
	w := d.fb.Width()
	h := d.fb.Height()
	if buf == nil || w <= 0 || h <= 0 {
		return nil
	}

	n := int(lines)
	if n >= h {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}

	stride := d.fb.StrideBytes()
	dstLen := (h - n) * stride
	srcStart := n * stride
	if srcStart+dstLen > len(buf) {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}
	copy(buf[:dstLen], buf[srcStart:srcStart+dstLen])

	return d.FillRectangle(0, int16(h-n), int16(w), int16(n), bg)
}

func (d *FBDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil || d.fb.Format() != PixelFormatRGB565 {
		return nil
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return nil
	}

	w := d.fb.Width()
	h := d.fb.Height()

	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := rgb565(c.R, c.G, c.B)

	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				continue
			}
			put565(buf, off, pixel)
		}
	}
	return nil
}

func (d *FBDisplay) SetScroll(line int16) {
	_ = line
}

func (d *FBDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

// BlitImage scales img into fb with nearest-neighbour sampling.
func BlitImage(fb Framebuffer, img image.Image) {
	if fb == nil || img == nil || fb.Format() != PixelFormatRGB565 {
		return
	}
	buf := fb.Buffer()
	dw, dh := fb.Width(), fb.Height()
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if dw <= 0 || dh <= 0 || sw <= 0 || sh <= 0 {
		return
	}
	rgba, _ := img.(*image.RGBA)
	stride := fb.StrideBytes()
	for y := 0; y < dh; y++ {
		sy := b.Min.Y + y*sh/dh
		row := y * stride
		for x := 0; x < dw; x++ {
			sx := b.Min.X + x*sw/dw
			var r, g, bl uint8
			if rgba != nil {
				p := rgba.PixOffset(sx, sy)
				r, g, bl = rgba.Pix[p], rgba.Pix[p+1], rgba.Pix[p+2]
			} else {
				c := color.RGBAModel.Convert(img.At(sx, sy)).(color.RGBA)
				r, g, bl = c.R, c.G, c.B
			}
			pixel := rgb565(r, g, bl)
			off := row + x*2
			if off+1 >= len(buf) {
				continue
			}
			put565(buf, off, pixel)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
