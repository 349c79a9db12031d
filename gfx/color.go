package gfx

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex builds an opaque color from 0xRRGGBB.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

var (
	Black = RGB(0, 0, 0)
	White = RGB(0xFF, 0xFF, 0xFF)
)

// MulScalar scales the color channels by s clamped to 0..1.
func (c Color) MulScalar(s float32) Color {
	t := uint32(Clamp01(s) * 255)
	mul := func(ch uint8) uint8 {
		return uint8((uint32(ch) * t) / 255)
	}
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

// Modulate multiplies each channel by the matching light term. Terms may
// exceed 1 before clamping, so several lights can saturate a surface.
func (c Color) Modulate(r, g, b float32) Color {
	ch := func(v uint8, k float32) uint8 {
		return uint8(Clamp01(float32(v)/255*k) * 255)
	}
	return Color{R: ch(c.R, r), G: ch(c.G, g), B: ch(c.B, b), A: c.A}
}

// Luminance returns the weighted brightness in 0..1.
func (c Color) Luminance() float32 {
	return (0.3*float32(c.R) + 0.59*float32(c.G) + 0.11*float32(c.B)) / 255
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }
