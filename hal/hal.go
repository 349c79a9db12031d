package hal

import (
	"image"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Element is something a viewport can show. Paint draws the element's
// latest frame scaled to fb.
type Element interface {
	Paint(fb Framebuffer)
}

// TextElement is an element whose frame is a block of text.
type TextElement interface {
	Element
	Text() string
}

// ImageElement is an element whose frame is a pixel image.
type ImageElement interface {
	Element
	Image() image.Image
}

// Viewport is the region a session renders into.
//
// ClientSize reports ok=false while the viewport is not laid out yet.
type Viewport interface {
	ClientSize() (w, h int, ok bool)
	Attach(e Element)
	Detach(e Element)
}

// FrameFunc is a frame callback; now is the host frame clock.
type FrameFunc func(now time.Duration)

// FrameID identifies a pending frame request. Zero is never issued.
type FrameID uint64

// Frames is a display-synchronized callback scheduler.
//
// A requested callback runs once, on the next frame.
type Frames interface {
	Now() time.Duration
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
}

// Resize delivers viewport resize notifications.
type Resize interface {
	OnResize(fn func()) (cancel func())
}

// Dispatcher runs functions on the host loop goroutine.
//
// Post is safe to call from any goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Host provides the only contact point between a session and the outside
// world. Viewport may return nil when the host has nothing to render into.
type Host interface {
	Logger() Logger
	Viewport() Viewport
	Frames() Frames
	Resize() Resize
	Dispatcher() Dispatcher
}
