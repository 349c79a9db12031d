package hal

import (
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"time"
)

// Core is the in-process host shared by the headless and window runners.
//
// Everything except Post and the logger runs on the loop goroutine, the
// one calling Step.
type Core struct {
	logger Logger
	fb     *hostFramebuffer
	vp     *hostViewport
	noVP   bool

	mu      sync.Mutex
	posted  []func()
	frames  map[FrameID]FrameFunc
	order   []FrameID
	nextID  FrameID
	now     time.Duration
	issued  uint64
	resize  map[uint64]func()
	resizeN uint64
}

// New returns a host with a mounted viewport of w x h pixels.
func New(w, h int) *Core {
	c := &Core{
		logger: NewWriterLogger(os.Stdout),
		fb:     newHostFramebuffer(w, h),
		frames: make(map[FrameID]FrameFunc),
		resize: make(map[uint64]func()),
	}
	c.vp = &hostViewport{w: w, h: h, mounted: w > 0 && h > 0}
	return c
}

func (c *Core) Logger() Logger         { return c.logger }
func (c *Core) Frames() Frames         { return coreFrames{c} }
func (c *Core) Resize() Resize         { return coreResize{c} }
func (c *Core) Dispatcher() Dispatcher { return coreDispatcher{c} }

func (c *Core) Viewport() Viewport {
	if c.noVP {
		return nil
	}
	return c.vp
}

// Framebuffer is the RGB565 surface attached elements paint into.
func (c *Core) Framebuffer() Framebuffer { return c.fb }

// SetLogger replaces the host logger.
func (c *Core) SetLogger(l Logger) {
	if l != nil {
		c.logger = l
	}
}

// RemoveViewport makes Viewport return nil, as on a host with no page
// element to render into.
func (c *Core) RemoveViewport() { c.noVP = true }

// SetMounted toggles whether the viewport reports a client size.
func (c *Core) SetMounted(mounted bool) { c.vp.mounted = mounted }

// SetClientSize changes the viewport size and notifies resize listeners.
// Listeners run even when the size is unchanged, as browsers may do.
func (c *Core) SetClientSize(w, h int) {
	c.vp.w, c.vp.h = w, h
	if w > 0 && h > 0 {
		c.fb.resize(w, h)
	}
	c.mu.Lock()
	fns := make([]func(), 0, len(c.resize))
	for i := uint64(1); i <= c.resizeN; i++ {
		if fn, ok := c.resize[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Attached returns the elements currently attached to the viewport.
func (c *Core) Attached() []Element {
	out := make([]Element, len(c.vp.attached))
	copy(out, c.vp.attached)
	return out
}

// PendingFrames returns the number of frame callbacks waiting for Step.
func (c *Core) PendingFrames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// FrameRequests returns how many frame callbacks were ever requested.
func (c *Core) FrameRequests() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issued
}

// ResizeListeners returns the number of live resize subscriptions.
func (c *Core) ResizeListeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.resize)
}

// Step advances the frame clock to now, runs posted functions, then runs
// the frame callbacks that were pending when the step began. Frames
// requested during the step wait for the next one.
func (c *Core) Step(now time.Duration) {
	c.mu.Lock()
	c.now = now
	posted := c.posted
	c.posted = nil
	due := c.order
	c.order = nil
	c.mu.Unlock()

	for _, fn := range posted {
		fn()
	}

	for _, id := range due {
		c.mu.Lock()
		fn, ok := c.frames[id]
		delete(c.frames, id)
		c.mu.Unlock()
		if ok {
			fn(now)
		}
	}
}

// Drain runs posted functions without advancing frames.
func (c *Core) Drain() {
	c.mu.Lock()
	posted := c.posted
	c.posted = nil
	c.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
}

// Present paints attached elements into the framebuffer.
func (c *Core) Present() error {
	if len(c.vp.attached) == 0 {
		return nil
	}
	c.fb.ClearRGB(0, 0, 0)
	for _, e := range c.vp.attached {
		e.Paint(c.fb)
	}
	return c.fb.Present()
}

// Snapshot copies the framebuffer into a new RGBA image.
func (c *Core) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.fb.Width(), c.fb.Height()))
	c.fb.snapshotRGBA(img.Pix)
	return img
}

type coreFrames struct{ c *Core }

func (f coreFrames) Now() time.Duration {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.now
}

func (f coreFrames) RequestFrame(fn FrameFunc) FrameID {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	f.c.nextID++
	id := f.c.nextID
	f.c.frames[id] = fn
	f.c.order = append(f.c.order, id)
	f.c.issued++
	return id
}

func (f coreFrames) CancelFrame(id FrameID) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	delete(f.c.frames, id)
}

type coreResize struct{ c *Core }

func (r coreResize) OnResize(fn func()) func() {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.resizeN++
	id := r.c.resizeN
	r.c.resize[id] = fn
	return func() {
		r.c.mu.Lock()
		defer r.c.mu.Unlock()
		delete(r.c.resize, id)
	}
}

type coreDispatcher struct{ c *Core }

func (d coreDispatcher) Post(fn func()) {
	if fn == nil {
		return
	}
	d.c.mu.Lock()
	defer d.c.mu.Unlock()
	d.c.posted = append(d.c.posted, fn)
}

type hostViewport struct {
	w, h     int
	mounted  bool
	attached []Element
}

func (v *hostViewport) ClientSize() (w, h int, ok bool) {
	if !v.mounted {
		return 0, 0, false
	}
	return v.w, v.h, true
}

func (v *hostViewport) Attach(e Element) {
	if e == nil {
		return
	}
	v.attached = append(v.attached, e)
}

func (v *hostViewport) Detach(e Element) {
	for i, a := range v.attached {
		if a == e {
			v.attached = append(v.attached[:i], v.attached[i+1:]...)
			return
		}
	}
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterLogger returns a line logger writing to w.
func NewWriterLogger(w io.Writer) Logger {
	return &hostLogger{w: w}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// TeeLogger writes every line to each logger in order.
type TeeLogger []Logger

func (t TeeLogger) WriteLineString(s string) {
	for _, l := range t {
		l.WriteLineString(s)
	}
}

func (t TeeLogger) WriteLineBytes(b []byte) {
	for _, l := range t {
		l.WriteLineBytes(b)
	}
}
