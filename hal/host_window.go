//go:build cgo

package hal

import (
	"errors"
	"image"
	"strings"
	"sync"
	"time"

	"showcase/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Width   int
	Height  int
	Title   string
	Console bool // show the log console on start; F1 toggles it
}

// RunWindow opens a resizable desktop window that shows the attached
// elements. It blocks until the window closes or Escape is pressed. Space
// holds frame delivery, as a hidden page would.
func RunWindow(cfg WindowConfig, setup SetupFunc) error {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 540
	}
	if cfg.Title == "" {
		cfg.Title = "Showcase"
	}

	h := New(cfg.Width, cfg.Height)
	con := newConsole(cfg.Width, cfg.Height/3)
	con.visible = cfg.Console
	h.SetLogger(TeeLogger{h.Logger(), con})

	stop, err := setup(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, con: con, start: time.Now(), w: cfg.Width, h0: cfg.Height}
	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if stop != nil {
		if serr := stop(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

type hostGame struct {
	h     *Core
	con   *console
	start time.Time
	w, h0 int

	paused bool
	keys   []keyAction

	img     *image.RGBA
	fbImg   *ebiten.Image
	conImg  *ebiten.Image
	conRGBA []byte
}

func (g *hostGame) Update() error {
	g.keys = pollKeys(g.keys[:0])
	for _, a := range g.keys {
		switch a {
		case keyQuit:
			return ebiten.Termination
		case keyToggleConsole:
			g.con.visible = !g.con.visible
		case keyTogglePause:
			g.paused = !g.paused
			if g.paused {
				g.h.Logger().WriteLineString("frames paused")
			} else {
				g.h.Logger().WriteLineString("frames resumed")
			}
		}
	}
	if !g.paused {
		g.h.Step(time.Since(g.start))
	}
	g.con.flush()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if err := g.h.Present(); err != nil {
		return
	}
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(max(fb.width, 1), max(fb.height, 1))
	}
	fb.snapshotRGBA(g.img.Pix)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)

	if !g.con.visible {
		return
	}
	cfb := g.con.fb
	if g.conImg == nil {
		g.conImg = ebiten.NewImage(cfb.width, cfb.height)
		g.conRGBA = make([]byte, cfb.width*cfb.height*4)
	}
	cfb.snapshotRGBA(g.conRGBA)
	g.conImg.WritePixels(g.conRGBA)
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(0.85)
	op.GeoM.Translate(0, float64(fb.height-cfb.height))
	screen.DrawImage(g.conImg, op)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h0 {
		g.w, g.h0 = outsideWidth, outsideHeight
		g.h.SetClientSize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// console mirrors log lines into a tinyterm terminal drawn over the scene.
type console struct {
	fb      *hostFramebuffer
	term    *tinyterm.Terminal
	visible bool

	mu      sync.Mutex
	pending []string
}

func newConsole(w, h int) *console {
	if h < 24 {
		h = 24
	}
	fb := newHostFramebuffer(w, h)
	t := tinyterm.NewTerminal(NewDisplayer(fb))
	t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	return &console{fb: fb, term: t}
}

func (c *console) WriteLineString(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, strings.TrimRight(s, "\n"))
}

func (c *console) WriteLineBytes(b []byte) { c.WriteLineString(string(b)) }

// flush writes buffered lines; the terminal is only touched from the game
// goroutine.
func (c *console) flush() {
	c.mu.Lock()
	lines := c.pending
	c.pending = nil
	c.mu.Unlock()
	if len(lines) == 0 {
		return
	}
	for _, l := range lines {
		c.term.Write([]byte(l + "\r\n"))
	}
	c.term.Display()
}
