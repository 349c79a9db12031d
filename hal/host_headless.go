package hal

import (
	"context"
	"fmt"
	"io"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz     int
	Ticks  uint64
	Width  int
	Height int

	// Out, when set, receives the text of attached text elements each tick,
	// prefixed with a cursor-home escape so a terminal redraws in place.
	Out io.Writer

	// Present, when set, runs after every tick with the host.
	Present func(h *Core)
}

// SetupFunc builds an application on h. The returned stop func runs once
// when the runner exits.
type SetupFunc func(h *Core) (stop func() error, err error)

// RunHeadless drives a host from a ticker without opening a window.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, setup SetupFunc) (err error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 360
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := New(cfg.Width, cfg.Height)
	stop, err := setup(h)
	if err != nil {
		return err
	}
	if stop != nil {
		defer func() {
			if serr := stop(); serr != nil && err == nil {
				err = serr
			}
		}()
	}

	t := time.NewTicker(d)
	defer t.Stop()

	start := time.Now()
	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.Step(time.Since(start))
			if cfg.Out != nil {
				writeText(cfg.Out, h)
			}
			if cfg.Present != nil {
				cfg.Present(h)
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

func writeText(w io.Writer, h *Core) {
	for _, e := range h.Attached() {
		te, ok := e.(TextElement)
		if !ok {
			continue
		}
		io.WriteString(w, "\x1b[H")
		io.WriteString(w, te.Text())
	}
}
