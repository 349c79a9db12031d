package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"showcase/asset"
	"showcase/hal"
	"showcase/viewer"
)

func main() {
	var hcfg hal.HeadlessConfig
	var wcfg hal.WindowConfig
	var headless, raw, printText bool
	var assetPath string
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&wcfg.Width, "width", 960, "Viewport width.")
	flag.IntVar(&wcfg.Height, "height", 540, "Viewport height.")
	flag.BoolVar(&raw, "raw", false, "Show the shaded render instead of the text effect.")
	flag.StringVar(&assetPath, "asset", asset.DefaultPath, "Model path, http(s) URL or sdf:<name>.")
	flag.BoolVar(&printText, "print", false, "In headless mode, redraw the text frame on stdout.")
	flag.BoolVar(&wcfg.Console, "console", false, "Open the log console (F1 toggles).")
	flag.Parse()

	setup := func(h *hal.Core) (func() error, error) {
		s := viewer.New(h, asset.NewDefaultLoader(),
			viewer.WithStylized(!raw),
			viewer.WithAssetPath(assetPath),
		)
		if err := s.Start(); err != nil {
			return nil, err
		}
		return s.Stop, nil
	}

	if headless {
		hcfg.Width, hcfg.Height = wcfg.Width, wcfg.Height
		if printText {
			hcfg.Out = os.Stdout
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := hal.RunHeadless(ctx, hcfg, setup); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(wcfg, setup); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
