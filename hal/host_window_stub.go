//go:build !cgo

package hal

import "errors"

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Width   int
	Height  int
	Title   string
	Console bool
}

func RunWindow(_ WindowConfig, _ SetupFunc) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
