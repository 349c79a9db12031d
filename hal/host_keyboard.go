//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type keyAction uint8

const (
	keyQuit keyAction = iota + 1
	keyToggleConsole
	keyTogglePause
)

// windowKeys maps just-pressed keys to window actions.
var windowKeys = []struct {
	key    ebiten.Key
	action keyAction
}{
	{ebiten.KeyEscape, keyQuit},
	{ebiten.KeyF1, keyToggleConsole},
	{ebiten.KeySpace, keyTogglePause},
}

func pollKeys(dst []keyAction) []keyAction {
	for _, k := range windowKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			dst = append(dst, k.action)
		}
	}
	return dst
}
