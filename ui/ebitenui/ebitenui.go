// Package ebitenui runs a console in an ebiten window, an alternative to the glfw frontend
// which needs no OpenGL 3.3 context.
package ebitenui

import (
	"errors"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/jyane/jnes/nes"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

var errClosed = errors.New("ebitenui: closed")

// Same layout as the glfw frontend, one map per player.
var keymaps = [2][8]ebiten.Key{
	{
		nes.ButtonA:      ebiten.KeyJ,
		nes.ButtonB:      ebiten.KeyH,
		nes.ButtonSelect: ebiten.KeyF,
		nes.ButtonStart:  ebiten.KeyG,
		nes.ButtonUp:     ebiten.KeyW,
		nes.ButtonDown:   ebiten.KeyS,
		nes.ButtonLeft:   ebiten.KeyA,
		nes.ButtonRight:  ebiten.KeyD,
	},
	{
		nes.ButtonA:      ebiten.KeyPeriod,
		nes.ButtonB:      ebiten.KeyComma,
		nes.ButtonSelect: ebiten.KeyShiftRight,
		nes.ButtonStart:  ebiten.KeyEnter,
		nes.ButtonUp:     ebiten.KeyArrowUp,
		nes.ButtonDown:   ebiten.KeyArrowDown,
		nes.ButtonLeft:   ebiten.KeyArrowLeft,
		nes.ButtonRight:  ebiten.KeyArrowRight,
	},
}

type game struct {
	console nes.Emulator
	screen  *ebiten.Image
	paused  bool
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errClosed
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.console.Reset()
	}
	for player, keymap := range keymaps {
		var buttons [8]bool
		for i, key := range keymap {
			buttons[i] = ebiten.IsKeyPressed(key)
		}
		g.console.SetButtons(player, buttons)
	}
	if g.paused {
		return nil
	}
	return g.console.StepFrame()
}

func (g *game) Draw(screen *ebiten.Image) {
	if frame, ok := g.console.Frame(); ok {
		g.screen.WritePixels(frame.Pix)
	}
	screen.DrawImage(g.screen, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// Start opens the window and runs the console at the display refresh rate, which ebiten
// keeps at 60 updates per second. Space pauses, R resets, Escape quits.
func Start(console nes.Emulator, width int, height int) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("JNES")
	g := &game{
		console: console,
		screen:  ebiten.NewImage(screenWidth, screenHeight),
	}
	err := ebiten.RunGame(g)
	if errors.Is(err, errClosed) {
		glog.Infof("Window closed")
		return nil
	}
	return err
}
