package ui

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/jyane/jnes/nes"
)

// keymaps per player.
// 1P: WASD for directions, J for A, H for B, F for select, G for start.
// 2P: arrows for directions, period for A, comma for B, right shift for select, enter for start.
var keymaps = [2][8]glfw.Key{
	{
		nes.ButtonA:      glfw.KeyJ,
		nes.ButtonB:      glfw.KeyH,
		nes.ButtonSelect: glfw.KeyF,
		nes.ButtonStart:  glfw.KeyG,
		nes.ButtonUp:     glfw.KeyW,
		nes.ButtonDown:   glfw.KeyS,
		nes.ButtonLeft:   glfw.KeyA,
		nes.ButtonRight:  glfw.KeyD,
	},
	{
		nes.ButtonA:      glfw.KeyPeriod,
		nes.ButtonB:      glfw.KeyComma,
		nes.ButtonSelect: glfw.KeyRightShift,
		nes.ButtonStart:  glfw.KeyEnter,
		nes.ButtonUp:     glfw.KeyUp,
		nes.ButtonDown:   glfw.KeyDown,
		nes.ButtonLeft:   glfw.KeyLeft,
		nes.ButtonRight:  glfw.KeyRight,
	},
}

// getKeys gets the buttons of the player from the state of keyboard.
func getKeys(window *glfw.Window, player int) [8]bool {
	var keys [8]bool
	for i, key := range keymaps[player] {
		keys[i] = window.GetKey(key) == glfw.Press
	}
	return keys
}
