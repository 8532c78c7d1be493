package ui

import (
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/jyane/jnes/nes"
)

// NTSC NES draws 60.0988 frames per second.
const frameDuration = time.Second * 10000 / 600988

func mainLoop(window *glfw.Window, console nes.Emulator, program uint32) error {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()
	resetHeld := false
	for range ticker.C {
		if window.ShouldClose() {
			return nil
		}
		glfw.PollEvents()
		for player := range keymaps {
			console.SetButtons(player, getKeys(window, player))
		}
		reset := window.GetKey(glfw.KeyR) == glfw.Press
		if reset && !resetHeld {
			console.Reset()
		}
		resetHeld = reset
		if err := console.StepFrame(); err != nil {
			return err
		}
		// If PPU prepared an image to render, OpenGL updates a 2D texture.
		if frame, ok := console.Frame(); ok {
			updateTexture(program, frame)
			window.SwapBuffers()
		}
	}
	return nil
}

// Start is the main entrypoint.
func Start(console nes.Emulator, width int, height int) error {
	err := glfw.Init()
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, "JNES", nil, nil)
	if err != nil {
		return err
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return err
	}
	program, err := newProgram()
	if err != nil {
		return err
	}
	a := newAudio()
	if err := a.start(); err != nil {
		glog.Warningf("Audio disabled: %v", err)
	} else {
		defer a.terminate()
		console.SetAudioOut(a.channel)
	}
	return mainLoop(window, console, program)
}
