package nes

import (
	"fmt"
	"image"

	"github.com/golang/glog"
)

// Emulator is what a frontend drives, implemented by Console and DebugConsole.
type Emulator interface {
	// StepFrame runs the emulation until the PPU completes a frame.
	StepFrame() error
	// Frame returns the last complete frame and whether it has not been returned before.
	Frame() (*image.RGBA, bool)
	SetButtons(player int, buttons [8]bool)
	SetAudioOut(c chan float32)
	Reset()
}

// Console owns every NES component and steps them in lockstep.
type Console struct {
	cartridge   *Cartridge
	cpu         *CPU
	ppu         *PPU
	apu         *APU
	bus         *CPUBus
	controllers [2]*Controller

	currentFrame uint64
	lastFrame    uint64
}

// Option configures a Console at construction.
type Option func(*Console)

// WithAudioOut sends the APU samples to c.
func WithAudioOut(c chan float32) Option {
	return func(console *Console) {
		console.apu.SetAudioOut(c)
	}
}

// WithAudioRecorder hands every mono APU sample to f.
func WithAudioRecorder(f func(float32)) Option {
	return func(console *Console) {
		console.apu.SetRecorder(f)
	}
}

// WithSaveRAM restores battery backed PRG RAM.
func WithSaveRAM(data []byte) Option {
	return func(console *Console) {
		console.cartridge.LoadRAM(data)
	}
}

// NewConsole creates a console for the iNES image rom. Malformed images and unsupported
// mappers are reported here, before anything runs.
func NewConsole(rom []byte, opts ...Option) (*Console, error) {
	cartridge, err := NewCartridge(rom)
	if err != nil {
		return nil, err
	}
	if _, err := NewMapper(cartridge); err != nil {
		return nil, err
	}
	vram := NewRAM(vramSize)
	if cartridge.Mirroring() == MirrorFourScreen {
		vram = NewRAM(2 * vramSize)
	}
	ppu := NewPPU(NewPPUBus(vram, cartridge))
	apu := NewAPU()
	controllers := [2]*Controller{NewController(), NewController()}
	bus := NewCPUBus(NewRAM(wramSize), ppu, apu, cartridge, controllers)
	c := &Console{
		cartridge:   cartridge,
		ppu:         ppu,
		apu:         apu,
		bus:         bus,
		controllers: controllers,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cpu = NewCPU(bus)
	// The reset sequence takes 7 CPU cycles, the PPU runs alongside.
	bus.tick(interruptCycles)
	glog.Infof("Console: mapper=%d, mirroring=%v, battery=%t, PC=0x%04x",
		cartridge.Mapper(), cartridge.Mirroring(), cartridge.Battery(), c.cpu.pc)
	return c, nil
}

// Step executes one CPU instruction (or interrupt) and catches the rest of the system up.
func (c *Console) Step() (int, error) {
	cycles, err := c.cpu.Step()
	if err != nil {
		return cycles, fmt.Errorf("cpu step: %w", err)
	}
	if c.bus.tick(cycles) {
		c.cpu.SetNMI()
	}
	c.cpu.SetIRQ(c.bus.irq())
	if _, frame := c.ppu.Frame(); frame != c.currentFrame {
		c.currentFrame = frame
		glog.V(1).Infof("Console: frame %d, CPU cycles=%d", frame, c.cpu.cycles)
	}
	return cycles, nil
}

// StepFrame steps until the PPU completes a frame.
func (c *Console) StepFrame() error {
	frame := c.currentFrame
	for frame == c.currentFrame {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) Frame() (*image.RGBA, bool) {
	buffer, frame := c.ppu.Frame()
	if c.lastFrame < frame {
		c.lastFrame = frame
		return buffer, true
	}
	return buffer, false
}

// SetButtons sets the buttons of player 0 or 1, indexed by the Button constants.
func (c *Console) SetButtons(player int, buttons [8]bool) {
	if player < 0 || player >= len(c.controllers) {
		glog.Warningf("Console: no controller for player %d", player)
		return
	}
	c.controllers[player].Set(buttons)
}

func (c *Console) SetAudioOut(ch chan float32) {
	c.apu.SetAudioOut(ch)
}

func (c *Console) SetAudioRecorder(f func(float32)) {
	c.apu.SetRecorder(f)
}

// Reset presses the reset button, memory keeps its contents.
func (c *Console) Reset() {
	c.ppu.Reset()
	c.cpu.Reset()
	c.bus.cycles = 0
	c.bus.tick(interruptCycles)
	c.currentFrame = 0
	c.lastFrame = 0
}

// SaveRAM returns the battery backed PRG RAM, nil without a battery.
func (c *Console) SaveRAM() []byte {
	if !c.cartridge.Battery() {
		return nil
	}
	return c.cartridge.SaveRAM()
}

// Cartridge returns the loaded cartridge.
func (c *Console) Cartridge() *Cartridge {
	return c.cartridge
}
