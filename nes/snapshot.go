package nes

import "fmt"

// CPUState is a copy of the CPU registers.
type CPUState struct {
	PC     uint16
	A      byte
	X      byte
	Y      byte
	S      byte
	P      byte
	Cycles uint64
}

func (s CPUState) String() string {
	var p status
	p.decodeFrom(s.P)
	return fmt.Sprintf("PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, P=0x%02x (%s), CYC=%d",
		s.PC, s.A, s.X, s.Y, s.S, s.P, p.String(), s.Cycles)
}

// PPUState is a copy of the PPU registers and its position in the frame.
type PPUState struct {
	Scanline int
	Dot      int
	Frame    uint64
	Ctrl     byte
	Mask     byte
	Status   byte
	OAMAddr  byte
	V        uint16
	T        uint16
	FineX    byte
	W        bool
}

func (s PPUState) String() string {
	return fmt.Sprintf("scanline=%d, dot=%d, frame=%d, ctrl=0x%02x, mask=0x%02x, status=0x%02x, oamaddr=0x%02x, v=0x%04x, t=0x%04x, x=%d, w=%t",
		s.Scanline, s.Dot, s.Frame, s.Ctrl, s.Mask, s.Status, s.OAMAddr, s.V, s.T, s.FineX, s.W)
}

// Snapshot is a read-only view of the console, taking one has no side effects.
type Snapshot struct {
	CPU CPUState
	PPU PPUState
}

func (s Snapshot) String() string {
	return "CPU: " + s.CPU.String() + "\nPPU: " + s.PPU.String()
}

func (c *CPU) snapshot() CPUState {
	return CPUState{
		PC:     c.pc,
		A:      c.a,
		X:      c.x,
		Y:      c.y,
		S:      c.s,
		P:      c.p.encode(),
		Cycles: c.cycles,
	}
}

func (p *PPU) snapshot() PPUState {
	return PPUState{
		Scanline: p.scanline,
		Dot:      p.cycle,
		Frame:    p.frame,
		Ctrl:     p.ctrl,
		Mask:     p.mask,
		Status:   p.status,
		OAMAddr:  p.oamAddr,
		V:        p.v,
		T:        p.t,
		FineX:    p.x,
		W:        p.w,
	}
}

// Snapshot copies the CPU and PPU state.
func (c *Console) Snapshot() Snapshot {
	return Snapshot{CPU: c.cpu.snapshot(), PPU: c.ppu.snapshot()}
}
