package nes

import (
	"github.com/golang/glog"
)

const (
	oamDMACycles = 513
	oamDMAPage   = 256
)

// CPUBus is the 16 bit address space of the CPU, every address resolves to exactly one device.
// It owns the PPU and the APU and steps them by the CPU cycles it is ticked with.
type CPUBus struct {
	wram        *RAM
	ppu         *PPU
	apu         *APU
	cartridge   *Cartridge
	controllers [2]*Controller

	// cycles counts CPU cycles ticked so far, the parity decides the OAM DMA length.
	cycles    uint64
	dmaCycles int
}

// NewCPUBus creates a new Bus for CPU.
// CPU memory map
// 0x0000 - 0x07FF	WRAM
// 0x0800 - 0x1FFF	WRAM Mirror
// 0x2000 - 0x2007	PPU Registers
// 0x2008 - 0x3FFF	PPU Registers Mirror
// 0x4000 - 0x4013	APU Registers
// 0x4014         	OAM DMA
// 0x4015         	APU Status
// 0x4016 - 0x4017	Controllers (0x4017 write goes to APU frame counter)
// 0x4018 - 0x401F	Disabled test registers
// 0x4020 - 0xFFFF	Cartridge (PRG RAM, PRG ROM and mapper registers)
func NewCPUBus(wram *RAM, ppu *PPU, apu *APU, cartridge *Cartridge, controllers [2]*Controller) *CPUBus {
	return &CPUBus{
		wram:        wram,
		ppu:         ppu,
		apu:         apu,
		cartridge:   cartridge,
		controllers: controllers,
	}
}

// read reads a byte.
func (b *CPUBus) read(address uint16) byte {
	switch {
	case address < 0x2000:
		return b.wram.read(address & 0x07FF)
	case address < 0x4000:
		return b.ppu.readRegister(0x2000 | address&0x0007)
	case address == 0x4015:
		return b.apu.readStatus()
	case address == 0x4016: // 1P
		return b.controllers[0].read() | 0x40
	case address == 0x4017: // 2P
		return b.controllers[1].read() | 0x40
	case address < 0x4020:
		glog.V(2).Infof("Open bus read: address=0x%04x", address)
		return byte(address >> 8)
	}
	data, ok := b.cartridge.ReadFromCPU(address)
	if !ok {
		return byte(address >> 8)
	}
	return data
}

// read16 reads 2 bytes, little endian.
func (b *CPUBus) read16(address uint16) uint16 {
	l := b.read(address)
	h := b.read(address + 1)
	return uint16(h)<<8 | uint16(l)
}

// write writes a byte.
func (b *CPUBus) write(address uint16, data byte) {
	switch {
	case address < 0x2000:
		b.wram.write(address&0x07FF, data)
	case address < 0x4000:
		b.ppu.writeRegister(0x2000|address&0x0007, data)
	case address == 0x4014:
		b.oamDMA(data)
	case address == 0x4016:
		b.controllers[0].write(data)
		b.controllers[1].write(data)
	case address < 0x4018:
		b.apu.writeRegister(address, data)
	case address < 0x4020:
		glog.V(2).Infof("Ignored write: address=0x%04x, data=0x%02x", address, data)
	default:
		b.cartridge.WriteFromCPU(address, data)
	}
}

// oamDMA copies page $XX00-$XXFF into OAM. The CPU is suspended for 513 cycles, 514 on an odd cycle.
// Reference: https://www.nesdev.org/wiki/PPU_registers#OAMDMA
func (b *CPUBus) oamDMA(page byte) {
	var data [oamDMAPage]byte
	base := uint16(page) << 8
	for i := 0; i < oamDMAPage; i++ {
		data[i] = b.read(base + uint16(i))
	}
	b.ppu.writeOAMDMA(&data)
	b.dmaCycles = oamDMACycles
	if b.cycles%2 == 1 {
		b.dmaCycles++
	}
}

// takeDMACycles returns the cycles the last OAM DMA stalled the CPU for, and forgets them.
func (b *CPUBus) takeDMACycles() int {
	n := b.dmaCycles
	b.dmaCycles = 0
	return n
}

// tick advances the PPU by cpuCycles*3 dots and the APU by cpuCycles,
// returns whether an NMI became pending in the meantime.
func (b *CPUBus) tick(cpuCycles int) bool {
	nmi := false
	for i := 0; i < cpuCycles; i++ {
		for j := 0; j < 3; j++ {
			if b.ppu.Step() {
				nmi = true
			}
		}
		b.apu.Step()
	}
	b.cycles += uint64(cpuCycles)
	return nmi
}

// irq reports the level of the shared IRQ line.
func (b *CPUBus) irq() bool {
	if s, ok := b.cartridge.mapper.(irqSource); ok && s.IRQ() {
		return true
	}
	return b.apu.irq()
}

// peek reads a byte without side effects, registers with read side effects read as 0xFF.
func (b *CPUBus) peek(address uint16) byte {
	switch {
	case address < 0x2000:
		return b.wram.read(address & 0x07FF)
	case address < 0x4020:
		return 0xFF
	}
	data, _ := b.cartridge.ReadFromCPU(address)
	return data
}

func (b *CPUBus) peek16(address uint16) uint16 {
	return uint16(b.peek(address+1))<<8 | uint16(b.peek(address))
}
