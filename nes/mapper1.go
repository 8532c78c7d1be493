package nes

import "github.com/golang/glog"

// Mapper1: https://www.nesdev.org/wiki/MMC1
// Registers are loaded serially, one bit per write, through a 5 bit shift register.
type mapper1 struct {
	prgBanks int // in 16 KB units
	chrBanks int // in 4 KB units

	shift   byte
	control byte
	chr0    byte
	chr1    byte
	prg     byte
}

const mmc1ShiftReset = 0x10

func newMapper1(c *Cartridge) *mapper1 {
	m := &mapper1{
		prgBanks: len(c.prgROM) / prgROMSizeUnit,
		chrBanks: len(c.chr) / 0x1000,
		shift:    mmc1ShiftReset,
		control:  0x0C,
	}
	return m
}

func (m *mapper1) prgMode() byte {
	return (m.control >> 2) & 0x03
}

func (m *mapper1) MapCPUAddress(address uint16) (target, int) {
	if address < 0x8000 {
		if m.prg&0x10 != 0 {
			return targetNone, 0
		}
		return prgRAMWindow(address)
	}
	bank := int(m.prg & 0x0F)
	offset := int(address & 0x3FFF)
	high := address >= 0xC000
	switch m.prgMode() {
	case 0, 1:
		// 32 KB mode, the low bit of the bank number is ignored.
		bank &^= 1
		if high {
			bank++
		}
	case 2:
		if !high {
			bank = 0
		}
	case 3:
		if high {
			bank = m.prgBanks - 1
		}
	}
	return targetPRGROM, (bank%m.prgBanks)*prgROMSizeUnit + offset
}

func (m *mapper1) MapPPUAddress(address uint16) (target, int) {
	var bank int
	if m.control&0x10 == 0 {
		// 8 KB mode
		bank = int(m.chr0&^1) + int(address>>12)
	} else if address < 0x1000 {
		bank = int(m.chr0)
	} else {
		bank = int(m.chr1)
	}
	return targetCHR, (bank%m.chrBanks)*0x1000 + int(address&0x0FFF)
}

func (m *mapper1) OnCPUWrite(address uint16, data byte) {
	if data&0x80 != 0 {
		m.shift = mmc1ShiftReset
		m.control |= 0x0C
		return
	}
	complete := m.shift&1 == 1
	m.shift = m.shift>>1 | (data&1)<<4
	if !complete {
		return
	}
	value := m.shift
	m.shift = mmc1ShiftReset
	switch {
	case address < 0xA000:
		m.control = value
	case address < 0xC000:
		m.chr0 = value
	case address < 0xE000:
		m.chr1 = value
	default:
		m.prg = value
	}
	glog.V(2).Infof("MMC1: control=0x%02x, chr0=0x%02x, chr1=0x%02x, prg=0x%02x", m.control, m.chr0, m.chr1, m.prg)
}

func (m *mapper1) Mirroring() MirrorMode {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleLower
	case 1:
		return MirrorSingleUpper
	case 2:
		return MirrorVertical
	}
	return MirrorHorizontal
}
