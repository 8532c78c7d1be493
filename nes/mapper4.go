package nes

import "github.com/golang/glog"

// Mapper4: https://www.nesdev.org/wiki/MMC3
// 8 KB PRG banks, 1 KB CHR banks and a scanline counter raising IRQ.
type mapper4 struct {
	prgBanks int // in 8 KB units
	chrBanks int // in 1 KB units

	bankSelect byte
	registers  [8]byte
	mirror     MirrorMode
	fourScreen bool
	ramEnabled bool

	irqLatch   byte
	irqCounter byte
	irqReload  bool
	irqEnabled bool
	irqPending bool
}

func newMapper4(c *Cartridge) *mapper4 {
	return &mapper4{
		prgBanks:   len(c.prgROM) / 0x2000,
		chrBanks:   len(c.chr) / 0x0400,
		mirror:     c.mirror,
		fourScreen: c.mirror == MirrorFourScreen,
		ramEnabled: true,
	}
}

func (m *mapper4) prgBank(n int) int {
	if n < 0 {
		n += m.prgBanks
	}
	return (n % m.prgBanks) * 0x2000
}

func (m *mapper4) MapCPUAddress(address uint16) (target, int) {
	if address < 0x8000 {
		if !m.ramEnabled {
			return targetNone, 0
		}
		return prgRAMWindow(address)
	}
	offset := int(address & 0x1FFF)
	swapped := m.bankSelect&0x40 != 0
	var base int
	switch {
	case address < 0xA000:
		if swapped {
			base = m.prgBank(-2)
		} else {
			base = m.prgBank(int(m.registers[6]))
		}
	case address < 0xC000:
		base = m.prgBank(int(m.registers[7]))
	case address < 0xE000:
		if swapped {
			base = m.prgBank(int(m.registers[6]))
		} else {
			base = m.prgBank(-2)
		}
	default:
		base = m.prgBank(-1)
	}
	return targetPRGROM, base + offset
}

func (m *mapper4) MapPPUAddress(address uint16) (target, int) {
	if m.bankSelect&0x80 != 0 {
		address ^= 0x1000
	}
	var bank int
	switch slot := address >> 10; slot {
	case 0, 1:
		bank = int(m.registers[0]&^1) + int(slot)
	case 2, 3:
		bank = int(m.registers[1]&^1) + int(slot-2)
	default:
		bank = int(m.registers[slot-2])
	}
	return targetCHR, (bank%m.chrBanks)*0x0400 + int(address&0x03FF)
}

func (m *mapper4) OnCPUWrite(address uint16, data byte) {
	even := address&1 == 0
	switch {
	case address < 0xA000 && even:
		m.bankSelect = data
	case address < 0xA000:
		m.registers[m.bankSelect&0x07] = data
		glog.V(2).Infof("MMC3: R%d=0x%02x", m.bankSelect&0x07, data)
	case address < 0xC000 && even:
		if m.fourScreen {
			return
		}
		if data&1 == 0 {
			m.mirror = MirrorVertical
		} else {
			m.mirror = MirrorHorizontal
		}
	case address < 0xC000:
		// Write protection (bit 6) is not emulated.
		m.ramEnabled = data&0x80 != 0
	case address < 0xE000 && even:
		m.irqLatch = data
	case address < 0xE000:
		m.irqCounter = 0
		m.irqReload = true
	case even:
		m.irqEnabled = false
		m.irqPending = false
	default:
		m.irqEnabled = true
	}
}

func (m *mapper4) Mirroring() MirrorMode {
	return m.mirror
}

// clockScanline is called by the PPU once per rendered scanline.
func (m *mapper4) clockScanline() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

// IRQ reports the level of the IRQ line.
func (m *mapper4) IRQ() bool {
	return m.irqPending
}
