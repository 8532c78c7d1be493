package nes

import "github.com/golang/glog"

// Mapper2: https://www.nesdev.org/wiki/UxROM
type mapper2 struct {
	banks       int
	currentBank int
	mirror      MirrorMode
}

func newMapper2(c *Cartridge) *mapper2 {
	return &mapper2{banks: len(c.prgROM) / prgROMSizeUnit, mirror: c.mirror}
}

func (m *mapper2) MapCPUAddress(address uint16) (target, int) {
	switch {
	case 0xC000 <= address:
		// CPU $C000-$FFFF: 16 KB PRG ROM bank, fixed to the last bank
		return targetPRGROM, (m.banks-1)*prgROMSizeUnit + int(address-0xC000)
	case 0x8000 <= address:
		// CPU $8000-$BFFF: 16 KB switchable PRG ROM bank
		return targetPRGROM, m.currentBank*prgROMSizeUnit + int(address-0x8000)
	}
	return prgRAMWindow(address)
}

func (m *mapper2) MapPPUAddress(address uint16) (target, int) {
	return targetCHR, int(address)
}

func (m *mapper2) OnCPUWrite(address uint16, data byte) {
	m.currentBank = int(data) % m.banks
	glog.V(2).Infof("UxROM: PRG bank=%d", m.currentBank)
}

func (m *mapper2) Mirroring() MirrorMode {
	return m.mirror
}
