package nes

// Mapper7: https://www.nesdev.org/wiki/AxROM
// A single register selects a 32 KB PRG bank and which nametable fills the screen.
type mapper7 struct {
	banks   int
	prgBank int
	mirror  MirrorMode
}

func newMapper7(c *Cartridge) *mapper7 {
	banks := len(c.prgROM) / (2 * prgROMSizeUnit)
	if banks == 0 {
		banks = 1
	}
	return &mapper7{banks: banks, mirror: MirrorSingleLower}
}

func (m *mapper7) MapCPUAddress(address uint16) (target, int) {
	if 0x8000 <= address {
		return targetPRGROM, m.prgBank*2*prgROMSizeUnit + int(address-0x8000)
	}
	return targetNone, 0
}

func (m *mapper7) MapPPUAddress(address uint16) (target, int) {
	return targetCHR, int(address)
}

func (m *mapper7) OnCPUWrite(address uint16, data byte) {
	m.prgBank = int(data&0x07) % m.banks
	if data&0x10 != 0 {
		m.mirror = MirrorSingleUpper
	} else {
		m.mirror = MirrorSingleLower
	}
}

func (m *mapper7) Mirroring() MirrorMode {
	return m.mirror
}
