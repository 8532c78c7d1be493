package nes

// Mapper3: https://www.nesdev.org/wiki/CNROM
// PRG is fixed like NROM, writes to $8000-$FFFF select an 8 KB CHR bank.
type mapper3 struct {
	prgSize  int
	chrBank  int
	chrBanks int
	mirror   MirrorMode
}

func newMapper3(c *Cartridge) *mapper3 {
	m := &mapper3{
		prgSize:  len(c.prgROM),
		chrBanks: len(c.chr) / chrROMSizeUnit,
		mirror:   c.mirror,
	}
	if m.chrBanks == 0 {
		m.chrBanks = 1
	}
	return m
}

func (m *mapper3) MapCPUAddress(address uint16) (target, int) {
	if 0x8000 <= address {
		return targetPRGROM, int(address-0x8000) % m.prgSize
	}
	return prgRAMWindow(address)
}

func (m *mapper3) MapPPUAddress(address uint16) (target, int) {
	return targetCHR, m.chrBank*chrROMSizeUnit + int(address)
}

func (m *mapper3) OnCPUWrite(address uint16, data byte) {
	m.chrBank = int(data) % m.chrBanks
}

func (m *mapper3) Mirroring() MirrorMode {
	return m.mirror
}
