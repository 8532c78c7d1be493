package nes

// Mapper0: https://www.nesdev.org/wiki/NROM
type mapper0 struct {
	prgSize int
	mirror  MirrorMode
}

func newMapper0(c *Cartridge) *mapper0 {
	return &mapper0{prgSize: len(c.prgROM), mirror: c.mirror}
}

func (m *mapper0) MapCPUAddress(address uint16) (target, int) {
	if 0x8000 <= address {
		// CPU $C000-$FFFF: Last 16 KB of ROM (NROM-256) or mirror of $8000-$BFFF (NROM-128).
		return targetPRGROM, int(address-0x8000) % m.prgSize
	}
	return prgRAMWindow(address)
}

func (m *mapper0) MapPPUAddress(address uint16) (target, int) {
	return targetCHR, int(address)
}

// OnCPUWrite does nothing, NROM has no registers.
func (m *mapper0) OnCPUWrite(address uint16, data byte) {}

func (m *mapper0) Mirroring() MirrorMode {
	return m.mirror
}
