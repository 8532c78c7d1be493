package nes

// target tells which cartridge memory a mapped address lands in.
type target int

const (
	targetNone target = iota
	targetPRGROM
	targetPRGRAM
	targetCHR
)

// Mapper translates CPU and PPU addresses into offsets of the cartridge memories.
// MapCPUAddress and MapPPUAddress are pure functions of the current bank registers,
// only OnCPUWrite changes them.
// Reference: https://www.nesdev.org/wiki/Mapper
type Mapper interface {
	MapCPUAddress(address uint16) (target, int)
	MapPPUAddress(address uint16) (target, int)
	OnCPUWrite(address uint16, data byte)
	Mirroring() MirrorMode
}

// irqSource is implemented by mappers that count scanlines and drive the IRQ line.
type irqSource interface {
	clockScanline()
	IRQ() bool
}

// NewMapper creates the mapper declared by the cartridge header and attaches it to the cartridge.
func NewMapper(c *Cartridge) (Mapper, error) {
	var m Mapper
	switch c.mapperID {
	case 0:
		m = newMapper0(c)
	case 1:
		m = newMapper1(c)
	case 2:
		m = newMapper2(c)
	case 3:
		m = newMapper3(c)
	case 4:
		m = newMapper4(c)
	case 7:
		m = newMapper7(c)
	default:
		return nil, &UnsupportedMapperError{ID: c.mapperID}
	}
	c.mapper = m
	return m, nil
}

// prgRAMWindow maps $6000-$7FFF, which most boards wire to 8KB of PRG RAM.
func prgRAMWindow(address uint16) (target, int) {
	if 0x6000 <= address && address < 0x8000 {
		return targetPRGRAM, int(address - 0x6000)
	}
	return targetNone, 0
}
