package nes

// PPUBus is the 14 bit address space of the PPU.
type PPUBus struct {
	vram       *RAM
	cartridge  *Cartridge
	paletteRAM [32]byte
}

// NewPPUBus creates a new Bus for PPU. The vram holds 2 nametables, or 4 for four-screen boards.
func NewPPUBus(vram *RAM, cartridge *Cartridge) *PPUBus {
	return &PPUBus{vram: vram, cartridge: cartridge}
}

// mirrorAddress resolves a nametable address ($2000-$3EFF) into an offset of the vram.
func (b *PPUBus) mirrorAddress(address uint16) uint16 {
	index := (address - 0x2000) & 0x0FFF
	table := index / 0x0400
	offset := index % 0x0400
	switch b.cartridge.Mirroring() {
	case MirrorHorizontal:
		table >>= 1
	case MirrorVertical:
		table &= 1
	case MirrorSingleLower:
		table = 0
	case MirrorSingleUpper:
		table = 1
	}
	return table*0x0400 + offset
}

// paletteIndex folds the palette mirrors, $3F10/$3F14/$3F18/$3F1C alias the background entries.
func paletteIndex(address uint16) uint16 {
	i := address & 0x1F
	if i >= 0x10 && i%4 == 0 {
		i -= 0x10
	}
	return i
}

// read reads data.
// Address        Size	  Description
// -------------------------------------
// $0000-$0FFF	  $1000	  Pattern table 0
// $1000-$1FFF	  $1000	  Pattern table 1
// $2000-$23FF	  $0400	  Nametable 0
// $2400-$27FF	  $0400	  Nametable 1
// $2800-$2BFF	  $0400	  Nametable 2
// $2C00-$2FFF	  $0400	  Nametable 3
// $3000-$3EFF	  $0F00	  Mirrors of $2000-$2EFF
// $3F00-$3F1F	  $0020	  Palette RAM indexes
// $3F20-$3FFF	  $00E0	  Mirrors of $3F00-$3F1F
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
func (b *PPUBus) read(address uint16) byte {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return b.cartridge.ReadFromPPU(address)
	case address < 0x3F00:
		return b.vram.read(b.mirrorAddress(address))
	default:
		return b.paletteRAM[paletteIndex(address)]
	}
}

// write writes data.
func (b *PPUBus) write(address uint16, data byte) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		b.cartridge.WriteFromPPU(address, data)
	case address < 0x3F00:
		b.vram.write(b.mirrorAddress(address), data)
	default:
		b.paletteRAM[paletteIndex(address)] = data & 0x3F
	}
}
