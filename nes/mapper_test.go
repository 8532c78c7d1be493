package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBankedCartridge stamps the number of every PRG and CHR bank into its first byte.
func newBankedCartridge(t *testing.T, r testROM, prgBankSize, chrBankSize int) *Cartridge {
	t.Helper()
	rom := r.build(func(prg, chr []byte) {
		for i := 0; i < len(prg); i += prgBankSize {
			prg[i] = byte(i / prgBankSize)
		}
		for i := 0; i < len(chr); i += chrBankSize {
			chr[i] = byte(i / chrBankSize)
		}
	})
	c, err := NewCartridge(rom)
	require.NoError(t, err)
	_, err = NewMapper(c)
	require.NoError(t, err)
	return c
}

func readPRG(c *Cartridge, address uint16) byte {
	data, _ := c.ReadFromCPU(address)
	return data
}

func TestMapper0Mirrors16KB(t *testing.T) {
	c := newBankedCartridge(t, testROM{prgBanks: 1, chrBanks: 1}, prgROMSizeUnit, chrROMSizeUnit)
	c.prgROM[0x0010] = 0x77
	assert.Equal(t, byte(0x77), readPRG(c, 0x8010))
	assert.Equal(t, byte(0x77), readPRG(c, 0xC010))
	_, ok := c.ReadFromCPU(0x5000)
	assert.False(t, ok)
}

// mmc1Write loads a register through the serial port, low bit first.
func mmc1Write(c *Cartridge, address uint16, value byte) {
	for i := 0; i < 5; i++ {
		c.WriteFromCPU(address, (value>>i)&1)
	}
}

func TestMapper1(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 1, prgBanks: 4, chrBanks: 2}, prgROMSizeUnit, 0x1000)
	// Power on: PRG mode 3, last bank fixed at $C000.
	assert.Equal(t, byte(0), readPRG(c, 0x8000))
	assert.Equal(t, byte(3), readPRG(c, 0xC000))

	mmc1Write(c, 0xE000, 2)
	assert.Equal(t, byte(2), readPRG(c, 0x8000))
	assert.Equal(t, byte(3), readPRG(c, 0xC000))

	// PRG mode 2: first bank fixed at $8000, vertical mirroring, 4 KB CHR.
	mmc1Write(c, 0x8000, 0x1A)
	assert.Equal(t, MirrorVertical, c.Mirroring())
	assert.Equal(t, byte(0), readPRG(c, 0x8000))
	assert.Equal(t, byte(2), readPRG(c, 0xC000))

	mmc1Write(c, 0xA000, 3)
	mmc1Write(c, 0xC000, 1)
	assert.Equal(t, byte(3), c.ReadFromPPU(0x0000))
	assert.Equal(t, byte(1), c.ReadFromPPU(0x1000))

	// 32 KB mode ignores the low bit of the PRG bank.
	mmc1Write(c, 0x8000, 0x00)
	mmc1Write(c, 0xE000, 3)
	assert.Equal(t, byte(2), readPRG(c, 0x8000))
	assert.Equal(t, byte(3), readPRG(c, 0xC000))
	assert.Equal(t, MirrorSingleLower, c.Mirroring())
}

func TestMapper1ResetBit(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 1, prgBanks: 4, chrBanks: 2}, prgROMSizeUnit, 0x1000)
	c.WriteFromCPU(0xE000, 1)
	c.WriteFromCPU(0xE000, 1)
	c.WriteFromCPU(0xE000, 0x80) // drops the two bits above
	mmc1Write(c, 0xE000, 1)
	assert.Equal(t, byte(1), readPRG(c, 0x8000))
}

func TestMapper2(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 2, prgBanks: 4}, prgROMSizeUnit, chrROMSizeUnit)
	assert.Equal(t, byte(0), readPRG(c, 0x8000))
	assert.Equal(t, byte(3), readPRG(c, 0xC000))
	c.WriteFromCPU(0x8000, 2)
	assert.Equal(t, byte(2), readPRG(c, 0x8000))
	assert.Equal(t, byte(3), readPRG(c, 0xC000))
	// CHR RAM.
	c.WriteFromPPU(0x0100, 0xAB)
	assert.Equal(t, byte(0xAB), c.ReadFromPPU(0x0100))
}

func TestMapper3(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 3, prgBanks: 2, chrBanks: 4}, prgROMSizeUnit, chrROMSizeUnit)
	assert.Equal(t, byte(0), c.ReadFromPPU(0x0000))
	c.WriteFromCPU(0x8000, 2)
	assert.Equal(t, byte(2), c.ReadFromPPU(0x0000))
	c.WriteFromCPU(0xFFFF, 5)
	assert.Equal(t, byte(1), c.ReadFromPPU(0x0000))
	assert.Equal(t, byte(1), readPRG(c, 0xC000))
}

func TestMapper4PRGBanks(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 4, prgBanks: 4, chrBanks: 1}, 0x2000, 0x0400)
	assert.Equal(t, byte(6), readPRG(c, 0xC000))
	assert.Equal(t, byte(7), readPRG(c, 0xE000))

	c.WriteFromCPU(0x8000, 6)
	c.WriteFromCPU(0x8001, 3)
	c.WriteFromCPU(0x8000, 7)
	c.WriteFromCPU(0x8001, 4)
	assert.Equal(t, byte(3), readPRG(c, 0x8000))
	assert.Equal(t, byte(4), readPRG(c, 0xA000))

	// PRG mode 1 swaps $8000 and $C000.
	c.WriteFromCPU(0x8000, 0x40)
	assert.Equal(t, byte(6), readPRG(c, 0x8000))
	assert.Equal(t, byte(3), readPRG(c, 0xC000))
	assert.Equal(t, byte(7), readPRG(c, 0xE000))
}

func TestMapper4CHRBanks(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 4, prgBanks: 4, chrBanks: 1}, 0x2000, 0x0400)
	c.WriteFromCPU(0x8000, 0) // R0, 2 KB
	c.WriteFromCPU(0x8001, 5)
	c.WriteFromCPU(0x8000, 2) // R2, 1 KB
	c.WriteFromCPU(0x8001, 7)
	assert.Equal(t, byte(4), c.ReadFromPPU(0x0000))
	assert.Equal(t, byte(5), c.ReadFromPPU(0x0400))
	assert.Equal(t, byte(7), c.ReadFromPPU(0x1000))

	// CHR inversion swaps the halves.
	c.WriteFromCPU(0x8000, 0x80)
	assert.Equal(t, byte(7), c.ReadFromPPU(0x0000))
	assert.Equal(t, byte(4), c.ReadFromPPU(0x1000))
}

func TestMapper4Mirroring(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 4, prgBanks: 4, chrBanks: 1}, 0x2000, 0x0400)
	c.WriteFromCPU(0xA000, 1)
	assert.Equal(t, MirrorHorizontal, c.Mirroring())
	c.WriteFromCPU(0xA000, 0)
	assert.Equal(t, MirrorVertical, c.Mirroring())
}

func TestMapper4IRQCounter(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 4, prgBanks: 4, chrBanks: 1}, 0x2000, 0x0400)
	m := c.mapper.(*mapper4)
	c.WriteFromCPU(0xC000, 3) // latch
	c.WriteFromCPU(0xC001, 0) // reload
	c.WriteFromCPU(0xE001, 0) // enable
	for i := 0; i < 3; i++ {
		m.clockScanline()
		assert.False(t, m.IRQ(), "after %d scanlines", i+1)
	}
	m.clockScanline()
	assert.True(t, m.IRQ())
	// Disabling acknowledges.
	c.WriteFromCPU(0xE000, 0)
	assert.False(t, m.IRQ())
}

func TestMapper4IRQFromPPU(t *testing.T) {
	rom := testROM{mapper: 4, prgBanks: 4, chrBanks: 1}.build(nil)
	c, err := NewConsole(rom)
	require.NoError(t, err)
	c.bus.write(0xC000, 10)
	c.bus.write(0xC001, 0)
	c.bus.write(0xE001, 0)
	c.ppu.writeRegister(0x2001, maskBackground)
	// The counter is clocked at dot 260 of every rendering line, starting on line 0.
	stepPPUTo(t, c.ppu, 10, 259)
	assert.False(t, c.bus.irq())
	stepPPUTo(t, c.ppu, 10, 261)
	assert.True(t, c.bus.irq())
}

func TestMapper7(t *testing.T) {
	c := newBankedCartridge(t, testROM{mapper: 7, prgBanks: 8}, 2*prgROMSizeUnit, chrROMSizeUnit)
	assert.Equal(t, MirrorSingleLower, c.Mirroring())
	c.WriteFromCPU(0x8000, 0x12)
	assert.Equal(t, byte(2), readPRG(c, 0x8000))
	assert.Equal(t, MirrorSingleUpper, c.Mirroring())
	c.WriteFromCPU(0x8000, 0x03)
	assert.Equal(t, byte(3), readPRG(c, 0x8000))
	assert.Equal(t, MirrorSingleLower, c.Mirroring())
}
