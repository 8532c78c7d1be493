package nes

import "testing"

// testROM describes an iNES image built in memory.
type testROM struct {
	mapper   byte
	prgBanks int // 16 KB units
	chrBanks int // 8 KB units
	flags6   byte
	flags8   byte
}

// build returns the image, fill can write PRG and CHR contents first.
func (r testROM) build(fill func(prg, chr []byte)) []byte {
	header := []byte{
		'N', 'E', 'S', 0x1A,
		byte(r.prgBanks), byte(r.chrBanks),
		r.mapper<<4 | r.flags6&0x0F, r.mapper & 0xF0, r.flags8,
		0, 0, 0, 0, 0, 0, 0,
	}
	prg := make([]byte, r.prgBanks*prgROMSizeUnit)
	chr := make([]byte, r.chrBanks*chrROMSizeUnit)
	if fill != nil {
		fill(prg, chr)
	}
	buf := append([]byte{}, header...)
	if r.flags6&0x04 != 0 {
		buf = append(buf, make([]byte, trainerSizeBytes)...)
	}
	buf = append(buf, prg...)
	return append(buf, chr...)
}

// Vectors of consoles made by newTestConsole. Both handlers are a single RTI and sit
// past the JMP at testSledEnd, so running off the end of a program never reaches them.
const (
	testResetVector uint16 = 0x8000
	testSledEnd     uint16 = 0xBEFD
	testNMIHandler  uint16 = 0xBF00
	testIRQHandler  uint16 = 0xBF10
)

// newTestConsole loads program at $8000 of an NROM-128 cartridge whose other bytes are NOPs
// up to testSledEnd, which jumps back to $8000.
func newTestConsole(t *testing.T, program ...byte) *Console {
	t.Helper()
	rom := testROM{prgBanks: 1, chrBanks: 1}.build(func(prg, chr []byte) {
		for i := range prg {
			prg[i] = 0xEA
		}
		copy(prg, program)
		prg[testSledEnd&0x3FFF] = 0x4C
		prg[testSledEnd&0x3FFF+1] = byte(testResetVector & 0xFF)
		prg[testSledEnd&0x3FFF+2] = byte(testResetVector >> 8)
		prg[testNMIHandler&0x3FFF] = 0x40
		prg[testIRQHandler&0x3FFF] = 0x40
		putVector(prg, nmiVector, testNMIHandler)
		putVector(prg, resetVector, testResetVector)
		putVector(prg, irqVector, testIRQHandler)
	})
	c, err := NewConsole(rom)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	return c
}

// putVector writes a little endian address into a 16 KB bank mapped at $C000-$FFFF.
func putVector(prg []byte, vector, address uint16) {
	prg[vector&0x3FFF] = byte(address)
	prg[(vector+1)&0x3FFF] = byte(address >> 8)
}

// stepN executes n instructions and returns the cycles they took.
func stepN(t *testing.T, c *Console, n int) int {
	t.Helper()
	total := 0
	for i := 0; i < n; i++ {
		cycles, err := c.Step()
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		total += cycles
	}
	return total
}
