package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWRAMMirroring(t *testing.T) {
	c := newTestConsole(t)
	for _, base := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		c.bus.write(base+0x0123, byte(base>>8)+1)
		for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
			if got, want := c.bus.read(mirror+0x0123), byte(base>>8)+1; got != want {
				t.Fatalf("read(0x%04x) after write(0x%04x): got=0x%02x, want=0x%02x",
					mirror+0x0123, base+0x0123, got, want)
			}
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	c := newTestConsole(t)
	for k := uint16(0); k < 512; k++ {
		// PPUADDR then PPUDATA through the k-th mirror, the same VRAM cell every time.
		c.bus.write(0x2006+8*k, 0x20)
		c.bus.write(0x2006+8*k, 0x40)
		c.bus.write(0x2007+8*k, byte(k))
		assert.Equal(t, byte(k), c.ppu.bus.read(0x2040), "mirror %d", k)
		assert.False(t, c.ppu.w, "mirror %d leaves the write latch set", k)
	}
}

func TestOAMDMA(t *testing.T) {
	c := newTestConsole(t,
		0xA9, 0x02, // LDA #$02
		0x8D, 0x14, 0x40, // STA $4014
	)
	for i := 0; i < 256; i++ {
		c.bus.write(0x0200+uint16(i), byte(i))
	}
	c.bus.write(0x2003, 0x10) // OAMADDR

	stepN(t, c, 1)
	odd := c.bus.cycles%2 == 1
	cycles := stepN(t, c, 1)
	want := 4 + oamDMACycles
	if odd {
		want++
	}
	if cycles != want {
		t.Fatalf("STA $4014 cycles: got=%d, want=%d", cycles, want)
	}
	for i := 0; i < 256; i++ {
		if got, want := c.ppu.oamData[byte(0x10+i)], byte(i); got != want {
			t.Fatalf("oam[0x%02x]: got=0x%02x, want=0x%02x", byte(0x10+i), got, want)
		}
	}
}

func TestOAMDMAParity(t *testing.T) {
	c := newTestConsole(t)
	c.bus.cycles = 10
	c.bus.write(0x4014, 0x02)
	assert.Equal(t, 513, c.bus.takeDMACycles())
	c.bus.cycles = 11
	c.bus.write(0x4014, 0x02)
	assert.Equal(t, 514, c.bus.takeDMACycles())
	assert.Equal(t, 0, c.bus.takeDMACycles())
}

func TestTickSteps3DotsPerCycle(t *testing.T) {
	c := newTestConsole(t)
	before := c.ppu.scanline*dotsPerScanline + c.ppu.cycle
	c.bus.tick(100)
	after := c.ppu.scanline*dotsPerScanline + c.ppu.cycle
	assert.Equal(t, 300, after-before)
}

func TestPeekHasNoSideEffects(t *testing.T) {
	c := newTestConsole(t)
	c.ppu.status |= statusVBlank
	c.ppu.w = true
	c.bus.peek(0x2002)
	assert.NotZero(t, c.ppu.status&statusVBlank)
	assert.True(t, c.ppu.w)
	assert.Equal(t, byte(0xEA), c.bus.peek(0x8010))
	assert.Equal(t, testResetVector, c.bus.peek16(resetVector))
}

func TestControllerPorts(t *testing.T) {
	c := newTestConsole(t)
	c.SetButtons(0, [8]bool{ButtonA: true, ButtonStart: true})
	c.SetButtons(1, [8]bool{ButtonB: true})
	c.bus.write(0x4016, 1)
	c.bus.write(0x4016, 0)
	var p1, p2 [8]byte
	for i := range p1 {
		p1[i] = c.bus.read(0x4016)
		p2[i] = c.bus.read(0x4017)
	}
	assert.Equal(t, [8]byte{0x41, 0x40, 0x40, 0x41, 0x40, 0x40, 0x40, 0x40}, p1)
	assert.Equal(t, [8]byte{0x40, 0x41, 0x40, 0x40, 0x40, 0x40, 0x40, 0x40}, p2)
	assert.Equal(t, byte(0x41), c.bus.read(0x4016))
}
