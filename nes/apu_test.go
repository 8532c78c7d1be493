package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// stepAPU runs the APU for about a 4-step frame sequence.
func stepAPU(a *APU, cycles int) {
	for i := 0; i < cycles; i++ {
		a.Step()
	}
}

func TestAPULengthStatus(t *testing.T) {
	a := NewAPU()
	a.writeRegister(0x4003, 0x08) // disabled, ignored
	assert.Equal(t, byte(0), a.readStatus()&0x0F)

	a.writeRegister(0x4015, 0x0F)
	a.writeRegister(0x4003, 0x08)
	a.writeRegister(0x400B, 0x08)
	assert.Equal(t, byte(0x05), a.readStatus()&0x0F)

	a.writeRegister(0x4015, 0x04)
	assert.Equal(t, byte(0x04), a.readStatus()&0x0F)
}

func TestAPULengthCounter(t *testing.T) {
	a := NewAPU()
	a.writeRegister(0x4015, 0x01)
	a.writeRegister(0x4000, 0x00) // length counter enabled
	a.writeRegister(0x4003, 0x18) // length 2
	assert.Equal(t, byte(0x01), a.readStatus()&0x01)
	stepAPU(a, 30000)
	assert.Equal(t, byte(0x00), a.readStatus()&0x01)

	// Halted counters keep their value.
	a.writeRegister(0x4000, 0x20)
	a.writeRegister(0x4003, 0x18)
	stepAPU(a, 30000)
	assert.Equal(t, byte(0x01), a.readStatus()&0x01)
}

func TestAPUFrameIRQ(t *testing.T) {
	tests := []struct {
		name         string
		frameCounter byte
		want         bool
	}{
		{"4-step", 0x00, true},
		{"inhibited", 0x40, false},
		{"5-step", 0x80, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAPU()
			a.writeRegister(0x4017, tt.frameCounter)
			stepAPU(a, 30000)
			if got := a.irq(); got != tt.want {
				t.Fatalf("irq: got=%t, want=%t", got, tt.want)
			}
			if tt.want {
				assert.Equal(t, byte(0x40), a.readStatus()&0x40)
				assert.False(t, a.irq(), "reading $4015 acknowledges")
			}
		})
	}
}

func TestAPUSamplesAreNonBlocking(t *testing.T) {
	a := NewAPU()
	out := make(chan float32, 2)
	a.SetAudioOut(out)
	stepAPU(a, 1000)
	assert.Len(t, out, 2)
}
