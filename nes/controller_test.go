package nes

import "testing"

func TestControllerSerialRead(t *testing.T) {
	c := NewController()
	c.Set([8]bool{ButtonA: true, ButtonSelect: true, ButtonDown: true, ButtonRight: true})
	c.write(1)
	c.write(0)
	want := []byte{1, 0, 1, 0, 0, 1, 0, 1, 1, 1}
	for i, w := range want {
		if got := c.read(); got != w {
			t.Fatalf("read %d: got=%d, want=%d", i, got, w)
		}
	}
}

func TestControllerStrobeHigh(t *testing.T) {
	c := NewController()
	c.Set([8]bool{ButtonA: true})
	c.write(1)
	for i := 0; i < 3; i++ {
		if got := c.read(); got != 1 {
			t.Fatalf("read %d while strobing: got=%d, want=1", i, got)
		}
	}
	c.Set([8]bool{})
	if got := c.read(); got != 0 {
		t.Fatalf("read after release: got=%d, want=0", got)
	}
}

func TestControllerBits(t *testing.T) {
	c := NewController()
	c.Set([8]bool{ButtonA: true, ButtonStart: true, ButtonRight: true})
	if got, want := c.Bits(), byte(0x89); got != want {
		t.Fatalf("Bits: got=0x%02x, want=0x%02x", got, want)
	}
}
