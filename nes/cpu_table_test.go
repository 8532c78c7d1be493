package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	ab = absolute
	ax = absoluteX
	ay = absoluteY
	ac = accumulator
	im = immediate
	ip = implied
	ix = indirectX
	in = indirect
	iy = indirectY
	rl = relative
	zp = zeropage
	zx = zeropageX
	zy = zeropageY
)

// Reference timing of every opcode, KIL included.
// Reference: https://www.nesdev.org/wiki/CPU_unofficial_opcodes
var wantModes = [256]addressingMode{
	ip, ix, ip, ix, zp, zp, zp, zp, ip, im, ac, im, ab, ab, ab, ab, // 0x00
	rl, iy, ip, iy, zx, zx, zx, zx, ip, ay, ip, ay, ax, ax, ax, ax, // 0x10
	ab, ix, ip, ix, zp, zp, zp, zp, ip, im, ac, im, ab, ab, ab, ab, // 0x20
	rl, iy, ip, iy, zx, zx, zx, zx, ip, ay, ip, ay, ax, ax, ax, ax, // 0x30
	ip, ix, ip, ix, zp, zp, zp, zp, ip, im, ac, im, ab, ab, ab, ab, // 0x40
	rl, iy, ip, iy, zx, zx, zx, zx, ip, ay, ip, ay, ax, ax, ax, ax, // 0x50
	ip, ix, ip, ix, zp, zp, zp, zp, ip, im, ac, im, in, ab, ab, ab, // 0x60
	rl, iy, ip, iy, zx, zx, zx, zx, ip, ay, ip, ay, ax, ax, ax, ax, // 0x70
	im, ix, im, ix, zp, zp, zp, zp, ip, im, ip, im, ab, ab, ab, ab, // 0x80
	rl, iy, ip, iy, zx, zx, zy, zy, ip, ay, ip, ay, ax, ax, ay, ay, // 0x90
	im, ix, im, ix, zp, zp, zp, zp, ip, im, ip, im, ab, ab, ab, ab, // 0xA0
	rl, iy, ip, iy, zx, zx, zy, zy, ip, ay, ip, ay, ax, ax, ay, ay, // 0xB0
	im, ix, im, ix, zp, zp, zp, zp, ip, im, ip, im, ab, ab, ab, ab, // 0xC0
	rl, iy, ip, iy, zx, zx, zx, zx, ip, ay, ip, ay, ax, ax, ax, ax, // 0xD0
	im, ix, im, ix, zp, zp, zp, zp, ip, im, ip, im, ab, ab, ab, ab, // 0xE0
	rl, iy, ip, iy, zx, zx, zx, zx, ip, ay, ip, ay, ax, ax, ax, ax, // 0xF0
}

var wantCycles = [256]int{
	7, 6, 2, 8, 3, 3, 5, 5, 3, 2, 2, 2, 4, 4, 6, 6, // 0x00
	2, 5, 2, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x10
	6, 6, 2, 8, 3, 3, 5, 5, 4, 2, 2, 2, 4, 4, 6, 6, // 0x20
	2, 5, 2, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x30
	6, 6, 2, 8, 3, 3, 5, 5, 3, 2, 2, 2, 3, 4, 6, 6, // 0x40
	2, 5, 2, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x50
	6, 6, 2, 8, 3, 3, 5, 5, 4, 2, 2, 2, 5, 4, 6, 6, // 0x60
	2, 5, 2, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x70
	2, 6, 2, 6, 3, 3, 3, 3, 2, 2, 2, 2, 4, 4, 4, 4, // 0x80
	2, 6, 2, 6, 4, 4, 4, 4, 2, 5, 2, 5, 5, 5, 5, 5, // 0x90
	2, 6, 2, 6, 3, 3, 3, 3, 2, 2, 2, 2, 4, 4, 4, 4, // 0xA0
	2, 5, 2, 5, 4, 4, 4, 4, 2, 4, 2, 4, 4, 4, 4, 4, // 0xB0
	2, 6, 2, 8, 3, 3, 5, 5, 2, 2, 2, 2, 4, 4, 6, 6, // 0xC0
	2, 5, 2, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0xD0
	2, 6, 2, 8, 3, 3, 5, 5, 2, 2, 2, 2, 4, 4, 6, 6, // 0xE0
	2, 5, 2, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0xF0
}

// Branch penalties are not part of the table, they are added when the branch is taken.
var wantPageCycles = [256]int{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x00
	0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, // 0x10
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x20
	0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, // 0x30
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x40
	0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, // 0x50
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x60
	0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, // 0x70
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x80
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x90
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xA0
	0, 1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 1, 1, 1, 1, 1, // 0xB0
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xC0
	0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, // 0xD0
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xE0
	0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, // 0xF0
}

var wantSizes = map[addressingMode]uint16{
	ab: 3, ax: 3, ay: 3, in: 3,
	ac: 1, ip: 1,
	im: 2, ix: 2, iy: 2, rl: 2, zp: 2, zx: 2, zy: 2,
}

func TestInstructionTable(t *testing.T) {
	c := newTestConsole(t)
	kil := map[int]bool{
		0x02: true, 0x12: true, 0x22: true, 0x32: true, 0x42: true, 0x52: true,
		0x62: true, 0x72: true, 0x92: true, 0xB2: true, 0xD2: true, 0xF2: true,
	}
	for op := 0; op < 256; op++ {
		inst := c.cpu.instructions[op]
		if kil[op] {
			if inst.execute != nil {
				t.Fatalf("0x%02X: got=%s, want=KIL", op, inst.mnemonic)
			}
			continue
		}
		if inst.execute == nil || inst.mnemonic == "" {
			t.Fatalf("0x%02X: missing", op)
		}
		if inst.mode != wantModes[op] {
			t.Errorf("0x%02X %s mode: got=%d, want=%d", op, inst.mnemonic, inst.mode, wantModes[op])
		}
		if inst.size != wantSizes[wantModes[op]] {
			t.Errorf("0x%02X %s size: got=%d, want=%d", op, inst.mnemonic, inst.size, wantSizes[wantModes[op]])
		}
		if inst.cycles != wantCycles[op] {
			t.Errorf("0x%02X %s cycles: got=%d, want=%d", op, inst.mnemonic, inst.cycles, wantCycles[op])
		}
		if inst.pageCycles != wantPageCycles[op] {
			t.Errorf("0x%02X %s page cycles: got=%d, want=%d", op, inst.mnemonic, inst.pageCycles, wantPageCycles[op])
		}
	}
}

func TestOperandAddress(t *testing.T) {
	tests := []struct {
		name    string
		mode    addressingMode
		operand []byte
		memory  map[uint16]byte
		want    uint16
		crossed bool
	}{
		{"immediate", im, []byte{0x00}, nil, 0x0301, false},
		{"zeropage", zp, []byte{0x80}, nil, 0x0080, false},
		{"zeropage,X wraps", zx, []byte{0xFE}, nil, 0x0003, false},
		{"zeropage,Y", zy, []byte{0x80}, nil, 0x0090, false},
		{"relative forward", rl, []byte{0x10}, nil, 0x0312, false},
		{"relative backward", rl, []byte{0xFC}, nil, 0x02FE, false},
		{"absolute", ab, []byte{0x34, 0x12}, nil, 0x1234, false},
		{"absolute,X crosses", ax, []byte{0xFD, 0x12}, nil, 0x1302, true},
		{"absolute,Y", ay, []byte{0x00, 0x12}, nil, 0x1210, false},
		{"indirect wraps in page", in, []byte{0xFF, 0x02}, map[uint16]byte{0x02FF: 0x78, 0x0200: 0x56}, 0x5678, false},
		{"(zp,X)", ix, []byte{0xFE}, map[uint16]byte{0x03: 0x00, 0x04: 0x04}, 0x0400, false},
		{"(zp,X) pointer wraps", ix, []byte{0xFA}, map[uint16]byte{0xFF: 0x20, 0x00: 0x06}, 0x0620, false},
		{"(zp),Y crosses", iy, []byte{0x40}, map[uint16]byte{0x40: 0xF8, 0x41: 0x05}, 0x0608, true},
		{"(zp),Y pointer wraps", iy, []byte{0xFF}, map[uint16]byte{0xFF: 0x00, 0x00: 0x07}, 0x0710, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConsole(t)
			for address, data := range tt.memory {
				c.bus.write(address, data)
			}
			loadRAM(c, 0x0300, append([]byte{0xEA}, tt.operand...)...)
			c.cpu.x = 0x05
			c.cpu.y = 0x10
			got, crossed := c.cpu.operandAddress(tt.mode)
			assert.Equal(t, tt.want, got, "address 0x%04X", got)
			assert.Equal(t, tt.crossed, crossed)
		})
	}
}
