package nes

import (
	"fmt"
	"strings"
)

// operandText disassembles the operand of the instruction at pc the way nestest.log does,
// with the effective address and the memory value where the mode has them.
func (c *CPU) operandText(inst *instruction, pc uint16) string {
	b := c.bus
	arg := b.peek(pc + 1)
	arg16 := b.peek16(pc + 1)
	switch inst.mode {
	case accumulator:
		return "A"
	case immediate:
		return fmt.Sprintf("#$%02X", arg)
	case zeropage:
		return fmt.Sprintf("$%02X = %02X", arg, b.peek(uint16(arg)))
	case zeropageX:
		address := arg + c.x
		return fmt.Sprintf("$%02X,X @ %02X = %02X", arg, address, b.peek(uint16(address)))
	case zeropageY:
		address := arg + c.y
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", arg, address, b.peek(uint16(address)))
	case relative:
		return fmt.Sprintf("$%04X", pc+2+uint16(int8(arg)))
	case absolute:
		if inst.mnemonic == "JMP" || inst.mnemonic == "JSR" {
			return fmt.Sprintf("$%04X", arg16)
		}
		return fmt.Sprintf("$%04X = %02X", arg16, b.peek(arg16))
	case absoluteX:
		address := arg16 + uint16(c.x)
		return fmt.Sprintf("$%04X,X @ %04X = %02X", arg16, address, b.peek(address))
	case absoluteY:
		address := arg16 + uint16(c.y)
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", arg16, address, b.peek(address))
	case indirect:
		l := b.peek(arg16)
		h := b.peek(arg16&0xFF00 | uint16(byte(arg16)+1))
		return fmt.Sprintf("($%04X) = %04X", arg16, uint16(h)<<8|uint16(l))
	case indirectX:
		pointer := arg + c.x
		address := uint16(b.peek(uint16(pointer+1)))<<8 | uint16(b.peek(uint16(pointer)))
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", arg, pointer, address, b.peek(address))
	case indirectY:
		base := uint16(b.peek(uint16(arg+1)))<<8 | uint16(b.peek(uint16(arg)))
		address := base + uint16(c.y)
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", arg, base, address, b.peek(address))
	}
	return ""
}

// trace formats the next instruction and the registers as a nestest.log line.
func (c *CPU) trace(ppu *PPU) string {
	opcode := c.bus.peek(c.pc)
	inst := &c.instructions[opcode]
	size := inst.size
	mnemonic := inst.mnemonic
	if inst.execute == nil {
		size = 1
		mnemonic = "*KIL"
	}
	raw := make([]string, size)
	for i := range raw {
		raw[i] = fmt.Sprintf("%02X", c.bus.peek(c.pc+uint16(i)))
	}
	text := fmt.Sprintf("%04X  %-8s %4s %s", c.pc, strings.Join(raw, " "), mnemonic, c.operandText(inst, c.pc))
	return fmt.Sprintf("%-47s A:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		text, c.a, c.x, c.y, c.p.encode(), c.s, ppu.scanline, ppu.cycle, c.cycles)
}

// Trace returns the nestest.log line of the instruction the next Step executes.
func (c *Console) Trace() string {
	return c.cpu.trace(c.ppu)
}
