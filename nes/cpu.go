package nes

import "fmt"

// CPU emulates NES CPU - is custom 6502 made by RICOH.
// References:
//   https://en.wikipedia.org/wiki/MOS_Technology_6502
//   http://www.6502.org/tutorials/6502opcodes.html
//   http://hp.vector.co.jp/authors/VA042397/nes/6502.html (In Japanese)

const CPUFrequency = 1789773

const (
	nmiVector   uint16 = 0xFFFA
	resetVector uint16 = 0xFFFC
	irqVector   uint16 = 0xFFFE

	interruptCycles = 7
)

type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indirectX
	indirectY
)

type status struct {
	c bool // carry
	z bool // zero
	i bool // IRQ
	d bool // decimal - unused on NES
	b bool // break
	r bool // reserved - unused
	v bool // overflow
	n bool // negative
}

// encode encodes the status to a byte.
func (s *status) encode() byte {
	var res byte
	for i, f := range []bool{s.c, s.z, s.i, s.d, s.b, s.r, s.v, s.n} {
		if f {
			res |= 1 << i
		}
	}
	return res
}

// decodeFrom decodes a byte to the status.
func (s *status) decodeFrom(data byte) {
	s.c = (data>>0)&1 == 1
	s.z = (data>>1)&1 == 1
	s.i = (data>>2)&1 == 1
	s.d = (data>>3)&1 == 1
	s.b = (data>>4)&1 == 1
	s.r = (data>>5)&1 == 1
	s.v = (data>>6)&1 == 1
	s.n = (data>>7)&1 == 1
}

// String shows set flags in upper case, like "nvUbdIzc".
func (s *status) String() string {
	flags := []byte("nvubdizc")
	for i, f := range []bool{s.n, s.v, s.r, s.b, s.d, s.i, s.z, s.c} {
		if f {
			flags[i] -= 'a' - 'A'
		}
	}
	return string(flags)
}

type CPU struct {
	p             *status // Processor status flag bits
	a             byte    // Accumulator register
	x             byte    // Index register
	y             byte    // Index register
	pc            uint16  // Program counter
	s             byte    // Stack pointer
	cycles        uint64  // Elapsed cycles
	lastExecution string  // For debug
	bus           *CPUBus
	instructions  [256]instruction

	nmiTriggered bool
	irqLine      bool
	// extraCycles collects branch penalties of the instruction being executed.
	extraCycles int
	// halted keeps the error of a jammed CPU.
	halted error
}

// NewCPU creates a new NES CPU and runs the reset sequence.
func NewCPU(bus *CPUBus) *CPU {
	c := &CPU{
		p:   &status{r: true},
		bus: bus,
	}
	c.instructions = c.createInstructions()
	c.Reset()
	return c
}

// Reset loads the reset vector. The sequence takes 7 cycles.
func (c *CPU) Reset() {
	c.pc = c.bus.read16(resetVector)
	c.s = 0xFD
	c.p.decodeFrom(0x24)
	c.a, c.x, c.y = 0, 0, 0
	c.cycles = interruptCycles
	c.nmiTriggered = false
	c.irqLine = false
	c.halted = nil
}

// SetNMI requests a non-maskable interrupt, serviced before the next instruction.
func (c *CPU) SetNMI() {
	c.nmiTriggered = true
}

// SetIRQ sets the level of the IRQ line, serviced while the I flag is clear.
func (c *CPU) SetIRQ(level bool) {
	c.irqLine = level
}

// Cycles returns the elapsed CPU cycles since power on.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// setN sets whether the x is negative or positive.
func (c *CPU) setN(x byte) {
	c.p.n = x&0x80 != 0
}

// setZ sets whether the x is 0 or not.
func (c *CPU) setZ(x byte) {
	c.p.z = x == 0
}

func (c *CPU) setZN(x byte) {
	c.setZ(x)
	c.setN(x)
}

// push pushes data to stack.
// "With the 6502, the stack is always on page one ($100-$1FF) and works top down."
func (c *CPU) push(x byte) {
	c.bus.write(0x100|uint16(c.s), x)
	c.s--
}

// pop pops data from stack.
func (c *CPU) pop() byte {
	c.s++
	return c.bus.read(0x100 | uint16(c.s))
}

func (c *CPU) push16(x uint16) {
	c.push(byte(x >> 8))
	c.push(byte(x))
}

func (c *CPU) pop16() uint16 {
	l := c.pop()
	h := c.pop()
	return uint16(h)<<8 | uint16(l)
}

// read16Wrap reads 2 bytes without carrying into the high byte of the address,
// the 6502 fetches indirect pointers this way.
func (c *CPU) read16Wrap(address uint16) uint16 {
	l := c.bus.read(address)
	h := c.bus.read(address&0xFF00 | uint16(byte(address)+1))
	return uint16(h)<<8 | uint16(l)
}

func differentPages(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// operandAddress computes the effective address of the instruction at pc.
func (c *CPU) operandAddress(mode addressingMode) (address uint16, pageCrossed bool) {
	switch mode {
	case immediate:
		return c.pc + 1, false
	case zeropage:
		return uint16(c.bus.read(c.pc + 1)), false
	case zeropageX:
		// If the address exceeds 0xFF (page crossed), back to 0x00
		return uint16(c.bus.read(c.pc+1) + c.x), false
	case zeropageY:
		return uint16(c.bus.read(c.pc+1) + c.y), false
	case relative:
		offset := uint16(c.bus.read(c.pc + 1))
		// Relative will look up a signed value, 2 is offset for operand
		if offset < 0x80 {
			return c.pc + 2 + offset, false
		}
		return c.pc + 2 + offset - 0x100, false
	case absolute:
		return c.bus.read16(c.pc + 1), false
	case absoluteX:
		base := c.bus.read16(c.pc + 1)
		address = base + uint16(c.x)
		return address, differentPages(base, address)
	case absoluteY:
		base := c.bus.read16(c.pc + 1)
		address = base + uint16(c.y)
		return address, differentPages(base, address)
	case indirect:
		return c.read16Wrap(c.bus.read16(c.pc + 1)), false
	case indirectX:
		return c.read16Wrap(uint16(c.bus.read(c.pc+1) + c.x)), false
	case indirectY:
		base := c.read16Wrap(uint16(c.bus.read(c.pc + 1)))
		address = base + uint16(c.y)
		return address, differentPages(base, address)
	}
	// implied, accumulator
	return 0, false
}

// interrupt pushes PC and the status with B clear, then jumps through the vector.
func (c *CPU) interrupt(vector uint16) {
	c.push16(c.pc)
	c.push(c.p.encode()&^0x10 | 0x20)
	c.p.i = true
	c.pc = c.bus.read16(vector)
	c.cycles += interruptCycles
}

// Step performs the instruction cycle - fetch, decode, execute, and returns the cycles spent,
// including the CPU stall of an OAM DMA the instruction triggered.
// A pending NMI, or IRQ while not masked, is serviced instead of the next instruction.
func (c *CPU) Step() (int, error) {
	if c.halted != nil {
		return 0, c.halted
	}
	// Non-maskable interrupt.
	if c.nmiTriggered {
		c.nmiTriggered = false
		c.interrupt(nmiVector)
		c.lastExecution = fmt.Sprintf("NMI, PC=0x%04x", c.pc)
		return interruptCycles, nil
	}
	if c.irqLine && !c.p.i {
		c.interrupt(irqVector)
		c.lastExecution = fmt.Sprintf("IRQ, PC=0x%04x", c.pc)
		return interruptCycles, nil
	}
	opcode := c.bus.read(c.pc)
	instruction := &c.instructions[opcode]
	if instruction.execute == nil {
		c.halted = &IllegalOpcodeError{Opcode: opcode, PC: c.pc}
		return 0, c.halted
	}
	operand, pageCrossed := c.operandAddress(instruction.mode)
	// Save debug string.
	c.lastExecution = fmt.Sprintf("PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, opcode=0x%02x, mnemonic=%s, operand: 0x%04x",
		c.pc, c.a, c.x, c.y, c.s, opcode, instruction.mnemonic, operand)
	c.pc += instruction.size
	c.extraCycles = 0
	instruction.execute(instruction.mode, operand)
	cycles := instruction.cycles + c.extraCycles
	if pageCrossed {
		cycles += instruction.pageCycles
	}
	cycles += c.bus.takeDMACycles()
	c.cycles += uint64(cycles)
	return cycles, nil
}

// branch jumps when cond holds: +1 cycle, +1 more when the target is on another page.
func (c *CPU) branch(cond bool, address uint16) {
	if !cond {
		return
	}
	c.extraCycles++
	if differentPages(c.pc, address) {
		c.extraCycles++
	}
	c.pc = address
}

// addWithCarry is binary only, the 2A03 has no decimal mode.
func (c *CPU) addWithCarry(data byte) {
	a := c.a
	var carry uint16
	if c.p.c {
		carry = 1
	}
	sum := uint16(a) + uint16(data) + carry
	c.a = byte(sum)
	c.p.c = sum > 0xFF
	// checks whether the value overflown by xor.
	c.p.v = (a^data)&0x80 == 0 && (a^c.a)&0x80 != 0
	c.setZN(c.a)
}

func (c *CPU) compare(x, y byte) {
	c.setZN(x - y)
	c.p.c = x >= y
}

// ADC - Add with Carry.
func (c *CPU) adc(mode addressingMode, operand uint16) {
	c.addWithCarry(c.bus.read(operand))
}

// AND - And.
func (c *CPU) and(mode addressingMode, operand uint16) {
	c.a &= c.bus.read(operand)
	c.setZN(c.a)
}

// ASL - Arithmetic Shift Left.
func (c *CPU) asl(mode addressingMode, operand uint16) {
	if mode == accumulator {
		c.p.c = (c.a>>7)&1 == 1
		c.a <<= 1
		c.setZN(c.a)
		return
	}
	x := c.bus.read(operand)
	c.p.c = (x>>7)&1 == 1
	x <<= 1
	c.bus.write(operand, x)
	c.setZN(x)
}

// BCC - Branch on Carry Clear.
func (c *CPU) bcc(mode addressingMode, operand uint16) {
	c.branch(!c.p.c, operand)
}

// BCS - Branch on Carry Set.
func (c *CPU) bcs(mode addressingMode, operand uint16) {
	c.branch(c.p.c, operand)
}

// BEQ - Branch on Equal.
func (c *CPU) beq(mode addressingMode, operand uint16) {
	c.branch(c.p.z, operand)
}

// BIT - test BITS.
func (c *CPU) bit(mode addressingMode, operand uint16) {
	x := c.bus.read(operand)
	c.setN(x)
	c.setZ(c.a & x)
	c.p.v = (x>>6)&1 == 1
}

// BMI - Branch on Minus.
func (c *CPU) bmi(mode addressingMode, operand uint16) {
	c.branch(c.p.n, operand)
}

// BNE - Branch on Not Equal.
func (c *CPU) bne(mode addressingMode, operand uint16) {
	c.branch(!c.p.z, operand)
}

// BPL - Branch on Plus.
func (c *CPU) bpl(mode addressingMode, operand uint16) {
	c.branch(!c.p.n, operand)
}

// BRK - Force Interrupt.
// The return address skips a padding byte after the opcode.
func (c *CPU) brk(mode addressingMode, operand uint16) {
	c.push16(c.pc + 1)
	c.push(c.p.encode() | 0x30)
	c.p.i = true
	c.pc = c.bus.read16(irqVector)
}

// BVC - Branch on Overflow Clear.
func (c *CPU) bvc(mode addressingMode, operand uint16) {
	c.branch(!c.p.v, operand)
}

// BVS - Branch on Overflow Set.
func (c *CPU) bvs(mode addressingMode, operand uint16) {
	c.branch(c.p.v, operand)
}

// CLC - Clear Carry.
func (c *CPU) clc(mode addressingMode, operand uint16) {
	c.p.c = false
}

// CLD - Clear Decimal.
func (c *CPU) cld(mode addressingMode, operand uint16) {
	c.p.d = false
}

// CLI - Clear Interrupt.
func (c *CPU) cli(mode addressingMode, operand uint16) {
	c.p.i = false
}

// CLV - Clear Overflow.
func (c *CPU) clv(mode addressingMode, operand uint16) {
	c.p.v = false
}

// CMP - Compare Accumulator.
func (c *CPU) cmp(mode addressingMode, operand uint16) {
	c.compare(c.a, c.bus.read(operand))
}

// CPX - Compare X Register.
func (c *CPU) cpx(mode addressingMode, operand uint16) {
	c.compare(c.x, c.bus.read(operand))
}

// CPY - Compare Y Register.
func (c *CPU) cpy(mode addressingMode, operand uint16) {
	c.compare(c.y, c.bus.read(operand))
}

// DEC - Decrement Memory.
func (c *CPU) dec(mode addressingMode, operand uint16) {
	x := c.bus.read(operand) - 1
	c.bus.write(operand, x)
	c.setZN(x)
}

// DEX - Decrement X Register.
func (c *CPU) dex(mode addressingMode, operand uint16) {
	c.x--
	c.setZN(c.x)
}

// DEY - Decrement Y Register.
func (c *CPU) dey(mode addressingMode, operand uint16) {
	c.y--
	c.setZN(c.y)
}

// EOR - Exclusive OR.
func (c *CPU) eor(mode addressingMode, operand uint16) {
	c.a ^= c.bus.read(operand)
	c.setZN(c.a)
}

// INC - Increment Memory.
func (c *CPU) inc(mode addressingMode, operand uint16) {
	x := c.bus.read(operand) + 1
	c.bus.write(operand, x)
	c.setZN(x)
}

// INX - Increment X Register.
func (c *CPU) inx(mode addressingMode, operand uint16) {
	c.x++
	c.setZN(c.x)
}

// INY - Increment Y Register.
func (c *CPU) iny(mode addressingMode, operand uint16) {
	c.y++
	c.setZN(c.y)
}

// JMP - Jump.
func (c *CPU) jmp(mode addressingMode, operand uint16) {
	c.pc = operand
}

// JSR - Jump to Subroutine, pushes the address of its own last byte.
func (c *CPU) jsr(mode addressingMode, operand uint16) {
	c.push16(c.pc - 1)
	c.pc = operand
}

// LDA - Load Accumulator.
func (c *CPU) lda(mode addressingMode, operand uint16) {
	c.a = c.bus.read(operand)
	c.setZN(c.a)
}

// LDX - Load X Register.
func (c *CPU) ldx(mode addressingMode, operand uint16) {
	c.x = c.bus.read(operand)
	c.setZN(c.x)
}

// LDY - Load Y Register.
func (c *CPU) ldy(mode addressingMode, operand uint16) {
	c.y = c.bus.read(operand)
	c.setZN(c.y)
}

// LSR - Logical Shift Right.
func (c *CPU) lsr(mode addressingMode, operand uint16) {
	if mode == accumulator {
		c.p.c = c.a&1 == 1
		c.a >>= 1
		c.setZN(c.a)
		return
	}
	x := c.bus.read(operand)
	c.p.c = x&1 == 1
	x >>= 1
	c.bus.write(operand, x)
	c.setZN(x)
}

// NOP - No Operation. The unofficial variants with operands are NOPs too.
func (c *CPU) nop(mode addressingMode, operand uint16) {}

// ORA - Logical Inclusive OR.
func (c *CPU) ora(mode addressingMode, operand uint16) {
	c.a |= c.bus.read(operand)
	c.setZN(c.a)
}

// PHA - Push Accumulator.
func (c *CPU) pha(mode addressingMode, operand uint16) {
	c.push(c.a)
}

// PHP - Push Processor Status, with the B flag set.
func (c *CPU) php(mode addressingMode, operand uint16) {
	c.push(c.p.encode() | 0x30)
}

// PLA - Pull Accumulator.
func (c *CPU) pla(mode addressingMode, operand uint16) {
	c.a = c.pop()
	c.setZN(c.a)
}

// PLP - Pull Processor Status. B does not exist in the register.
func (c *CPU) plp(mode addressingMode, operand uint16) {
	c.p.decodeFrom(c.pop())
	c.p.b = false
	c.p.r = true
}

// ROL - Rotate Left.
func (c *CPU) rol(mode addressingMode, operand uint16) {
	var carry byte
	if c.p.c {
		carry = 1
	}
	if mode == accumulator {
		c.p.c = (c.a>>7)&1 == 1
		c.a = c.a<<1 | carry
		c.setZN(c.a)
		return
	}
	x := c.bus.read(operand)
	c.p.c = (x>>7)&1 == 1
	x = x<<1 | carry
	c.bus.write(operand, x)
	c.setZN(x)
}

// ROR - Rotate Right.
func (c *CPU) ror(mode addressingMode, operand uint16) {
	var carry byte
	if c.p.c {
		carry = 0x80
	}
	if mode == accumulator {
		c.p.c = c.a&1 == 1
		c.a = c.a>>1 | carry
		c.setZN(c.a)
		return
	}
	x := c.bus.read(operand)
	c.p.c = x&1 == 1
	x = x>>1 | carry
	c.bus.write(operand, x)
	c.setZN(x)
}

// RTI - Return from Interrupt.
func (c *CPU) rti(mode addressingMode, operand uint16) {
	c.p.decodeFrom(c.pop())
	c.p.b = false
	c.p.r = true
	c.pc = c.pop16()
}

// RTS - Return from Subroutine.
func (c *CPU) rts(mode addressingMode, operand uint16) {
	c.pc = c.pop16() + 1
}

// SBC - Subtract with Carry.
func (c *CPU) sbc(mode addressingMode, operand uint16) {
	c.addWithCarry(^c.bus.read(operand))
}

// SEC - Set Carry Flag.
func (c *CPU) sec(mode addressingMode, operand uint16) {
	c.p.c = true
}

// SED - Set Decimal Flag.
func (c *CPU) sed(mode addressingMode, operand uint16) {
	c.p.d = true
}

// SEI - Set Interrupt Disable.
func (c *CPU) sei(mode addressingMode, operand uint16) {
	c.p.i = true
}

// STA - Store Accumulator.
func (c *CPU) sta(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.a)
}

// STX - Store X Register.
func (c *CPU) stx(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.x)
}

// STY - Store Y Register.
func (c *CPU) sty(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.y)
}

// TAX - Transfer Accumulator to X.
func (c *CPU) tax(mode addressingMode, operand uint16) {
	c.x = c.a
	c.setZN(c.x)
}

// TAY - Transfer Accumulator to Y.
func (c *CPU) tay(mode addressingMode, operand uint16) {
	c.y = c.a
	c.setZN(c.y)
}

// TSX - Transfer Stack Pointer to X.
func (c *CPU) tsx(mode addressingMode, operand uint16) {
	c.x = c.s
	c.setZN(c.x)
}

// TXA - Transfer X to Accumulator.
func (c *CPU) txa(mode addressingMode, operand uint16) {
	c.a = c.x
	c.setZN(c.a)
}

// TXS - Transfer X to Stack Pointer.
func (c *CPU) txs(mode addressingMode, operand uint16) {
	c.s = c.x
}

// TYA - Transfer Y to Accumulator.
func (c *CPU) tya(mode addressingMode, operand uint16) {
	c.a = c.y
	c.setZN(c.a)
}
