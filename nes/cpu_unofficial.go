package nes

// Unofficial opcodes, the combinations of official operations the 6502 decoder also executes.
// Reference: https://www.nesdev.org/wiki/Programming_with_unofficial_opcodes

// ALR - AND then LSR A.
func (c *CPU) alr(mode addressingMode, operand uint16) {
	c.and(mode, operand)
	c.lsr(accumulator, 0)
}

// ANC - AND then copy N to C.
func (c *CPU) anc(mode addressingMode, operand uint16) {
	c.and(mode, operand)
	c.p.c = c.p.n
}

// ARR - AND then ROR A, C is bit 6 and V is bit 6 xor bit 5 of the result.
func (c *CPU) arr(mode addressingMode, operand uint16) {
	c.and(mode, operand)
	c.ror(accumulator, 0)
	c.p.c = (c.a>>6)&1 == 1
	c.p.v = ((c.a>>6)^(c.a>>5))&1 == 1
}

// AXS - X = (A AND X) - immediate, without borrow.
func (c *CPU) axs(mode addressingMode, operand uint16) {
	ax := c.a & c.x
	data := c.bus.read(operand)
	c.x = ax - data
	c.p.c = ax >= data
	c.setZN(c.x)
}

// DCP - DEC then CMP.
func (c *CPU) dcp(mode addressingMode, operand uint16) {
	c.dec(mode, operand)
	c.cmp(mode, operand)
}

// ISB - INC then SBC.
func (c *CPU) isb(mode addressingMode, operand uint16) {
	c.inc(mode, operand)
	c.sbc(mode, operand)
}

// LAS - A, X and S are loaded with memory AND S.
func (c *CPU) las(mode addressingMode, operand uint16) {
	c.s &= c.bus.read(operand)
	c.a = c.s
	c.x = c.s
	c.setZN(c.a)
}

// LAX - LDA then TAX.
func (c *CPU) lax(mode addressingMode, operand uint16) {
	c.a = c.bus.read(operand)
	c.x = c.a
	c.setZN(c.a)
}

// RLA - ROL then AND.
func (c *CPU) rla(mode addressingMode, operand uint16) {
	c.rol(mode, operand)
	c.and(mode, operand)
}

// RRA - ROR then ADC.
func (c *CPU) rra(mode addressingMode, operand uint16) {
	c.ror(mode, operand)
	c.adc(mode, operand)
}

// SAX - stores A AND X.
func (c *CPU) sax(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.a&c.x)
}

// SLO - ASL then ORA.
func (c *CPU) slo(mode addressingMode, operand uint16) {
	c.asl(mode, operand)
	c.ora(mode, operand)
}

// SRE - LSR then EOR.
func (c *CPU) sre(mode addressingMode, operand uint16) {
	c.lsr(mode, operand)
	c.eor(mode, operand)
}

// XAA - unstable on hardware, emulated as A = X AND immediate.
func (c *CPU) xaa(mode addressingMode, operand uint16) {
	c.a = c.x & c.bus.read(operand)
	c.setZN(c.a)
}

// highByteMask is the high byte of the unindexed address plus one,
// which the SH* family ANDs into the stored value.
func highByteMask(operand uint16, index byte) byte {
	return byte((operand-uint16(index))>>8) + 1
}

// AHX - stores A AND X AND (high byte + 1).
func (c *CPU) ahx(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.a&c.x&highByteMask(operand, c.y))
}

// SHX - stores X AND (high byte + 1).
func (c *CPU) shx(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.x&highByteMask(operand, c.y))
}

// SHY - stores Y AND (high byte + 1).
func (c *CPU) shy(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.y&highByteMask(operand, c.x))
}

// TAS - S = A AND X, then stores S AND (high byte + 1).
func (c *CPU) tas(mode addressingMode, operand uint16) {
	c.s = c.a & c.x
	c.bus.write(operand, c.s&highByteMask(operand, c.y))
}
