package nes

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalOpcode is returned when the CPU fetches an opcode it can not execute.
	// The CPU halts, every following Step returns the same error.
	ErrIllegalOpcode = errors.New("illegal opcode")
	// ErrUnsupportedMapper is returned at load time for a mapper id with no implementation.
	ErrUnsupportedMapper = errors.New("unsupported mapper")
	// ErrMalformedCartridge is returned when an iNES image is inconsistent with its header.
	ErrMalformedCartridge = errors.New("malformed cartridge")
)

// IllegalOpcodeError carries the opcode byte and the address it was fetched from.
type IllegalOpcodeError struct {
	Opcode byte
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02x at PC=0x%04x", e.Opcode, e.PC)
}

func (e *IllegalOpcodeError) Unwrap() error {
	return ErrIllegalOpcode
}

// UnsupportedMapperError carries the mapper number read from the iNES header.
type UnsupportedMapperError struct {
	ID byte
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("mapper %d is not supported", e.ID)
}

func (e *UnsupportedMapperError) Unwrap() error {
	return ErrUnsupportedMapper
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedCartridge, fmt.Sprintf(format, args...))
}
