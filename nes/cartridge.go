package nes

import (
	"github.com/golang/glog"
)

const (
	chrROMSizeUnit      int  = 0x2000 // 8KB
	prgROMSizeUnit      int  = 0x4000 // 16KB
	prgRAMSizeUnit      int  = 0x2000 // 8KB
	inesHeaderSizeBytes int  = 16     // The valid INES header has 16 bytes
	trainerSizeBytes    int  = 512
	msDOSEOF            byte = 0x1A
)

// MirrorMode is the nametable arrangement of the cartridge.
// Reference: https://www.nesdev.org/wiki/Mirroring#Nametable_Mirroring
type MirrorMode int

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorFourScreen
	MirrorSingleLower
	MirrorSingleUpper
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	case MirrorSingleLower:
		return "single-screen lower"
	case MirrorSingleUpper:
		return "single-screen upper"
	}
	return "unknown"
}

// https://www.nesdev.org/wiki/INES
type Cartridge struct {
	prgROM []byte
	chr    []byte
	prgRAM []byte
	chrRAM bool

	mapperID byte
	mirror   MirrorMode
	battery  bool

	flags6 byte // https://www.nesdev.org/wiki/INES#Flags_6
	flags7 byte // https://www.nesdev.org/wiki/INES#Flags_7

	mapper Mapper
}

// isValid checks whether the buffer starts with the INES magic.
func isValid(data []byte) bool {
	return len(data) >= inesHeaderSizeBytes &&
		data[0] == byte('N') &&
		data[1] == byte('E') &&
		data[2] == byte('S') &&
		data[3] == msDOSEOF
}

// NewCartridge parses an INES image. The mapper is attached separately by NewMapper.
func NewCartridge(data []byte) (*Cartridge, error) {
	if !isValid(data) {
		return nil, malformed("the buffer is not a valid NES format")
	}
	c := &Cartridge{
		flags6: data[6],
		flags7: data[7],
	}
	prgSize := int(data[4]) * prgROMSizeUnit
	chrSize := int(data[5]) * chrROMSizeUnit
	if prgSize == 0 {
		return nil, malformed("PRG ROM size is 0")
	}
	c.battery = c.flags6&0x02 != 0
	switch {
	case c.flags6&0x08 != 0:
		c.mirror = MirrorFourScreen
	case c.flags6&0x01 != 0:
		c.mirror = MirrorVertical
	default:
		c.mirror = MirrorHorizontal
	}
	c.mapperID = c.flags6 >> 4
	switch c.flags7 & 0x0C {
	case 0x08:
		glog.Warningln("NES 2.0 header, reading it as INES")
		c.mapperID |= c.flags7 & 0xF0
	case 0x00:
		if data[12] == 0 && data[13] == 0 && data[14] == 0 && data[15] == 0 {
			c.mapperID |= c.flags7 & 0xF0
		} else {
			// Garbage in bytes 12-15 usually means a "DiskDude!" header, flags7 can not be trusted.
			glog.Warningln("Dirty INES header, ignoring the upper nibble of the mapper number")
		}
	}

	offset := inesHeaderSizeBytes
	if c.flags6&0x04 != 0 {
		offset += trainerSizeBytes
	}
	if len(data) < offset+prgSize {
		return nil, malformed("PRG ROM truncated: header declares %d bytes, %d available", prgSize, len(data)-offset)
	}
	c.prgROM = data[offset : offset+prgSize]
	offset += prgSize
	if chrSize == 0 {
		c.chrRAM = true
		c.chr = make([]byte, chrROMSizeUnit)
	} else {
		if len(data) < offset+chrSize {
			return nil, malformed("CHR ROM truncated: header declares %d bytes, %d available", chrSize, len(data)-offset)
		}
		c.chr = data[offset : offset+chrSize]
	}
	ramSize := int(data[8]) * prgRAMSizeUnit
	if ramSize == 0 {
		ramSize = prgRAMSizeUnit
	}
	c.prgRAM = make([]byte, ramSize)
	glog.V(1).Infof("Cartridge: mapper=%d, PRG=%dKB, CHR=%dKB (RAM=%v), mirror=%s, battery=%v",
		c.mapperID, prgSize/1024, len(c.chr)/1024, c.chrRAM, c.mirror, c.battery)
	return c, nil
}

// Mapper returns the mapper number declared by the header.
func (c *Cartridge) Mapper() byte {
	return c.mapperID
}

// Battery reports whether the PRG RAM is battery backed.
func (c *Cartridge) Battery() bool {
	return c.battery
}

// HasCHRRAM reports whether the pattern tables are writable RAM.
func (c *Cartridge) HasCHRRAM() bool {
	return c.chrRAM
}

// Mirroring returns the current nametable mirroring, mappers may change it at runtime.
func (c *Cartridge) Mirroring() MirrorMode {
	if c.mapper != nil {
		return c.mapper.Mirroring()
	}
	return c.mirror
}

// SaveRAM returns the PRG RAM, which is worth persisting when Battery is true.
func (c *Cartridge) SaveRAM() []byte {
	return c.prgRAM
}

// LoadRAM restores PRG RAM saved by SaveRAM.
func (c *Cartridge) LoadRAM(data []byte) {
	copy(c.prgRAM, data)
}

// ReadFromCPU reads $4020-$FFFF through the mapper, ok is false when nothing drives the bus.
func (c *Cartridge) ReadFromCPU(address uint16) (data byte, ok bool) {
	t, offset := c.mapper.MapCPUAddress(address)
	switch t {
	case targetPRGROM:
		return c.prgROM[offset%len(c.prgROM)], true
	case targetPRGRAM:
		return c.prgRAM[offset%len(c.prgRAM)], true
	}
	return 0, false
}

// WriteFromCPU writes $4020-$FFFF, writes into ROM space go to the mapper registers.
func (c *Cartridge) WriteFromCPU(address uint16, data byte) {
	t, offset := c.mapper.MapCPUAddress(address)
	switch t {
	case targetPRGRAM:
		c.prgRAM[offset%len(c.prgRAM)] = data
	case targetPRGROM:
		c.mapper.OnCPUWrite(address, data)
	default:
		glog.V(2).Infof("Unmapped cartridge write: address=0x%04x, data=0x%02x", address, data)
	}
}

// ReadFromPPU reads pattern table data, $0000-$1FFF.
func (c *Cartridge) ReadFromPPU(address uint16) byte {
	_, offset := c.mapper.MapPPUAddress(address & 0x1FFF)
	return c.chr[offset%len(c.chr)]
}

// WriteFromPPU writes pattern table data, only CHR RAM accepts it.
func (c *Cartridge) WriteFromPPU(address uint16, data byte) {
	if !c.chrRAM {
		glog.V(2).Infof("Write to CHR ROM ignored: address=0x%04x, data=0x%02x", address, data)
		return
	}
	_, offset := c.mapper.MapPPUAddress(address & 0x1FFF)
	c.chr[offset%len(c.chr)] = data
}
