package nes

import (
	"image"

	"github.com/golang/glog"
)

// NES PPU generates 256x240 pixels.
const (
	width  = 256
	height = 240
)

const (
	dotsPerScanline   = 341
	scanlinesPerFrame = 262
	vblankScanline    = 241
	preRenderScanline = 261
)

// PPUCTRL ($2000) bits.
const (
	ctrlNametable       = 0x03
	ctrlIncrement32     = 0x04
	ctrlSpriteTable     = 0x08
	ctrlBackgroundTable = 0x10
	ctrlSpriteSize16    = 0x20
	ctrlNMI             = 0x80
)

// PPUMASK ($2001) bits.
const (
	maskGrayscale      = 0x01
	maskLeftBackground = 0x02
	maskLeftSprites    = 0x04
	maskBackground     = 0x08
	maskSprites        = 0x10
)

// PPUSTATUS ($2002) bits.
const (
	statusSpriteOverflow = 0x20
	statusSpriteZeroHit  = 0x40
	statusVBlank         = 0x80
)

// PPU stands for Picture Processing Unit, renders 256px x 240px image for a screen.
// PPU is 3x faster than CPU and rendering 1 frame requires 341x262=89342 cycles (Each cycles writes a dot).
//
// This PPU implementation includes PPU regsters as well.
// References:
//
//	https://www.nesdev.org/wiki/PPU
//	https://www.nesdev.org/wiki/PPU_rendering
//	https://www.nesdev.org/wiki/PPU_scrolling
type PPU struct {
	bus *PPUBus

	// front holds the last complete frame, back is being drawn.
	front *image.RGBA
	back  *image.RGBA

	ctrl    byte
	mask    byte
	status  byte
	oamAddr byte
	oamData [256]byte

	// Loopy registers.
	// v: current VRAM address (15bit), t: temporary VRAM address,
	// x: fine X scroll (3bit), w: first or second write toggle.
	v uint16
	t uint16
	x byte
	w bool
	// buffer for PPUDATA $2007
	buffer byte
	// openBus is the value left on the register data bus by the last access.
	openBus byte

	// Background fetch latches and the 16 pixel pipeline, 4 bits per pixel.
	nametableByte byte
	attributeByte byte
	lowTileByte   byte
	highTileByte  byte
	tileData      uint64

	// Sprites selected for the scanline being drawn.
	spriteCount      int
	spritePatterns   [8]uint32
	spritePositions  [8]byte
	spritePriorities [8]byte
	spriteIndexes    [8]byte

	nmiPending     bool
	suppressVBlank bool

	scanlineCounter irqSource

	// cycle, scanline indicates which pixel is processing.
	cycle    int
	scanline int
	frame    uint64
	oddFrame bool
}

// NewPPU creates a PPU.
func NewPPU(bus *PPUBus) *PPU {
	p := &PPU{
		bus:   bus,
		front: image.NewRGBA(image.Rect(0, 0, width, height)),
		back:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	if bus.cartridge != nil {
		if s, ok := bus.cartridge.mapper.(irqSource); ok {
			p.scanlineCounter = s
		}
	}
	p.Reset()
	return p
}

// Reset puts the PPU at the top of the pre-visible frame with all registers cleared.
func (p *PPU) Reset() {
	p.cycle = 0
	p.scanline = 0
	p.frame = 0
	p.oddFrame = false
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.w = false
	p.buffer = 0
	p.nmiPending = false
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskBackground|maskSprites) != 0
}

// readRegister reads $2000-$2007, address is already folded into the 8 registers.
func (p *PPU) readRegister(address uint16) byte {
	var data byte
	switch address {
	case 0x2002:
		data = p.readPPUSTATUS()
	case 0x2004:
		data = p.readOAMDATA()
	case 0x2007:
		data = p.readPPUDATA()
	default:
		// Write-only register, the stale bus value is what the CPU sees.
		return p.openBus
	}
	p.openBus = data
	return data
}

// writeRegister writes $2000-$2007, address is already folded into the 8 registers.
func (p *PPU) writeRegister(address uint16, data byte) {
	p.openBus = data
	switch address {
	case 0x2000:
		p.writePPUCTRL(data)
	case 0x2001:
		p.writePPUMASK(data)
	case 0x2002:
		// PPUSTATUS is read-only.
	case 0x2003:
		p.writeOAMADDR(data)
	case 0x2004:
		p.writeOAMDATA(data)
	case 0x2005:
		p.writePPUSCROLL(data)
	case 0x2006:
		p.writePPUADDR(data)
	case 0x2007:
		p.writePPUDATA(data)
	}
}

// writePPUCTRL writes PPUCTRL ($2000).
func (p *PPU) writePPUCTRL(data byte) {
	// Enabling NMI while the vblank flag is still up raises it immediately.
	if p.ctrl&ctrlNMI == 0 && data&ctrlNMI != 0 && p.status&statusVBlank != 0 {
		p.nmiPending = true
	}
	p.ctrl = data
	p.t = (p.t & 0xF3FF) | (uint16(data)&ctrlNametable)<<10
}

// writePPUMASK writes PPUMASK ($2001).
func (p *PPU) writePPUMASK(data byte) {
	p.mask = data
}

// readPPUSTATUS reads PPUSTATUS ($2002), clears the vblank flag and the write toggle.
func (p *PPU) readPPUSTATUS() byte {
	data := p.status&0xE0 | p.openBus&0x1F
	p.status &^= statusVBlank
	p.w = false
	// Reading one dot before vblank starts suppresses the flag and the NMI for this frame.
	if p.scanline == vblankScanline && p.cycle == 0 {
		p.suppressVBlank = true
	}
	return data
}

// writeOAMADDR writes OAMADDR ($2003).
func (p *PPU) writeOAMADDR(data byte) {
	p.oamAddr = data
}

// readOAMDATA reads OAMDATA ($2004).
func (p *PPU) readOAMDATA() byte {
	data := p.oamData[p.oamAddr]
	// Bits 2-4 of the attribute byte do not exist.
	if p.oamAddr&0x03 == 0x02 {
		data &= 0xE3
	}
	return data
}

// writeOAMDATA writes OAMDATA ($2004).
func (p *PPU) writeOAMDATA(data byte) {
	p.oamData[p.oamAddr] = data
	p.oamAddr++
}

// writeOAMDMA copies a CPU page into OAM, starting at OAMADDR.
func (p *PPU) writeOAMDMA(data *[256]byte) {
	for i := 0; i < 256; i++ {
		p.oamData[p.oamAddr] = data[i]
		p.oamAddr++
	}
}

// writePPUSCROLL writes PPUSCROLL ($2005), X on the first write and Y on the second.
func (p *PPU) writePPUSCROLL(data byte) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(data)>>3
		p.x = data & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(data)&0x07)<<12
		p.t = (p.t & 0xFC1F) | (uint16(data)&0xF8)<<2
		p.w = false
	}
}

// writePPUADDR writes PPUADDR ($2006), high byte first.
func (p *PPU) writePPUADDR(data byte) {
	if !p.w { // high
		p.t = (p.t & 0x80FF) | (uint16(data)&0x3F)<<8
		p.w = true
	} else { // low
		p.t = (p.t & 0xFF00) | uint16(data)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) incrementAddress() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// writePPUDATA writes PPUDATA ($2007).
func (p *PPU) writePPUDATA(data byte) {
	p.bus.write(p.v, data)
	p.incrementAddress()
}

// readPPUDATA reads PPUDATA ($2007).
func (p *PPU) readPPUDATA() byte {
	data := p.bus.read(p.v)
	// Here buffers if the address is not paletteRAM.
	if p.v&0x3FFF < 0x3F00 {
		buffered := p.buffer
		p.buffer = data
		data = buffered
	} else {
		// Palette reads are direct, the buffer gets the nametable byte underneath.
		p.buffer = p.bus.read(p.v - 0x1000)
	}
	p.incrementAddress()
	return data
}

// Scrolling helpers.
// Reference: https://www.nesdev.org/wiki/PPU_scrolling#Wrapping_around

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | y<<5
}

func (p *PPU) copyX() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// Background fetches, one memory access every 2 dots.

func (p *PPU) fetchNametableByte() {
	p.nametableByte = p.bus.read(0x2000 | (p.v & 0x0FFF))
}

func (p *PPU) fetchAttributeByte() {
	address := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	shift := ((p.v >> 4) & 4) | (p.v & 2)
	p.attributeByte = ((p.bus.read(address) >> shift) & 3) << 2
}

func (p *PPU) backgroundTileAddress() uint16 {
	fineY := (p.v >> 12) & 7
	var table uint16
	if p.ctrl&ctrlBackgroundTable != 0 {
		table = 0x1000
	}
	return table + uint16(p.nametableByte)*16 + fineY
}

func (p *PPU) fetchLowTileByte() {
	p.lowTileByte = p.bus.read(p.backgroundTileAddress())
}

func (p *PPU) fetchHighTileByte() {
	p.highTileByte = p.bus.read(p.backgroundTileAddress() + 8)
}

// storeTileData appends the fetched tile to the low half of the pipeline.
func (p *PPU) storeTileData() {
	var data uint32
	for i := 0; i < 8; i++ {
		p1 := (p.lowTileByte & 0x80) >> 7
		p2 := (p.highTileByte & 0x80) >> 6
		p.lowTileByte <<= 1
		p.highTileByte <<= 1
		data <<= 4
		data |= uint32(p.attributeByte | p1 | p2)
	}
	p.tileData |= uint64(data)
}

func (p *PPU) backgroundPixel() byte {
	if p.mask&maskBackground == 0 {
		return 0
	}
	data := uint32(p.tileData>>32) >> ((7 - p.x) * 4)
	return byte(data & 0x0F)
}

// spritePixel returns the slot and the palette index of the first opaque sprite at the current dot.
func (p *PPU) spritePixel() (int, byte) {
	if p.mask&maskSprites == 0 {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := (p.cycle - 1) - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		offset = 7 - offset
		c := byte((p.spritePatterns[i] >> byte(offset*4)) & 0x0F)
		if c%4 == 0 {
			continue
		}
		return i, c
	}
	return 0, 0
}

func (p *PPU) setPixel(x, y int, paletteAddress byte) {
	index := p.bus.paletteRAM[paletteIndex(uint16(paletteAddress))]
	if p.mask&maskGrayscale != 0 {
		index &= 0x30
	}
	c := colors[index&0x3F]
	i := p.back.PixOffset(x, y)
	p.back.Pix[i+0] = c.R
	p.back.Pix[i+1] = c.G
	p.back.Pix[i+2] = c.B
	p.back.Pix[i+3] = c.A
}

// renderPixel resolves background against sprites for the current dot.
// Reference: https://www.nesdev.org/wiki/PPU_sprite_priority
func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := p.scanline
	background := p.backgroundPixel()
	i, sprite := p.spritePixel()
	if x < 8 && p.mask&maskLeftBackground == 0 {
		background = 0
	}
	if x < 8 && p.mask&maskLeftSprites == 0 {
		sprite = 0
	}
	b := background%4 != 0
	s := sprite%4 != 0
	var c byte
	switch {
	case !b && !s:
		c = 0
	case !b && s:
		c = sprite | 0x10
	case b && !s:
		c = background
	default:
		if p.spriteIndexes[i] == 0 && x < 255 {
			p.status |= statusSpriteZeroHit
		}
		if p.spritePriorities[i] == 0 {
			c = sprite | 0x10
		} else {
			c = background
		}
	}
	p.setPixel(x, y, c)
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteSize16 != 0 {
		return 16
	}
	return 8
}

// fetchSpritePattern decodes one row of sprite i into 8 pixels of 4 bits.
func (p *PPU) fetchSpritePattern(i, row int) uint32 {
	tile := p.oamData[i*4+1]
	attributes := p.oamData[i*4+2]
	var address uint16
	if p.spriteHeight() == 8 {
		if attributes&0x80 != 0 {
			row = 7 - row
		}
		var table uint16
		if p.ctrl&ctrlSpriteTable != 0 {
			table = 0x1000
		}
		address = table + uint16(tile)*16 + uint16(row)
	} else {
		if attributes&0x80 != 0 {
			row = 15 - row
		}
		table := uint16(tile&1) * 0x1000
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		address = table + uint16(tile)*16 + uint16(row)
	}
	a := (attributes & 3) << 2
	low := p.bus.read(address)
	high := p.bus.read(address + 8)
	var data uint32
	for j := 0; j < 8; j++ {
		var p1, p2 byte
		if attributes&0x40 != 0 {
			p1 = low & 1
			p2 = (high & 1) << 1
			low >>= 1
			high >>= 1
		} else {
			p1 = (low & 0x80) >> 7
			p2 = (high & 0x80) >> 6
			low <<= 1
			high <<= 1
		}
		data <<= 4
		data |= uint32(a | p1 | p2)
	}
	return data
}

// evaluateSprites picks up to 8 sprites for the next scanline and flags overflow beyond that.
func (p *PPU) evaluateSprites() {
	h := p.spriteHeight()
	count := 0
	for i := 0; i < 64; i++ {
		y := p.oamData[i*4+0]
		a := p.oamData[i*4+2]
		x := p.oamData[i*4+3]
		row := p.scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		if count < 8 {
			p.spritePatterns[count] = p.fetchSpritePattern(i, row)
			p.spritePositions[count] = x
			p.spritePriorities[count] = (a >> 5) & 1
			p.spriteIndexes[count] = byte(i)
		}
		count++
	}
	if count > 8 {
		count = 8
		p.status |= statusSpriteOverflow
	}
	p.spriteCount = count
}

func (p *PPU) setVerticalBlank() {
	if p.suppressVBlank {
		p.suppressVBlank = false
		return
	}
	p.status |= statusVBlank
	if p.ctrl&ctrlNMI != 0 {
		p.nmiPending = true
	}
}

// tick advances the dot and scanline counters, returns true when a frame wrapped.
func (p *PPU) tick() bool {
	// The pre-render line is one dot shorter on odd frames while rendering.
	if p.renderingEnabled() && p.oddFrame && p.scanline == preRenderScanline && p.cycle == 339 {
		p.cycle = 0
		p.scanline = 0
		return true
	}
	p.cycle++
	if p.cycle == dotsPerScanline { // rendered a line
		p.cycle = 0
		p.scanline++
		if p.scanline == scanlinesPerFrame { // rendered a frame
			p.scanline = 0
			return true
		}
	}
	return false
}

func (p *PPU) completeFrame() {
	p.frame++
	p.oddFrame = !p.oddFrame
	p.front, p.back = p.back, p.front
	glog.V(2).Infof("PPU: frame %d complete", p.frame)
}

// Step emulates a cycle of PPU and each cycles renders a pixel for NTSC,
// so PPU renders a pixel (left to right, top to bottom) respectively.
// PPU renders 256x240 pixels but it actually processes 341x262 area.
// Step returns true when an NMI became pending.
// Reference:
//
//	https://www.nesdev.org/wiki/PPU_rendering
//	https://www.nesdev.org/wiki/File:Ntsc_timing.png
func (p *PPU) Step() bool {
	if p.tick() {
		p.completeFrame()
	}

	preLine := p.scanline == preRenderScanline
	visibleLine := p.scanline < height
	renderLine := preLine || visibleLine
	visibleCycle := 1 <= p.cycle && p.cycle <= 256
	preFetchCycle := 321 <= p.cycle && p.cycle <= 336
	fetchCycle := visibleCycle || preFetchCycle

	if p.renderingEnabled() {
		if visibleLine && visibleCycle {
			p.renderPixel()
		}
		if renderLine && fetchCycle {
			p.tileData <<= 4
			switch p.cycle % 8 {
			case 1:
				p.fetchNametableByte()
			case 3:
				p.fetchAttributeByte()
			case 5:
				p.fetchLowTileByte()
			case 7:
				p.fetchHighTileByte()
			case 0:
				p.storeTileData()
			}
		}
		if preLine && 280 <= p.cycle && p.cycle <= 304 {
			p.copyY()
		}
		if renderLine {
			if fetchCycle && p.cycle%8 == 0 {
				p.incrementX()
			}
			if p.cycle == 256 {
				p.incrementY()
			}
			if p.cycle == 257 {
				p.copyX()
				if visibleLine {
					p.evaluateSprites()
				} else {
					p.spriteCount = 0
				}
			}
			if p.cycle == 260 && p.scanlineCounter != nil {
				p.scanlineCounter.clockScanline()
			}
		}
	} else if visibleLine && visibleCycle {
		// Rendering off shows the backdrop color.
		p.setPixel(p.cycle-1, p.scanline, 0)
	}

	if p.scanline == vblankScanline && p.cycle == 1 {
		p.setVerticalBlank()
	}
	if preLine && p.cycle == 1 {
		p.status &^= statusVBlank | statusSpriteZeroHit | statusSpriteOverflow
		p.w = false
	}

	if p.nmiPending {
		p.nmiPending = false
		return true
	}
	return false
}

// Frame returns the last complete frame and its sequence number.
func (p *PPU) Frame() (*image.RGBA, uint64) {
	return p.front, p.frame
}
