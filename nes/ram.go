package nes

const (
	wramSize = 0x0800
	vramSize = 0x0800
)

// RAM is a plain byte array, used for the CPU work RAM and the PPU nametable RAM.
type RAM struct {
	data []byte
}

// NewRAM creates a RAM of the given size in bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// read reads data, the address wraps around the RAM size.
func (r *RAM) read(address uint16) byte {
	return r.data[int(address)%len(r.data)]
}

// write writes data, the address wraps around the RAM size.
func (r *RAM) write(address uint16, x byte) {
	r.data[int(address)%len(r.data)] = x
}
