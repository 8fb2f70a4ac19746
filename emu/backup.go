package emu

// Backup is battery-backed cartridge save memory.
type Backup interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	// Load replaces the contents from a save file. A shorter source is
	// repeated until the store is full.
	Load(data []byte)
	// Bytes returns the backing store for persistence.
	Bytes() []byte
	Size() int
}

// Compile-time interface checks.
var _ Backup = (*SRAM)(nil)
var _ Backup = (*Flash)(nil)

const sramSize = 0x8000

// SRAM is 32KB of byte-addressed static RAM.
type SRAM struct {
	data [sramSize]uint8
}

func NewSRAM() *SRAM {
	return &SRAM{}
}

func (s *SRAM) Read8(addr uint32) uint8 {
	return s.data[addr&(sramSize-1)]
}

func (s *SRAM) Write8(addr uint32, value uint8) {
	s.data[addr&(sramSize-1)] = value
}

func (s *SRAM) Load(data []byte) {
	loadCyclic(s.data[:], data)
}

func (s *SRAM) Bytes() []byte {
	return s.data[:]
}

func (s *SRAM) Size() int {
	return sramSize
}

// loadCyclic fills dst by repeating src. An empty src leaves dst unchanged.
func loadCyclic(dst, src []byte) {
	if len(src) == 0 {
		return
	}
	for off := 0; off < len(dst); off += len(src) {
		copy(dst[off:], src)
	}
}
