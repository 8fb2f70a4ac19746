package emu

// Memory regions, selected by bits 24-27 of a bus address.
const (
	regionIO      = 0x04
	regionPalette = 0x05
	regionVRAM    = 0x06
	regionOAM     = 0x07
	regionBackup  = 0x0E
)

// Bus routes CPU addresses to the PPU and the cartridge backup memory.
// Unmapped reads return 0 and unmapped writes are dropped.
type Bus struct {
	ppu    *PPU
	backup Backup
}

// NewBus creates a new Bus. backup may be nil for cartridges without one.
func NewBus(ppu *PPU, backup Backup) *Bus {
	return &Bus{ppu: ppu, backup: backup}
}

func region(addr uint32) uint32 { return addr >> 24 & 0x0F }

func (b *Bus) Read8(addr uint32) uint8 {
	switch region(addr) {
	case regionBackup:
		if b.backup == nil {
			return 0xFF
		}
		return b.backup.Read8(addr & 0xFFFF)
	}
	v := b.Read16(addr &^ 1)
	return uint8(v >> (8 * (addr & 1)))
}

func (b *Bus) Read16(addr uint32) uint16 {
	off := addr & 0xFFFFFF
	switch region(addr) {
	case regionIO:
		return b.ppu.Read16(off)
	case regionPalette:
		return b.ppu.ReadPalette16(off)
	case regionVRAM:
		return b.ppu.ReadVRAM16(off)
	case regionOAM:
		return b.ppu.ReadOAM16(off)
	case regionBackup:
		// The backup bus is 8 bits wide
		v := uint16(b.Read8(addr))
		return v | v<<8
	}
	return 0
}

func (b *Bus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}

func (b *Bus) Write8(addr uint32, value uint8) {
	off := addr & 0xFFFFFF
	switch region(addr) {
	case regionIO:
		b.ppu.Write8(off, value)
	case regionPalette:
		b.ppu.WritePalette8(off, value)
	case regionVRAM:
		b.ppu.WriteVRAM8(off, value)
	case regionBackup:
		if b.backup != nil {
			b.backup.Write8(addr&0xFFFF, value)
		}
	}
}

func (b *Bus) Write16(addr uint32, value uint16) {
	off := addr & 0xFFFFFF
	switch region(addr) {
	case regionIO:
		b.ppu.Write16(off, value)
	case regionPalette:
		b.ppu.WritePalette16(off, value)
	case regionVRAM:
		b.ppu.WriteVRAM16(off, value)
	case regionOAM:
		b.ppu.WriteOAM16(off, value)
	case regionBackup:
		b.Write8(addr, uint8(value>>(8*(addr&1))))
	}
}

func (b *Bus) Write32(addr uint32, value uint32) {
	b.Write16(addr, uint16(value))
	b.Write16(addr+2, uint16(value>>16))
}
