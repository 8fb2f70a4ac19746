package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

const (
	stateVersion    = 1
	stateMagic      = "eGBAPPUState"
	stateHeaderSize = 18 // magic(12) + version(2) + dataCRC(4)
)

// Snapshot errors.
var (
	ErrStateTooShort  = errors.New("ppu state too short")
	ErrStateMagic     = errors.New("invalid ppu state magic")
	ErrStateVersion   = errors.New("unsupported ppu state version")
	ErrStateCorrupted = errors.New("ppu state data is corrupted")
)

// SerializeSize returns the total size in bytes of a PPU snapshot.
func SerializeSize() int {
	return stateHeaderSize + // 18
		vramSize + // VRAM (96KB)
		256*2 + // BG palette
		256*2 + // OBJ palette
		0x400 + // OAM
		ioSize + // LCD registers
		2 + // line
		2 + // lineCycle
		2*8 // affine internal reference points
}

// Serialize creates a snapshot of the PPU and returns it as a byte slice.
func (p *PPU) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)

	offset := stateHeaderSize

	copy(data[offset:], p.ctx.VRAM[:])
	offset += len(p.ctx.VRAM)

	for _, c := range p.ctx.BGPalette {
		binary.LittleEndian.PutUint16(data[offset:], c)
		offset += 2
	}
	for _, c := range p.ctx.OBJPalette {
		binary.LittleEndian.PutUint16(data[offset:], c)
		offset += 2
	}

	copy(data[offset:], p.ctx.OAM[:])
	offset += len(p.ctx.OAM)

	copy(data[offset:], p.io[:])
	offset += len(p.io)

	binary.LittleEndian.PutUint16(data[offset:], uint16(p.line))
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], uint16(p.lineCycle))
	offset += 2

	for _, a := range p.affine {
		x, y := a.ReferencePoint()
		binary.LittleEndian.PutUint32(data[offset:], uint32(x))
		binary.LittleEndian.PutUint32(data[offset+4:], uint32(y))
		offset += 8
	}

	binary.LittleEndian.PutUint32(data[14:18], crc32.ChecksumIEEE(data[stateHeaderSize:]))
	return data, nil
}

// Deserialize restores the PPU from a snapshot. Register-derived state is
// rebuilt from the raw register block before the internal affine reference
// points are restored.
func (p *PPU) Deserialize(data []byte) error {
	if err := p.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize

	copy(p.ctx.VRAM[:], data[offset:offset+len(p.ctx.VRAM)])
	offset += len(p.ctx.VRAM)

	for i := range p.ctx.BGPalette {
		p.ctx.BGPalette[i] = binary.LittleEndian.Uint16(data[offset:]) & pixelColorMask
		offset += 2
	}
	for i := range p.ctx.OBJPalette {
		p.ctx.OBJPalette[i] = binary.LittleEndian.Uint16(data[offset:]) & pixelColorMask
		offset += 2
	}

	copy(p.ctx.OAM[:], data[offset:offset+len(p.ctx.OAM)])
	offset += len(p.ctx.OAM)

	copy(p.io[:], data[offset:offset+len(p.io)])
	offset += len(p.io)
	for addr := uint32(0); addr < ioSize; addr += 2 {
		p.decodeRegister(addr)
	}

	p.line = int(binary.LittleEndian.Uint16(data[offset:])) % totalLines
	offset += 2
	p.lineCycle = int(binary.LittleEndian.Uint16(data[offset:])) % cyclesPerLine
	offset += 2

	for _, a := range p.affine {
		a.lastLine = -1
		a.refX = int32(binary.LittleEndian.Uint32(data[offset:]))
		a.refY = int32(binary.LittleEndian.Uint32(data[offset+4:]))
		offset += 8
	}

	return nil
}

// VerifyState checks if a snapshot is valid without loading it.
func (p *PPU) VerifyState(data []byte) error {
	return VerifyState(data)
}

// VerifyState checks the header and checksum of snapshot data.
func VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return ErrStateTooShort
	}

	if string(data[0:12]) != stateMagic {
		return ErrStateMagic
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return ErrStateVersion
	}

	expectedCRC := binary.LittleEndian.Uint32(data[14:18])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return ErrStateCorrupted
	}

	return nil
}
