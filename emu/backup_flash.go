package emu

const (
	flashBankSize   = 0x10000
	flashSectorSize = 0x1000
	flashErased     = 0xFF

	flashCmdAddr1 = 0x5555
	flashCmdAddr2 = 0x2AAA
)

// Flash command bytes
const (
	flashCmdEnterID   = 0x90
	flashCmdExitID    = 0xF0
	flashCmdErase     = 0x80
	flashCmdProgram   = 0xA0
	flashCmdBank      = 0xB0
	flashCmdChipErase = 0x10
	flashCmdSector    = 0x30
)

type flashState uint8

const (
	flashIdle flashState = iota
	flashUnlock1
	flashUnlock2
	flashEraseIdle
	flashEraseUnlock1
	flashEraseUnlock2
	flashProgram
	flashBankSelect
)

// Flash is command-driven flash save memory in 64KB banks. Commands are
// written as AA to 5555, 55 to 2AAA, then the command byte to 5555.
type Flash struct {
	data         []uint8
	bank         uint32
	state        flashState
	idMode       bool
	manufacturer uint8
	device       uint8
}

// NewFlash64K creates a 64KB chip (Panasonic ID).
func NewFlash64K() *Flash {
	return newFlash(1, 0x32, 0x1B)
}

// NewFlash128K creates a 128KB chip with bank switching (Sanyo ID).
func NewFlash128K() *Flash {
	return newFlash(2, 0x62, 0x13)
}

func newFlash(banks int, manufacturer, device uint8) *Flash {
	f := &Flash{
		data:         make([]uint8, banks*flashBankSize),
		manufacturer: manufacturer,
		device:       device,
	}
	for i := range f.data {
		f.data[i] = flashErased
	}
	return f
}

// Read8 reads a byte from the selected bank, or the chip ID bytes while in
// ID mode.
func (f *Flash) Read8(addr uint32) uint8 {
	addr &= flashBankSize - 1
	if f.idMode && addr < 2 {
		if addr == 0 {
			return f.manufacturer
		}
		return f.device
	}
	return f.data[f.bank*flashBankSize+addr]
}

// Write8 feeds one byte to the command state machine. Any step that does
// not continue a valid sequence returns the chip to idle.
func (f *Flash) Write8(addr uint32, value uint8) {
	addr &= flashBankSize - 1

	switch f.state {
	case flashIdle:
		if addr == flashCmdAddr1 && value == 0xAA {
			f.state = flashUnlock1
		}

	case flashUnlock1:
		f.state = flashIdle
		if addr == flashCmdAddr2 && value == 0x55 {
			f.state = flashUnlock2
		}

	case flashUnlock2:
		f.state = flashIdle
		if addr != flashCmdAddr1 {
			return
		}
		switch value {
		case flashCmdEnterID:
			f.idMode = true
		case flashCmdExitID:
			f.idMode = false
		case flashCmdErase:
			f.state = flashEraseIdle
		case flashCmdProgram:
			f.state = flashProgram
		case flashCmdBank:
			if f.Size() > flashBankSize {
				f.state = flashBankSelect
			}
		}

	case flashEraseIdle:
		f.state = flashIdle
		if addr == flashCmdAddr1 && value == 0xAA {
			f.state = flashEraseUnlock1
		}

	case flashEraseUnlock1:
		f.state = flashIdle
		if addr == flashCmdAddr2 && value == 0x55 {
			f.state = flashEraseUnlock2
		}

	case flashEraseUnlock2:
		f.state = flashIdle
		switch {
		case addr == flashCmdAddr1 && value == flashCmdChipErase:
			f.erase(0, len(f.data))
		case value == flashCmdSector:
			start := int(f.bank*flashBankSize + addr&^(flashSectorSize-1))
			f.erase(start, start+flashSectorSize)
		}

	case flashProgram:
		f.state = flashIdle
		f.data[f.bank*flashBankSize+addr] = value

	case flashBankSelect:
		f.state = flashIdle
		if addr == 0 {
			f.bank = uint32(value & 0x01)
		}
	}
}

func (f *Flash) erase(start, end int) {
	for i := start; i < end; i++ {
		f.data[i] = flashErased
	}
}

// Bank returns the selected 64KB bank.
func (f *Flash) Bank() int {
	return int(f.bank)
}

// InIDMode reports whether reads return the chip ID.
func (f *Flash) InIDMode() bool {
	return f.idMode
}

func (f *Flash) Load(data []byte) {
	loadCyclic(f.data, data)
}

func (f *Flash) Bytes() []byte {
	return f.data
}

func (f *Flash) Size() int {
	return len(f.data)
}
