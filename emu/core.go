package emu

import (
	"encoding/binary"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Core)(nil)
var _ emucore.SaveStater = (*Core)(nil)
var _ emucore.BatterySaver = (*Core)(nil)
var _ emucore.MemoryInspector = (*Core)(nil)
var _ emucore.MemoryMapper = (*Core)(nil)

const (
	Name    = "egba"
	Version = "0.1.0"

	framesPerSecond = 60
)

// Layer toggle buttons, as bit positions in the SetInput mask. Bits 0-3 are
// the directions, which the core does not use.
const (
	ButtonBG0 = 4
	ButtonBG1 = 5
	ButtonBG2 = 6
	ButtonBG3 = 7
	ButtonOBJ = 8
)

// Core option keys. Each takes "true" or "false".
const (
	OptionShowBG0 = "show_bg0"
	OptionShowBG1 = "show_bg1"
	OptionShowBG2 = "show_bg2"
	OptionShowBG3 = "show_bg3"
	OptionShowOBJ = "show_obj"
)

var buttonLayers = [...]struct {
	button int
	layer  int
}{
	{ButtonBG0, LayerBG0},
	{ButtonBG1, LayerBG1},
	{ButtonBG2, LayerBG2},
	{ButtonBG3, LayerBG3},
	{ButtonOBJ, LayerOBJ},
}

var optionLayers = map[string]int{
	OptionShowBG0: LayerBG0,
	OptionShowBG1: LayerBG1,
	OptionShowBG2: LayerBG2,
	OptionShowBG3: LayerBG3,
	OptionShowOBJ: LayerOBJ,
}

// Flat address layout used by ReadMemory and the system RAM region: VRAM,
// then palette RAM, then OAM.
const (
	flatVRAMEnd    = vramSize
	flatPaletteEnd = flatVRAMEnd + 0x400
	flatOAMEnd     = flatPaletteEnd + 0x400
)

// Core presents a PPU restored from a snapshot as a frontend emulator.
// Each frame re-renders the snapshot; input toggles layers.
type Core struct {
	ppu    *PPU
	bus    *Bus
	backup Backup

	layerFilter uint32
	prevButtons uint32
}

// NewCore restores a PPU from snapshot data.
func NewCore(snapshot []byte) (*Core, error) {
	ppu := NewPPU(nil)
	if err := ppu.Deserialize(snapshot); err != nil {
		return nil, err
	}

	c := &Core{
		ppu:         ppu,
		layerFilter: allLayers,
	}
	c.setBackup(NewSRAM())
	return c, nil
}

// PPU returns the underlying graphics controller.
func (c *Core) PPU() *PPU {
	return c.ppu
}

func (c *Core) setBackup(b Backup) {
	c.backup = b
	c.bus = NewBus(c.ppu, b)
}

// backupForSize picks the chip that matches a save file of n bytes.
func backupForSize(n int) Backup {
	switch {
	case n <= sramSize:
		return NewSRAM()
	case n <= flashBankSize:
		return NewFlash64K()
	default:
		return NewFlash128K()
	}
}

func (c *Core) setLayerFilter(mask uint32) {
	c.layerFilter = mask
	c.ppu.SetLayerFilter(mask)
}

// SetInput toggles a layer on each press of its button.
func (c *Core) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}

	pressed := buttons &^ c.prevButtons
	c.prevButtons = buttons

	filter := c.layerFilter
	for _, bl := range buttonLayers {
		if pressed&(1<<bl.button) != 0 {
			filter ^= layerBit(bl.layer)
		}
	}
	if filter != c.layerFilter {
		c.setLayerFilter(filter)
	}
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (c *Core) GetFramebuffer() []byte {
	return c.ppu.Framebuffer().Pix
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (c *Core) GetFramebufferStride() int {
	return c.ppu.Framebuffer().Stride
}

func (c *Core) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion always reports NTSC; the handheld has a single timing.
func (c *Core) GetRegion() emucore.Region {
	return emucore.RegionNTSC
}

func (c *Core) SetRegion(region emucore.Region) {}

func (c *Core) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       framesPerSecond,
		Scanlines: totalLines,
	}
}

// SetOption applies a core option change identified by key.
func (c *Core) SetOption(key string, value string) {
	layer, ok := optionLayers[key]
	if !ok {
		return
	}
	filter := c.layerFilter | layerBit(layer)
	if value == "false" {
		filter &^= layerBit(layer)
	}
	c.setLayerFilter(filter)
}

// Close releases any resources held by the emulator.
func (c *Core) Close() {}

// RunFrame renders the snapshot from line 0.
func (c *Core) RunFrame() {
	c.ppu.RenderFrame()
}

// GetAudioSamples returns nil; the video core produces no sound.
func (c *Core) GetAudioSamples() []int16 {
	return nil
}

// =============================================================================
// Battery saves
// =============================================================================

func (c *Core) HasSRAM() bool {
	return true
}

// GetSRAM returns a copy of the current backup contents.
func (c *Core) GetSRAM() []byte {
	out := make([]byte, c.backup.Size())
	copy(out, c.backup.Bytes())
	return out
}

// SetSRAM loads a save file, switching to a flash chip when the file is
// larger than SRAM.
func (c *Core) SetSRAM(data []byte) {
	if b := backupForSize(len(data)); b.Size() != c.backup.Size() {
		c.setBackup(b)
	}
	c.backup.Load(data)
}

// =============================================================================
// Save states
// =============================================================================

func (c *Core) Serialize() ([]byte, error) {
	return c.ppu.Serialize()
}

func (c *Core) Deserialize(data []byte) error {
	return c.ppu.Deserialize(data)
}

func (c *Core) VerifyState(data []byte) error {
	return c.ppu.VerifyState(data)
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// busAddress maps a flat address onto the CPU bus.
func busAddress(addr uint32) (uint32, bool) {
	switch {
	case addr < flatVRAMEnd:
		return 0x06000000 + addr, true
	case addr < flatPaletteEnd:
		return 0x05000000 + addr - flatVRAMEnd, true
	case addr < flatOAMEnd:
		return 0x07000000 + addr - flatPaletteEnd, true
	}
	return 0, false
}

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read:
// 0x00000-0x17FFF -> VRAM
// 0x18000-0x183FF -> palette RAM
// 0x18400-0x187FF -> OAM
func (c *Core) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		busAddr, ok := busAddress(addr + uint32(i))
		if !ok {
			return count
		}
		buf[i] = c.bus.Read8(busAddr)
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (c *Core) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: flatOAMEnd},
		{Type: emucore.MemorySaveRAM, Size: c.backup.Size()},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (c *Core) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, flatOAMEnd)
		c.ReadMemory(0, out)
		return out
	case emucore.MemorySaveRAM:
		return c.GetSRAM()
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region. Video memory is
// written a halfword at a time since OAM ignores byte writes.
func (c *Core) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		for i := 0; i+1 < len(data); i += 2 {
			busAddr, ok := busAddress(uint32(i))
			if !ok {
				return
			}
			c.bus.Write16(busAddr, binary.LittleEndian.Uint16(data[i:]))
		}
	case emucore.MemorySaveRAM:
		c.SetSRAM(data)
	}
}
