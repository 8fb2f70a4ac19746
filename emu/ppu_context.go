package emu

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	// textLineWidth is the text renderer scratch width: one extra tile of
	// prefetch so a fine scroll of 0-7 never runs off the end.
	textLineWidth = ScreenWidth + 8

	vramSize = 0x18000
	// Background character and map addressing is confined to the low 64KB.
	bgVRAMMask = 0xFFFF
	// OBJ character data starts at 64KB.
	objCharBase = 0x10000
)

// Colour effect types selected by BLDCNT bits 6-7.
const (
	EffectNone = iota
	EffectAlphaBlend
	EffectBrighten
	EffectDarken
)

// BGControl holds the decoded BGxCNT and scroll registers for one background.
type BGControl struct {
	Priority   uint8
	CharBase   uint32 // byte offset of character data
	ScreenBase uint32 // byte offset of the tile map
	ScreenSize uint8  // size code 0-3
	Color256   bool   // 8-bit colour (always used by affine backgrounds)
	Mosaic     bool
	Overflow   bool // affine wraparound (BG2/BG3)
	HOffset    uint16
	VOffset    uint16
}

// AffineParams holds the rotate/scale registers of BG2 or BG3.
// DX/DMX/DY/DMY are PA/PB/PC/PD in 8.8 fixed point; RefX/RefY are the
// reference point in 20.8 fixed point.
type AffineParams struct {
	DX, DMX int32
	DY, DMY int32
	RefX    int32
	RefY    int32
}

// MosaicSizes holds MOSAIC register values. Block sizes are value+1.
type MosaicSizes struct {
	BGH, BGV   uint8
	OBJH, OBJV uint8
}

// BlendControl holds the decoded BLDCNT, BLDALPHA and BLDY registers.
// Target masks use pixel layer bits. Coefficients are in sixteenths and
// clamped to 16.
type BlendControl struct {
	Target1 uint32
	Target2 uint32
	Effect  uint8
	EVA     uint8
	EVB     uint8
	EVY     uint8
}

// WindowRect is a window 0/1 rectangle. Right and Bottom are exclusive.
type WindowRect struct {
	Left, Right uint8
	Top, Bottom uint8
}

// WindowMask selects the layers (pixel layer bits) visible in a window
// region and whether colour effects apply there.
type WindowMask struct {
	Layers  uint32
	Effects bool
}

// Context is the state every renderer reads. It is owned by the PPU and
// passed by pointer into each render call; renderers never write it.
type Context struct {
	VRAM       [vramSize]uint8
	BGPalette  [256]uint16
	OBJPalette [256]uint16
	OAM        [0x400]uint8

	Mode         uint8
	FrameSelect  bool // bitmap modes 4/5 back buffer
	OBJMapping1D bool
	ForcedBlank  bool
	Display      uint32 // enabled layers as pixel layer bits

	Win0Enabled   bool
	Win1Enabled   bool
	OBJWinEnabled bool

	BG     [4]BGControl
	Affine [2]AffineParams // BG2, BG3
	Mosaic MosaicSizes
	Blend  BlendControl

	Win    [2]WindowRect
	WinIn  [2]WindowMask
	WinOut WindowMask
	WinOBJ WindowMask
}

// layerEnabled reports whether a layer's display bit is set.
func (c *Context) layerEnabled(layer int) bool {
	return c.Display&layerBit(layer) != 0
}

// anyWindowEnabled reports whether any window region is active, in which
// case pixels outside every window use WINOUT.
func (c *Context) anyWindowEnabled() bool {
	return c.Win0Enabled || c.Win1Enabled || c.OBJWinEnabled
}

// bgVRAM16 reads a little-endian halfword from background VRAM.
func (c *Context) bgVRAM16(addr uint32) uint16 {
	addr &= bgVRAMMask &^ 1
	return uint16(c.VRAM[addr]) | uint16(c.VRAM[addr+1])<<8
}

// vram16 reads a little-endian halfword anywhere in VRAM.
func (c *Context) vram16(addr uint32) uint16 {
	addr = vramIndex(addr) &^ 1
	return uint16(c.VRAM[addr]) | uint16(c.VRAM[addr+1])<<8
}

// oam16 reads a little-endian halfword from OAM.
func (c *Context) oam16(addr uint32) uint16 {
	addr &= 0x3FE
	return uint16(c.OAM[addr]) | uint16(c.OAM[addr+1])<<8
}

// vramIndex folds a VRAM bus offset into the 96KB store. The upper 32KB of
// the 128KB window mirrors the OBJ area.
func vramIndex(addr uint32) uint32 {
	addr &= 0x1FFFF
	if addr >= vramSize {
		addr -= 0x8000
	}
	return addr
}
