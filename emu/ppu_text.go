package emu

// colorDepth selects how a text background's character data is decoded.
type colorDepth uint8

const (
	colorDepth4 colorDepth = iota // 16 banks of 16 colours, 32 bytes per tile
	colorDepth8                   // one 256 colour table, 64 bytes per tile
)

// TextRenderer draws one text-mode (tiled, scrolling) background.
type TextRenderer struct {
	bg    int // 0-3
	layer int

	// Scratch holds a full extra tile so the tile loop never needs a bounds
	// check; the visible 240 pixels start at the fine X scroll.
	scratch [textLineWidth]uint32

	// Recomputed at the start of every line; registers may change in HBlank.
	depth      colorDepth
	sizeCode   uint8
	tag        uint32
	charBase   uint32
	screenBase uint32
}

// NewTextRenderer creates a renderer for background bg (0-3).
func NewTextRenderer(bg int) *TextRenderer {
	return &TextRenderer{
		bg:    bg & 0x03,
		layer: LayerBG0 + bg&0x03,
	}
}

// preprocess latches the background's configuration for this line.
func (r *TextRenderer) preprocess(ctx *Context) {
	bg := &ctx.BG[r.bg]
	if bg.Color256 {
		r.depth = colorDepth8
	} else {
		r.depth = colorDepth4
	}
	r.sizeCode = bg.ScreenSize & 0x03
	r.tag = layerTag(r.layer, bg.Priority)
	r.charBase = bg.CharBase
	r.screenBase = bg.ScreenBase
}

// RenderScanLine renders line and returns 240 pixels. The returned slice
// aliases internal scratch and is overwritten by the next call.
func (r *TextRenderer) RenderScanLine(ctx *Context, line int) []uint32 {
	r.preprocess(ctx)
	bg := &ctx.BG[r.bg]

	if bg.Mosaic {
		line = verticalSourceLine(line, ctx.Mosaic.BGV)
	}

	y := line + int(bg.VOffset)
	tileRow := uint32(y>>3) & 0x3F
	tileLine := y & 0x07
	tileCol := uint32(bg.HOffset>>3) & 0x3F

	// 31 tiles cover any fine scroll of 0-7 plus 240 visible pixels
	for pos := 0; pos < textLineWidth; pos += 8 {
		raw := tileRow<<6 | tileCol
		entryAddr := r.screenBase + remapTileIndex(r.sizeCode, raw)<<1
		entry := ctx.bgVRAM16(entryAddr)
		r.renderTile(ctx, r.scratch[pos:pos+8], entry, tileLine)
		tileCol = (tileCol + 1) & 0x3F
	}

	fine := int(bg.HOffset & 0x07)
	out := r.scratch[fine : fine+ScreenWidth]
	if bg.Mosaic {
		quantizeHorizontal(out, ctx.Mosaic.BGH)
	}
	return out
}

// remapTileIndex maps a raw tile position (row<<6 | column, both 0-63) to
// the tile map entry index for a screen size code. Maps larger than 32x32
// are built from 32x32 screen blocks: column bit 5 selects the next block
// (bit 10 of the index) and row bit 5 selects the block after the first
// row of blocks (bit 11 for 64x64, bit 10 for 32x64).
func remapTileIndex(sizeCode uint8, raw uint32) uint32 {
	col := raw & 0x3F
	row := (raw >> 6) & 0x3F
	index := col & 0x1F
	switch sizeCode & 0x03 {
	case 0: // 32x32
		index |= (row & 0x1F) << 5
	case 1: // 64x32
		index |= ((col & 0x20) | (row & 0x1F)) << 5
	case 2: // 32x64
		index |= (row & 0x3F) << 5
	case 3: // 64x64
		index |= ((col&0x20)|(row&0x1F))<<5 | (row&0x20)<<6
	}
	return index
}

// renderTile decodes the 8 pixels of one tile map entry on tileLine.
//
// Entry layout:
// Bits 0-9: tile number
// Bit 10: horizontal flip
// Bit 11: vertical flip
// Bits 12-15: palette bank (4-bit colour only)
func (r *TextRenderer) renderTile(ctx *Context, dst []uint32, entry uint16, tileLine int) {
	tile := uint32(entry & 0x03FF)
	hFlip := entry&0x0400 != 0
	if entry&0x0800 != 0 {
		tileLine = 7 - tileLine
	}

	switch r.depth {
	case colorDepth4:
		bank := (entry >> 12) << 4
		rowAddr := r.charBase + tile<<5 + uint32(tileLine)<<2
		for px := 0; px < 8; px++ {
			sx := px
			if hFlip {
				sx = 7 - px
			}
			// Two pixels per byte, left pixel in the low nibble
			b := ctx.VRAM[(rowAddr+uint32(sx>>1))&bgVRAMMask]
			index := (b >> (uint(sx&1) * 4)) & 0x0F
			if index == 0 {
				dst[px] = pixelTransparent
				continue
			}
			dst[px] = makePixel(r.tag, ctx.BGPalette[bank|uint16(index)])
		}
	case colorDepth8:
		rowAddr := r.charBase + tile<<6 + uint32(tileLine)<<3
		for px := 0; px < 8; px++ {
			sx := px
			if hFlip {
				sx = 7 - px
			}
			index := ctx.VRAM[(rowAddr+uint32(sx))&bgVRAMMask]
			if index == 0 {
				dst[px] = pixelTransparent
				continue
			}
			dst[px] = makePixel(r.tag, ctx.BGPalette[index])
		}
	}
}
