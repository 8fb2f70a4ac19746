package emu

// OBJ modes from attribute 0 bits 10-11.
const (
	objModeNormal = iota
	objModeSemiTransparent
	objModeWindow
)

// objSizes maps [shape][size] to width and height in pixels.
var objSizes = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}}, // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}}, // horizontal
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}}, // vertical
}

// SpriteRenderer draws the OBJ layer and the OBJ window coverage for a line.
type SpriteRenderer struct {
	scratch [ScreenWidth]uint32
	window  [ScreenWidth]bool

	// One sprite's pixels before they are merged into the line. Large
	// enough for a 64 pixel wide sprite in double-size affine mode.
	sprite [128]uint32
}

// NewSpriteRenderer creates an OBJ renderer.
func NewSpriteRenderer() *SpriteRenderer {
	return &SpriteRenderer{}
}

// RenderScanLine renders every OAM entry that intersects line and returns 240
// pixels. Lower priority values win; equal priorities go to the lower OAM
// index.
func (r *SpriteRenderer) RenderScanLine(ctx *Context, line int) []uint32 {
	for i := range r.scratch {
		r.scratch[i] = pixelTransparent
		r.window[i] = false
	}
	for i := 0; i < 128; i++ {
		r.renderSprite(ctx, i, line)
	}
	return r.scratch[:]
}

// WindowMask returns the OBJ window coverage from the last rendered line.
func (r *SpriteRenderer) WindowMask() []bool {
	return r.window[:]
}

// renderSprite draws OAM entry i.
//
// Attribute 0: Y (0-7), affine (8), double size / disable (9), mode (10-11),
// mosaic (12), 8-bit colour (13), shape (14-15).
// Attribute 1: X (0-8), affine parameter index (9-13) or H/V flip (12/13),
// size (14-15).
// Attribute 2: tile (0-9), priority (10-11), palette bank (12-15).
func (r *SpriteRenderer) renderSprite(ctx *Context, i int, line int) {
	base := uint32(i) * 8
	attr0 := ctx.oam16(base)
	attr1 := ctx.oam16(base + 2)
	attr2 := ctx.oam16(base + 4)

	affine := attr0&0x0100 != 0
	doubleSize := affine && attr0&0x0200 != 0
	if !affine && attr0&0x0200 != 0 {
		return // disabled
	}
	mode := int(attr0>>10) & 0x03
	if mode == 3 {
		return
	}
	shape := int(attr0 >> 14)
	if shape == 3 {
		return
	}
	size := objSizes[shape][attr1>>14]
	width, height := size[0], size[1]
	boundsW, boundsH := width, height
	if doubleSize {
		boundsW *= 2
		boundsH *= 2
	}

	// Y wraps at 256, so sprites near the bottom reappear at the top
	row := (line - int(attr0&0xFF)) & 0xFF
	if row >= boundsH {
		return
	}
	x := int(attr1 & 0x01FF)
	if x >= 256 {
		x -= 512
	}
	if x >= ScreenWidth || x+boundsW <= 0 {
		return
	}

	tile := uint32(attr2 & 0x03FF)
	if ctx.Mode >= 3 && tile < 512 {
		return // bitmap modes use the lower half of OBJ VRAM for frame data
	}

	mosaic := attr0&0x1000 != 0
	if mosaic {
		row -= mosaicYOffset(line, ctx.Mosaic.OBJV)
		if row < 0 {
			row = 0
		}
	}

	obj := objAttributes{
		width:    width,
		height:   height,
		tile:     tile,
		color256: attr0&0x2000 != 0,
		bank:     uint16(attr2>>12) << 4,
		tag:      layerTag(LayerOBJ, uint8(attr2>>10)),
	}
	if mode == objModeSemiTransparent {
		obj.tag |= pixelSemiTransparent
	}

	buf := r.sprite[:boundsW]
	if affine {
		paramBase := uint32(attr1>>9&0x1F) * 32
		pa := int(int16(ctx.oam16(paramBase + 6)))
		pb := int(int16(ctx.oam16(paramBase + 14)))
		pc := int(int16(ctx.oam16(paramBase + 22)))
		pd := int(int16(ctx.oam16(paramBase + 30)))

		cy := row - boundsH/2
		for sx := range buf {
			cx := sx - boundsW/2
			tx := (pa*cx+pb*cy)>>8 + width/2
			ty := (pc*cx+pd*cy)>>8 + height/2
			if tx < 0 || tx >= width || ty < 0 || ty >= height {
				buf[sx] = pixelTransparent
				continue
			}
			buf[sx] = r.fetchPixel(ctx, &obj, tx, ty)
		}
	} else {
		ty := row
		if attr1&0x2000 != 0 {
			ty = height - 1 - ty
		}
		hFlip := attr1&0x1000 != 0
		for sx := range buf {
			tx := sx
			if hFlip {
				tx = width - 1 - sx
			}
			buf[sx] = r.fetchPixel(ctx, &obj, tx, ty)
		}
	}

	if mosaic {
		quantizeSpriteHorizontal(buf, boundsW, ctx.Mosaic.OBJH)
	}

	for sx, p := range buf {
		screenX := x + sx
		if screenX < 0 || screenX >= ScreenWidth || isTransparent(p) {
			continue
		}
		if mode == objModeWindow {
			r.window[screenX] = true
			continue
		}
		if pixelPriority(p) < pixelPriority(r.scratch[screenX]) {
			r.scratch[screenX] = p
		}
	}
}

// objAttributes is the per-sprite state needed to fetch texels.
type objAttributes struct {
	width, height int
	tile          uint32
	color256      bool
	bank          uint16
	tag           uint32
}

// fetchPixel returns the sprite pixel at texel (tx, ty).
func (r *SpriteRenderer) fetchPixel(ctx *Context, obj *objAttributes, tx, ty int) uint32 {
	tileX := uint32(tx >> 3)
	tileY := uint32(ty >> 3)

	// Tile numbers count 32 byte units; 8-bit tiles span two of them
	var tileNum uint32
	if obj.color256 {
		if ctx.OBJMapping1D {
			tileNum = obj.tile + (tileY*uint32(obj.width>>3)+tileX)*2
		} else {
			tileNum = obj.tile + tileY*32 + tileX*2
		}
	} else {
		if ctx.OBJMapping1D {
			tileNum = obj.tile + tileY*uint32(obj.width>>3) + tileX
		} else {
			tileNum = obj.tile + tileY*32 + tileX
		}
	}

	var index uint8
	var color uint16
	if obj.color256 {
		addr := objCharBase + (tileNum<<5+uint32(ty&7)<<3+uint32(tx&7))&0x7FFF
		index = ctx.VRAM[addr]
		color = ctx.OBJPalette[index]
	} else {
		addr := objCharBase + (tileNum<<5+uint32(ty&7)<<2+uint32(tx&7)>>1)&0x7FFF
		index = (ctx.VRAM[addr] >> (uint(tx&1) * 4)) & 0x0F
		color = ctx.OBJPalette[obj.bank|uint16(index)]
	}
	if index == 0 {
		return pixelTransparent
	}
	return makePixel(obj.tag, color)
}
