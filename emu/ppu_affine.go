package emu

import "fmt"

// affineSource selects what an affine background samples from. Resolved once
// per line from the video mode.
type affineSource uint8

const (
	sourceTileMap      affineSource = iota // modes 1 and 2
	sourceBitmap16                         // mode 3: 240x160 direct colour
	sourceBitmap8                          // mode 4: 240x160 paletted, two frames
	sourceBitmap16Half                     // mode 5: 160x128 direct colour, two frames
)

const bitmapFrameOffset = 0xA000

// AffineRenderer draws BG2 or BG3 through the rotate/scale transform.
//
// The renderer owns the internal reference point, which hardware loads from
// the BGxX/BGxY registers at VBlank (or when they are written) and advances
// by (DMX, DMY) after every line. The start of each line is taken from that
// absolute position and every pixel is computed as start + i*(DX, DY); no
// per-pixel position is carried from one line to the next.
type AffineRenderer struct {
	bg    int // 2 or 3
	layer int

	scratch [ScreenWidth]uint32

	refX, refY int32
	lastLine   int

	source affineSource
	tag    uint32
}

// NewAffineRenderer creates a renderer for background bg (2 or 3).
func NewAffineRenderer(bg int) *AffineRenderer {
	if bg != 3 {
		bg = 2
	}
	return &AffineRenderer{
		bg:       bg,
		layer:    LayerBG0 + bg,
		lastLine: -1,
	}
}

func (r *AffineRenderer) params(ctx *Context) *AffineParams {
	return &ctx.Affine[r.bg-2]
}

// ResetReferenceCounters reloads the internal reference point from the
// reference registers. Called at VBlank and when a frame is restarted.
func (r *AffineRenderer) ResetReferenceCounters(ctx *Context) {
	p := r.params(ctx)
	r.refX = p.RefX
	r.refY = p.RefY
	r.lastLine = -1
}

// reloadX and reloadY reload a single axis after a register write. Lines
// already rendered this frame keep their order.
func (r *AffineRenderer) reloadX(ctx *Context) {
	r.refX = r.params(ctx).RefX
}

func (r *AffineRenderer) reloadY(ctx *Context) {
	r.refY = r.params(ctx).RefY
}

// IncrementReferenceCounters advances the internal reference point by one
// line. Called once after each rendered line.
func (r *AffineRenderer) IncrementReferenceCounters(ctx *Context) {
	p := r.params(ctx)
	r.refX += p.DMX
	r.refY += p.DMY
}

// ReferencePoint returns the internal reference point.
func (r *AffineRenderer) ReferencePoint() (x, y int32) {
	return r.refX, r.refY
}

// RenderScanLine renders line and returns 240 pixels. The returned slice
// aliases internal scratch and is overwritten by the next call.
func (r *AffineRenderer) RenderScanLine(ctx *Context, line int) []uint32 {
	if debugChecks && line <= r.lastLine {
		panic(fmt.Sprintf("affine BG%d: line %d rendered after line %d without a reference reset", r.bg, line, r.lastLine))
	}
	r.lastLine = line

	bg := &ctx.BG[r.bg]
	p := r.params(ctx)
	r.tag = layerTag(r.layer, bg.Priority)
	r.source = affineSourceForMode(ctx.Mode)

	x, y := r.refX, r.refY
	if bg.Mosaic {
		// Sample from the first line of the mosaic block. Only the local
		// start moves; the internal reference point keeps the real line.
		offset := int32(mosaicYOffset(line, ctx.Mosaic.BGV))
		x -= p.DMX * offset
		y -= p.DMY * offset
	}

	for i := range r.scratch {
		px := x + int32(i)*p.DX
		py := y + int32(i)*p.DY
		r.scratch[i] = r.fetchPixel(ctx, bg, px>>8, py>>8)
	}

	if bg.Mosaic {
		quantizeHorizontal(r.scratch[:], ctx.Mosaic.BGH)
	}
	return r.scratch[:]
}

func affineSourceForMode(mode uint8) affineSource {
	switch mode {
	case 3:
		return sourceBitmap16
	case 4:
		return sourceBitmap8
	case 5:
		return sourceBitmap16Half
	default:
		return sourceTileMap
	}
}

// fetchPixel samples the background at integer map coordinates.
func (r *AffineRenderer) fetchPixel(ctx *Context, bg *BGControl, x, y int32) uint32 {
	switch r.source {
	case sourceBitmap16:
		if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
			return pixelTransparent
		}
		return makePixel(r.tag, ctx.vram16(uint32(y*ScreenWidth+x)<<1))
	case sourceBitmap8:
		if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
			return pixelTransparent
		}
		index := ctx.VRAM[r.frameBase(ctx)+uint32(y*ScreenWidth+x)]
		if index == 0 {
			return pixelTransparent
		}
		return makePixel(r.tag, ctx.BGPalette[index])
	case sourceBitmap16Half:
		if x < 0 || x >= 160 || y < 0 || y >= 128 {
			return pixelTransparent
		}
		return makePixel(r.tag, ctx.vram16(r.frameBase(ctx)+uint32(y*160+x)<<1))
	default:
		return r.fetchTileMapPixel(ctx, bg, x, y)
	}
}

func (r *AffineRenderer) frameBase(ctx *Context) uint32 {
	if ctx.FrameSelect {
		return bitmapFrameOffset
	}
	return 0
}

// fetchTileMapPixel samples an affine tile map. Maps are 128<<size pixels
// square with one byte per map entry and 8-bit tiles. Coordinates outside
// the map wrap when the overflow flag is set and are transparent otherwise.
func (r *AffineRenderer) fetchTileMapPixel(ctx *Context, bg *BGControl, x, y int32) uint32 {
	sizeShift := 7 + uint(bg.ScreenSize&0x03)
	mask := int32(1)<<sizeShift - 1
	if x&^mask != 0 || y&^mask != 0 {
		if !bg.Overflow {
			return pixelTransparent
		}
		x &= mask
		y &= mask
	}

	tilesPerRowShift := sizeShift - 3
	mapAddr := bg.ScreenBase + uint32(y>>3)<<tilesPerRowShift + uint32(x>>3)
	tile := uint32(ctx.VRAM[mapAddr&bgVRAMMask])

	charAddr := bg.CharBase + tile<<6 + uint32(y&0x07)<<3 + uint32(x&0x07)
	index := ctx.VRAM[charAddr&bgVRAMMask]
	if index == 0 {
		return pixelTransparent
	}
	return makePixel(r.tag, ctx.BGPalette[index])
}
