package emu

import (
	"image"
	"image/color"
)

// WindowID names a window region in the order hardware gives them
// increasing precedence.
type WindowID int

const (
	WindowOBJ WindowID = iota
	Window1
	Window0
)

// Backend receives the layer buffers produced for one line. A nil buffer
// marks a layer that is disabled this line.
type Backend interface {
	CompositeLayers(ctx *Context, obj, bg0, bg1, bg2, bg3 []uint32)
	RenderWindow(ctx *Context, w WindowID, line int, objWindow []bool, obj, bg0, bg1, bg2, bg3 []uint32)
	CopyLineToFrameBuffer(line int)
}

// Compile-time interface check.
var _ Backend = (*Compositor)(nil)

// Compositor resolves layer buffers into final colours and stores finished
// lines in an RGBA framebuffer.
type Compositor struct {
	line        [ScreenWidth]uint16
	framebuffer *image.RGBA
}

// NewCompositor creates a compositor with a black framebuffer.
func NewCompositor() *Compositor {
	return &Compositor{
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
	}
}

// Line returns the RGB555 colours of the line being built.
func (c *Compositor) Line() []uint16 {
	return c.line[:]
}

// Framebuffer returns the RGBA framebuffer.
func (c *Compositor) Framebuffer() *image.RGBA {
	return c.framebuffer
}

// CompositeLayers resolves every pixel of the line. When any window is
// enabled this pass draws the outside region using WINOUT; window passes
// then overwrite their own regions.
func (c *Compositor) CompositeLayers(ctx *Context, obj, bg0, bg1, bg2, bg3 []uint32) {
	mask := WindowMask{Layers: allLayers, Effects: true}
	if ctx.anyWindowEnabled() {
		mask = ctx.WinOut
	}
	layers := [5][]uint32{obj, bg0, bg1, bg2, bg3}
	for x := 0; x < ScreenWidth; x++ {
		c.line[x] = compositePixel(ctx, x, mask, &layers)
	}
}

// RenderWindow redraws the pixels of line covered by window w using that
// window's layer mask and effect setting.
func (c *Compositor) RenderWindow(ctx *Context, w WindowID, line int, objWindow []bool, obj, bg0, bg1, bg2, bg3 []uint32) {
	layers := [5][]uint32{obj, bg0, bg1, bg2, bg3}
	switch w {
	case WindowOBJ:
		if objWindow == nil {
			return
		}
		for x := 0; x < ScreenWidth; x++ {
			if objWindow[x] {
				c.line[x] = compositePixel(ctx, x, ctx.WinOBJ, &layers)
			}
		}
	case Window0, Window1:
		index := 0
		if w == Window1 {
			index = 1
		}
		rect := &ctx.Win[index]
		if !rect.containsLine(line) {
			return
		}
		mask := ctx.WinIn[index]
		rect.eachColumn(func(x int) {
			c.line[x] = compositePixel(ctx, x, mask, &layers)
		})
	}
}

// CopyLineToFrameBuffer expands the finished line to RGBA.
func (c *Compositor) CopyLineToFrameBuffer(line int) {
	if line < 0 || line >= ScreenHeight {
		return
	}
	for x, col := range c.line {
		c.framebuffer.SetRGBA(x, line, rgb555ToRGBA(col))
	}
}

// fillLine sets every pixel of the line to one colour.
func (c *Compositor) fillLine(col uint16) {
	for x := range c.line {
		c.line[x] = col
	}
}

// compositePixel finds the top two visible pixels at x among the layers in
// mask, with the backdrop underneath everything, and applies colour effects.
func compositePixel(ctx *Context, x int, mask WindowMask, layers *[5][]uint32) uint16 {
	top := backdropPixel(ctx.BGPalette[0])
	lower := pixelTransparent
	for i, buf := range layers {
		if buf == nil || mask.Layers&layerBit(i) == 0 {
			continue
		}
		p := buf[x]
		if p < top {
			lower = top
			top = p
		} else if p < lower {
			lower = p
		}
	}

	if !mask.Effects {
		return pixelColor(top)
	}
	if top&pixelSemiTransparent != 0 {
		return ctx.Blend.ResolveSpriteSemiTransparent(lower, top)
	}
	return ctx.Blend.Resolve(lower, top)
}

// rgb555ToRGBA expands a 15-bit colour to 8 bits per channel.
func rgb555ToRGBA(col uint16) color.RGBA {
	r := uint8(col & 0x1F)
	g := uint8((col >> 5) & 0x1F)
	b := uint8((col >> 10) & 0x1F)
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<3 | g>>2,
		B: b<<3 | b>>2,
		A: 255,
	}
}
