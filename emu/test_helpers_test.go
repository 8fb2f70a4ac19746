package emu

// newTestPalette fills both palettes with distinct, easily predicted colours.
func newTestPalette(ctx *Context) {
	for i := range ctx.BGPalette {
		ctx.BGPalette[i] = uint16(i) * 0x21
		ctx.OBJPalette[i] = uint16(i)*0x21 + 1
	}
}

// hideAllSprites marks every OAM entry disabled so a zeroed OAM does not
// draw 128 sprites at the origin.
func hideAllSprites(ctx *Context) {
	for i := 0; i < 128; i++ {
		writeOAMEntry(ctx, i, 0x0200, 0, 0)
	}
}

// writeOAMEntry stores the three attribute halfwords of sprite i.
func writeOAMEntry(ctx *Context, i int, attr0, attr1, attr2 uint16) {
	base := i * 8
	putLE16(ctx.OAM[:], base, attr0)
	putLE16(ctx.OAM[:], base+2, attr1)
	putLE16(ctx.OAM[:], base+4, attr2)
}

func putLE16(buf []uint8, offset int, v uint16) {
	buf[offset] = uint8(v)
	buf[offset+1] = uint8(v >> 8)
}

// solidLine returns a layer buffer with every pixel set to p.
func solidLine(p uint32) []uint32 {
	buf := make([]uint32, ScreenWidth)
	for i := range buf {
		buf[i] = p
	}
	return buf
}

// irqRecorder collects raised interrupts.
type irqRecorder struct {
	raised []IRQ
}

func (r *irqRecorder) RequestIRQ(irq IRQ) {
	r.raised = append(r.raised, irq)
}

func (r *irqRecorder) count(irq IRQ) int {
	n := 0
	for _, got := range r.raised {
		if got == irq {
			n++
		}
	}
	return n
}

// fakeLayer is a scanline renderer that returns a fixed buffer and counts
// how often it was asked for a line.
type fakeLayer struct {
	buf   [ScreenWidth]uint32
	calls int
}

func (f *fakeLayer) RenderScanLine(ctx *Context, line int) []uint32 {
	f.calls++
	return f.buf[:]
}

type fakeSpriteLayer struct {
	fakeLayer
	window [ScreenWidth]bool
}

func (f *fakeSpriteLayer) WindowMask() []bool {
	return f.window[:]
}

// fakeBackend records what a mode renderer hands to the compositor.
type fakeBackend struct {
	composited [5][]uint32
	windows    []WindowID
	copied     []int
}

func (b *fakeBackend) CompositeLayers(ctx *Context, obj, bg0, bg1, bg2, bg3 []uint32) {
	b.composited = [5][]uint32{obj, bg0, bg1, bg2, bg3}
}

func (b *fakeBackend) RenderWindow(ctx *Context, w WindowID, line int, objWindow []bool, obj, bg0, bg1, bg2, bg3 []uint32) {
	b.windows = append(b.windows, w)
}

func (b *fakeBackend) CopyLineToFrameBuffer(line int) {
	b.copied = append(b.copied, line)
}
