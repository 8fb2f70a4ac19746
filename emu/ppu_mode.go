package emu

// ScanlineRenderer produces one layer buffer for a line.
type ScanlineRenderer interface {
	RenderScanLine(ctx *Context, line int) []uint32
}

// SpriteLayer is the OBJ layer renderer, which also reports OBJ window
// coverage for the line it last rendered.
type SpriteLayer interface {
	ScanlineRenderer
	WindowMask() []bool
}

// Compile-time interface checks.
var _ ScanlineRenderer = (*TextRenderer)(nil)
var _ ScanlineRenderer = (*AffineRenderer)(nil)
var _ SpriteLayer = (*SpriteRenderer)(nil)

// ModeRenderer composes one line for a single video mode from a fixed set
// of layer renderers.
type ModeRenderer struct {
	obj     SpriteLayer
	bgs     [4]ScanlineRenderer // nil where the mode has no such background
	backend Backend
}

// NewModeRenderer creates a mode renderer. Pass nil for backgrounds the
// mode does not display.
func NewModeRenderer(backend Backend, obj SpriteLayer, bg0, bg1, bg2, bg3 ScanlineRenderer) *ModeRenderer {
	return &ModeRenderer{
		obj:     obj,
		bgs:     [4]ScanlineRenderer{bg0, bg1, bg2, bg3},
		backend: backend,
	}
}

// newModeRenderers builds the eight mode renderers. Modes 6 and 7 are not
// valid on hardware and display only the backdrop.
func newModeRenderers(backend Backend, obj *SpriteRenderer, text [4]*TextRenderer, affine [2]*AffineRenderer) [8]*ModeRenderer {
	var modes [8]*ModeRenderer
	modes[0] = NewModeRenderer(backend, obj, text[0], text[1], text[2], text[3])
	modes[1] = NewModeRenderer(backend, obj, text[0], text[1], affine[0], nil)
	modes[2] = NewModeRenderer(backend, obj, nil, nil, affine[0], affine[1])
	for m := 3; m <= 5; m++ {
		modes[m] = NewModeRenderer(backend, obj, nil, nil, affine[0], nil)
	}
	for m := 6; m <= 7; m++ {
		modes[m] = NewModeRenderer(backend, nil, nil, nil, nil, nil)
	}
	return modes
}

// RenderScanLine renders every enabled layer of the mode, composites them,
// applies the window regions and hands the line to the framebuffer.
func (m *ModeRenderer) RenderScanLine(ctx *Context, line int) {
	var obj []uint32
	var objWindow []bool
	if m.obj != nil && ctx.layerEnabled(LayerOBJ) {
		obj = m.obj.RenderScanLine(ctx, line)
		objWindow = m.obj.WindowMask()
	}

	var bg [4][]uint32
	for i, r := range m.bgs {
		if r != nil && ctx.layerEnabled(LayerBG0+i) {
			bg[i] = r.RenderScanLine(ctx, line)
		}
	}

	m.backend.CompositeLayers(ctx, obj, bg[0], bg[1], bg[2], bg[3])

	// Later windows override earlier ones, so window 0 goes last
	if ctx.OBJWinEnabled {
		m.backend.RenderWindow(ctx, WindowOBJ, line, objWindow, obj, bg[0], bg[1], bg[2], bg[3])
	}
	if ctx.Win1Enabled {
		m.backend.RenderWindow(ctx, Window1, line, objWindow, obj, bg[0], bg[1], bg[2], bg[3])
	}
	if ctx.Win0Enabled {
		m.backend.RenderWindow(ctx, Window0, line, objWindow, obj, bg[0], bg[1], bg[2], bg[3])
	}

	m.backend.CopyLineToFrameBuffer(line)
}
