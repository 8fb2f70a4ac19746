package emu

import (
	"image/color"
	"testing"
)

// TestPPU_DISPCNT tests mode, frame select and layer enable decoding
func TestPPU_DISPCNT(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regDISPCNT, 0xFFD4)
	ctx := p.Context()

	if ctx.Mode != 4 {
		t.Errorf("expected mode 4, got %d", ctx.Mode)
	}
	if !ctx.FrameSelect || !ctx.OBJMapping1D || !ctx.ForcedBlank {
		t.Error("expected frame select, 1D mapping and forced blank")
	}
	expected := layerBit(LayerOBJ) | layerBit(LayerBG0) | layerBit(LayerBG1) | layerBit(LayerBG2) | layerBit(LayerBG3)
	if ctx.Display != expected {
		t.Errorf("expected display %08X, got %08X", expected, ctx.Display)
	}
	if !ctx.Win0Enabled || !ctx.Win1Enabled || !ctx.OBJWinEnabled {
		t.Error("expected all windows enabled")
	}
	if got := p.Read16(regDISPCNT); got != 0xFFD4 {
		t.Errorf("expected DISPCNT readback FFD4, got %04X", got)
	}
}

// TestPPU_BGCNT tests background control decoding
func TestPPU_BGCNT(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regBG0CNT, 0xE5C6)
	bg := p.Context().BG[0]

	if bg.Priority != 2 {
		t.Errorf("expected priority 2, got %d", bg.Priority)
	}
	if bg.CharBase != 0x4000 {
		t.Errorf("expected char base 0x4000, got 0x%X", bg.CharBase)
	}
	if bg.ScreenBase != 0x2800 {
		t.Errorf("expected screen base 0x2800, got 0x%X", bg.ScreenBase)
	}
	if !bg.Mosaic || !bg.Color256 || !bg.Overflow {
		t.Error("expected mosaic, 256 colour and overflow")
	}
	if bg.ScreenSize != 3 {
		t.Errorf("expected size 3, got %d", bg.ScreenSize)
	}
}

// TestPPU_ScrollRegisters tests 9-bit scroll offsets
func TestPPU_ScrollRegisters(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regBG0HOFS+4*3, 0xFFFF)
	p.Write16(regBG0HOFS+4*3+2, 0x0123)
	bg := p.Context().BG[3]
	if bg.HOffset != 0x1FF || bg.VOffset != 0x123 {
		t.Errorf("expected offsets (1FF, 123), got (%X, %X)", bg.HOffset, bg.VOffset)
	}
	if got := p.Read16(regBG0HOFS + 4*3); got != 0 {
		t.Errorf("scroll registers are write-only, got %04X", got)
	}
}

// TestPPU_BlendRegisters tests BLDCNT, BLDALPHA and BLDY decoding with clamping
func TestPPU_BlendRegisters(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regBLDCNT, 0x2051)
	p.Write16(regBLDALPHA, 0x0A1F)
	p.Write16(regBLDY, 0x0014)
	b := p.Context().Blend

	if b.Target1 != layerBit(LayerBG0)|layerBit(LayerOBJ) {
		t.Errorf("unexpected target 1 %08X", b.Target1)
	}
	if b.Target2 != layerBit(LayerBackdrop) {
		t.Errorf("unexpected target 2 %08X", b.Target2)
	}
	if b.Effect != EffectAlphaBlend {
		t.Errorf("expected alpha blend, got %d", b.Effect)
	}
	if b.EVA != 16 || b.EVB != 10 {
		t.Errorf("expected EVA 16 and EVB 10, got %d and %d", b.EVA, b.EVB)
	}
	if b.EVY != 16 {
		t.Errorf("expected EVY clamped to 16, got %d", b.EVY)
	}
	if got := p.Read16(regBLDALPHA); got != 0x0A1F {
		t.Errorf("expected BLDALPHA readback 0A1F, got %04X", got)
	}
}

// TestPPU_WindowRegisters tests window rectangle and mask decoding
func TestPPU_WindowRegisters(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regWIN0H, 0x0A14)
	p.Write16(regWIN1V, 0x3050)
	p.Write16(regWININ, 0x2101)
	p.Write16(regWINOUT, 0x1000)
	ctx := p.Context()

	if ctx.Win[0].Left != 10 || ctx.Win[0].Right != 20 {
		t.Errorf("expected WIN0 x 10-20, got %d-%d", ctx.Win[0].Left, ctx.Win[0].Right)
	}
	if ctx.Win[1].Top != 0x30 || ctx.Win[1].Bottom != 0x50 {
		t.Errorf("expected WIN1 y 48-80, got %d-%d", ctx.Win[1].Top, ctx.Win[1].Bottom)
	}
	if ctx.WinIn[0].Layers != layerBit(LayerBG0)|layerBit(LayerBackdrop) || ctx.WinIn[0].Effects {
		t.Errorf("unexpected WIN0 mask %+v", ctx.WinIn[0])
	}
	if !ctx.WinIn[1].Effects {
		t.Error("expected effects in WIN1")
	}
	if ctx.WinOut.Layers != layerBit(LayerBackdrop) {
		t.Errorf("the backdrop is always visible outside windows, got %08X", ctx.WinOut.Layers)
	}
	if ctx.WinOBJ.Layers != layerBit(LayerOBJ)|layerBit(LayerBackdrop) {
		t.Errorf("unexpected OBJ window layers %08X", ctx.WinOBJ.Layers)
	}
}

// TestPPU_MosaicRegister tests mosaic size decoding
func TestPPU_MosaicRegister(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regMOSAIC, 0x4321)
	m := p.Context().Mosaic
	if m.BGH != 1 || m.BGV != 2 || m.OBJH != 3 || m.OBJV != 4 {
		t.Errorf("unexpected mosaic sizes %+v", m)
	}
}

// TestPPU_AffineRegisters tests affine parameter and reference point decoding
func TestPPU_AffineRegisters(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regBG2PA+0x10, 0xFF00) // BG3PA = -1.0
	p.Write32(regBG2PA+0x08, 0x0FFFFF00)
	p.Write32(regBG2PA+0x0C, 0x00000500)

	if got := p.Context().Affine[1].DX; got != -0x100 {
		t.Errorf("expected BG3 DX -256, got %d", got)
	}
	a := p.Context().Affine[0]
	if a.RefX != -0x100 {
		t.Errorf("expected sign-extended RefX -256, got %d", a.RefX)
	}
	x, y := p.affine[0].ReferencePoint()
	if x != -0x100 || y != 0x500 {
		t.Errorf("writes should reload the internal point, got (%d, %d)", x, y)
	}
}

// TestPPU_DISPSTATFlagsReadOnly tests that status flags ignore writes
func TestPPU_DISPSTATFlagsReadOnly(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regDISPSTAT, 0xFFFF)
	if got := p.Read16(regDISPSTAT); got != 0xFF38 {
		t.Errorf("expected FF38, got %04X", got)
	}
}

// TestPPU_MemoryPorts tests masking and byte writes on the memory ports
func TestPPU_MemoryPorts(t *testing.T) {
	p := NewPPU(nil)

	p.WritePalette16(0x202, 0xFFFF)
	if p.Context().OBJPalette[1] != 0x7FFF {
		t.Errorf("expected OBJ palette 1 masked to 7FFF, got %04X", p.Context().OBJPalette[1])
	}
	if got := p.ReadPalette16(0x202); got != 0x7FFF {
		t.Errorf("expected palette readback 7FFF, got %04X", got)
	}
	p.WritePalette8(0x004, 0x12)
	if got := p.ReadPalette16(0x004); got != 0x1212 {
		t.Errorf("byte palette writes fill the halfword, got %04X", got)
	}

	p.WriteVRAM8(0x100, 0xAB)
	if got := p.ReadVRAM16(0x100); got != 0xABAB {
		t.Errorf("expected ABAB, got %04X", got)
	}
	p.WriteVRAM8(objCharBase, 0xAB)
	if got := p.ReadVRAM16(objCharBase); got != 0 {
		t.Errorf("byte writes to OBJ VRAM are ignored, got %04X", got)
	}

	p.WriteVRAM16(0x18000, 0x1234)
	if got := p.ReadVRAM16(0x10000); got != 0x1234 {
		t.Errorf("upper VRAM should mirror the OBJ area, got %04X", got)
	}

	p.WriteOAM16(0x402, 0xBEEF)
	if got := p.ReadOAM16(0x002); got != 0xBEEF {
		t.Errorf("OAM should wrap at 1KB, got %04X", got)
	}
}

// TestPPU_LineTiming tests HBlank, VBlank and line counter timing
func TestPPU_LineTiming(t *testing.T) {
	irq := &irqRecorder{}
	p := NewPPU(irq)
	p.Write16(regDISPSTAT, statusVBlankIRQ|statusHBlankIRQ)

	p.AddClocks(hblankStartCycle - 1)
	if p.Read16(regDISPSTAT)&statusHBlank != 0 {
		t.Fatal("HBlank should not start early")
	}
	p.AddClocks(1)
	if p.Read16(regDISPSTAT)&statusHBlank == 0 {
		t.Fatal("expected HBlank flag")
	}
	if irq.count(IRQHBlank) != 1 {
		t.Errorf("expected one HBlank IRQ, got %d", irq.count(IRQHBlank))
	}

	p.AddClocks(cyclesPerLine - hblankStartCycle)
	if p.Line() != 1 || p.LineCycle() != 0 {
		t.Errorf("expected line 1 cycle 0, got line %d cycle %d", p.Line(), p.LineCycle())
	}
	if p.Read16(regDISPSTAT)&statusHBlank != 0 {
		t.Error("HBlank should clear on a new line")
	}

	p.AddClocks((VBlankStartLine - 1) * cyclesPerLine)
	if p.Line() != VBlankStartLine {
		t.Fatalf("expected line %d, got %d", VBlankStartLine, p.Line())
	}
	if p.Read16(regVCOUNT) != VBlankStartLine {
		t.Errorf("VCOUNT should report the current line")
	}
	if p.Read16(regDISPSTAT)&statusVBlank == 0 {
		t.Error("expected VBlank flag")
	}
	if irq.count(IRQVBlank) != 1 {
		t.Errorf("expected one VBlank IRQ, got %d", irq.count(IRQVBlank))
	}

	p.AddClocks((totalLines - 1 - VBlankStartLine) * cyclesPerLine)
	if p.Line() != totalLines-1 {
		t.Fatalf("expected line %d, got %d", totalLines-1, p.Line())
	}
	if p.Read16(regDISPSTAT)&statusVBlank != 0 {
		t.Error("VBlank flag should drop on the last line")
	}

	p.AddClocks(cyclesPerLine)
	if p.Line() != 0 {
		t.Errorf("expected wrap to line 0, got %d", p.Line())
	}
	if irq.count(IRQHBlank) != totalLines {
		t.Errorf("expected an HBlank IRQ on every line, got %d", irq.count(IRQHBlank))
	}
}

// TestPPU_VCounterMatch tests the VCounter flag and interrupt
func TestPPU_VCounterMatch(t *testing.T) {
	irq := &irqRecorder{}
	p := NewPPU(irq)
	p.Write16(regDISPSTAT, 5<<8|statusVCounterIRQ)

	p.AddClocks(4 * cyclesPerLine)
	if p.Read16(regDISPSTAT)&statusVCounter != 0 {
		t.Error("no match expected on line 4")
	}
	p.AddClocks(cyclesPerLine)
	if p.Read16(regDISPSTAT)&statusVCounter == 0 {
		t.Error("expected V-counter match flag on line 5")
	}
	if irq.count(IRQVCounter) != 1 {
		t.Errorf("expected one V-counter IRQ, got %d", irq.count(IRQVCounter))
	}
	p.AddClocks(cyclesPerLine)
	if p.Read16(regDISPSTAT)&statusVCounter != 0 {
		t.Error("match flag should clear on line 6")
	}
}

// TestPPU_NextIRQEventTimes tests cycles until each interrupt
func TestPPU_NextIRQEventTimes(t *testing.T) {
	p := NewPPU(nil)

	if p.NextHBlankIRQEventTime() != NoEvent || p.NextVBlankIRQEventTime() != NoEvent || p.NextVCounterIRQEventTime() != NoEvent {
		t.Fatal("disabled interrupts should report NoEvent")
	}
	if p.NextEventTime() != NoEvent {
		t.Fatal("expected NoEvent with every interrupt disabled")
	}

	p.Write16(regDISPSTAT, 3<<8|statusVBlankIRQ|statusHBlankIRQ|statusVCounterIRQ)

	if got := p.NextHBlankIRQEventTime(); got != hblankStartCycle {
		t.Errorf("HBlank: expected %d, got %d", hblankStartCycle, got)
	}
	if got := p.NextVBlankIRQEventTime(); got != VBlankStartLine*cyclesPerLine {
		t.Errorf("VBlank: expected %d, got %d", VBlankStartLine*cyclesPerLine, got)
	}
	if got := p.NextVCounterIRQEventTime(); got != 3*cyclesPerLine {
		t.Errorf("VCounter: expected %d, got %d", 3*cyclesPerLine, got)
	}
	if got := p.NextEventTime(); got != hblankStartCycle {
		t.Errorf("NextEventTime: expected %d, got %d", hblankStartCycle, got)
	}

	p.AddClocks(1100)
	if got := p.NextHBlankIRQEventTime(); got != cyclesPerLine-1100+hblankStartCycle {
		t.Errorf("HBlank after 1100: expected %d, got %d", cyclesPerLine-1100+hblankStartCycle, got)
	}
	if got := p.NextVBlankIRQEventTime(); got != VBlankStartLine*cyclesPerLine-1100 {
		t.Errorf("VBlank after 1100: expected %d, got %d", VBlankStartLine*cyclesPerLine-1100, got)
	}
}

// TestPPU_NextVCounterCurrentLine tests that a match on the current line is a frame away
func TestPPU_NextVCounterCurrentLine(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regDISPSTAT, statusVCounterIRQ)
	if got := p.NextVCounterIRQEventTime(); got != CyclesPerFrame {
		t.Errorf("a match on the current line is a frame away: expected %d, got %d", CyclesPerFrame, got)
	}

	p.Write16(regDISPSTAT, 230<<8|statusVCounterIRQ)
	if got := p.NextVCounterIRQEventTime(); got != NoEvent {
		t.Errorf("a line past 227 never matches, got %d", got)
	}
}

type fixedEventSource int

func (f fixedEventSource) NextEventTime() int {
	return int(f)
}

// TestNextEventTime tests the earliest event across sources
func TestNextEventTime(t *testing.T) {
	tests := []struct {
		name     string
		sources  []EventSource
		expected int
	}{
		{"none", nil, NoEvent},
		{"all idle", []EventSource{fixedEventSource(NoEvent), fixedEventSource(NoEvent)}, NoEvent},
		{"skips idle", []EventSource{fixedEventSource(NoEvent), fixedEventSource(500), fixedEventSource(200)}, 200},
		{"zero", []EventSource{fixedEventSource(0), fixedEventSource(10)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextEventTime(tt.sources...); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

// TestPPU_AffineCountersAdvancePerLine tests that the reference point steps once per visible line
func TestPPU_AffineCountersAdvancePerLine(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regBG2PA+0x06, 0x0100) // PD
	p.Write32(regBG2PA+0x0C, 0x0500)

	p.AddClocks(hblankStartCycle)
	if _, y := p.affine[0].ReferencePoint(); y != 0x600 {
		t.Errorf("expected y 0x600 after one line, got 0x%X", y)
	}

	// VBlank reloads the reference point from the registers
	p.AddClocks(CyclesPerFrame)
	if _, y := p.affine[0].ReferencePoint(); y != 0x500+0x100 {
		t.Errorf("expected reload at VBlank then one line, got 0x%X", y)
	}
}

// TestPPU_ForcedBlank tests that forced blank renders white
func TestPPU_ForcedBlank(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regDISPCNT, 0x0080)
	p.AddClocks(hblankStartCycle)

	expected := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := p.Framebuffer().RGBAAt(0, 0); got != expected {
		t.Errorf("expected white, got %v", got)
	}
}

func setupMode3(p *PPU) {
	p.Write16(regDISPCNT, 0x0403)
	p.Write16(regBG2PA, 0x0100)
	p.Write16(regBG2PA+0x06, 0x0100)
	p.WriteVRAM16(0, 0x001F)
	p.WriteVRAM16((1*ScreenWidth+2)*2, 0x03E0)
}

// TestPPU_RenderFrameMode3 tests a full bitmap frame
func TestPPU_RenderFrameMode3(t *testing.T) {
	p := NewPPU(nil)
	setupMode3(p)
	p.RenderFrame()

	fb := p.Framebuffer()
	if got := fb.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("(0,0): expected red, got %v", got)
	}
	if got := fb.RGBAAt(2, 1); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("(2,1): expected green, got %v", got)
	}
	if got := fb.RGBAAt(1, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("(1,0): expected black, got %v", got)
	}
	if p.Line() != 0 || p.LineCycle() != 0 {
		t.Errorf("a full frame should end where it started, got line %d cycle %d", p.Line(), p.LineCycle())
	}
}

// TestPPU_LayerFilter tests that filtered layers stay hidden when DISPCNT enables them
func TestPPU_LayerFilter(t *testing.T) {
	p := NewPPU(nil)
	setupMode3(p)
	p.WritePalette16(0, 0x7C00)
	p.SetLayerFilter(allLayers &^ layerBit(LayerBG2))
	p.RenderFrame()

	if got := p.Framebuffer().RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("filtered BG2 should show the backdrop, got %v", got)
	}

	p.SetLayerFilter(allLayers)
	p.RenderFrame()
	if got := p.Framebuffer().RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("restored BG2 should be visible, got %v", got)
	}
}

// TestPPU_Mode0Frame tests a full tiled frame
func TestPPU_Mode0Frame(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regDISPCNT, 0x0100)
	p.Write16(regBG0CNT, 0x0100) // screen base 0x800
	p.WriteVRAM16(0x800, 0x0001)
	p.WriteVRAM16(32, 0x2211)
	p.WritePalette16(2, 0x001F)
	p.WritePalette16(4, 0x03E0)
	p.RenderFrame()

	fb := p.Framebuffer()
	if got := fb.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("(0,0): expected colour 1, got %v", got)
	}
	if got := fb.RGBAAt(2, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("(2,0): expected colour 2, got %v", got)
	}
}
