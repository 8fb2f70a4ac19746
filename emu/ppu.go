package emu

import "image"

// PPU timing constants (in CPU cycles)
const (
	cyclesPerLine = 1232
	// HBlank starts after 240 pixels at 4 cycles each plus the fetch delay
	hblankStartCycle = 1006
	totalLines       = 228
	VBlankStartLine  = ScreenHeight

	// CyclesPerLine and CyclesPerFrame are the lengths of one scanline and
	// one full frame.
	CyclesPerLine  = cyclesPerLine
	CyclesPerFrame = cyclesPerLine * totalLines
)

// LCD I/O register offsets
const (
	regDISPCNT  = 0x00
	regDISPSTAT = 0x04
	regVCOUNT   = 0x06
	regBG0CNT   = 0x08
	regBG3CNT   = 0x0E
	regBG0HOFS  = 0x10
	regBG2PA    = 0x20
	regWIN0H    = 0x40
	regWIN1H    = 0x42
	regWIN0V    = 0x44
	regWIN1V    = 0x46
	regWININ    = 0x48
	regWINOUT   = 0x4A
	regMOSAIC   = 0x4C
	regBLDCNT   = 0x50
	regBLDALPHA = 0x52
	regBLDY     = 0x54

	ioSize = 0x58
)

// DISPSTAT bits
const (
	statusVBlank      = 0x01
	statusHBlank      = 0x02
	statusVCounter    = 0x04
	statusVBlankIRQ   = 0x08
	statusHBlankIRQ   = 0x10
	statusVCounterIRQ = 0x20
)

// forcedBlankColor is shown on every line while DISPCNT bit 7 is set.
const forcedBlankColor = 0x7FFF

// PPU is the graphics controller: it owns the register file, video memory
// and line timing, and drives the renderers once per visible line.
type PPU struct {
	ctx Context
	io  [ioSize]uint8

	text       [4]*TextRenderer
	affine     [2]*AffineRenderer
	sprites    *SpriteRenderer
	modes      [8]*ModeRenderer
	compositor *Compositor

	irq IRQLine

	line      int
	lineCycle int

	// Host-side layer filter ANDed with the DISPCNT enable bits
	layerFilter uint32
}

// NewPPU creates a PPU. irq may be nil when interrupts are not needed.
func NewPPU(irq IRQLine) *PPU {
	p := &PPU{
		sprites:     NewSpriteRenderer(),
		compositor:  NewCompositor(),
		irq:         irq,
		layerFilter: allLayers,
	}
	for i := range p.text {
		p.text[i] = NewTextRenderer(i)
	}
	p.affine[0] = NewAffineRenderer(2)
	p.affine[1] = NewAffineRenderer(3)
	p.modes = newModeRenderers(p.compositor, p.sprites, p.text, p.affine)
	return p
}

// Context returns the render context. Callers must treat it as read-only.
func (p *PPU) Context() *Context {
	return &p.ctx
}

// Framebuffer returns the RGBA framebuffer.
func (p *PPU) Framebuffer() *image.RGBA {
	return p.compositor.Framebuffer()
}

// Line returns the current scanline (0-227).
func (p *PPU) Line() int {
	return p.line
}

// LineCycle returns the cycle offset within the current scanline.
func (p *PPU) LineCycle() int {
	return p.lineCycle
}

// SetLayerFilter hides layers regardless of DISPCNT. mask uses pixel layer
// bits; the default shows everything.
func (p *PPU) SetLayerFilter(mask uint32) {
	p.layerFilter = mask
	p.decodeRegister(regDISPCNT)
}

// =============================================================================
// Register file
// =============================================================================

// Read16 reads an LCD I/O register. Write-only registers read as 0.
func (p *PPU) Read16(addr uint32) uint16 {
	addr &^= 1
	switch {
	case addr == regVCOUNT:
		return uint16(p.line)
	case addr == regDISPCNT, addr == regDISPSTAT,
		addr >= regBG0CNT && addr <= regBG3CNT,
		addr == regWININ, addr == regWINOUT,
		addr == regBLDCNT, addr == regBLDALPHA:
		return p.io16(addr)
	}
	return 0
}

// Write8 writes one byte of an LCD I/O register.
func (p *PPU) Write8(addr uint32, value uint8) {
	if addr >= ioSize {
		return
	}
	switch addr {
	case regDISPSTAT:
		// Status flags are read-only
		value = value&0x38 | p.io[addr]&0x07
	case regVCOUNT, regVCOUNT + 1:
		return
	}
	p.io[addr] = value
	p.decodeRegister(addr &^ 1)
}

// Write16 writes an LCD I/O register halfword.
func (p *PPU) Write16(addr uint32, value uint16) {
	p.Write8(addr, uint8(value))
	p.Write8(addr+1, uint8(value>>8))
}

// Write32 writes an LCD I/O register word.
func (p *PPU) Write32(addr uint32, value uint32) {
	p.Write16(addr, uint16(value))
	p.Write16(addr+2, uint16(value>>16))
}

func (p *PPU) io16(addr uint32) uint16 {
	return uint16(p.io[addr]) | uint16(p.io[addr+1])<<8
}

func (p *PPU) io32(addr uint32) uint32 {
	return uint32(p.io16(addr)) | uint32(p.io16(addr+2))<<16
}

// decodeRegister refreshes the context fields backed by the halfword at addr.
func (p *PPU) decodeRegister(addr uint32) {
	v := p.io16(addr)
	ctx := &p.ctx

	switch {
	case addr == regDISPCNT:
		p.decodeDISPCNT(v)

	case addr >= regBG0CNT && addr <= regBG3CNT:
		bg := &ctx.BG[(addr-regBG0CNT)/2]
		bg.Priority = uint8(v & 0x03)
		bg.CharBase = uint32(v>>2&0x03) * 0x4000
		bg.Mosaic = v&0x0040 != 0
		bg.Color256 = v&0x0080 != 0
		bg.ScreenBase = uint32(v>>8&0x1F) * 0x800
		bg.Overflow = v&0x2000 != 0
		bg.ScreenSize = uint8(v >> 14)

	case addr >= regBG0HOFS && addr < regBG2PA:
		bg := &ctx.BG[(addr-regBG0HOFS)/4]
		if addr&0x02 == 0 {
			bg.HOffset = v & 0x01FF
		} else {
			bg.VOffset = v & 0x01FF
		}

	case addr >= regBG2PA && addr < regWIN0H:
		p.decodeAffine(addr)

	case addr == regWIN0H, addr == regWIN1H:
		w := &ctx.Win[(addr-regWIN0H)/2]
		w.Right = uint8(v)
		w.Left = uint8(v >> 8)

	case addr == regWIN0V, addr == regWIN1V:
		w := &ctx.Win[(addr-regWIN0V)/2]
		w.Bottom = uint8(v)
		w.Top = uint8(v >> 8)

	case addr == regWININ:
		ctx.WinIn[0] = decodeWindowMask(uint8(v))
		ctx.WinIn[1] = decodeWindowMask(uint8(v >> 8))

	case addr == regWINOUT:
		ctx.WinOut = decodeWindowMask(uint8(v))
		ctx.WinOBJ = decodeWindowMask(uint8(v >> 8))

	case addr == regMOSAIC:
		ctx.Mosaic = MosaicSizes{
			BGH:  uint8(v & 0x0F),
			BGV:  uint8(v >> 4 & 0x0F),
			OBJH: uint8(v >> 8 & 0x0F),
			OBJV: uint8(v >> 12 & 0x0F),
		}

	case addr == regBLDCNT:
		ctx.Blend.Target1 = layerMaskFromBits(v & 0x3F)
		ctx.Blend.Effect = uint8(v >> 6 & 0x03)
		ctx.Blend.Target2 = layerMaskFromBits(v >> 8 & 0x3F)

	case addr == regBLDALPHA:
		ctx.Blend.EVA = clampCoefficient(v & 0x1F)
		ctx.Blend.EVB = clampCoefficient(v >> 8 & 0x1F)

	case addr == regBLDY:
		ctx.Blend.EVY = clampCoefficient(v & 0x1F)
	}
}

func (p *PPU) decodeDISPCNT(v uint16) {
	ctx := &p.ctx
	ctx.Mode = uint8(v & 0x07)
	ctx.FrameSelect = v&0x0010 != 0
	ctx.OBJMapping1D = v&0x0040 != 0
	ctx.ForcedBlank = v&0x0080 != 0

	var display uint32
	for i := 0; i < 4; i++ {
		if v&(0x0100<<uint(i)) != 0 {
			display |= layerBit(LayerBG0 + i)
		}
	}
	if v&0x1000 != 0 {
		display |= layerBit(LayerOBJ)
	}
	ctx.Display = display & p.layerFilter

	ctx.Win0Enabled = v&0x2000 != 0
	ctx.Win1Enabled = v&0x4000 != 0
	ctx.OBJWinEnabled = v&0x8000 != 0
}

// decodeAffine handles BG2PA-BG3Y. Writing a reference point reloads the
// renderer's internal counter for that axis immediately.
func (p *PPU) decodeAffine(addr uint32) {
	index := (addr - regBG2PA) / 0x10
	base := regBG2PA + index*0x10
	params := &p.ctx.Affine[index]
	renderer := p.affine[index]

	switch addr - base {
	case 0x00:
		params.DX = int32(int16(p.io16(addr)))
	case 0x02:
		params.DMX = int32(int16(p.io16(addr)))
	case 0x04:
		params.DY = int32(int16(p.io16(addr)))
	case 0x06:
		params.DMY = int32(int16(p.io16(addr)))
	case 0x08, 0x0A:
		params.RefX = signExtend28(p.io32(base + 0x08))
		renderer.reloadX(&p.ctx)
	case 0x0C, 0x0E:
		params.RefY = signExtend28(p.io32(base + 0x0C))
		renderer.reloadY(&p.ctx)
	}
}

// decodeWindowMask decodes one WININ/WINOUT byte. The backdrop is always
// visible inside every window region.
func decodeWindowMask(b uint8) WindowMask {
	return WindowMask{
		Layers:  layerMaskFromBits(uint16(b&0x1F)) | layerBit(LayerBackdrop),
		Effects: b&0x20 != 0,
	}
}

func clampCoefficient(v uint16) uint8 {
	if v > 16 {
		return 16
	}
	return uint8(v)
}

func signExtend28(v uint32) int32 {
	return int32(v<<4) >> 4
}

// =============================================================================
// Video memory ports
// =============================================================================

// WriteVRAM16 writes a halfword to VRAM.
func (p *PPU) WriteVRAM16(addr uint32, value uint16) {
	addr = vramIndex(addr) &^ 1
	p.ctx.VRAM[addr] = uint8(value)
	p.ctx.VRAM[addr+1] = uint8(value >> 8)
}

// WriteVRAM8 writes a byte to VRAM. Byte writes to background memory store
// the value in both halves of the halfword; writes to OBJ memory are ignored.
func (p *PPU) WriteVRAM8(addr uint32, value uint8) {
	addr = vramIndex(addr)
	limit := uint32(objCharBase)
	if p.ctx.Mode >= 3 {
		limit = 0x14000
	}
	if addr >= limit {
		return
	}
	p.WriteVRAM16(addr, uint16(value)|uint16(value)<<8)
}

// ReadVRAM16 reads a halfword from VRAM.
func (p *PPU) ReadVRAM16(addr uint32) uint16 {
	return p.ctx.vram16(addr)
}

// WritePalette16 writes palette RAM. Entries 0-255 are the background
// palette and 256-511 the OBJ palette.
func (p *PPU) WritePalette16(addr uint32, value uint16) {
	index := (addr & 0x3FF) >> 1
	if index < 256 {
		p.ctx.BGPalette[index] = value & pixelColorMask
	} else {
		p.ctx.OBJPalette[index-256] = value & pixelColorMask
	}
}

// WritePalette8 writes a byte to palette RAM, duplicated into both halves.
func (p *PPU) WritePalette8(addr uint32, value uint8) {
	p.WritePalette16(addr, uint16(value)|uint16(value)<<8)
}

// ReadPalette16 reads palette RAM.
func (p *PPU) ReadPalette16(addr uint32) uint16 {
	index := (addr & 0x3FF) >> 1
	if index < 256 {
		return p.ctx.BGPalette[index]
	}
	return p.ctx.OBJPalette[index-256]
}

// WriteOAM16 writes a halfword to OAM. OAM ignores byte writes.
func (p *PPU) WriteOAM16(addr uint32, value uint16) {
	addr &= 0x3FE
	p.ctx.OAM[addr] = uint8(value)
	p.ctx.OAM[addr+1] = uint8(value >> 8)
}

// ReadOAM16 reads a halfword from OAM.
func (p *PPU) ReadOAM16(addr uint32) uint16 {
	return p.ctx.oam16(addr)
}

// =============================================================================
// Line timing
// =============================================================================

// AddClocks advances the PPU by cycles CPU cycles, rendering each visible
// line as it enters HBlank and raising enabled interrupts.
func (p *PPU) AddClocks(cycles int) {
	p.lineCycle += cycles
	for {
		if !p.status(statusHBlank) && p.lineCycle >= hblankStartCycle {
			p.enterHBlank()
			continue
		}
		if p.lineCycle >= cyclesPerLine {
			p.lineCycle -= cyclesPerLine
			p.nextLine()
			continue
		}
		return
	}
}

// RenderFrame restarts the frame at line 0 and runs it to completion.
func (p *PPU) RenderFrame() {
	p.line = 0
	p.lineCycle = 0
	p.setStatus(statusHBlank|statusVBlank, false)
	for _, a := range p.affine {
		a.ResetReferenceCounters(&p.ctx)
	}
	p.AddClocks(CyclesPerFrame)
}

func (p *PPU) enterHBlank() {
	p.setStatus(statusHBlank, true)
	if p.line < ScreenHeight {
		p.renderLine()
	}
	if p.status(statusHBlankIRQ) {
		p.raise(IRQHBlank)
	}
}

func (p *PPU) renderLine() {
	if p.ctx.ForcedBlank {
		p.compositor.fillLine(forcedBlankColor)
		p.compositor.CopyLineToFrameBuffer(p.line)
	} else {
		p.modes[p.ctx.Mode&0x07].RenderScanLine(&p.ctx, p.line)
	}
	// Internal reference points advance on every visible line, whether or
	// not the background was displayed
	for _, a := range p.affine {
		a.IncrementReferenceCounters(&p.ctx)
	}
}

func (p *PPU) nextLine() {
	p.setStatus(statusHBlank, false)
	p.line++
	if p.line == totalLines {
		p.line = 0
	}

	switch p.line {
	case VBlankStartLine:
		p.setStatus(statusVBlank, true)
		for _, a := range p.affine {
			a.ResetReferenceCounters(&p.ctx)
		}
		if p.status(statusVBlankIRQ) {
			p.raise(IRQVBlank)
		}
	case totalLines - 1:
		// The VBlank flag drops on the last line of the frame
		p.setStatus(statusVBlank, false)
	}

	p.checkVCounter()
}

func (p *PPU) checkVCounter() {
	match := p.line == int(p.io[regDISPSTAT+1])
	p.setStatus(statusVCounter, match)
	if match && p.status(statusVCounterIRQ) {
		p.raise(IRQVCounter)
	}
}

func (p *PPU) status(bit uint8) bool {
	return p.io[regDISPSTAT]&bit != 0
}

func (p *PPU) setStatus(bits uint8, on bool) {
	if on {
		p.io[regDISPSTAT] |= bits
	} else {
		p.io[regDISPSTAT] &^= bits
	}
}

func (p *PPU) raise(irq IRQ) {
	if p.irq != nil {
		p.irq.RequestIRQ(irq)
	}
}

// =============================================================================
// Interrupt scheduling
// =============================================================================

// Compile-time interface check.
var _ EventSource = (*PPU)(nil)

// NextVBlankIRQEventTime returns the cycles until the next VBlank interrupt,
// or NoEvent when it is disabled.
func (p *PPU) NextVBlankIRQEventTime() int {
	if !p.status(statusVBlankIRQ) {
		return NoEvent
	}
	return p.cyclesUntilLine(VBlankStartLine)
}

// NextHBlankIRQEventTime returns the cycles until the next HBlank interrupt,
// or NoEvent when it is disabled.
func (p *PPU) NextHBlankIRQEventTime() int {
	if !p.status(statusHBlankIRQ) {
		return NoEvent
	}
	if p.lineCycle < hblankStartCycle {
		return hblankStartCycle - p.lineCycle
	}
	return cyclesPerLine - p.lineCycle + hblankStartCycle
}

// NextVCounterIRQEventTime returns the cycles until the next V-counter match
// interrupt, or NoEvent when it is disabled or can never match.
func (p *PPU) NextVCounterIRQEventTime() int {
	if !p.status(statusVCounterIRQ) {
		return NoEvent
	}
	target := int(p.io[regDISPSTAT+1])
	if target >= totalLines {
		return NoEvent
	}
	return p.cyclesUntilLine(target)
}

// NextEventTime returns the earliest of the PPU's interrupt events.
func (p *PPU) NextEventTime() int {
	next := minEventTime(p.NextVBlankIRQEventTime(), p.NextHBlankIRQEventTime())
	return minEventTime(next, p.NextVCounterIRQEventTime())
}

// cyclesUntilLine returns the cycles until the start of target. The current
// line's start has already passed, so a target equal to the current line is
// a full frame away.
func (p *PPU) cyclesUntilLine(target int) int {
	lines := (target - p.line + totalLines) % totalLines
	if lines == 0 {
		lines = totalLines
	}
	return lines*cyclesPerLine - p.lineCycle
}
