// Package cli provides a windowed viewer for PPU snapshots.
// It handles keyboard input and draws the rendered frame without a full UI.
package cli

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/user-none/egba/emu"
)

// layerKeys toggles BG0-BG3 and OBJ, matching Config.ToggleLayer.
var layerKeys = [5]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// Runner drives a PPU restored from a snapshot.
// While running it renders a full frame every tick. While paused, space
// advances one scanline so a frame can be watched being built.
type Runner struct {
	ppu    *emu.PPU
	config *Config
	paused bool

	// onConfigChange persists layer toggles; may be nil
	onConfigChange func(*Config)

	offscreen *ebiten.Image           // Native resolution copy of the framebuffer
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
}

// NewRunner creates a new Runner for p using the layer and pause settings in
// config. onConfigChange is called after the user changes a setting.
func NewRunner(p *emu.PPU, config *Config, onConfigChange func(*Config)) *Runner {
	p.SetLayerFilter(config.LayerFilter())
	return &Runner{
		ppu:            p,
		config:         config,
		paused:         config.StartPaused,
		onConfigChange: onConfigChange,
		offscreen:      ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight),
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}

	r.pollInput()

	if r.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			r.ppu.AddClocks(emu.CyclesPerLine)
		}
		return nil
	}

	r.ppu.RenderFrame()
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.offscreen.WritePixels(r.ppu.Framebuffer().Pix)

	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW, nativeH := float64(emu.ScreenWidth), float64(emu.ScreenHeight)

	scale := float64(screenW) / nativeW
	if scaleY := float64(screenH) / nativeH; scaleY < scale {
		scale = scaleY
	}

	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(scale, scale)
	r.drawOpts.GeoM.Translate(offsetX, offsetY)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)

	if r.paused {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("PAUSED  line %d", r.ppu.Line()))
	}
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}

// pollInput handles the pause and layer toggle keys.
func (r *Runner) pollInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.paused = !r.paused
	}

	changed := false
	for i, key := range layerKeys {
		if inpututil.IsKeyJustPressed(key) {
			r.config.ToggleLayer(i)
			changed = true
		}
	}
	if !changed {
		return
	}

	r.ppu.SetLayerFilter(r.config.LayerFilter())
	if r.onConfigChange != nil {
		r.onConfigChange(r.config)
	}
}
