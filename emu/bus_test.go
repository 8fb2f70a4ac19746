package emu

import "testing"

// TestBus_RoutesVideoMemory tests palette, VRAM and OAM routing
func TestBus_RoutesVideoMemory(t *testing.T) {
	p := NewPPU(nil)
	b := NewBus(p, nil)

	b.Write16(0x05000002, 0x801F)
	if got := p.ReadPalette16(2); got != 0x001F {
		t.Errorf("palette: expected 0x001F, got 0x%04X", got)
	}
	if got := b.Read16(0x05000002); got != 0x001F {
		t.Errorf("palette read back: expected 0x001F, got 0x%04X", got)
	}

	b.Write32(0x06000100, 0xDEADBEEF)
	if got := p.ReadVRAM16(0x100); got != 0xBEEF {
		t.Errorf("VRAM low: expected 0xBEEF, got 0x%04X", got)
	}
	if got := b.Read32(0x06000100); got != 0xDEADBEEF {
		t.Errorf("VRAM word: expected 0xDEADBEEF, got 0x%08X", got)
	}

	b.Write16(0x07000008, 0x1234)
	if got := p.ReadOAM16(8); got != 0x1234 {
		t.Errorf("OAM: expected 0x1234, got 0x%04X", got)
	}
	// OAM drops byte writes
	b.Write8(0x07000008, 0xFF)
	if got := b.Read8(0x07000008); got != 0x34 {
		t.Errorf("OAM byte write should be ignored, got 0x%02X", got)
	}
}

// TestBus_RoutesRegisters tests LCD register routing and unmapped reads
func TestBus_RoutesRegisters(t *testing.T) {
	p := NewPPU(nil)
	b := NewBus(p, nil)

	b.Write16(0x04000000, 0x0403)
	if p.Context().Mode != 3 {
		t.Errorf("expected mode 3, got %d", p.Context().Mode)
	}
	if got := b.Read8(0x04000001); got != 0x04 {
		t.Errorf("DISPCNT high byte: expected 0x04, got 0x%02X", got)
	}
	if got := b.Read16(0x00000000); got != 0 {
		t.Errorf("unmapped read should be 0, got 0x%04X", got)
	}
}

// TestBus_Backup tests the 8-bit backup bus with and without a chip
func TestBus_Backup(t *testing.T) {
	b := NewBus(NewPPU(nil), NewSRAM())

	b.Write8(0x0E000010, 0x5A)
	if got := b.Read8(0x0E000010); got != 0x5A {
		t.Errorf("expected 0x5A, got 0x%02X", got)
	}
	if got := b.Read16(0x0E000010); got != 0x5A5A {
		t.Errorf("halfword reads repeat the byte, got 0x%04X", got)
	}

	none := NewBus(NewPPU(nil), nil)
	if got := none.Read8(0x0E000000); got != 0xFF {
		t.Errorf("missing backup should read 0xFF, got 0x%02X", got)
	}
	none.Write8(0x0E000000, 0x00)
}
