//go:build egbadebug

package emu

import (
	"strings"
	"testing"
)

// renderPanics reports the panic message from rendering line, or "" when
// the call returned normally.
func renderPanics(r *AffineRenderer, ctx *Context, line int) (msg string) {
	defer func() {
		if v := recover(); v != nil {
			msg, _ = v.(string)
			if msg == "" {
				msg = "panic"
			}
		}
	}()
	r.RenderScanLine(ctx, line)
	return ""
}

// TestAffineRenderer_RepeatedLinePanics tests that rendering the same line
// twice without a reference reset trips the ordering assertion.
func TestAffineRenderer_RepeatedLinePanics(t *testing.T) {
	ctx := &Context{}
	r := NewAffineRenderer(2)
	r.ResetReferenceCounters(ctx)

	if msg := renderPanics(r, ctx, 5); msg != "" {
		t.Fatalf("first render of line 5 should not panic, got %q", msg)
	}
	msg := renderPanics(r, ctx, 5)
	if msg == "" {
		t.Fatal("expected a panic when line 5 is rendered twice")
	}
	if !strings.Contains(msg, "line 5 rendered after line 5") {
		t.Errorf("unexpected panic message: %q", msg)
	}
}

// TestAffineRenderer_EarlierLinePanics tests that going backwards within a
// frame trips the ordering assertion.
func TestAffineRenderer_EarlierLinePanics(t *testing.T) {
	ctx := &Context{}
	r := NewAffineRenderer(3)
	r.ResetReferenceCounters(ctx)

	renderPanics(r, ctx, 10)
	if msg := renderPanics(r, ctx, 9); msg == "" {
		t.Error("expected a panic when line 9 follows line 10")
	}
}

// TestAffineRenderer_ResetClearsOrdering tests that a reference reset lets
// the frame start over from any line.
func TestAffineRenderer_ResetClearsOrdering(t *testing.T) {
	ctx := &Context{}
	r := NewAffineRenderer(2)
	r.ResetReferenceCounters(ctx)

	for line := 0; line < 3; line++ {
		if msg := renderPanics(r, ctx, line); msg != "" {
			t.Fatalf("line %d: unexpected panic %q", line, msg)
		}
		r.IncrementReferenceCounters(ctx)
	}

	r.ResetReferenceCounters(ctx)
	if msg := renderPanics(r, ctx, 0); msg != "" {
		t.Errorf("line 0 after a reset should not panic, got %q", msg)
	}
}

// TestPPU_FramesRenderInOrder tests that restarted and free running frames
// never trip the ordering assertion.
func TestPPU_FramesRenderInOrder(t *testing.T) {
	p := NewPPU(nil)
	p.Write16(regDISPCNT, 0x0401) // mode 1, BG2

	for i := 0; i < 2; i++ {
		func() {
			defer func() {
				if v := recover(); v != nil {
					t.Fatalf("frame %d: unexpected panic %v", i, v)
				}
			}()
			p.RenderFrame()
			p.AddClocks(CyclesPerFrame)
		}()
	}
}
