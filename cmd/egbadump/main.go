package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/user-none/egba/emu"
	"github.com/user-none/egba/snaploader"
	"golang.org/x/image/draw"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to PPU snapshot (.egbs, optionally archived)")
	outPath := flag.String("out", "frame.png", "output PNG path")
	scale := flag.Int("scale", 1, "integer upscale factor")
	listPalette := flag.Bool("palette", false, "print palette RAM as hex colours")
	flag.Parse()

	if *snapshotPath == "" {
		fmt.Println("Usage: egbadump -snapshot <file> [-out frame.png] [-scale n] [-palette]")
		os.Exit(1)
	}
	if *scale < 1 {
		log.Fatalf("Invalid scale: %d", *scale)
	}

	snap, err := snaploader.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	ppu := emu.NewPPU(nil)
	if err := ppu.Deserialize(snap.Data); err != nil {
		log.Fatalf("Failed to restore %s: %v", snap.Name, err)
	}

	if *listPalette {
		printPalette(ppu)
	}

	ppu.RenderFrame()

	if err := writePNG(*outPath, ppu.Framebuffer(), *scale); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	log.Printf("Wrote %s from %s", *outPath, snap.Name)
}

// writePNG stores frame scaled by an integer factor with nearest neighbour
// sampling so pixel edges stay sharp.
func writePNG(path string, frame *image.RGBA, scale int) error {
	var img image.Image = frame
	if scale > 1 {
		b := frame.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), frame, b, draw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printPalette lists the 256 BG and 256 OBJ palette entries. Rows whose
// colours are all black are skipped.
func printPalette(ppu *emu.PPU) {
	for bank := 0; bank < 32; bank++ {
		var row [16]colorful.Color
		used := false
		for i := range row {
			c := ppu.ReadPalette16(uint32(bank*16+i) * 2)
			row[i] = rgb555(c)
			if c != 0 {
				used = true
			}
		}
		if !used {
			continue
		}

		kind, index := "BG ", bank
		if bank >= 16 {
			kind, index = "OBJ", bank-16
		}
		fmt.Printf("%s %2d:", kind, index)
		for _, c := range row {
			fmt.Printf(" %s", c.Hex())
		}
		fmt.Println()
	}
}

func rgb555(c uint16) colorful.Color {
	return colorful.Color{
		R: float64(c&0x1F) / 31,
		G: float64((c>>5)&0x1F) / 31,
		B: float64((c>>10)&0x1F) / 31,
	}
}
