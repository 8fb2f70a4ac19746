package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/egba/cli"
	"github.com/user-none/egba/emu"
	"github.com/user-none/egba/snaploader"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to PPU snapshot (.egbs, optionally archived)")
	configPath := flag.String("config", "", "path to viewer config (defaults to the user config directory)")
	scale := flag.Int("scale", 0, "window scale, overrides the config when set")
	flag.Parse()

	if *snapshotPath == "" {
		fmt.Println("Usage: egbaview -snapshot <file> [-config path] [-scale n]")
		os.Exit(1)
	}

	if *configPath == "" {
		path, err := cli.DefaultConfigPath()
		if err != nil {
			log.Fatal(err)
		}
		*configPath = path
	}

	config, err := cli.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Using default config: %v", err)
		config = cli.DefaultConfig()
	}
	if *scale > 0 {
		config.Scale = *scale
	}

	snap, err := snaploader.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	ppu := emu.NewPPU(nil)
	if err := ppu.Deserialize(snap.Data); err != nil {
		log.Fatalf("Failed to restore %s: %v", snap.Name, err)
	}

	runner := cli.NewRunner(ppu, config, func(c *cli.Config) {
		if err := cli.SaveConfig(*configPath, c); err != nil {
			log.Printf("Failed to save config: %v", err)
		}
	})

	ebiten.SetWindowSize(emu.ScreenWidth*config.Scale, emu.ScreenHeight*config.Scale)
	ebiten.SetWindowTitle("eGBA - " + snap.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.ScreenHeight, -1, -1)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
