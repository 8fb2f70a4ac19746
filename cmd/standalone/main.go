//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strings"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/egba/adapter"
	"github.com/user-none/egba/emu"
)

var hideOptions = map[string]string{
	"bg0": emu.OptionShowBG0,
	"bg1": emu.OptionShowBG1,
	"bg2": emu.OptionShowBG2,
	"bg3": emu.OptionShowBG3,
	"obj": emu.OptionShowOBJ,
}

func main() {
	snapshotPath := flag.String("snapshot", "", "path to PPU snapshot (opens UI if not provided)")
	hide := flag.String("hide", "", "comma separated layers to hide: bg0, bg1, bg2, bg3, obj")
	flag.Parse()

	factory := &adapter.Factory{}

	if *snapshotPath != "" {
		options := map[string]string{}
		for _, name := range strings.Split(*hide, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			key, ok := hideOptions[name]
			if !ok {
				log.Fatalf("Invalid layer: %s (use bg0-bg3 or obj)", name)
			}
			options[key] = "false"
		}
		if err := standalone.RunDirect(factory, *snapshotPath, "auto", options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
