package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/egba/adapter"
	"github.com/user-none/egba/emu"
)

// BG2 and BG3 have no pad button here; they are reachable through the
// core options.
func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: emu.ButtonBG0},
		{RetroID: libretro.JoypadB, BitID: emu.ButtonBG1},
		{RetroID: libretro.JoypadStart, BitID: emu.ButtonOBJ},
	})
}

func main() {}
