package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/egba/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for PPU snapshots.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "egba",
		ConsoleName:     "Game Boy Advance (video)",
		Extensions:      []string{".egbs"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     240.0 / 160.0,
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "BG0", ID: emu.ButtonBG0, DefaultKey: "1", DefaultPad: "A"},
			{Name: "BG1", ID: emu.ButtonBG1, DefaultKey: "2", DefaultPad: "B"},
			{Name: "BG2", ID: emu.ButtonBG2, DefaultKey: "3", DefaultPad: "X"},
			{Name: "BG3", ID: emu.ButtonBG3, DefaultKey: "4", DefaultPad: "Y"},
			{Name: "OBJ", ID: emu.ButtonOBJ, DefaultKey: "5", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			layerOption(emu.OptionShowBG0, "Show BG0", "Draw background 0"),
			layerOption(emu.OptionShowBG1, "Show BG1", "Draw background 1"),
			layerOption(emu.OptionShowBG2, "Show BG2", "Draw background 2"),
			layerOption(emu.OptionShowBG3, "Show BG3", "Draw background 3"),
			layerOption(emu.OptionShowOBJ, "Show Sprites", "Draw OBJ layer"),
		},
		DataDirName:   "egba",
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

func layerOption(key, label, description string) emucore.CoreOption {
	return emucore.CoreOption{
		Key:         key,
		Label:       label,
		Description: description,
		Type:        emucore.CoreOptionBool,
		Default:     "true",
		Category:    emucore.CoreOptionCategoryVideo,
	}
}

// CreateEmulator restores a core from snapshot data. Snapshots carry no
// region, so region is ignored.
func (f *Factory) CreateEmulator(snapshot []byte, region emucore.Region) (emucore.Emulator, error) {
	c, err := emu.NewCore(snapshot)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DetectRegion always reports NTSC, not found in a database.
func (f *Factory) DetectRegion(snapshot []byte) (emucore.Region, bool) {
	return emucore.RegionNTSC, false
}
