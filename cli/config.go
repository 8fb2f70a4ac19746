package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user-none/egba/emu"
)

const configVersion = 1

// Config holds the viewer settings stored in viewer.json.
type Config struct {
	Version     int         `json:"version"`
	Scale       int         `json:"scale"` // window size as a multiple of 240x160
	StartPaused bool        `json:"startPaused"`
	Layers      LayerConfig `json:"layers"`
}

// LayerConfig records which layers the user has hidden. The zero value
// shows everything.
type LayerConfig struct {
	HideBG0 bool `json:"hideBG0"`
	HideBG1 bool `json:"hideBG1"`
	HideBG2 bool `json:"hideBG2"`
	HideBG3 bool `json:"hideBG3"`
	HideOBJ bool `json:"hideOBJ"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Scale:   3,
	}
}

// DefaultConfigPath returns the per-user location of viewer.json.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "egba", "viewer.json"), nil
}

// LoadConfig loads the configuration from path.
// If the file doesn't exist, it returns default configuration.
// If the file is corrupted, it returns an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return migrateConfig(config), nil
}

// SaveConfig writes the configuration to path atomically
func SaveConfig(path string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves a torn file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// migrateConfig handles any necessary migrations from older config versions
func migrateConfig(config *Config) *Config {
	if config.Version == 0 {
		config.Version = configVersion
	}

	// Ensure defaults for any missing fields
	if config.Scale <= 0 {
		config.Scale = 3
	}
	if config.Scale > 8 {
		config.Scale = 8
	}

	return config
}

type layerToggle struct {
	layer  int
	hidden *bool
}

// layerToggles pairs each hideable layer with its config field, in key order.
func (c *Config) layerToggles() [5]layerToggle {
	return [5]layerToggle{
		{emu.LayerBG0, &c.Layers.HideBG0},
		{emu.LayerBG1, &c.Layers.HideBG1},
		{emu.LayerBG2, &c.Layers.HideBG2},
		{emu.LayerBG3, &c.Layers.HideBG3},
		{emu.LayerOBJ, &c.Layers.HideOBJ},
	}
}

// LayerFilter returns the PPU layer filter for the hidden layers.
func (c *Config) LayerFilter() uint32 {
	filter := uint32(emu.AllLayers)
	for _, toggle := range c.layerToggles() {
		if *toggle.hidden {
			filter &^= emu.LayerMask(toggle.layer)
		}
	}
	return filter
}

// ToggleLayer flips the visibility of the layer bound to key index i (0-4:
// BG0-BG3, OBJ).
func (c *Config) ToggleLayer(i int) {
	toggles := c.layerToggles()
	if i < 0 || i >= len(toggles) {
		return
	}
	*toggles[i].hidden = !*toggles[i].hidden
}
