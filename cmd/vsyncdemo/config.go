package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/clktmr/vsyncfb/drivers/display"
)

// Config is read from the file given by -config. Flags set on the command
// line take precedence.
type Config struct {
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Scale   int    `toml:"scale"`
	Offset  int    `toml:"offset"`
	Margin  int    `toml:"margin"`
	DelayMS int    `toml:"delay_ms"` // negative selects the default
	Level   int    `toml:"level"`
	Buffers int    `toml:"buffers"`
	Frames  int    `toml:"frames"` // 0 runs until the window is closed
	Splash  string `toml:"splash"`
	Dither  bool   `toml:"dither"`
	Debug   bool   `toml:"debug"`
}

func defaultConfig() Config {
	return Config{
		Title:   "vsyncdemo",
		Width:   320,
		Height:  240,
		Scale:   2,
		DelayMS: 0,
		Level:   display.DefaultLevel,
		Buffers: display.DefaultBuffers,
	}
}

func loadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) delay() time.Duration {
	if c.DelayMS < 0 {
		return -1
	}
	return time.Duration(c.DelayMS) * time.Millisecond
}

func (c *Config) options() []display.Option {
	return []display.Option{
		display.WithOffset(c.Offset),
		display.WithMargin(c.Margin),
		display.WithDelay(c.delay()),
		display.WithLevel(c.Level),
		display.WithBuffers(c.Buffers),
	}
}
