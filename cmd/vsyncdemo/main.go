// Command vsyncdemo shows the vsynced display in a desktop window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/clktmr/vsyncfb/console"
	"github.com/clktmr/vsyncfb/drivers/display"
	"github.com/clktmr/vsyncfb/hal/ebitenhw"
)

const usageString = `Shows a sweeping bar and a clock on a vsynced, double buffered display.

Usage: %s [flags]

`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	cfg := defaultConfig()

	configFile := flag.String("config", "", "TOML file with settings")
	width := flag.Int("width", cfg.Width, "width in pixels")
	height := flag.Int("height", cfg.Height, "height in pixels")
	scale := flag.Int("scale", cfg.Scale, "window scale factor")
	offset := flag.Int("offset", cfg.Offset, "columns left of the drawn region")
	margin := flag.Int("margin", cfg.Margin, "additional columns left of the drawn region")
	delay := flag.Int("delay", cfg.DelayMS, "delay after each swap in ms, negative for the default")
	level := flag.Int("level", cfg.Level, "foreground brightness 0..100")
	buffers := flag.Int("buffers", cfg.Buffers, "number of surfaces")
	frames := flag.Int("frames", cfg.Frames, "exit after this many frames, 0 runs forever")
	splash := flag.String("splash", cfg.Splash, "PNG image shown in the background")
	dither := flag.Bool("dither", cfg.Dither, "dither the splash image")
	debug := flag.Bool("debug", cfg.Debug, "log every frame")
	flag.Usage = usage
	flag.Parse()

	if *configFile != "" {
		if err := loadConfig(*configFile, &cfg); err != nil {
			fatal("load config", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "scale":
			cfg.Scale = *scale
		case "offset":
			cfg.Offset = *offset
		case "margin":
			cfg.Margin = *margin
		case "delay":
			cfg.DelayMS = *delay
		case "level":
			cfg.Level = *level
		case "buffers":
			cfg.Buffers = *buffers
		case "frames":
			cfg.Frames = *frames
		case "splash":
			cfg.Splash = *splash
		case "dither":
			cfg.Dither = *dither
		case "debug":
			cfg.Debug = *debug
		}
	})

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	display.SetLogger(log)

	var img image.Image
	if cfg.Splash != "" {
		var err error
		if img, err = loadImage(cfg.Splash); err != nil {
			fatal("load splash", err)
		}
	}

	dev := ebitenhw.New(cfg.Width, cfg.Height)
	go func() {
		defer dev.Shutdown()
		err := console.Run(dev, cfg.Width, cfg.Height, newDemo(&cfg, img), cfg.options()...)
		if err != nil && !errors.Is(err, errDone) {
			log.Error("display", "err", err)
		}
	}()

	if err := dev.Run(cfg.Title, cfg.Scale); err != nil {
		fatal("window", err)
	}
}

func loadImage(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
