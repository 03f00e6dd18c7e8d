// Command tileworld streams a procedural tile world around a scripted
// observer without a window. It can write a compressed lifecycle trace and a
// PNG overview of the chunks present at the end of the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tileworld/internal/config"
)

type options struct {
	configPath  string
	ticks       int
	dt          float64
	accel       float64
	rate        int
	editEvery   int
	tracePath   string
	previewPath string
	atlasPath   string
	pixels      int
	verbose     bool
}

func main() {
	var opts options
	settings := config.Defaults()

	flag.StringVar(&opts.configPath, "config", "", "YAML settings file")
	flag.Func("seed", "world seed, 0 to 4294967295 (default 1337)", func(v string) error {
		seed, err := parseSeed(v)
		if err != nil {
			return err
		}
		settings.Seed = seed
		return nil
	})
	flag.IntVar(&settings.VisibleRange, "range", settings.VisibleRange, "visible range in chunks")
	flag.IntVar(&settings.Workers, "workers", settings.Workers, "chunk generation workers")
	flag.StringVar(&settings.Noise, "noise", settings.Noise, "noise primitive: perlin, simplex or value")
	flag.StringVar(&settings.Catalog, "catalog", settings.Catalog, "YAML biome catalog (default: built-in)")
	flag.IntVar(&opts.ticks, "ticks", 600, "number of ticks to run")
	flag.Float64Var(&opts.dt, "dt", 1.0/60.0, "seconds per tick")
	flag.IntVar(&opts.rate, "rate", 0, "ticks per second (0: as fast as possible)")
	flag.Float64Var(&opts.accel, "accel", 400, "observer acceleration along its heading")
	flag.IntVar(&opts.editEvery, "edit-every", 0, "paint the tile under the observer every N ticks (0: never)")
	flag.StringVar(&opts.tracePath, "trace", "", "write a zstd JSONL lifecycle trace to this file")
	flag.StringVar(&opts.previewPath, "preview", "", "write a PNG overview to this file after the run")
	flag.StringVar(&opts.atlasPath, "atlas", "", "PNG tile atlas for the preview (default: flat colours)")
	flag.IntVar(&opts.pixels, "pixels", 4, "preview pixels per tile")
	flag.BoolVar(&opts.verbose, "v", false, "log every tick")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			log.Error("load settings", "error", err)
			os.Exit(1)
		}
		settings = applyFlags(loaded, settings)
	}
	if err := settings.Validate(); err != nil {
		log.Error("invalid settings", "error", err)
		os.Exit(1)
	}

	c, err := setup(settings, opts, log)
	if err != nil {
		log.Error("setup", "error", err)
		os.Exit(1)
	}
	defer c.Close(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLoop(ctx, c, opts, log)

	if opts.previewPath != "" {
		if err := c.Preview.WritePNG(opts.previewPath); err != nil {
			log.Error("write preview", "error", err)
			return
		}
		log.Info("preview written", "path", opts.previewPath)
	}
}

// applyFlags copies every explicitly set flag from flagged onto loaded so
// the command line wins over the settings file.
func applyFlags(loaded, flagged config.Settings) config.Settings {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			loaded.Seed = flagged.Seed
		case "range":
			loaded.VisibleRange = flagged.VisibleRange
		case "workers":
			loaded.Workers = flagged.Workers
		case "noise":
			loaded.Noise = flagged.Noise
		case "catalog":
			loaded.Catalog = flagged.Catalog
		}
	})
	return loaded
}

// parseSeed accepts any unsigned 32-bit value. Larger values are an error
// rather than being truncated.
func parseSeed(v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("seed %q: must be an integer in [0, %d]", v, uint32(math.MaxUint32))
	}
	return uint32(n), nil
}
