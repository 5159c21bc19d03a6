// Command cubeconv resamples an equirectangular panorama into a 4x3 cube
// cross that photosphere can load with layout "cross".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/echoflaresat/photosphere/internal/imagefile"
	"github.com/echoflaresat/photosphere/internal/logger"
	"github.com/echoflaresat/photosphere/panorama"
)

func main() {
	tile := flag.Int("tile", 0, "Face size in pixels; derived from the input width when 0")
	workers := flag.Int("workers", 0, "Parallel rows; number of CPUs when 0")
	filter := flag.String("filter", "bilinear", "Sampling filter: nearest or bilinear")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <equirect image> <output.png|.jpg>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	level := "info"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := convert(ctx, flag.Arg(0), flag.Arg(1), *tile, *workers, *filter); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		os.Exit(1)
	}
}

func convert(ctx context.Context, in, out string, tile, workers int, filterName string) error {
	filter, err := panorama.ParseFilter(filterName)
	if err != nil {
		return err
	}

	pano, err := panorama.Open(in, panorama.Options{Layout: panorama.LayoutEquirect, Filter: filter})
	if err != nil {
		return err
	}
	defer pano.Close()

	if tile <= 0 {
		tile = panorama.CrossTileSize(pano.(*panorama.Equirectangular).Image().Bounds().Dx())
	}

	start := time.Now()
	cross, err := panorama.ConvertToCross(ctx, pano, tile, workers)
	if err != nil {
		return err
	}
	logger.Info("converted",
		zap.String("input", in),
		zap.Int("tile", tile),
		zap.Duration("elapsed", time.Since(start)))

	if err := imagefile.Save(out, cross); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("wrote cross", zap.String("path", out))
	return nil
}
