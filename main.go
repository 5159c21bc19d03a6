package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/echoflaresat/photosphere/internal/config"
	"github.com/echoflaresat/photosphere/internal/logger"
	"github.com/echoflaresat/photosphere/panorama"
	"github.com/echoflaresat/photosphere/render"
)

func printHelp() {
	fmt.Fprintf(os.Stderr, `Photosphere - panorama viewer with ground parallax

Usage:
  %[1]s [options]

Scene settings (panorama, ground plane, camera, spheres, capture site)
are read from a YAML or TOML config file. Without -config the first of
./photosphere.yaml, ./photosphere.toml or %[2]s is used.

`, os.Args[0], filepath.Join(config.ConfigDir(), "config.yaml"))

	printGroup("Input", []string{"config"})
	printGroup("Rendering Options", []string{"width", "height", "stereo"})
	printGroup("Output", []string{"out"})
	printGroup("Misc", []string{"watch", "debug", "h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-8s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Usage = printHelp
	flag.Parse()

	if flags.Help {
		printHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "photosphere:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *config.Flags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	if err := renderToFile(ctx, cfg); err != nil {
		if !flags.Watch {
			return err
		}
		logger.Error("render failed", zap.Error(err))
	}

	if flags.Watch {
		return watch(ctx, flags, cfg)
	}
	return nil
}

func loadConfig(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// renderToFile renders cfg and writes the PNG to the configured output.
func renderToFile(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	img, err := renderImage(ctx, cfg)
	if err != nil {
		return err
	}
	if err := writePNG(cfg.Output.Path, img); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output.Path, err)
	}
	logger.Info("wrote image",
		zap.String("path", cfg.Output.Path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// renderImage loads the panorama, builds the scene and renders a mono
// or side-by-side stereo view.
func renderImage(ctx context.Context, cfg *config.Config) (image.Image, error) {
	popts, err := cfg.PanoramaOptions()
	if err != nil {
		return nil, err
	}
	pano, err := panorama.Open(cfg.Panorama.Path, popts)
	if err != nil {
		return nil, err
	}
	defer pano.Close()

	scene, err := buildScene(cfg, pano)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.RenderOptions()
	if err != nil {
		return nil, err
	}

	camera := cfg.ViewCamera()
	if cfg.Render.Stereo {
		return render.RenderStereo(ctx, scene, camera, cfg.Render.IPD, opts)
	}
	return render.Render(ctx, scene, camera, opts)
}

func buildScene(cfg *config.Config, pano panorama.Source) (*render.Scene, error) {
	ground, err := cfg.GroundPlane()
	if err != nil {
		return nil, err
	}
	light, err := cfg.Light()
	if err != nil {
		return nil, err
	}
	return &render.Scene{
		Panorama:     pano,
		Ground:       ground,
		Spheres:      cfg.ImposterSpheres(),
		Light:        light,
		ImageAmbient: cfg.Render.ImageAmbient,
	}, nil
}

func writePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
