package render

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/internal/logger"
)

// Mode selects what the renderer paints.
type Mode int

const (
	// ModeColor shades the scene.
	ModeColor Mode = iota
	// ModeClassify paints every ray by how it relates to the ground plane.
	ModeClassify
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "color":
		return ModeColor, nil
	case "classify":
		return ModeClassify, nil
	default:
		return ModeColor, fmt.Errorf("unknown render mode %q", s)
	}
}

// Options controls a render.
type Options struct {
	Width, Height int
	// Supersample casts Supersample x Supersample rays per pixel.
	Supersample int
	// Workers bounds the number of rows rendered at once,
	// runtime.NumCPU() when zero.
	Workers int
	Mode    Mode
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}

// Render raytraces scene through camera.
func Render(ctx context.Context, scene *Scene, camera Camera, opts Options) (*image.NRGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if err := renderInto(ctx, img, scene, camera, opts); err != nil {
		return nil, err
	}
	return img, nil
}

// RenderStereo renders a side-by-side pair, left eye on the left, each eye
// Width pixels wide and moved ipd/2 from the camera position.
func RenderStereo(ctx context.Context, scene *Scene, camera Camera, ipd float64, opts Options) (*image.NRGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 2*opts.Width, opts.Height))

	for i, eye := range []Eye{LeftEye, RightEye} {
		half := img.SubImage(image.Rect(i*opts.Width, 0, (i+1)*opts.Width, opts.Height)).(*image.NRGBA)
		if err := renderInto(ctx, half, scene, camera.WithEyeOffset(ipd, eye), opts); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func renderInto(ctx context.Context, img *image.NRGBA, scene *Scene, camera Camera, opts Options) error {
	b := img.Bounds()
	W, H := b.Dx(), b.Dy()

	offsets := GenerateSupersamplingOffsets(max(opts.Supersample, 1))
	N := float64(len(offsets))
	// averaging happens in linear light; a single ray needs no conversion
	linear := len(offsets) > 1

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	runID := uuid.NewString()
	log := logger.Log.With(zap.String("run", runID))
	log.Info("render started",
		zap.Int("width", W), zap.Int("height", H),
		zap.Int("rays_per_pixel", len(offsets)), zap.Int("workers", workers))
	start := time.Now()

	var rowsDone atomic.Int64
	var milestone atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < H; y++ {
		y := y // per-iteration copy (pre-Go 1.22 loop semantics)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rc := NewRayContext(scene, camera.Position)
			for x := 0; x < W; x++ {
				colorAccum := colors.Color4{}
				for _, off := range offsets {
					rayDir := camera.ComputeRay(float64(x)+0.5+off[0], float64(y)+0.5+off[1], W, H)
					rc.SetRayDirection(rayDir)

					var c colors.Color4
					if opts.Mode == ModeClassify {
						c = classifyColor(rc)
					} else {
						c = scene.shade(rc)
					}
					if linear {
						c = c.ToLinear()
					}
					colorAccum = colorAccum.Add(c)
				}

				colorOut := colorAccum.Scale(1.0 / N)
				if linear {
					colorOut = colorOut.ToSRGB()
				}
				colorOut = colorOut.CompositeOverBlack()
				img.SetNRGBA(b.Min.X+x, b.Min.Y+y, colorOut.ToNRGBA())
			}

			progress := rowsDone.Add(1) * 100 / int64(H)
			if m := milestone.Load(); progress >= m+10 && milestone.CompareAndSwap(m, progress/10*10) {
				log.Debug("render progress", zap.Int64("percent", progress/10*10))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("render finished", zap.Duration("elapsed", time.Since(start)))
	return nil
}
