package panorama

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"math/bits"
	"runtime"

	"github.com/anthonynsimon/bild/transform"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// CrossTileSize picks the face size for converting an equirectangular image
// of the given width: the face centre then matches the equator resolution,
// rounded down to a power of two.
func CrossTileSize(equirectWidth int) int {
	tile := int(4 / math.Pi * float64(equirectWidth) / 4)
	if tile < 1 {
		return 1
	}
	return 1 << (bits.Len(uint(tile)) - 1)
}

// ConvertToCross resamples src into a 4x3 cross image with faces of tile
// pixels. Cells outside the cross stay transparent. Rows are spread over
// workers goroutines, runtime.NumCPU() when workers <= 0.
func ConvertToCross(ctx context.Context, src Source, tile, workers int) (*image.NRGBA, error) {
	if tile <= 0 {
		return nil, fmt.Errorf("invalid tile size %d", tile)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	w, h := 4*tile, 3*tile
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < h; y++ {
		y := y // per-iteration copy (pre-Go 1.22 loop semantics)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for x := 0; x < w; x++ {
				face, u, v, ok := CrossFace((float64(x)+0.5)/float64(w), (float64(y)+0.5)/float64(h))
				if !ok {
					continue
				}
				c := src.ColorForDirection(CubeDirection(face, u, v))
				out.SetNRGBA(x, y, c.ToNRGBA())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PackCross assembles six GL-oriented face images, indexed by Face, into a
// cross image with faces of tile pixels. Faces of a different size are
// rescaled.
func PackCross(faces [6]image.Image, tile int) (*image.NRGBA, error) {
	if tile <= 0 {
		return nil, fmt.Errorf("invalid tile size %d", tile)
	}
	out := image.NewNRGBA(image.Rect(0, 0, 4*tile, 3*tile))

	for _, f := range Faces {
		img := faces[f]
		if img == nil {
			return nil, fmt.Errorf("%w: face %v missing", ErrFaceSize, f)
		}
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("%w: face %v is %dx%d", ErrFaceSize, f, b.Dx(), b.Dy())
		}

		if b.Dx() != tile {
			scaled := image.NewNRGBA(image.Rect(0, 0, tile, tile))
			xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
			img = scaled
		}

		cell := CrossLayout[f]
		if cell.FlipU {
			img = transform.FlipH(img)
		}
		if cell.FlipV {
			img = transform.FlipV(img)
		}

		r := image.Rect(cell.Col*tile, cell.Row*tile, (cell.Col+1)*tile, (cell.Row+1)*tile)
		draw.Draw(out, r, img, img.Bounds().Min, draw.Src)
	}
	return out, nil
}
