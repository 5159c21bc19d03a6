package panorama

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
	"io"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp" // register BMP format with image.Decode
	xtiff "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP format with image.Decode

	"github.com/echoflaresat/photosphere/internal/logger"
	"github.com/echoflaresat/photosphere/texture/tiff"
)

// Layout tells how a panorama image is organised.
type Layout int

const (
	LayoutEquirect Layout = iota
	LayoutCross
)

func (l Layout) String() string {
	switch l {
	case LayoutEquirect:
		return "equirect"
	case LayoutCross:
		return "cross"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "", "equirect", "equirectangular":
		return LayoutEquirect, nil
	case "cross", "cubemap":
		return LayoutCross, nil
	default:
		return LayoutEquirect, fmt.Errorf("unknown panorama layout %q", s)
	}
}

// Options controls Open.
type Options struct {
	Layout Layout
	Filter Filter
	// MaxWidth downsamples larger images when positive.
	MaxWidth int
}

// MinWidth is the narrowest image the layout can describe: 2x1 for an
// equirectangular panorama, 4x3 for a cross.
func MinWidth(l Layout) int {
	if l == LayoutCross {
		return 4
	}
	return 2
}

// Open loads the image at path and wraps it in the Source matching
// opts.Layout. Close the result to release the file.
func Open(path string, opts Options) (Panorama, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}

	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		// keep the layout's aspect ratio exact, one texel per cell at least
		step := MinWidth(opts.Layout)
		maxWidth := max(opts.MaxWidth-opts.MaxWidth%step, step)
		if small := Downsample(img, maxWidth); small != img {
			if err := closeImage(img); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			img = small
		}
	}

	var pano Panorama
	switch opts.Layout {
	case LayoutCross:
		pano, err = NewCubeMapFromCross(img, opts.Filter)
	default:
		pano, err = NewEquirectangular(img, opts.Filter)
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", path, err), closeImage(img))
	}
	return pano, nil
}

// LoadImage decodes the image at path. Baseline TIFFs are mapped lazily and
// the returned image then implements io.Closer; other formats are decoded
// into memory.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	kind, _ := filetype.Match(head[:n])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if kind.Extension == "tif" {
		img, err := tiff.Open(path)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, tiff.ErrUnsupported) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		logger.Sugar.Infof("%s: %v, decoding into memory", path, err)

		decoded, err := xtiff.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return decoded, nil
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Sugar.Debugf("decoded %s as %s, %dx%d", path, format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// Downsample scales img down to maxWidth pixels wide, keeping the aspect
// ratio, with a Lanczos filter. Images already narrow enough are returned
// unchanged.
func Downsample(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	logger.Sugar.Infof("downsampling %dx%d to %dx%d", b.Dx(), b.Dy(), maxWidth, height)
	return resize.Resize(uint(maxWidth), uint(height), img, resize.Lanczos3)
}
