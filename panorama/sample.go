package panorama

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/echoflaresat/photosphere/colors"
)

// Filter selects how texels are reconstructed between pixel centres.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

func (f Filter) String() string {
	switch f {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return Nearest, nil
	case "", "bilinear", "linear":
		return Bilinear, nil
	default:
		return Nearest, fmt.Errorf("unknown filter %q", s)
	}
}

// sample reads img at texture coordinates (u, v) in [0,1]. Columns repeat
// when wrapX is set and clamp otherwise; rows always clamp.
func sample(img image.Image, u, v float64, filter Filter, wrapX bool) colors.Color4 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	texel := func(x, y int) colors.Color4 {
		if wrapX {
			x = ((x % w) + w) % w
		} else {
			x = clampInt(x, w)
		}
		y = clampInt(y, h)
		return colors.FromStandardColor(img.At(b.Min.X+x, b.Min.Y+y))
	}

	if filter == Nearest {
		return texel(int(math.Floor(u*float64(w))), int(math.Floor(v*float64(h))))
	}

	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	ix, iy := int(x0), int(y0)

	// blend in linear light so edges keep their brightness
	return colors.Bilerp(
		texel(ix, iy).ToLinear(), texel(ix+1, iy).ToLinear(),
		texel(ix, iy+1).ToLinear(), texel(ix+1, iy+1).ToLinear(),
		fx-x0, fy-y0,
	).ToSRGB()
}

func clampInt(x, n int) int {
	if x < 0 {
		return 0
	}
	if x >= n {
		return n - 1
	}
	return x
}
