package colors

import (
	"image/color"
	"math"
)

// Color4 is an RGBA color with float64 components, nominally in [0,1].
// Components are not premultiplied. Color4 implements color.Color so it can be
// returned from image.Image implementations directly.
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// FromSlice reads [r, g, b] or [r, g, b, a]; alpha defaults to 1.
func FromSlice(s []float64) Color4 {
	c := Color4{A: 1}
	for i, v := range s {
		switch i {
		case 0:
			c.R = v
		case 1:
			c.G = v
		case 2:
			c.B = v
		case 3:
			c.A = v
		}
	}
	return c
}

func (c Color4) RGBA() (r, g, b, a uint32) {
	rf := clamp01(c.R)
	gf := clamp01(c.G)
	bf := clamp01(c.B)
	af := clamp01(c.A)

	// color.Color wants alpha-premultiplied 16-bit values
	return uint32(rf * af * 65535),
		uint32(gf * af * 65535),
		uint32(bf * af * 65535),
		uint32(af * 65535)
}

func FromStandardColor(c color.Color) Color4 {
	if c4, ok := c.(Color4); ok {
		return c4
	}
	// Avoid the premultiply round trip for the common decoded types.
	switch v := c.(type) {
	case color.NRGBA:
		return From8BitRgb(v.R, v.G, v.B, v.A)
	case color.NRGBA64:
		return From16BitRgb(v.R, v.G, v.B, v.A)
	case color.Gray:
		g := float64(v.Y) / 255.0
		return Color4{R: g, G: g, B: g, A: 1}
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Transparent()
	}

	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

func From8BitRgb(r, g, b, a byte) Color4 {
	return Color4{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
		A: float64(a) / 255.0,
	}
}

func From16BitRgb(r, g, b, a uint16) Color4 {
	return Color4{
		R: float64(r) / 65535.0,
		G: float64(g) / 65535.0,
		B: float64(b) / 65535.0,
		A: float64(a) / 65535.0,
	}
}

func Red() Color4 {
	return Color4{R: 1, G: 0, B: 0, A: 1}
}

func Green() Color4 {
	return Color4{R: 0, G: 1, B: 0, A: 1}
}

func Blue() Color4 {
	return Color4{R: 0, G: 0, B: 1, A: 1}
}

func White() Color4 {
	return Color4{R: 1, G: 1, B: 1, A: 1}
}

func Black() Color4 {
	return Color4{R: 0, G: 0, B: 0, A: 1}
}

func Transparent() Color4 {
	return Color4{}
}

// Add returns c + o (component-wise).
func (c Color4) Add(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Mul returns c * o (component-wise).
func (c Color4) Mul(o Color4) Color4 {
	return Color4{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns c * s (scalar).
func (c Color4) Scale(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A * s}
}

// ScaleRGB scales the color channels and leaves alpha alone.
func (c Color4) ScaleRGB(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A}
}

// Mix returns lerp(c, o, t) = c*(1-t) + o*t.
func (c Color4) Mix(o Color4, t float64) Color4 {
	return Color4{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// Bilerp blends four texel colors laid out as
//
//	c00 c10
//	c01 c11
//
// with fractional offsets fx, fy in [0,1].
func Bilerp(c00, c10, c01, c11 Color4, fx, fy float64) Color4 {
	top := c00.Mix(c10, fx)
	bottom := c01.Mix(c11, fx)
	return top.Mix(bottom, fy)
}

// Clamp01 clamps each component into [0,1].
func (c Color4) Clamp01() Color4 {
	return Color4{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

func (c Color4) WithAlpha(a float64) Color4 {
	return Color4{R: c.R, G: c.G, B: c.B, A: a}
}

func (c Color4) CompositeOverBlack() Color4 {
	return Color4{c.R * c.A, c.G * c.A, c.B * c.A, 1.0}
}

// ToNRGBA converts to 8-bit, truncating toward zero after clamping.
func (c Color4) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		to8bit(c.R),
		to8bit(c.G),
		to8bit(c.B),
		to8bit(c.A),
	}
}

// ToLinear converts sRGB-encoded channels to linear light, where filtering
// and averaging happen. Alpha is unchanged.
func (c Color4) ToLinear() Color4 {
	return Color4{srgbToLinear(c.R), srgbToLinear(c.G), srgbToLinear(c.B), c.A}
}

// ToSRGB is the inverse of ToLinear.
func (c Color4) ToSRGB() Color4 {
	return Color4{linearToSrgb(c.R), linearToSrgb(c.G), linearToSrgb(c.B), c.A}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8bit(x float64) uint8 {
	return uint8(255.0 * clamp01(x))
}

// IEC 61966-2-1 sRGB <-> linear
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSrgb(c float64) float64 {
	if c >= 1 {
		// 1.055 - 0.055 rounds below one
		return 1
	}
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}
