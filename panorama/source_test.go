package panorama

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/vectors"
)

func solid(size int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var faceColors = [6]color.NRGBA{
	PosX: {R: 255, A: 255},
	NegX: {G: 255, A: 255},
	PosY: {B: 255, A: 255},
	NegY: {R: 255, G: 255, A: 255},
	PosZ: {G: 255, B: 255, A: 255},
	NegZ: {R: 255, B: 255, A: 255},
}

func solidFaces(size int) [6]image.Image {
	var faces [6]image.Image
	for _, f := range Faces {
		faces[f] = solid(size, faceColors[f])
	}
	return faces
}

func TestEquirectangularNearest(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	img.SetNRGBA(4, 2, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 2, color.NRGBA{G: 255, A: 255})

	pano, err := NewEquirectangular(img, Nearest)
	require.NoError(t, err)

	// +X is the centre of the image
	assert.Equal(t, colors.Red(), pano.ColorForDirection(vectors.UnitX))
	// -Z is a quarter of the way across
	assert.Equal(t, colors.Green(), pano.ColorForDirection(vectors.UnitZ.Neg()))
	assert.Equal(t, colors.Transparent(), pano.ColorForDirection(vectors.UnitZ))
}

func TestEquirectangularBilinearWraps(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		img.SetNRGBA(0, y, color.NRGBA{R: 255, A: 255})
		img.SetNRGBA(7, y, color.NRGBA{B: 255, A: 255})
	}
	pano, err := NewEquirectangular(img, Bilinear)
	require.NoError(t, err)

	// u = 0 sits halfway between the last and first column; the blend
	// is an even mix in linear light
	half := colors.New(0.5, 0, 0.5, 1).ToSRGB()
	c := pano.ColorForDirection(vectors.UnitX.Neg())
	assert.InDelta(t, half.R, c.R, 1e-9)
	assert.InDelta(t, 0.0, c.G, 1e-9)
	assert.InDelta(t, half.B, c.B, 1e-9)
	assert.InDelta(t, 1.0, c.A, 1e-9)
	assert.Greater(t, c.R, 0.7, "linear blend is brighter than the sRGB average")
}

func TestEquirectangularPolesClamp(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{B: 255, A: 255})
		img.SetNRGBA(x, 3, color.NRGBA{G: 255, A: 255})
	}
	pano, err := NewEquirectangular(img, Bilinear)
	require.NoError(t, err)

	assert.Equal(t, colors.Blue(), pano.ColorForDirection(vectors.UnitY))
	assert.Equal(t, colors.Green(), pano.ColorForDirection(vectors.UnitY.Neg()))
}

func TestNewEquirectangularRejectsAspect(t *testing.T) {
	_, err := NewEquirectangular(image.NewNRGBA(image.Rect(0, 0, 8, 8)), Nearest)
	assert.ErrorIs(t, err, ErrAspectRatio)
	_, err = NewEquirectangular(image.NewNRGBA(image.Rect(0, 0, 0, 0)), Nearest)
	assert.ErrorIs(t, err, ErrAspectRatio)
}

func TestCubeMapFaces(t *testing.T) {
	cube, err := NewCubeMap(solidFaces(4), Nearest)
	require.NoError(t, err)
	assert.Equal(t, 4, cube.FaceSize())

	dirs := map[Face]vectors.Vec3{
		PosX: vectors.New(1, 0.3, -0.2),
		NegX: vectors.New(-1, -0.5, 0.5),
		PosY: vectors.New(0.1, 1, 0.9),
		NegY: vectors.New(0, -1, 0),
		PosZ: vectors.New(-0.7, 0.2, 1),
		NegZ: vectors.New(0.99, -0.99, -1),
	}
	for f, d := range dirs {
		assert.Equal(t, colors.FromStandardColor(faceColors[f]), cube.ColorForDirection(d), "%v", f)
	}
}

func TestNewCubeMapValidatesFaces(t *testing.T) {
	faces := solidFaces(4)
	faces[NegY] = solid(8, color.White)
	_, err := NewCubeMap(faces, Nearest)
	assert.ErrorIs(t, err, ErrFaceSize)

	faces[NegY] = image.NewNRGBA(image.Rect(0, 0, 4, 3))
	_, err = NewCubeMap(faces, Nearest)
	assert.ErrorIs(t, err, ErrFaceSize)

	faces[NegY] = nil
	_, err = NewCubeMap(faces, Nearest)
	assert.ErrorIs(t, err, ErrFaceSize)
}

// Marks the GL origin texel of every face, packs the faces into a cross and
// reads them back.
func TestPackCrossRoundTrip(t *testing.T) {
	marker := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	faces := solidFaces(4)
	for _, f := range Faces {
		faces[f].(*image.NRGBA).SetNRGBA(0, 0, marker)
	}

	crossImg, err := PackCross(faces, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 12), crossImg.Bounds())
	assert.Equal(t, color.NRGBA{}, crossImg.NRGBAAt(0, 0), "empty cells are transparent")

	// -Z sits in the middle of the cross, mirrored horizontally
	assert.Equal(t, marker, crossImg.NRGBAAt(4+3, 4))
	// +Y sits on top, mirrored vertically
	assert.Equal(t, marker, crossImg.NRGBAAt(4, 3))

	cube, err := NewCubeMapFromCross(crossImg, Nearest)
	require.NoError(t, err)
	for _, f := range Faces {
		face := cube.Face(f)
		assert.Equal(t, image.Rect(0, 0, 4, 4), face.Bounds())
		assert.Equal(t, marker, face.At(0, 0), "%v", f)
		assert.Equal(t, faceColors[f], face.At(3, 3), "%v", f)
	}
}

func TestPackCrossScalesFaces(t *testing.T) {
	crossImg, err := PackCross(solidFaces(8), 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), crossImg.Bounds())
	got := crossImg.NRGBAAt(7, 3)
	want := faceColors[PosZ]
	assert.InDelta(t, want.R, got.R, 2)
	assert.InDelta(t, want.G, got.G, 2)
	assert.InDelta(t, want.B, got.B, 2)
	assert.InDelta(t, want.A, got.A, 2)
}

func TestNewCubeMapFromCrossRejectsAspect(t *testing.T) {
	_, err := NewCubeMapFromCross(image.NewNRGBA(image.Rect(0, 0, 16, 8)), Nearest)
	assert.ErrorIs(t, err, ErrAspectRatio)
}

func TestConvertToCross(t *testing.T) {
	src := SourceFunc(func(d vectors.Vec3) colors.Color4 {
		face, _, _ := CubeFace(d)
		return colors.FromStandardColor(faceColors[face])
	})

	crossImg, err := ConvertToCross(context.Background(), src, 8, 3)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 24), crossImg.Bounds())

	for _, f := range Faces {
		cell := CrossLayout[f]
		for _, p := range []image.Point{{0, 0}, {3, 4}, {7, 7}} {
			got := crossImg.NRGBAAt(cell.Col*8+p.X, cell.Row*8+p.Y)
			assert.Equal(t, faceColors[f], got, "%v at %v", f, p)
		}
	}
	assert.Equal(t, color.NRGBA{}, crossImg.NRGBAAt(31, 0))
	assert.Equal(t, color.NRGBA{}, crossImg.NRGBAAt(0, 23))
}

func TestConvertToCrossMatchesSource(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	equirect, err := NewEquirectangular(img, Bilinear)
	require.NoError(t, err)

	crossImg, err := ConvertToCross(context.Background(), equirect, 16, 0)
	require.NoError(t, err)
	cube, err := NewCubeMapFromCross(crossImg, Nearest)
	require.NoError(t, err)

	// the centre of each face points along an axis
	// away from the poles and the u = 0 seam
	for _, d := range []vectors.Vec3{vectors.UnitX, vectors.UnitZ, vectors.UnitZ.Neg()} {
		want := equirect.ColorForDirection(d)
		got := cube.ColorForDirection(d)
		assert.InDelta(t, want.R, got.R, 0.05, "%v", d)
		assert.InDelta(t, want.G, got.G, 0.05, "%v", d)
	}
}

func TestConvertToCrossCompletesWithLiveContext(t *testing.T) {
	white := SourceFunc(func(vectors.Vec3) colors.Color4 { return colors.White() })
	out, err := ConvertToCross(context.Background(), white, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(2, 2))
}

func TestConvertToCrossCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := SourceFunc(func(vectors.Vec3) colors.Color4 { return colors.White() })
	_, err := ConvertToCross(ctx, src, 4, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("Nearest")
	require.NoError(t, err)
	assert.Equal(t, Nearest, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, Bilinear, f)

	_, err = ParseFilter("trilinear")
	assert.Error(t, err)
}
