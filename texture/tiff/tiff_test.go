package tiff

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xtiff "golang.org/x/image/tiff"

	"github.com/echoflaresat/photosphere/texture/tiff/tifftest"
)

func encodeFixture(t *testing.T, img image.Image, opts *xtiff.Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, xtiff.Encode(&buf, img, opts))
	path := filepath.Join(t.TempDir(), "fixture.tif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func gradientNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 60), B: uint8(x*7 + y), A: uint8(255 - x)})
		}
	}
	return img
}

func assertSamePixels(t *testing.T, want image.Image, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			assert.Equal(t, want.At(x, y), got.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestOpenStriped(t *testing.T) {
	for name, opts := range map[string]*xtiff.Options{
		"uncompressed": nil,
		"deflate":      {Compression: xtiff.Deflate},
	} {
		t.Run(name, func(t *testing.T) {
			src := gradientNRGBA(5, 3)
			img, err := Open(encodeFixture(t, src, opts))
			require.NoError(t, err)
			defer img.Close()

			assert.False(t, img.Header().Tiled())
			assert.Equal(t, color.NRGBAModel, img.ColorModel())
			assertSamePixels(t, src, img)
		})
	}
}

func TestOpenGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 16)
	}
	img, err := Open(encodeFixture(t, src, nil))
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, color.GrayModel, img.ColorModel())
	assertSamePixels(t, src, img)
}

func TestOpenRGBA64(t *testing.T) {
	src := image.NewRGBA64(image.Rect(0, 0, 2, 2))
	// byte-symmetric values keep the check independent of sample order
	src.SetRGBA64(0, 0, color.RGBA64{R: 0xffff, G: 0, B: 0, A: 0xffff})
	src.SetRGBA64(1, 0, color.RGBA64{R: 0x8080, G: 0x4040, B: 0, A: 0xffff})
	src.SetRGBA64(0, 1, color.RGBA64{R: 0, G: 0, B: 0x2020, A: 0x8080})
	src.SetRGBA64(1, 1, color.RGBA64{})

	img, err := Open(encodeFixture(t, src, nil))
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, []int{16, 16, 16, 16}, img.Header().BitsPerSample)
	assertSamePixels(t, src, img)
}

func TestOutOfBoundsIsTransparent(t *testing.T) {
	img, err := Open(encodeFixture(t, gradientNRGBA(2, 2), nil))
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, color.Transparent, img.At(-1, 0))
	assert.Equal(t, color.Transparent, img.At(2, 1))
}

func TestOpenTiled(t *testing.T) {
	pixel := func(x, y int) [3]byte { return [3]byte{byte(x * 30), byte(y * 50), byte(x + y)} }

	src := image.NewNRGBA(image.Rect(0, 0, 7, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			p := pixel(x, y)
			src.SetNRGBA(x, y, color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255})
		}
	}

	for name, compress := range map[string]bool{"uncompressed": false, "deflate": true} {
		t.Run(name, func(t *testing.T) {
			// 7x5 over 4x4 tiles leaves padded edge tiles
			path := writeTiled(t, src, tifftest.Options{TileWidth: 4, TileHeight: 4, Deflate: compress})
			img, err := OpenWithCache(path, 2)
			require.NoError(t, err)
			defer img.Close()

			require.True(t, img.Header().Tiled())
			assert.Equal(t, image.Rect(0, 0, 7, 5), img.Bounds())
			for y := 0; y < 5; y++ {
				for x := 0; x < 7; x++ {
					p := pixel(x, y)
					assert.Equal(t, color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255}, img.At(x, y), "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.tif"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.tif")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a tiff file"), 0o644))
	_, err = Open(junk)
	assert.ErrorIs(t, err, ErrInvalidHeader)

	// horizontal differencing is left to the general purpose decoder
	predicted := writeTiled(t, gradientNRGBA(4, 4), tifftest.Options{TileWidth: 4, TileHeight: 4, Deflate: true, Predictor: true})
	_, err = Open(predicted)
	assert.ErrorIs(t, err, ErrUnsupported)

	// the file itself is valid
	data, err := os.ReadFile(predicted)
	require.NoError(t, err)
	decoded, err := xtiff.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), decoded.Bounds())
}

// writeTiled writes img as a tiled RGB TIFF built by hand.
func writeTiled(t *testing.T, img image.Image, opts tifftest.Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tifftest.Encode(&buf, img, opts))
	path := filepath.Join(t.TempDir(), "tiled.tif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}
