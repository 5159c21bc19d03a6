package imagefile

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/photosphere/panorama"
)

func TestSaveFormats(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "sub/c.bmp"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, img), name)

		back, err := panorama.LoadImage(path)
		require.NoError(t, err, name)
		assert.Equal(t, img.Bounds(), back.Bounds(), name)
	}

	png, err := panorama.LoadImage(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 200}, color.NRGBAModel.Convert(png.At(3, 2)))
}

func TestSaveUnsupported(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "x.gif"), image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorContains(t, err, "unsupported")
}
