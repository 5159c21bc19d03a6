package main

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/photosphere/internal/imagefile"
	"github.com/echoflaresat/photosphere/panorama"
)

func TestLoadFacesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range panorama.Faces {
		img := image.NewGray(image.Rect(0, 0, 4, 4))
		for p := range img.Pix {
			img.Pix[p] = uint8(40 * i)
		}
		path := filepath.Join(dir, panorama.Faces[i].String()+".png")
		require.NoError(t, imagefile.Save(path, img))
		paths = append(paths, path)
	}

	faces, err := loadFaces(paths)
	require.NoError(t, err)
	for i, f := range panorama.Faces {
		assert.Equal(t, color.Gray{Y: uint8(40 * i)}, color.GrayModel.Convert(faces[f].At(1, 1)), f.String())
	}

	cross, err := panorama.PackCross(faces, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 12), cross.Bounds())
}

func TestLoadFacesMissing(t *testing.T) {
	_, err := loadFaces([]string{filepath.Join(t.TempDir(), "nope.png")})
	assert.Error(t, err)
}
