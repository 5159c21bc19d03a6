// Package imagefile writes images in the format named by the file extension.
package imagefile

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// JPEGQuality is used for .jpg and .jpeg outputs.
const JPEGQuality = 95

// Save encodes img as PNG, JPEG or BMP depending on the extension of path,
// creating the parent directory when needed.
func Save(path string, img image.Image) error {
	var enc imgio.Encoder
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		enc = imgio.PNGEncoder()
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(JPEGQuality)
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return imgio.Save(path, img, enc)
}
