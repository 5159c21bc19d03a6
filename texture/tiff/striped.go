package tiff

import (
	"fmt"
	"image"
	"image/color"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

// stripedTiff addresses pixels of a strip-organised TIFF. Uncompressed strips
// are read pixel by pixel straight from the mapping; compressed strips are
// inflated once and kept in an LRU cache.
type stripedTiff struct {
	header Header
	reader *mmap.ReaderAt
	cache  *lru.Cache // strip index -> []byte, nil when uncompressed
	model  color.Model
}

func newStriped(header Header, reader *mmap.ReaderAt, cacheSize int) (*stripedTiff, error) {
	if len(header.StripOffsets) == 0 || len(header.StripOffsets) != len(header.StripByteCounts) {
		return nil, unsupported("invalid strip offset/length")
	}
	strips := (header.Height + header.RowsPerStrip - 1) / header.RowsPerStrip
	if len(header.StripOffsets) < strips {
		return nil, unsupported("%d strips for %d rows", len(header.StripOffsets), header.Height)
	}

	t := &stripedTiff{header: header, reader: reader, model: header.colorModel()}
	if header.Compression != CompressionNone {
		cache, err := lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
		t.cache = cache
	}
	return t, nil
}

func (t *stripedTiff) ColorModel() color.Model {
	return t.model
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) Header() Header {
	return t.header
}

func (t *stripedTiff) Close() error {
	return t.reader.Close()
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header
	if x < 0 || y < 0 || x >= h.Width || y >= h.Height {
		return color.Transparent
	}

	strip := y / h.RowsPerStrip
	localY := y % h.RowsPerStrip
	bpp := h.bytesPerPixel()
	pixOffset := (localY*h.Width + x) * bpp

	if t.cache == nil {
		px := make([]byte, bpp)
		if _, err := t.reader.ReadAt(px, int64(h.StripOffsets[strip]+pixOffset)); err != nil {
			panic(fmt.Sprintf("could not read pixel at (%d,%d): %v", x, y, err))
		}
		return h.decodePixel(px)
	}

	var data []byte
	if val, ok := t.cache.Get(strip); ok {
		data = val.([]byte)
	} else {
		var err error
		data, err = readBlock(t.reader, h, h.StripOffsets[strip], h.StripByteCounts[strip])
		if err != nil {
			panic(fmt.Sprintf("failed to read strip %d: %v", strip, err))
		}
		t.cache.Add(strip, data)
	}
	if pixOffset+bpp > len(data) {
		panic(fmt.Sprintf("strip %d too short for pixel (%d,%d)", strip, x, y))
	}
	return h.decodePixel(data[pixOffset : pixOffset+bpp])
}
