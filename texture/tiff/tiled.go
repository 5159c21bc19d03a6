package tiff

import (
	"fmt"
	"image"
	"image/color"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

type tiledTiff struct {
	header      Header
	reader      *mmap.ReaderAt
	cache       *lru.Cache // tile index -> []byte
	model       color.Model
	tilesAcross int
}

func newTiled(header Header, reader *mmap.ReaderAt, cacheSize int) (*tiledTiff, error) {
	if len(header.TileOffsets) == 0 || len(header.TileOffsets) != len(header.TileByteCounts) {
		return nil, unsupported("invalid tile offset/length")
	}
	across := (header.Width + header.TileWidth - 1) / header.TileWidth
	down := (header.Height + header.TileHeight - 1) / header.TileHeight
	if len(header.TileOffsets) < across*down {
		return nil, unsupported("%d tiles for a %dx%d grid", len(header.TileOffsets), across, down)
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	return &tiledTiff{
		header:      header,
		reader:      reader,
		cache:       cache,
		model:       header.colorModel(),
		tilesAcross: across,
	}, nil
}

func (t *tiledTiff) ColorModel() color.Model {
	return t.model
}

func (t *tiledTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *tiledTiff) Header() Header {
	return t.header
}

func (t *tiledTiff) Close() error {
	return t.reader.Close()
}

func (t *tiledTiff) At(x, y int) color.Color {
	h := t.header
	if x < 0 || y < 0 || x >= h.Width || y >= h.Height {
		return color.Transparent
	}

	tileIndex := (y/h.TileHeight)*t.tilesAcross + x/h.TileWidth

	var tile []byte
	if val, ok := t.cache.Get(tileIndex); ok {
		tile = val.([]byte)
	} else {
		var err error
		tile, err = readBlock(t.reader, h, h.TileOffsets[tileIndex], h.TileByteCounts[tileIndex])
		if err != nil {
			panic(fmt.Sprintf("failed to read tile %d: %v", tileIndex, err))
		}
		t.cache.Add(tileIndex, tile)
	}

	// edge tiles are padded to the full tile size
	bpp := h.bytesPerPixel()
	pixOffset := ((y%h.TileHeight)*h.TileWidth + x%h.TileWidth) * bpp
	if pixOffset+bpp > len(tile) {
		panic(fmt.Sprintf("tile %d too short for pixel (%d,%d)", tileIndex, x, y))
	}
	return h.decodePixel(tile[pixOffset : pixOffset+bpp])
}
