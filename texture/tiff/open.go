// Package tiff decodes baseline TIFF files lazily through a memory mapping,
// so multi-gigapixel panoramas can be sampled without being loaded in full.
package tiff

import (
	"image"
	"io"

	"golang.org/x/exp/mmap"
)

// DefaultCacheBlocks is the number of decoded strips or tiles kept in memory.
const DefaultCacheBlocks = 256

// Image is a lazily decoded TIFF. It keeps the file mapped until Close.
type Image interface {
	image.Image
	io.Closer
	Header() Header
}

// Open maps the file at path and returns an Image backed by it.
// ErrInvalidHeader is returned for non-TIFF data and ErrUnsupported (wrapped)
// for TIFF variants this package does not address lazily.
func Open(path string) (Image, error) {
	return OpenWithCache(path, DefaultCacheBlocks)
}

// OpenWithCache is Open with an explicit block cache size.
func OpenWithCache(path string, cacheBlocks int) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	img, err := open(reader, cacheBlocks)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return img, nil
}

func open(reader *mmap.ReaderAt, cacheBlocks int) (Image, error) {
	header, err := parseHeader(reader)
	if err != nil {
		return nil, err
	}
	if err := header.validate(); err != nil {
		return nil, err
	}
	if cacheBlocks <= 0 {
		cacheBlocks = DefaultCacheBlocks
	}

	if header.Tiled() {
		return newTiled(header, reader, cacheBlocks)
	}
	return newStriped(header, reader, cacheBlocks)
}
