// Package tifftest writes small tiled TIFF files for tests. It covers
// layouts the golang.org/x/image/tiff encoder never produces: tiles and
// horizontal differencing.
package tifftest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Options controls Encode.
type Options struct {
	TileWidth, TileHeight int
	Deflate               bool
	// Predictor stores each sample as the difference to its left
	// neighbour within a tile row (TIFF predictor 2).
	Predictor bool
}

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagSamplesPerPixel = 277
	tagPlanarConfig    = 284
	tagPredictor       = 317
	tagTileWidth       = 322
	tagTileLength      = 323
	tagTileOffsets     = 324
	tagTileByteCounts  = 325

	typeShort = 3
	typeLong  = 4
)

type entry struct {
	tag, typ uint16
	values   []uint32
}

// Encode writes img as a little-endian 8-bit RGB tiled TIFF. Edge tiles are
// padded with black.
func Encode(w io.Writer, img image.Image, opts Options) error {
	tw, th := opts.TileWidth, opts.TileHeight
	if tw <= 0 || th <= 0 {
		return fmt.Errorf("tifftest: invalid tile size %dx%d", tw, th)
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	across := (width + tw - 1) / tw
	down := (height + th - 1) / th

	var tiles [][]byte
	for ty := 0; ty < down; ty++ {
		for tx := 0; tx < across; tx++ {
			raw, err := encodeTile(img, tx*tw, ty*th, opts)
			if err != nil {
				return err
			}
			tiles = append(tiles, raw)
		}
	}

	compression := uint32(1)
	if opts.Deflate {
		compression = 8
	}
	predictor := uint32(1)
	if opts.Predictor {
		predictor = 2
	}
	offsets := make([]uint32, len(tiles))
	counts := make([]uint32, len(tiles))
	entries := []entry{
		{tagImageWidth, typeLong, []uint32{uint32(width)}},
		{tagImageLength, typeLong, []uint32{uint32(height)}},
		{tagBitsPerSample, typeShort, []uint32{8, 8, 8}},
		{tagCompression, typeShort, []uint32{compression}},
		{tagPhotometric, typeShort, []uint32{2}},
		{tagSamplesPerPixel, typeShort, []uint32{3}},
		{tagPlanarConfig, typeShort, []uint32{1}},
		{tagPredictor, typeShort, []uint32{predictor}},
		{tagTileWidth, typeLong, []uint32{uint32(tw)}},
		{tagTileLength, typeLong, []uint32{uint32(th)}},
		{tagTileOffsets, typeLong, offsets},
		{tagTileByteCounts, typeLong, counts},
	}

	// layout: header, IFD, out-of-line arrays, tile data
	pos := 8 + 2 + len(entries)*12 + 4
	arrayAt := make([]int, len(entries))
	for i, e := range entries {
		if size := valueSize(e); size > 4 {
			arrayAt[i] = pos
			pos += size
		}
	}
	for i, tile := range tiles {
		offsets[i] = uint32(pos)
		counts[i] = uint32(len(tile))
		pos += len(tile)
	}

	le := binary.LittleEndian
	buf := make([]byte, pos)
	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)
	le.PutUint16(buf[8:], uint16(len(entries)))

	for i, e := range entries {
		rec := buf[10+i*12 : 10+(i+1)*12]
		le.PutUint16(rec[0:], e.tag)
		le.PutUint16(rec[2:], e.typ)
		le.PutUint32(rec[4:], uint32(len(e.values)))
		if arrayAt[i] > 0 {
			le.PutUint32(rec[8:], uint32(arrayAt[i]))
			putValues(buf[arrayAt[i]:], e)
		} else {
			putValues(rec[8:], e)
		}
	}
	for i, tile := range tiles {
		copy(buf[offsets[i]:], tile)
	}

	_, err := w.Write(buf)
	return err
}

func encodeTile(img image.Image, x0, y0 int, opts Options) ([]byte, error) {
	b := img.Bounds()
	tw, th := opts.TileWidth, opts.TileHeight
	raw := make([]byte, tw*th*3)
	for ly := 0; ly < th; ly++ {
		for lx := 0; lx < tw; lx++ {
			x, y := b.Min.X+x0+lx, b.Min.Y+y0+ly
			if x >= b.Max.X || y >= b.Max.Y {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			copy(raw[(ly*tw+lx)*3:], []byte{c.R, c.G, c.B})
		}
	}

	if opts.Predictor {
		for ly := 0; ly < th; ly++ {
			row := raw[ly*tw*3 : (ly+1)*tw*3]
			// right to left so every difference uses an unmodified neighbour
			for i := len(row) - 1; i >= 3; i-- {
				row[i] -= row[i-3]
			}
		}
	}

	if !opts.Deflate {
		return raw, nil
	}
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func valueSize(e entry) int {
	if e.typ == typeLong {
		return len(e.values) * 4
	}
	return len(e.values) * 2
}

func putValues(dst []byte, e entry) {
	le := binary.LittleEndian
	for i, v := range e.values {
		if e.typ == typeShort {
			le.PutUint16(dst[i*2:], uint16(v))
		} else {
			le.PutUint32(dst[i*4:], v)
		}
	}
}
