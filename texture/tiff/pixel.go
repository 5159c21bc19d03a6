package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image/color"
	"io"
)

// colorModel picks the standard color model matching the sample layout.
func (h Header) colorModel() color.Model {
	wide := h.BitsPerSample[0] == 16
	switch {
	case h.Photometric == PhotometricBlackIsZero && wide:
		return color.Gray16Model
	case h.Photometric == PhotometricBlackIsZero:
		return color.GrayModel
	case h.SamplesPerPixel == 4 && h.premultiplied() && wide:
		return color.RGBA64Model
	case h.SamplesPerPixel == 4 && h.premultiplied():
		return color.RGBAModel
	case wide:
		return color.NRGBA64Model
	default:
		return color.NRGBAModel
	}
}

// decodePixel turns bytesPerPixel raw bytes into a color.
func (h Header) decodePixel(px []byte) color.Color {
	if h.BitsPerSample[0] == 16 {
		s := func(i int) uint16 { return h.ByteOrder.Uint16(px[i*2:]) }
		switch {
		case h.Photometric == PhotometricBlackIsZero:
			return color.Gray16{Y: s(0)}
		case h.SamplesPerPixel == 4 && h.premultiplied():
			return color.RGBA64{R: s(0), G: s(1), B: s(2), A: s(3)}
		case h.SamplesPerPixel == 4:
			return color.NRGBA64{R: s(0), G: s(1), B: s(2), A: s(3)}
		default:
			return color.NRGBA64{R: s(0), G: s(1), B: s(2), A: 0xffff}
		}
	}

	switch {
	case h.Photometric == PhotometricBlackIsZero:
		return color.Gray{Y: px[0]}
	case h.SamplesPerPixel == 4 && h.premultiplied():
		return color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	case h.SamplesPerPixel == 4:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	default:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: 255}
	}
}

// inflate undoes DEFLATE compression of one strip or tile.
func inflate(buf []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// readBlock reads one strip or tile and decompresses it when needed.
func readBlock(reader io.ReaderAt, h Header, offset, byteCount int) ([]byte, error) {
	buf := make([]byte, byteCount)
	if _, err := reader.ReadAt(buf, int64(offset)); err != nil {
		return nil, err
	}
	if h.Compression == CompressionNone {
		return buf, nil
	}
	return inflate(buf)
}
