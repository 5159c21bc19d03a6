package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header is the subset of the first IFD needed to address pixels lazily.
type Header struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int
	Predictor       int
	ExtraSamples    []int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagStripOffsets              = 273
	TagSamplesPerPixel           = 277
	TagRowsPerStrip              = 278
	TagStripByteCounts           = 279
	TagPlanarConfiguration       = 284
	TagPredictor                 = 317
	TagTileWidth                 = 322
	TagTileLength                = 323
	TagTileOffsets               = 324
	TagTileByteCounts            = 325
	TagExtraSamples              = 338
)

const (
	CompressionNone          = 1
	CompressionDeflate       = 8
	CompressionDeflateLegacy = 32946
)

const (
	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2
)

// ExtraSamples value for premultiplied alpha.
const extraAssociatedAlpha = 1

// field types
const (
	typeByte  = 1
	typeShort = 3
	typeLong  = 4
)

var (
	// ErrInvalidHeader means the data is not a TIFF at all.
	ErrInvalidHeader = errors.New("invalid TIFF header")
	// ErrUnsupported means a valid TIFF uses features this decoder skips.
	// Callers typically fall back to a general purpose decoder.
	ErrUnsupported = errors.New("unsupported TIFF layout")
)

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

func parseHeader(reader io.ReaderAt) (Header, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := reader.ReadAt(buf, offset)
		return buf, err
	}

	raw, err := read(0, 8)
	if err != nil {
		return Header{}, ErrInvalidHeader
	}

	var bo binary.ByteOrder
	switch string(raw[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return Header{}, ErrInvalidHeader
	}
	if bo.Uint16(raw[2:4]) != 42 {
		return Header{}, ErrInvalidHeader
	}
	ifdOffset := int64(bo.Uint32(raw[4:8]))

	entryCountRaw, err := read(ifdOffset, 2)
	if err != nil {
		return Header{}, fmt.Errorf("reading IFD: %w", err)
	}
	numEntries := int(bo.Uint16(entryCountRaw))
	entriesRaw, err := read(ifdOffset+2, numEntries*12)
	if err != nil {
		return Header{}, fmt.Errorf("reading IFD entries: %w", err)
	}

	hdr := Header{
		ByteOrder:       bo,
		SamplesPerPixel: 1,
		Photometric:     -1,
		Compression:     CompressionNone,
		PlanarConfig:    1,
		Predictor:       1,
	}

	for i := 0; i < numEntries; i++ {
		entry := entriesRaw[i*12 : (i+1)*12]
		tag := bo.Uint16(entry[0:2])

		values, err := readValues(reader, bo, entry)
		if err != nil {
			return Header{}, fmt.Errorf("tag %d: %w", tag, err)
		}
		if len(values) == 0 {
			continue
		}

		switch tag {
		case TagImageWidth:
			hdr.Width = values[0]
		case TagImageLength:
			hdr.Height = values[0]
		case TagBitsPerSample:
			hdr.BitsPerSample = values
		case TagCompression:
			hdr.Compression = values[0]
		case TagPhotometricInterpretation:
			hdr.Photometric = values[0]
		case TagStripOffsets:
			hdr.StripOffsets = values
		case TagSamplesPerPixel:
			hdr.SamplesPerPixel = values[0]
		case TagRowsPerStrip:
			hdr.RowsPerStrip = values[0]
		case TagStripByteCounts:
			hdr.StripByteCounts = values
		case TagPlanarConfiguration:
			hdr.PlanarConfig = values[0]
		case TagPredictor:
			hdr.Predictor = values[0]
		case TagTileWidth:
			hdr.TileWidth = values[0]
		case TagTileLength:
			hdr.TileHeight = values[0]
		case TagTileOffsets:
			hdr.TileOffsets = values
		case TagTileByteCounts:
			hdr.TileByteCounts = values
		case TagExtraSamples:
			hdr.ExtraSamples = values
		}
	}

	if hdr.RowsPerStrip <= 0 || hdr.RowsPerStrip > hdr.Height {
		hdr.RowsPerStrip = hdr.Height
	}
	return hdr, nil
}

// readValues decodes the integer payload of one 12-byte IFD entry. Values
// that fit in four bytes are stored inline, larger payloads live at the offset.
func readValues(reader io.ReaderAt, bo binary.ByteOrder, entry []byte) ([]int, error) {
	typ := bo.Uint16(entry[2:4])
	count := int(bo.Uint32(entry[4:8]))

	var size int
	switch typ {
	case typeByte:
		size = 1
	case typeShort:
		size = 2
	case typeLong:
		size = 4
	default:
		// rationals, ascii and friends are never needed for pixel access
		return nil, nil
	}

	data := entry[8:12]
	if count*size > 4 {
		data = make([]byte, count*size)
		if _, err := reader.ReadAt(data, int64(bo.Uint32(entry[8:12]))); err != nil {
			return nil, err
		}
	}

	out := make([]int, count)
	for i := range out {
		switch size {
		case 1:
			out[i] = int(data[i])
		case 2:
			out[i] = int(bo.Uint16(data[i*2:]))
		case 4:
			out[i] = int(bo.Uint32(data[i*4:]))
		}
	}
	return out, nil
}

// validate checks the header against what the lazy decoders can address.
func (h Header) validate() error {
	if h.Width <= 0 || h.Height <= 0 {
		return unsupported("invalid dimensions %dx%d", h.Width, h.Height)
	}
	switch h.Compression {
	case CompressionNone, CompressionDeflate, CompressionDeflateLegacy:
	default:
		return unsupported("compression %d", h.Compression)
	}
	if h.Predictor != 1 {
		return unsupported("predictor %d", h.Predictor)
	}
	if h.PlanarConfig != 1 {
		return unsupported("planar configuration %d", h.PlanarConfig)
	}

	switch h.Photometric {
	case PhotometricBlackIsZero:
		if h.SamplesPerPixel != 1 {
			return unsupported("grayscale with %d samples", h.SamplesPerPixel)
		}
	case PhotometricRGB:
		if h.SamplesPerPixel != 3 && h.SamplesPerPixel != 4 {
			return unsupported("RGB with %d samples", h.SamplesPerPixel)
		}
	default:
		return unsupported("photometric interpretation %d", h.Photometric)
	}

	if len(h.BitsPerSample) == 0 {
		return unsupported("missing BitsPerSample")
	}
	bits := h.BitsPerSample[0]
	if bits != 8 && bits != 16 {
		return unsupported("%d bits per sample", bits)
	}
	for _, b := range h.BitsPerSample {
		if b != bits {
			return unsupported("mixed BitsPerSample %v", h.BitsPerSample)
		}
	}
	return nil
}

// Tiled reports whether pixel data is organised in tiles rather than strips.
func (h Header) Tiled() bool {
	return h.TileWidth > 0 && h.TileHeight > 0
}

func (h Header) bytesPerPixel() int {
	return h.SamplesPerPixel * h.BitsPerSample[0] / 8
}

func (h Header) premultiplied() bool {
	return len(h.ExtraSamples) > 0 && h.ExtraSamples[0] == extraAssociatedAlpha
}
