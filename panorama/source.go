package panorama

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/vectors"
)

var (
	// ErrAspectRatio is returned when an image cannot hold the requested
	// layout: 2:1 for equirectangular, 4:3 for a cross.
	ErrAspectRatio = errors.New("panorama: wrong aspect ratio")
	// ErrFaceSize is returned when cube faces are not square or differ in size.
	ErrFaceSize = errors.New("panorama: cube faces must be square and of equal size")
)

// Source is anything that has a color for every direction.
type Source interface {
	ColorForDirection(d vectors.Vec3) colors.Color4
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(d vectors.Vec3) colors.Color4

func (f SourceFunc) ColorForDirection(d vectors.Vec3) colors.Color4 {
	return f(d)
}

// Panorama is a Source holding resources, such as a mapped file, that must be
// released with Close.
type Panorama interface {
	Source
	io.Closer
}

// Equirectangular samples a 2:1 longitude/latitude image.
type Equirectangular struct {
	img    image.Image
	filter Filter
}

func NewEquirectangular(img image.Image, filter Filter) (*Equirectangular, error) {
	b := img.Bounds()
	if b.Dy() == 0 || b.Dx() != 2*b.Dy() {
		return nil, fmt.Errorf("%w: equirectangular image is %dx%d", ErrAspectRatio, b.Dx(), b.Dy())
	}
	return &Equirectangular{img: img, filter: filter}, nil
}

func (e *Equirectangular) Image() image.Image {
	return e.img
}

func (e *Equirectangular) ColorForDirection(d vectors.Vec3) colors.Color4 {
	u, v := EquirectUV(d)
	return sample(e.img, u, v, e.filter, true)
}

// Close releases the underlying image if it holds resources.
func (e *Equirectangular) Close() error {
	return closeImage(e.img)
}

// CubeMap samples six square faces stored in GL convention. Filtering does
// not cross face edges.
type CubeMap struct {
	faces  [6]image.Image
	size   int
	filter Filter
	owner  image.Image // cross image the faces are views of, if any
}

func NewCubeMap(faces [6]image.Image, filter Filter) (*CubeMap, error) {
	size := -1
	for _, f := range Faces {
		if faces[f] == nil {
			return nil, fmt.Errorf("%w: face %v missing", ErrFaceSize, f)
		}
		b := faces[f].Bounds()
		if b.Dx() != b.Dy() || b.Dx() == 0 {
			return nil, fmt.Errorf("%w: face %v is %dx%d", ErrFaceSize, f, b.Dx(), b.Dy())
		}
		if size >= 0 && b.Dx() != size {
			return nil, fmt.Errorf("%w: face %v is %d pixels, expected %d", ErrFaceSize, f, b.Dx(), size)
		}
		size = b.Dx()
	}
	return &CubeMap{faces: faces, size: size, filter: filter}, nil
}

// NewCubeMapFromCross reads the faces out of a 4x3 horizontal cross image
// laid out as described by CrossLayout. The faces are views, no pixels are
// copied.
func NewCubeMapFromCross(img image.Image, filter Filter) (*CubeMap, error) {
	b := img.Bounds()
	tile := b.Dx() / 4
	if tile == 0 || b.Dx() != 4*tile || b.Dy() != 3*tile {
		return nil, fmt.Errorf("%w: cross image is %dx%d", ErrAspectRatio, b.Dx(), b.Dy())
	}

	var faces [6]image.Image
	for _, f := range Faces {
		faces[f] = &crossFace{img: img, cell: CrossLayout[f], size: tile}
	}
	cube, err := NewCubeMap(faces, filter)
	if err != nil {
		return nil, err
	}
	cube.owner = img
	return cube, nil
}

// Face returns the face image in GL orientation.
func (c *CubeMap) Face(f Face) image.Image {
	return c.faces[f]
}

func (c *CubeMap) FaceSize() int {
	return c.size
}

func (c *CubeMap) ColorForDirection(d vectors.Vec3) colors.Color4 {
	face, u, v := CubeFace(d)
	return sample(c.faces[face], u, v, c.filter, false)
}

// Close releases the underlying images if they hold resources.
func (c *CubeMap) Close() error {
	if c.owner != nil {
		return closeImage(c.owner)
	}
	var errs []error
	for _, f := range c.faces {
		errs = append(errs, closeImage(f))
	}
	return errors.Join(errs...)
}

func closeImage(img image.Image) error {
	if closer, ok := img.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// crossFace presents one cell of a cross image as a GL-oriented face.
type crossFace struct {
	img  image.Image
	cell CrossCell
	size int
}

func (f *crossFace) ColorModel() color.Model {
	return f.img.ColorModel()
}

func (f *crossFace) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.size, f.size)
}

func (f *crossFace) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.size || y >= f.size {
		return color.Transparent
	}
	if f.cell.FlipU {
		x = f.size - 1 - x
	}
	if f.cell.FlipV {
		y = f.size - 1 - y
	}
	origin := f.img.Bounds().Min
	return f.img.At(origin.X+f.cell.Col*f.size+x, origin.Y+f.cell.Row*f.size+y)
}
