package panorama

import (
	"fmt"
	"math"

	"github.com/echoflaresat/photosphere/vectors"
)

// Face identifies one side of a cube map, in the usual GL storage order.
type Face int

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Faces lists all faces in storage order.
var Faces = [6]Face{PosX, NegX, PosY, NegY, PosZ, NegZ}

func (f Face) String() string {
	switch f {
	case PosX:
		return "+X"
	case NegX:
		return "-X"
	case PosY:
		return "+Y"
	case NegY:
		return "-Y"
	case PosZ:
		return "+Z"
	case NegZ:
		return "-Z"
	default:
		return fmt.Sprintf("Face(%d)", int(f))
	}
}

// CubeFace selects the face hit by d and returns face-local coordinates in
// [0,1], following the GL cube map convention:
//
//	face  sc  tc
//	+X    -z  -y
//	-X    +z  -y
//	+Y    +x  +z
//	-Y    +x  -z
//	+Z    +x  -y
//	-Z    -x  -y
//
// with u = (sc/|ma|+1)/2 and v = (tc/|ma|+1)/2 where ma is the major axis
// component. When two components have the same magnitude X wins over Y and
// Y over Z. The zero vector maps to the centre of +X.
func CubeFace(d vectors.Vec3) (face Face, u, v float64) {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)

	var sc, tc, ma float64
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if d.X >= 0 {
			face, sc, tc = PosX, -d.Z, -d.Y
		} else {
			face, sc, tc = NegX, d.Z, -d.Y
		}
	case ay >= az:
		ma = ay
		if d.Y >= 0 {
			face, sc, tc = PosY, d.X, d.Z
		} else {
			face, sc, tc = NegY, d.X, -d.Z
		}
	default:
		ma = az
		if d.Z >= 0 {
			face, sc, tc = PosZ, d.X, -d.Y
		} else {
			face, sc, tc = NegZ, -d.X, -d.Y
		}
	}

	if ma == 0 {
		return PosX, 0.5, 0.5
	}
	u = clamp01((sc/ma + 1) / 2)
	v = clamp01((tc/ma + 1) / 2)
	return face, u, v
}

// CubeDirection is the inverse of CubeFace and returns a unit vector.
func CubeDirection(face Face, u, v float64) vectors.Vec3 {
	sc := 2*u - 1
	tc := 2*v - 1

	var d vectors.Vec3
	switch face {
	case PosX:
		d = vectors.New(1, -tc, -sc)
	case NegX:
		d = vectors.New(-1, -tc, sc)
	case PosY:
		d = vectors.New(sc, 1, tc)
	case NegY:
		d = vectors.New(sc, -1, -tc)
	case PosZ:
		d = vectors.New(sc, -tc, 1)
	default:
		d = vectors.New(-sc, -tc, -1)
	}
	return d.Normalize()
}

// CrossCell places a face in the 4x3 horizontal cross layout.
type CrossCell struct {
	Col, Row int
	// FlipU mirrors the face horizontally, FlipV vertically, relative to
	// the GL face-local coordinates.
	FlipU, FlipV bool
}

// CrossLayout is the cell table of the horizontal cross:
//
//	    +Y
//	-X  -Z  +X  +Z
//	    -Y
//
// The four side faces are mirrored horizontally and top/bottom vertically,
// which makes every shared edge continuous across the image.
var CrossLayout = [6]CrossCell{
	PosX: {Col: 2, Row: 1, FlipU: true},
	NegX: {Col: 0, Row: 1, FlipU: true},
	PosY: {Col: 1, Row: 0, FlipV: true},
	NegY: {Col: 1, Row: 2, FlipV: true},
	PosZ: {Col: 3, Row: 1, FlipU: true},
	NegZ: {Col: 1, Row: 1, FlipU: true},
}

// CrossUV converts face-local coordinates to coordinates over the whole cross
// image, both in [0,1].
func CrossUV(face Face, u, v float64) (x, y float64) {
	cell := CrossLayout[face]
	s, t := cell.toCell(u, v)
	return (float64(cell.Col) + s) / 4, (float64(cell.Row) + t) / 3
}

// CrossFace is the inverse of CrossUV. ok is false for the six empty cells.
func CrossFace(x, y float64) (face Face, u, v float64, ok bool) {
	fx, fy := clamp01(x)*4, clamp01(y)*3
	col := min(int(fx), 3)
	row := min(int(fy), 2)

	for _, f := range Faces {
		cell := CrossLayout[f]
		if cell.Col == col && cell.Row == row {
			u, v = cell.toCell(fx-float64(col), fy-float64(row))
			return f, u, v, true
		}
	}
	return 0, 0, 0, false
}

// toCell applies the cell flips; it is its own inverse.
func (c CrossCell) toCell(u, v float64) (s, t float64) {
	s, t = u, v
	if c.FlipU {
		s = 1 - u
	}
	if c.FlipV {
		t = 1 - v
	}
	return s, t
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
