package render

import (
	"math"

	"github.com/echoflaresat/photosphere/vectors"
)

// Camera is a pinhole camera in the Y-up world frame.
type Camera struct {
	FOVDeg     float64
	TanHalfFOV float64
	Position   vectors.Vec3
	Forward    vectors.Vec3
	Right      vectors.Vec3
	Up         vectors.Vec3
}

// Eye selects one view of a stereo pair.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

// NewCamera places a camera at position looking down -Z, then turns it
// yawDeg to the right and pitchDeg up. fovDeg is the horizontal field of
// view.
func NewCamera(position vectors.Vec3, yawDeg, pitchDeg, fovDeg float64) Camera {
	fwd := vectors.New(0, 0, -1)
	right := vectors.UnitX
	up := vectors.UnitY

	if yawDeg != 0 {
		// positive rotation about +Y turns left
		fwd, right, up = yawCamera(fwd, right, up, -yawDeg)
	}
	if pitchDeg != 0 {
		fwd, right, up = tiltCamera(fwd, right, up, pitchDeg)
	}

	return Camera{
		FOVDeg:     fovDeg,
		TanHalfFOV: math.Tan(fovDeg * math.Pi / 360.0),
		Position:   position,
		Forward:    fwd,
		Right:      right,
		Up:         up,
	}
}

// WithEyeOffset moves the camera half the interpupillary distance ipd along
// its right axis, towards the given eye.
func (c Camera) WithEyeOffset(ipd float64, eye Eye) Camera {
	offset := c.Right.Scale(ipd / 2)
	if eye == LeftEye {
		offset = offset.Neg()
	}
	c.Position = c.Position.Add(offset)
	return c
}

// rotateVec applies Rodrigues’ rotation formula: rotate v around axis by (cosT, sinT).
func rotateVec(v, axis vectors.Vec3, cosT, sinT float64) vectors.Vec3 {
	// v*cos + (axis x v)*sin + axis*(axis·v)*(1-cos)
	return v.Scale(cosT).
		Add(axis.Cross(v).Scale(sinT)).
		Add(axis.Scale(axis.Dot(v) * (1.0 - cosT)))
}

// tiltCamera rotates forward/up around the Right axis by tiltDeg.
func tiltCamera(fwd, right, up vectors.Vec3, tiltDeg float64) (vectors.Vec3, vectors.Vec3, vectors.Vec3) {
	theta := tiltDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)

	fwdNew := rotateVec(fwd, right, c, s).Normalize()
	upNew := rotateVec(up, right, c, s).Normalize()
	return fwdNew, right, upNew
}

// yawCamera rotates forward/right around the Up axis by yawDeg.
func yawCamera(fwd, right, up vectors.Vec3, yawDeg float64) (vectors.Vec3, vectors.Vec3, vectors.Vec3) {
	theta := yawDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)

	fwdNew := rotateVec(fwd, up, c, s).Normalize()
	rightNew := rotateVec(right, up, c, s).Normalize()
	return fwdNew, rightNew, up
}

// ComputeRay returns the normalized viewing direction through image position
// (x, y), measured in pixels from the top left corner of a width x height
// image. Pixel centres sit at half-integers.
func (c Camera) ComputeRay(x, y float64, width, height int) vectors.Vec3 {
	w := float64(width)
	h := float64(height)

	// NDC in [-1, +1], +y up
	xNDC := 2*x/w - 1
	yNDC := 1 - 2*y/h

	xPlane := xNDC * c.TanHalfFOV
	yPlane := yNDC * c.TanHalfFOV * h / w

	dir := c.Right.Scale(xPlane).
		Add(c.Up.Scale(yPlane)).
		Add(c.Forward)

	return dir.Normalize()
}
