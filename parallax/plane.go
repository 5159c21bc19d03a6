// Package parallax fakes depth for the ground of a panorama. The panorama is
// treated as if its lower half were painted on a physical plane, so moving
// the eye away from the capture point shifts the floor the way a real floor
// would.
package parallax

import (
	"errors"
	"fmt"
	"math"

	"github.com/echoflaresat/photosphere/vectors"
)

const (
	// normalTolerance bounds | |n| - 1 | accepted by NewGroundPlane.
	normalTolerance = 1e-6
	// horizonEpsilon keeps the intersection away from grazing rays: n·dir
	// must be below -horizonEpsilon for a ray to reach the plane.
	horizonEpsilon = 1e-12
)

var (
	ErrNonUnitNormal     = errors.New("parallax: plane normal must be a unit vector")
	ErrNonPositiveHeight = errors.New("parallax: reference height must be positive")
)

// GroundPlane is the plane n·p + d = 0 together with the height above it at
// which the panorama was captured. The normal points from the plane towards
// the viewer. A nil *GroundPlane is valid and means no correction.
type GroundPlane struct {
	normal          vectors.Vec3
	d               float64
	referenceHeight float64
	reference       vectors.Vec3
}

// NewGroundPlane validates the plane. The capture position is the point
// referenceHeight above the plane, straight above the foot of the origin.
func NewGroundPlane(normal vectors.Vec3, d, referenceHeight float64) (*GroundPlane, error) {
	if !normal.IsFinite() || math.Abs(normal.Norm()-1) > normalTolerance {
		return nil, fmt.Errorf("%w: %v has length %g", ErrNonUnitNormal, normal, normal.Norm())
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, fmt.Errorf("parallax: plane offset %v is not finite", d)
	}
	if !(referenceHeight > 0) || math.IsInf(referenceHeight, 0) {
		return nil, fmt.Errorf("%w: %v", ErrNonPositiveHeight, referenceHeight)
	}

	return &GroundPlane{
		normal:          normal,
		d:               d,
		referenceHeight: referenceHeight,
		reference:       normal.Scale(referenceHeight - d),
	}, nil
}

func (p *GroundPlane) Normal() vectors.Vec3 {
	return p.normal
}

func (p *GroundPlane) D() float64 {
	return p.d
}

func (p *GroundPlane) ReferenceHeight() float64 {
	return p.referenceHeight
}

// ReferencePosition is the capture point of the panorama.
func (p *GroundPlane) ReferencePosition() vectors.Vec3 {
	return p.reference
}

// SignedDistance is n·point + d, positive on the viewer's side.
func (p *GroundPlane) SignedDistance(point vectors.Vec3) float64 {
	return p.normal.Dot(point) + p.d
}

// Class is the outcome of classifying one ray against the plane.
type Class int

const (
	// NoPlane: there is no ground plane.
	NoPlane Class = iota
	// BelowPlane: the eye is under the plane (or nowhere), nothing is
	// corrected.
	BelowPlane
	// AboveHorizon: the ray never reaches the plane.
	AboveHorizon
	// Ground: the ray hits the plane and gets corrected.
	Ground
)

func (c Class) String() string {
	switch c {
	case NoPlane:
		return "no-plane"
	case BelowPlane:
		return "below-plane"
	case AboveHorizon:
		return "above-horizon"
	case Ground:
		return "ground"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Classify decides which branch Adjust takes for the ray.
func (p *GroundPlane) Classify(camPos, viewDir vectors.Vec3) Class {
	if p == nil {
		return NoPlane
	}
	if !camPos.IsFinite() || p.SignedDistance(camPos) < 0 {
		return BelowPlane
	}
	// written so that NaN ends up above the horizon
	if !(p.normal.Dot(viewDir) < -horizonEpsilon) {
		return AboveHorizon
	}
	return Ground
}

// Intersect returns the point where the ray from camPos along viewDir meets
// the plane. ok is false unless Classify reports Ground.
func (p *GroundPlane) Intersect(camPos, viewDir vectors.Vec3) (point vectors.Vec3, ok bool) {
	if p.Classify(camPos, viewDir) != Ground {
		return vectors.Vec3{}, false
	}

	// line-plane meet in Plücker form: the line's moment m = camPos × dir
	den := p.normal.Dot(viewDir)
	m := camPos.Cross(viewDir)
	r := p.normal.Cross(m).Sub(viewDir.Scale(p.d)).Scale(1 / den)
	return r, true
}

// Adjust returns the direction to look up in the panorama for a ray cast
// from camPos along viewDir. Rays that hit the plane are redirected to the
// same floor point as seen from the capture position; every other ray,
// and every ray of a nil plane, is returned unchanged.
func (p *GroundPlane) Adjust(camPos, viewDir vectors.Vec3) vectors.Vec3 {
	r, ok := p.Intersect(camPos, viewDir)
	if !ok {
		return viewDir
	}
	return r.Sub(p.reference).Normalize()
}
