// Package imposter ray-casts spheres analytically instead of tessellating
// them, the way point-sprite imposters do on a GPU.
package imposter

import (
	"math"

	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/lighting"
	"github.com/echoflaresat/photosphere/vectors"
)

const (
	DefaultRadius    = 0.2
	specularExponent = 8
)

// DefaultColor is a muted blue.
var DefaultColor = colors.New(0.4, 0.4, 0.6, 1)

type Sphere struct {
	Center vectors.Vec3
	Radius float64
	Color  colors.Color4
}

// Hit describes where a ray meets a sphere.
type Hit struct {
	T      float64
	Point  vectors.Vec3
	Normal vectors.Vec3
	// Inside is set when the ray starts within the sphere. The sphere is
	// drawn as a solid core then: the hit is at the origin, facing the ray.
	Inside bool
	Sphere *Sphere
}

// Intersect casts the ray origin + t*dir (dir of unit length) and returns the
// nearest hit with t >= 0.
func (s *Sphere) Intersect(origin, dir vectors.Vec3) (Hit, bool) {
	oc := origin.Sub(s.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	if c <= 0 {
		return Hit{T: 0, Point: origin, Normal: dir.Neg(), Inside: true, Sphere: s}, true
	}

	discriminant := b*b - c
	if discriminant < 0 {
		return Hit{}, false
	}

	t := -b - math.Sqrt(discriminant)
	if t < 0 {
		// the sphere is behind the origin
		return Hit{}, false
	}

	p := origin.Add(dir.Scale(t))
	return Hit{
		T:      t,
		Point:  p,
		Normal: p.Sub(s.Center).Scale(1 / s.Radius),
		Sphere: s,
	}, true
}

// Nearest returns the closest hit among spheres.
func Nearest(spheres []Sphere, origin, dir vectors.Vec3) (Hit, bool) {
	var best Hit
	found := false
	for i := range spheres {
		hit, ok := spheres[i].Intersect(origin, dir)
		if ok && (!found || hit.T < best.T) {
			best, found = hit, true
		}
	}
	return best, found
}

// Shade lights a hit with Blinn-Phong against light. ambient replaces the
// light's constant ambient term, so callers can pass image-based light.
func Shade(hit Hit, dir vectors.Vec3, light lighting.Light, ambient colors.Color4) colors.Color4 {
	surface := hit.Sphere.Color
	toLight := light.Direction.Normalize()
	toEye := dir.Neg()

	diffuseCoefficient := math.Max(0, hit.Normal.Dot(toLight))
	diffuse := surface.Mul(light.Diffuse).ScaleRGB(diffuseCoefficient)

	halfway := toLight.Add(toEye).Normalize()
	specularCoefficient := math.Pow(math.Max(0, hit.Normal.Dot(halfway)), specularExponent)
	specular := light.Specular.ScaleRGB(specularCoefficient)

	c := diffuse.Add(specular).Add(surface.Mul(ambient))
	c.A = surface.A
	return c
}
