package render

import (
	"github.com/echoflaresat/photosphere/imposter"
	"github.com/echoflaresat/photosphere/parallax"
	"github.com/echoflaresat/photosphere/vectors"
)

// RayContext carries per-ray state from tracing to shading. Each worker owns
// one and reuses it for every ray it casts.
type RayContext struct {
	scene *Scene

	Origin       vectors.Vec3
	RayDirection vectors.Vec3

	// Class is how the ray relates to the ground plane.
	Class parallax.Class
	// SampleDirection is the parallax-corrected direction to look up in
	// the panorama.
	SampleDirection vectors.Vec3

	Hit       imposter.Hit
	HitSphere bool
}

func NewRayContext(scene *Scene, origin vectors.Vec3) *RayContext {
	return &RayContext{scene: scene, Origin: origin}
}

// SetRayDirection traces dir from the context origin against the scene.
func (c *RayContext) SetRayDirection(dir vectors.Vec3) {
	c.RayDirection = dir
	c.Hit, c.HitSphere = imposter.Nearest(c.scene.Spheres, c.Origin, dir)

	ground := c.scene.Ground
	c.Class = ground.Classify(c.Origin, dir)
	c.SampleDirection = ground.Adjust(c.Origin, dir)
}
