package render

import (
	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/imposter"
	"github.com/echoflaresat/photosphere/lighting"
	"github.com/echoflaresat/photosphere/panorama"
	"github.com/echoflaresat/photosphere/parallax"
	"github.com/echoflaresat/photosphere/vectors"
)

// Scene is a panorama backdrop, an optional ground plane that corrects it
// for parallax, and imposter spheres in front of it.
type Scene struct {
	Panorama panorama.Source
	// Ground may be nil, the panorama is then sampled at infinity.
	Ground  *parallax.GroundPlane
	Spheres []imposter.Sphere
	Light   lighting.Light
	// ImageAmbient lights spheres with the panorama seen along the surface
	// normal instead of the light's constant ambient term.
	ImageAmbient bool
}

// ColorForRay returns the color seen from eye along dir.
func (s *Scene) ColorForRay(eye, dir vectors.Vec3) colors.Color4 {
	ctx := NewRayContext(s, eye)
	ctx.SetRayDirection(dir)
	return s.shade(ctx)
}

func (s *Scene) shade(ctx *RayContext) colors.Color4 {
	if ctx.HitSphere {
		ambient := s.Light.Ambient
		if s.ImageAmbient {
			ambient = s.Panorama.ColorForDirection(ctx.Hit.Normal).ScaleRGB(0.5)
		}
		return imposter.Shade(ctx.Hit, ctx.RayDirection, s.Light, ambient)
	}
	return s.Panorama.ColorForDirection(ctx.SampleDirection)
}

// Debug colors of the classify mode.
var (
	ClassifyNoPlane      = colors.New(0.5, 0.5, 0.5, 1)
	ClassifyBelowPlane   = colors.New(1, 0, 0, 1)
	ClassifyAboveHorizon = colors.New(0.3, 0.5, 1, 1)
	ClassifyGround       = colors.New(0.2, 0.8, 0.2, 1)
	ClassifySphere       = colors.White()
)

func classifyColor(ctx *RayContext) colors.Color4 {
	if ctx.HitSphere {
		return ClassifySphere
	}
	switch ctx.Class {
	case parallax.BelowPlane:
		return ClassifyBelowPlane
	case parallax.AboveHorizon:
		return ClassifyAboveHorizon
	case parallax.Ground:
		return ClassifyGround
	default:
		return ClassifyNoPlane
	}
}
