// Package lighting derives the scene light from where and when a panorama
// was captured.
package lighting

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/echoflaresat/photosphere/colors"
	"github.com/echoflaresat/photosphere/vectors"
)

// Light is a directional light with a constant ambient term.
type Light struct {
	// Direction points from the scene towards the light.
	Direction vectors.Vec3
	Diffuse   colors.Color4
	Specular  colors.Color4
	Ambient   colors.Color4
}

// Default is a light high in the sky, slightly to the left and ahead.
func Default() Light {
	return Light{
		Direction: vectors.New(-2, 10, -1).Normalize(),
		Diffuse:   colors.New(0.6, 0.8, 0.6, 1),
		Specular:  colors.New(0.4, 0.4, 0.3, 1),
		Ambient:   colors.New(0.2, 0.2, 0.25, 1),
	}
}

// Sun is the light of the sun at time t seen from latDeg/lonDeg (degrees,
// east positive). Below the horizon only the ambient term is left.
func Sun(t time.Time, latDeg, lonDeg float64) Light {
	l := Default()
	l.Direction = SunDirection(t, latDeg, lonDeg)
	l.Diffuse = colors.New(1.0, 0.97, 0.9, 1)
	l.Specular = colors.New(0.5, 0.5, 0.45, 1)

	// fade out over the last few degrees above the horizon
	fade := smoothstep(-0.02, 0.08, l.Direction.Y)
	l.Diffuse = l.Diffuse.ScaleRGB(fade)
	l.Specular = l.Specular.ScaleRGB(fade)
	return l
}

// SunDirection returns the unit vector towards the sun in the local frame
// of an observer at latDeg/lonDeg: +X east, +Y up, -Z north.
func SunDirection(t time.Time, latDeg, lonDeg float64) vectors.Vec3 {
	jd := julian.TimeToJD(t.UTC())

	// apparent right ascension and declination of the sun
	ra, dec := solar.ApparentEquatorial(jd)
	gst := sidereal.Apparent(jd)

	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180

	hourAngle := float64(gst.Angle()) + lon - float64(ra)
	sinDec, cosDec := math.Sincos(float64(dec))
	sinLat, cosLat := math.Sincos(lat)
	sinH, cosH := math.Sincos(hourAngle)

	east := -cosDec * sinH
	north := cosLat*sinDec - sinLat*cosDec*cosH
	up := sinLat*sinDec + cosLat*cosDec*cosH

	return vectors.New(east, up, -north).Normalize()
}

// Elevation is the angle of dir above the horizon in degrees.
func Elevation(dir vectors.Vec3) float64 {
	n := dir.Normalize()
	return math.Asin(math.Max(-1, math.Min(1, n.Y))) * 180 / math.Pi
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
