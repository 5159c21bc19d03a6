// Package panorama maps view directions onto panoramic textures and samples
// them.
//
// World convention used throughout: right-handed, +Y up, the viewer faces -Z
// and +X is to the right. Texture coordinates have their origin at the top
// left corner of the image.
package panorama

import (
	"math"

	"github.com/echoflaresat/photosphere/vectors"
)

// EquirectUV maps a direction to equirectangular texture coordinates.
// u (longitude) is in [0,1) and grows with atan2(dz, dx); v (latitude) is in
// [0,1] with 0 at +Y and 1 at -Y. d does not need to be normalised.
//
// Straight up and straight down land exactly on v = 0 and v = 1 for any
// horizontal component of zero, u is then 0.5.
func EquirectUV(d vectors.Vec3) (u, v float64) {
	u = 0.5*math.Atan2(d.Z, d.X)/math.Pi + 0.5
	if u >= 1 {
		u = 0
	}

	r := math.Sqrt(d.X*d.X + d.Z*d.Z)
	v = -math.Atan2(d.Y, r)/math.Pi + 0.5
	return u, v
}

// EquirectDirection is the inverse of EquirectUV and returns a unit vector.
func EquirectDirection(u, v float64) vectors.Vec3 {
	phi := (u - 0.5) * 2 * math.Pi
	theta := (0.5 - v) * math.Pi

	cosTheta := math.Cos(theta)
	return vectors.New(
		cosTheta*math.Cos(phi),
		math.Sin(theta),
		cosTheta*math.Sin(phi),
	)
}
