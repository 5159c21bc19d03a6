package parallax

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/photosphere/vectors"
)

func floor(t *testing.T) *GroundPlane {
	t.Helper()
	p, err := NewGroundPlane(vectors.UnitY, 0, 2)
	require.NoError(t, err)
	return p
}

func TestNewGroundPlaneValidates(t *testing.T) {
	_, err := NewGroundPlane(vectors.New(0, 2, 0), 0, 2)
	assert.ErrorIs(t, err, ErrNonUnitNormal)

	_, err = NewGroundPlane(vectors.Zero(), 0, 2)
	assert.ErrorIs(t, err, ErrNonUnitNormal)

	_, err = NewGroundPlane(vectors.New(math.NaN(), 1, 0), 0, 2)
	assert.ErrorIs(t, err, ErrNonUnitNormal)

	for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err = NewGroundPlane(vectors.UnitY, 0, h)
		assert.ErrorIs(t, err, ErrNonPositiveHeight, "%v", h)
	}

	_, err = NewGroundPlane(vectors.UnitY, math.Inf(-1), 2)
	assert.Error(t, err)

	p, err := NewGroundPlane(vectors.New(0, 1, 1e-8), 0, 2)
	require.NoError(t, err, "normals within tolerance are accepted")
	assert.Equal(t, 2.0, p.ReferenceHeight())
}

func TestReferencePosition(t *testing.T) {
	assert.Equal(t, vectors.New(0, 2, 0), floor(t).ReferencePosition())

	// the plane y = -1.5 captured 1.7 above it
	p, err := NewGroundPlane(vectors.UnitY, 1.5, 1.7)
	require.NoError(t, err)
	assert.True(t, p.ReferencePosition().ApproxEqual(vectors.New(0, 0.2, 0), 1e-12))
	assert.InDelta(t, 1.7, p.SignedDistance(p.ReferencePosition()), 1e-12)
}

func TestNilPlanePassesThrough(t *testing.T) {
	var p *GroundPlane
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		cam := vectors.New(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		dir := vectors.New(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Normalize()
		assert.Equal(t, dir, p.Adjust(cam, dir))
		assert.Equal(t, NoPlane, p.Classify(cam, dir))
	}
}

func TestAboveHorizonPassesThrough(t *testing.T) {
	p := floor(t)
	cam := vectors.New(0, 2, 0)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		dir := vectors.New(rng.NormFloat64(), math.Abs(rng.NormFloat64()), rng.NormFloat64()).Normalize()
		assert.Equal(t, dir, p.Adjust(cam, dir))
		assert.Equal(t, AboveHorizon, p.Classify(cam, dir))
	}

	// exactly horizontal never reaches the division
	horizontal := vectors.New(1, 0, 0)
	assert.Equal(t, horizontal, p.Adjust(cam, horizontal))
	grazing := vectors.New(1, -1e-15, 0)
	assert.Equal(t, grazing, p.Adjust(cam, grazing))
}

func TestStraightDownIsUnchanged(t *testing.T) {
	p := floor(t)
	cam := vectors.New(0, 2, 0)
	down := vectors.New(0, -1, 0)

	r, ok := p.Intersect(cam, down)
	require.True(t, ok)
	assert.Equal(t, vectors.Zero(), r)
	assert.True(t, p.Adjust(cam, down).ApproxEqual(down, 1e-12))
	assert.Equal(t, Ground, p.Classify(cam, down))
}

func TestObliqueIntersectionLiesOnPlane(t *testing.T) {
	p := floor(t)
	cam := vectors.New(0, 2, 0)

	r, ok := p.Intersect(cam, vectors.New(1, -1, 0).Normalize())
	require.True(t, ok)
	assert.True(t, r.ApproxEqual(vectors.New(2, 0, 0), 1e-12), "%v", r)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		eye := vectors.New(rng.Float64()*4-2, 0.1+rng.Float64()*3, rng.Float64()*4-2)
		dir := vectors.New(rng.NormFloat64(), -0.05-math.Abs(rng.NormFloat64()), rng.NormFloat64()).Normalize()

		r, ok := p.Intersect(eye, dir)
		require.True(t, ok)
		assert.InDelta(t, 0, r.Y, 1e-9, "eye %v dir %v", eye, dir)

		// r lies on the ray in front of the eye
		along := r.Sub(eye)
		assert.Greater(t, along.Dot(dir), 0.0)
		assert.InDelta(t, 0, along.Cross(dir).Norm(), 1e-9)
	}
}

// From the capture position itself the correction is the identity.
func TestAdjustFromReferenceIsIdentity(t *testing.T) {
	p, err := NewGroundPlane(vectors.New(0, 1, 0.2).Normalize(), 0.3, 1.6)
	require.NoError(t, err)
	eye := p.ReferencePosition()

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		dir := vectors.New(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Normalize()
		got := p.Adjust(eye, dir)
		assert.True(t, got.ApproxEqual(dir, 1e-9), "%v -> %v", dir, got)
	}
}

func TestAdjustMovesTheFloor(t *testing.T) {
	p := floor(t)

	// stepping one metre to +X and looking straight down shows the floor
	// point (1,0,0), which the capture position saw 45 degrees off nadir
	got := p.Adjust(vectors.New(1, 2, 0), vectors.New(0, -1, 0))
	assert.True(t, got.ApproxEqual(vectors.New(1, -2, 0).Normalize(), 1e-12), "%v", got)
	assert.InDelta(t, 1, got.Norm(), 1e-12)

	// crouching makes the same ray reach the floor sooner
	got = p.Adjust(vectors.New(0, 1, 0), vectors.New(1, -1, 0).Normalize())
	assert.True(t, got.ApproxEqual(vectors.New(1, -2, 0).Normalize(), 1e-12), "%v", got)
}

func TestBelowPlaneFallsBack(t *testing.T) {
	p := floor(t)
	cam := vectors.New(0, -0.5, 0)
	for _, dir := range []vectors.Vec3{vectors.New(0, -1, 0), vectors.New(0, 1, 0), vectors.New(1, -1, 0).Normalize()} {
		assert.Equal(t, BelowPlane, p.Classify(cam, dir))
		got := p.Adjust(cam, dir)
		assert.Equal(t, dir, got)
		assert.True(t, got.IsFinite())
	}

	nowhere := vectors.New(math.NaN(), 1, 0)
	assert.Equal(t, BelowPlane, p.Classify(nowhere, vectors.New(0, -1, 0)))
}

func TestEyeOnPlane(t *testing.T) {
	p := floor(t)
	got := p.Adjust(vectors.New(2, 0, 0), vectors.New(0, -1, 0))
	assert.True(t, got.ApproxEqual(vectors.New(1, -1, 0).Normalize(), 1e-12), "%v", got)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "ground", Ground.String())
	assert.Equal(t, "above-horizon", AboveHorizon.String())
	assert.Equal(t, "Class(9)", Class(9).String())
}
