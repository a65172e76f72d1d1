package cull

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const near = 0.1

func testFrustum(eye, center mgl32.Vec3) Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, near, 1000)
	view := mgl32.LookAtV(eye, center, mgl32.Vec3{0, 0, 1})
	return ExtractFrustum(proj.Mul4(view))
}

func TestPlanesAreNormalized(t *testing.T) {
	f := testFrustum(mgl32.Vec3{10, -20, 30}, mgl32.Vec3{50, 40, 0})
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestSphereAtCameraIsVisible(t *testing.T) {
	eyes := []mgl32.Vec3{{0, 0, 0}, {100, 200, 50}, {-3000, 12, 900}}
	for _, eye := range eyes {
		f := testFrustum(eye, eye.Add(mgl32.Vec3{1, 2, -0.5}))
		// Radii above the near distance; a smaller sphere can lie wholly
		// behind the near plane.
		for _, r := range []float32{2 * near, 0.5, 1, 10, 1e4} {
			assert.True(t, f.SphereVisible(eye, r), "eye %v radius %v", eye, r)
		}
	}
}

func TestSphereAtCameraInsideNearPlaneIsCulled(t *testing.T) {
	eye := mgl32.Vec3{100, 200, 50}
	f := testFrustum(eye, eye.Add(mgl32.Vec3{1, 2, -0.5}))
	// the near plane sits near units in front of the eye
	assert.InDelta(t, -near, f.Planes[Near].SignedDistance(eye), 1e-4)
	for _, r := range []float32{near / 10, near / 2, near * 0.9} {
		assert.False(t, f.SphereVisible(eye, r), "radius %v", r)
	}
}

func TestSphereFarAlongViewIsCulled(t *testing.T) {
	eye := mgl32.Vec3{5, 5, 5}
	dir := mgl32.Vec3{1, 0, 0}
	f := testFrustum(eye, eye.Add(dir))

	for _, dist := range []float32{2000, 1e5, 1e7} {
		assert.False(t, f.SphereVisible(eye.Add(dir.Mul(dist)), 1), "distance %v", dist)
	}
	assert.True(t, f.SphereVisible(eye.Add(dir.Mul(500)), 1))
}

func TestSphereClassification(t *testing.T) {
	f := testFrustum(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"ahead", mgl32.Vec3{0, 50, 0}, 1, true},
		{"behind", mgl32.Vec3{0, -50, 0}, 1, false},
		{"behind but huge", mgl32.Vec3{0, -50, 0}, 60, true},
		{"far left", mgl32.Vec3{-500, 50, 0}, 1, false},
		{"straddling left plane", mgl32.Vec3{-60, 50, 0}, 40, true},
		{"above", mgl32.Vec3{0, 50, 200}, 1, false},
		{"beyond far", mgl32.Vec3{0, 1100, 0}, 50, false},
		{"touching far", mgl32.Vec3{0, 1040, 0}, 50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.SphereVisible(tt.center, tt.radius))
		})
	}
}

func TestPointVisible(t *testing.T) {
	f := testFrustum(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.True(t, f.PointVisible(mgl32.Vec3{0, 10, 0}))
	assert.False(t, f.PointVisible(mgl32.Vec3{0, 0.05, 0}), "in front of the near plane")
}
