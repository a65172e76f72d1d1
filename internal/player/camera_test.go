package player

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraBasis(t *testing.T) {
	c := NewCamera(800, 600)
	assert.True(t, c.Front().ApproxEqual(mgl32.Vec3{1, 0, 0}))
	assert.True(t, c.Right().ApproxEqual(mgl32.Vec3{0, -1, 0}))

	c.Yaw = 90
	assert.True(t, c.Front().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6))
	assert.True(t, c.Right().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-6))
}

func TestCameraPitchClamped(t *testing.T) {
	c := NewCamera(1, 1)
	c.HandleMouseMovement(0, 0)
	c.HandleMouseMovement(0, -5000)
	assert.Equal(t, 89.0, c.Pitch)
	c.HandleMouseMovement(0, 5000)
	assert.Equal(t, -89.0, c.Pitch)
}

func TestCameraMoveAndView(t *testing.T) {
	c := NewCamera(1, 1)
	c.Move(10, 2, 3)
	assert.True(t, c.Position.ApproxEqual(mgl32.Vec3{10, -2, 3}))

	// the point straight ahead projects to the view-space -Z axis
	ahead := mgl32.TransformCoordinate(c.Position.Add(mgl32.Vec3{5, 0, 0}), c.ViewMatrix())
	assert.InDelta(t, 0, ahead[0], 1e-4)
	assert.InDelta(t, 0, ahead[1], 1e-4)
	assert.InDelta(t, -5, ahead[2], 1e-4)
}
