package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying camera in a Z-up world. Yaw is measured from +X
// towards +Y, pitch from the horizon, both in degrees.
type Camera struct {
	Position    mgl32.Vec3
	Yaw, Pitch  float64
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	lastX, lastY float64
	firstMouse   bool
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   1,
		FarPlane:    40000,
		firstMouse:  true,
	}
}

// HandleMouseMovement turns the camera by the cursor delta since the last
// call.
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX, c.lastY = xpos, ypos
		c.firstMouse = false
		return
	}
	const sensitivity = 0.1
	c.Yaw -= (xpos - c.lastX) * sensitivity
	c.Pitch += (c.lastY - ypos) * sensitivity
	c.lastX, c.lastY = xpos, ypos
	c.Pitch = min(max(c.Pitch, -89), 89)
}

func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	p := mgl32.DegToRad(float32(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(float64(y)) * math.Cos(float64(p))),
		float32(math.Sin(float64(y)) * math.Cos(float64(p))),
		float32(math.Sin(float64(p))),
	}.Normalize()
}

// Right is horizontal, perpendicular to Front.
func (c *Camera) Right() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	return mgl32.Vec3{float32(math.Sin(float64(y))), -float32(math.Cos(float64(y))), 0}
}

// Move translates by forward/right/up amounts in camera space; forward
// follows pitch.
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Front().Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, 0, up})
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 0, 1})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Resize updates the aspect ratio for a new framebuffer size.
func (c *Camera) Resize(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}
