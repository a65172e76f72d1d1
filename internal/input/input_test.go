package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestEdgesLastOneFrame(t *testing.T) {
	m := NewManager()

	m.HandleKeyEvent(glfw.KeyL, glfw.Press)
	assert.True(t, m.JustPressed(ActionToggleLODTint))
	assert.True(t, m.IsActive(ActionToggleLODTint))

	// repeats do not re-trigger the edge
	m.PostUpdate()
	m.HandleKeyEvent(glfw.KeyL, glfw.Repeat)
	assert.False(t, m.JustPressed(ActionToggleLODTint))
	assert.True(t, m.IsActive(ActionToggleLODTint))

	m.HandleKeyEvent(glfw.KeyL, glfw.Release)
	assert.True(t, m.JustReleased(ActionToggleLODTint))
	assert.False(t, m.IsActive(ActionToggleLODTint))
	m.PostUpdate()
	assert.False(t, m.JustReleased(ActionToggleLODTint))
}

func TestAxisAndSharedKeys(t *testing.T) {
	m := NewManager()
	assert.Zero(t, m.Axis(ActionMoveForward, ActionMoveBackward))

	m.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	assert.Equal(t, float32(1), m.Axis(ActionMoveForward, ActionMoveBackward))
	m.HandleKeyEvent(glfw.KeyS, glfw.Press)
	assert.Zero(t, m.Axis(ActionMoveForward, ActionMoveBackward))
	m.HandleKeyEvent(glfw.KeyUp, glfw.Release)
	assert.Equal(t, float32(-1), m.Axis(ActionMoveForward, ActionMoveBackward))
}

func TestBindAddsToExistingKeys(t *testing.T) {
	m := NewManager()
	m.Bind(glfw.KeyQ, ActionQuit)
	m.Bind(glfw.KeyQ, ActionCount) // ignored

	m.HandleKeyEvent(glfw.KeyQ, glfw.Press)
	assert.True(t, m.IsActive(ActionQuit))
	assert.False(t, m.IsActive(ActionCount))
	m.HandleKeyEvent(glfw.KeyQ, glfw.Release)

	// W now drives both forward and boost
	m.Bind(glfw.KeyW, ActionBoost)
	m.HandleKeyEvent(glfw.KeyW, glfw.Press)
	assert.True(t, m.IsActive(ActionMoveForward))
	assert.True(t, m.IsActive(ActionBoost))
}
