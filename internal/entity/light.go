package entity

import "github.com/go-gl/mathgl/mgl32"

// PointLight is not drawn; visible lights are collected for the frame.
type PointLight struct {
	Base

	Color     mgl32.Vec3
	Intensity float32
	Range     float32
}

func NewPointLight(name string, pos, color mgl32.Vec3, rng float32) *PointLight {
	return &PointLight{Base: Base{Name: name, Pos: pos}, Color: color, Intensity: 1, Range: rng}
}

func (l *PointLight) Update(float64) {}
