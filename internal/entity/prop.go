package entity

import (
	"terrastream/internal/asset"
	"terrastream/internal/render"

	"github.com/go-gl/mathgl/mgl32"
)

// Prop is a placed model, optionally textured.
type Prop struct {
	Base

	Model   *asset.Model
	Texture *asset.Texture

	Rotation mgl32.Quat
	Scale    float32
	// Spin turns the prop around +Z, in radians per second.
	Spin float32

	// Tint defaults to white when zero.
	Tint   mgl32.Vec4
	Shader render.ShaderID
	Flags  render.Flags
	Cull   render.CullMode
}

func NewProp(name string, model *asset.Model, pos mgl32.Vec3) *Prop {
	return &Prop{
		Base:     Base{Name: name, Pos: pos},
		Model:    model,
		Rotation: mgl32.QuatIdent(),
		Scale:    1,
	}
}

func (p *Prop) Update(dt float64) {
	if p.Spin == 0 {
		return
	}
	turn := mgl32.QuatRotate(p.Spin*float32(dt), mgl32.Vec3{0, 0, 1})
	p.Rotation = turn.Mul(p.Rotation).Normalize()
}

// Transform returns the model matrix: scale, then rotation, then translation.
func (p *Prop) Transform() mgl32.Mat4 {
	s := p.scale()
	return mgl32.Translate3D(p.Pos[0], p.Pos[1], p.Pos[2]).
		Mul4(p.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(s, s, s))
}

// BoundingRadius is the model's radius under Scale, or zero before the
// model has loaded.
func (p *Prop) BoundingRadius() float32 {
	return p.Model.Radius() * p.scale()
}

// DrawTint returns Tint, or white when unset.
func (p *Prop) DrawTint() mgl32.Vec4 {
	if p.Tint == (mgl32.Vec4{}) {
		return render.White
	}
	return p.Tint
}

func (p *Prop) scale() float32 {
	if p.Scale == 0 {
		return 1
	}
	return p.Scale
}
