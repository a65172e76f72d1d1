package entity

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Entity is a world object handed to the streamer each frame. The kinds are
// *Prop and *PointLight; consumers switch on the concrete type.
type Entity interface {
	Common() *Base
	Update(dt float64)
	isEntity()
}

// Base holds the fields every entity kind shares.
type Base struct {
	Name   string
	Pos    mgl32.Vec3
	Hidden bool
	Dead   bool
}

func (b *Base) Common() *Base { return b }

func (b *Base) Position() mgl32.Vec3 { return b.Pos }

func (b *Base) IsDead() bool { return b.Dead }

// SetDead marks the entity for removal by its owner.
func (b *Base) SetDead() { b.Dead = true }

func (b *Base) isEntity() {}

// Live reports whether e should be considered this frame.
func Live(e Entity) bool {
	b := e.Common()
	return !b.Hidden && !b.Dead
}

// Sweep drops dead entities in place and returns the shortened slice.
func Sweep(list []Entity) []Entity {
	out := list[:0]
	for _, e := range list {
		if !e.Common().Dead {
			out = append(out, e)
		}
	}
	clear(list[len(out):])
	return out
}
