package cull

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is n·p + D = 0 with a unit normal; the inside is where n·p + D >= 0.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum plane order.
const (
	Left = iota
	Right
	Top
	Bottom
	Near
	Far
)

// Frustum is the six-plane view volume of a camera.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum builds the frustum of a combined projection*view matrix.
// Each plane is row3 ± row i of the matrix, normalized by its normal length.
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	var f Frustum
	f.Planes[Left] = planeFrom(r3.Add(r0))
	f.Planes[Right] = planeFrom(r3.Sub(r0))
	f.Planes[Top] = planeFrom(r3.Sub(r1))
	f.Planes[Bottom] = planeFrom(r3.Add(r1))
	f.Planes[Near] = planeFrom(r3.Add(r2))
	f.Planes[Far] = planeFrom(r3.Sub(r2))
	return f
}

func planeFrom(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{Normal: n, Distance: v[3]}
	}
	return Plane{Normal: n.Mul(1 / l), Distance: v[3] / l}
}

// SignedDistance returns the signed distance from p to the plane.
func (p Plane) SignedDistance(pos mgl32.Vec3) float32 {
	return p.Normal.Dot(pos) + p.Distance
}

// SphereVisible reports whether a sphere is inside or touching the frustum.
// One plane with the whole sphere behind it culls the sphere.
func (f *Frustum) SphereVisible(center mgl32.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(center)+radius < 0 {
			return false
		}
	}
	return true
}

// PointVisible reports whether p lies inside the frustum.
func (f *Frustum) PointVisible(p mgl32.Vec3) bool {
	return f.SphereVisible(p, 0)
}
