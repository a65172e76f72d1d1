package terrain

import (
	"math"

	"terrastream/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
)

// resident returns the most detailed level whose CPU mesh is available.
func (c *Chunk) resident() (*asset.ModelData, int) {
	for lod := range LODCount {
		if d := c.LOD[lod].Data(); d != nil {
			return d, lod
		}
	}
	return nil, -1
}

// HeightAt returns the ground height at world (x, y) on the chunk's most
// detailed resident mesh, interpolated across the mesh triangles. It falls
// back to the height function when no level is resident.
func (c *Chunk) HeightAt(g *Generator, x, y float32) float32 {
	d, lod := c.resident()
	if d == nil {
		return g.HeightAt(float64(x), float64(y))
	}
	n := gridSize(LODDetail[lod])
	cells := n - 1
	step := float32(ChunkSize / float64(cells))

	o := c.Origin()
	fx := (x - o[0]) / step
	fy := (y - o[1]) / step
	i := min(max(int(math.Floor(float64(fx))), 0), cells-1)
	j := min(max(int(math.Floor(float64(fy))), 0), cells-1)
	u := fx - float32(i)
	v := fy - float32(j)

	z := func(ci, cj int) float32 { return d.Positions[3*(cj*n+ci)+2] }
	za, zb, zc, zd := z(i, j), z(i+1, j), z(i, j+1), z(i+1, j+1)
	// same diagonal split as GenerateGround
	if u >= v {
		return za + u*(zb-za) + v*(zd-zb)
	}
	return za + v*(zc-za) + u*(zd-zc)
}

// Raycast intersects a world-space ray with the chunk's most detailed
// resident mesh and returns the distance along dir to the nearest hit.
func (c *Chunk) Raycast(origin, dir mgl32.Vec3) (float32, bool) {
	d, _ := c.resident()
	if d == nil {
		return 0, false
	}
	local := origin.Sub(c.Origin())
	best := float32(math.Inf(1))
	hit := false
	for t := 0; t+2 < len(d.Indices); t += 3 {
		p0 := d.Vertex(int(d.Indices[t]))
		p1 := d.Vertex(int(d.Indices[t+1]))
		p2 := d.Vertex(int(d.Indices[t+2]))
		if dist, ok := rayTriangle(local, dir, p0, p1, p2); ok && dist < best {
			best, hit = dist, true
		}
	}
	return best, hit
}

// rayTriangle is the Möller-Trumbore test, double sided.
func rayTriangle(o, dir, p0, p1, p2 mgl32.Vec3) (float32, bool) {
	const eps = 1e-7
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}
	inv := 1 / det
	s := o.Sub(p0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// RaycastGround walks the chunks along a ray up to maxDist and returns the
// nearest hit on resident ground meshes. Chunks are looked up, never created.
func (t *ChunkTable) RaycastGround(origin, dir mgl32.Vec3, maxDist float32) (mgl32.Vec3, bool) {
	dir = dir.Normalize()
	seen := make(map[Handle]struct{})
	best := maxDist
	hit := false
	const stride = ChunkSize / 4
	for s := float32(0); s <= maxDist+stride; s += stride {
		p := origin.Add(dir.Mul(min(s, maxDist)))
		cx, cy := WorldToChunk(p[0], p[1])
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				c := t.Lookup(cx+dx, cy+dy)
				if c == nil {
					continue
				}
				if _, ok := seen[c.handle]; ok {
					continue
				}
				seen[c.handle] = struct{}{}
				if dist, ok := c.Raycast(origin, dir); ok && dist <= best {
					best, hit = dist, true
				}
			}
		}
		if hit && s > best+ChunkSize {
			break
		}
	}
	if !hit {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(best)), true
}
