package asset

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ModelData is the CPU-side copy of a mesh. Positions, Normals and UVs are
// views into one backing allocation.
type ModelData struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	UVs       []float32 // uv per vertex, nil when the mesh has none
	Indices   []uint32  // three per triangle

	// Radius is the largest vertex distance from the local origin.
	Radius float32
	// MinZ and MaxZ bound the vertex heights.
	MinZ, MaxZ float32
}

// NewModelData allocates room for vertexCount vertices and indexCount indices.
func NewModelData(vertexCount, indexCount int, withUVs bool) *ModelData {
	floats := vertexCount * 6
	if withUVs {
		floats += vertexCount * 2
	}
	buf := make([]float32, floats)
	d := &ModelData{
		Positions: buf[0 : vertexCount*3 : vertexCount*3],
		Normals:   buf[vertexCount*3 : vertexCount*6 : vertexCount*6],
		Indices:   make([]uint32, indexCount),
	}
	if withUVs {
		d.UVs = buf[vertexCount*6:]
	}
	return d
}

// VertexCount returns the number of vertices.
func (d *ModelData) VertexCount() int { return len(d.Positions) / 3 }

// TriangleCount returns the number of triangles.
func (d *ModelData) TriangleCount() int { return len(d.Indices) / 3 }

// Vertex returns vertex i's position.
func (d *ModelData) Vertex(i int) mgl32.Vec3 {
	return mgl32.Vec3{d.Positions[3*i], d.Positions[3*i+1], d.Positions[3*i+2]}
}

// ComputeBounds fills Radius, MinZ and MaxZ from the positions.
func (d *ModelData) ComputeBounds() {
	n := d.VertexCount()
	if n == 0 {
		d.Radius, d.MinZ, d.MaxZ = 0, 0, 0
		return
	}
	var r2 float32
	minZ := float32(math.Inf(1))
	maxZ := float32(math.Inf(-1))
	for i := range n {
		v := d.Vertex(i)
		r2 = max(r2, v.Dot(v))
		minZ = min(minZ, v[2])
		maxZ = max(maxZ, v[2])
	}
	d.Radius = float32(math.Sqrt(float64(r2)))
	d.MinZ, d.MaxZ = minZ, maxZ
}

// RecomputeNormals replaces Normals with area-weighted vertex normals.
//
// Every face adds its unnormalized cross product to each of its three
// vertices, then every vertex normal is divided by its length. Normals are
// addressed per vertex, three floats apart.
func (d *ModelData) RecomputeNormals() {
	clear(d.Normals)
	for t := 0; t+2 < len(d.Indices); t += 3 {
		i0, i1, i2 := int(d.Indices[t]), int(d.Indices[t+1]), int(d.Indices[t+2])
		p0, p1, p2 := d.Vertex(i0), d.Vertex(i1), d.Vertex(i2)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, vi := range [3]int{i0, i1, i2} {
			d.Normals[3*vi] += n[0]
			d.Normals[3*vi+1] += n[1]
			d.Normals[3*vi+2] += n[2]
		}
	}
	for vi := range d.VertexCount() {
		n := mgl32.Vec3{d.Normals[3*vi], d.Normals[3*vi+1], d.Normals[3*vi+2]}
		l := n.Len()
		if l == 0 {
			continue
		}
		d.Normals[3*vi] = n[0] / l
		d.Normals[3*vi+1] = n[1] / l
		d.Normals[3*vi+2] = n[2] / l
	}
}

// TextureData holds decoded RGBA8 pixels.
type TextureData struct {
	Width, Height int
	Pixels        []byte
}
