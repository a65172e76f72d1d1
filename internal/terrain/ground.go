package terrain

import (
	"fmt"

	"terrastream/internal/asset"
	"terrastream/internal/profiling"
)

// GenerateGround builds the heightfield mesh of chunk (chunkX, chunkY) at the
// given density. Positions are relative to the chunk's corner, Z is up. Two
// adjacent chunks sample identical world coordinates along their shared edge,
// so their border vertices match exactly.
func GenerateGround(g *Generator, chunkX, chunkY int, detail float64) (*asset.ModelData, error) {
	defer profiling.Track("terrain.GenerateGround")()

	n := gridSize(detail)
	if n < 2 {
		return nil, fmt.Errorf("terrain: detail %v gives no cells", detail)
	}
	cells := n - 1
	step := ChunkSize / float64(cells)

	d := asset.NewModelData(n*n, cells*cells*6, true)
	for j := range n {
		for i := range n {
			// Integer sample coordinates keep shared edges bit-identical.
			wx := float64(chunkX*cells+i) * step
			wy := float64(chunkY*cells+j) * step
			v := j*n + i
			d.Positions[3*v] = float32(float64(i) * step)
			d.Positions[3*v+1] = float32(float64(j) * step)
			d.Positions[3*v+2] = g.HeightAt(wx, wy)
			d.UVs[2*v] = float32(i) / float32(cells)
			d.UVs[2*v+1] = float32(j) / float32(cells)
		}
	}

	// Cell corners a=(i,j) b=(i+1,j) c=(i,j+1) d=(i+1,j+1). Triangles a,b,d
	// and a,d,c wind counter-clockwise seen from +Z.
	k := 0
	for j := range cells {
		for i := range cells {
			a := uint32(j*n + i)
			b := a + 1
			c := a + uint32(n)
			dd := c + 1
			d.Indices[k+0], d.Indices[k+1], d.Indices[k+2] = a, b, dd
			d.Indices[k+3], d.Indices[k+4], d.Indices[k+5] = a, dd, c
			k += 6
		}
	}

	d.RecomputeNormals()
	d.Indices = OptimizeVertexCache(d.Indices, n*n)
	d.ComputeBounds()
	return d, nil
}
