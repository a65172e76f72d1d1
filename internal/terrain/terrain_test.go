package terrain

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"terrastream/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash2Deterministic(t *testing.T) {
	first := hash2(10, 20, 42)
	for range 100 {
		require.Equal(t, first, hash2(10, 20, 42))
	}
	assert.NotEqual(t, hash2(1, 2, 42), hash2(2, 1, 42), "axes must not be interchangeable")
	assert.NotEqual(t, hash2(1, 1, 100), hash2(1, 1, 200))
}

func TestValueNoise2DRange(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	for range 1000 {
		x := rng.Float64()*2000 - 1000
		y := rng.Float64()*2000 - 1000
		v := valueNoise2D(x, y, 42)
		require.True(t, v >= 0 && v <= 1, "valueNoise2D(%f, %f) = %f", x, y, v)
	}
}

func TestHeightWithinBandRange(t *testing.T) {
	g := NewGenerator(7)
	lo, hi := g.HeightRange()
	assert.Equal(t, float32(-52), lo)
	assert.Equal(t, float32(1512), hi)

	rng := rand.New(rand.NewSource(1))
	for range 500 {
		h := g.HeightAt(rng.Float64()*1e7-5e6, rng.Float64()*1e7-5e6)
		require.True(t, h >= lo && h <= hi, "height %f", h)
	}
}

func TestGenerateGroundShape(t *testing.T) {
	g := NewGenerator(1)
	for lod, detail := range LODDetail {
		d, err := GenerateGround(g, 0, 0, detail)
		require.NoError(t, err)
		n := gridSize(detail)
		assert.Equal(t, []int{31, 11, 6}[lod], n)
		assert.Equal(t, n*n, d.VertexCount())
		assert.Len(t, d.Indices, (n-1)*(n-1)*6)
		assert.Len(t, d.UVs, n*n*2)
	}
}

func TestGenerateGroundDeterministic(t *testing.T) {
	g := NewGenerator(99)
	a, err := GenerateGround(g, 5, 7, 0.01)
	require.NoError(t, err)
	b, err := GenerateGround(NewGenerator(99), 5, 7, 0.01)
	require.NoError(t, err)

	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Normals, b.Normals)
	assert.Equal(t, a.Indices, b.Indices)
	assert.Equal(t, a.Radius, b.Radius)
}

func TestGenerateGroundNormalsFaceUp(t *testing.T) {
	d, err := GenerateGround(NewGenerator(3), -2, 4, 0.03)
	require.NoError(t, err)
	for v := range d.VertexCount() {
		n := mgl32.Vec3{d.Normals[3*v], d.Normals[3*v+1], d.Normals[3*v+2]}
		require.InDelta(t, 1, n.Len(), 1e-5, "vertex %d", v)
		require.Greater(t, n[2], float32(0), "vertex %d", v)
	}
	// every face winds counter-clockwise seen from above
	for k := 0; k < len(d.Indices); k += 3 {
		p0 := d.Vertex(int(d.Indices[k]))
		p1 := d.Vertex(int(d.Indices[k+1]))
		p2 := d.Vertex(int(d.Indices[k+2]))
		require.Greater(t, p1.Sub(p0).Cross(p2.Sub(p0))[2], float32(0))
	}
}

func TestAdjacentChunksShareEdges(t *testing.T) {
	g := NewGenerator(11)
	for _, detail := range LODDetail {
		left, err := GenerateGround(g, 3, -1, detail)
		require.NoError(t, err)
		right, err := GenerateGround(g, 4, -1, detail)
		require.NoError(t, err)
		n := gridSize(detail)
		for j := range n {
			lz := left.Positions[3*(j*n+n-1)+2]
			rz := right.Positions[3*(j*n)+2]
			require.Equal(t, lz, rz, "detail %v row %d", detail, j)
		}
	}
}

func TestGroundRadiusIsFarthestVertex(t *testing.T) {
	d, err := GenerateGround(NewGenerator(5), 1, 1, 0.005)
	require.NoError(t, err)
	var want float32
	for v := range d.VertexCount() {
		want = max(want, d.Vertex(v).Len())
	}
	assert.InDelta(t, want, d.Radius, 1e-3)
	assert.Greater(t, d.Radius, float32(ChunkSize*math.Sqrt2)-1)
}

func canonicalTriangles(idx []uint32) [][3]uint32 {
	out := make([][3]uint32, 0, len(idx)/3)
	for k := 0; k < len(idx); k += 3 {
		a, b, c := idx[k], idx[k+1], idx[k+2]
		// rotate so the smallest index leads; rotation keeps winding
		for a > b || a > c {
			a, b, c = b, c, a
		}
		out = append(out, [3]uint32{a, b, c})
	}
	slices.SortFunc(out, func(x, y [3]uint32) int { return slices.Compare(x[:], y[:]) })
	return out
}

func gridIndices(n int) []uint32 {
	var idx []uint32
	for j := range n - 1 {
		for i := range n - 1 {
			a := uint32(j*n + i)
			idx = append(idx, a, a+1, a+uint32(n)+1, a, a+uint32(n)+1, a+uint32(n))
		}
	}
	return idx
}

// acmr simulates a FIFO vertex cache of the given size and returns the
// average number of cache misses per triangle.
func acmr(indices []uint32, cacheSize int) float64 {
	if len(indices) < 3 {
		return 0
	}
	fifo := make([]uint32, 0, cacheSize)
	misses := 0
	for _, v := range indices {
		if containsIndex(fifo, v) {
			continue
		}
		misses++
		if len(fifo) == cacheSize {
			fifo = fifo[1:]
		}
		fifo = append(fifo, v)
	}
	return float64(misses) / float64(len(indices)/3)
}

func TestOptimizeVertexCacheKeepsTriangles(t *testing.T) {
	idx := gridIndices(20)
	opt := OptimizeVertexCache(idx, 400)
	require.Len(t, opt, len(idx))
	assert.Equal(t, canonicalTriangles(idx), canonicalTriangles(opt))
}

func TestOptimizeVertexCacheImprovesShuffledMesh(t *testing.T) {
	idx := gridIndices(40)
	tris := len(idx) / 3
	rng := rand.New(rand.NewSource(8))
	shuffled := make([]uint32, 0, len(idx))
	for _, t := range rng.Perm(tris) {
		shuffled = append(shuffled, idx[3*t:3*t+3]...)
	}

	opt := OptimizeVertexCache(shuffled, 40*40)
	assert.Equal(t, canonicalTriangles(idx), canonicalTriangles(opt))

	before := acmr(shuffled, 32)
	after := acmr(opt, 32)
	assert.Less(t, after, before*0.5, "before %.3f after %.3f", before, after)
}

func TestOptimizeVertexCacheEmpty(t *testing.T) {
	assert.Empty(t, OptimizeVertexCache(nil, 0))
}

func TestSelectLOD(t *testing.T) {
	tests := []struct {
		dx, dy int
		want   int
	}{
		{0, 0, LODHigh},
		{1, 1, LODHigh},  // 2
		{1, -1, LODHigh}, // 2
		{0, 2, LODMid},   // 4 is not < 4
		{-2, 0, LODMid},
		{3, 2, LODMid},  // 13
		{0, -4, LODLow}, // 16 is not < 16
		{4, 1, LODLow},
		{9, 9, LODLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectLOD(tt.dx, tt.dy), "(%d,%d)", tt.dx, tt.dy)
	}
}

func TestLODForDistance2Thresholds(t *testing.T) {
	assert.Equal(t, LODHigh, LODForDistance2(3))
	assert.Equal(t, LODMid, LODForDistance2(4))
	assert.Equal(t, LODMid, LODForDistance2(15))
	assert.Equal(t, LODLow, LODForDistance2(16))
}

func TestWorldToChunk(t *testing.T) {
	x, y := WorldToChunk(0, 999.9)
	assert.Equal(t, [2]int{0, 0}, [2]int{x, y})
	x, y = WorldToChunk(-0.5, 1000)
	assert.Equal(t, [2]int{-1, 1}, [2]int{x, y})
}

func TestGetChunkAtIdempotent(t *testing.T) {
	table := NewChunkTable(DefaultTableCapacity, NewGenerator(1))
	a := table.GetChunkAt(3, 3)
	b := table.GetChunkAt(3, 3)
	assert.Same(t, a, b)
	assert.Equal(t, 1, table.Len())
	for lod := range LODCount {
		require.NotNil(t, a.LOD[lod])
		assert.Equal(t, asset.StateEmpty, a.LOD[lod].State())
	}
	assert.LessOrEqual(t, a.MinHeight, a.MaxHeight)
}

func TestGetChunkAtNeverAliases(t *testing.T) {
	// a tiny table forces long overflow chains
	table := NewChunkTable(5, NewGenerator(1))
	got := map[[2]int]*Chunk{}
	for y := -12; y <= 12; y++ {
		for x := -12; x <= 12; x++ {
			c := table.GetChunkAt(x, y)
			require.Equal(t, x, c.X)
			require.Equal(t, y, c.Y)
			got[[2]int{x, y}] = c
		}
	}
	require.Equal(t, 25*25, table.Len())

	seen := map[*Chunk]bool{}
	for k, c := range got {
		assert.False(t, seen[c], "chunk %v aliased", k)
		seen[c] = true
		// pointers survive page growth
		assert.Same(t, c, table.GetChunkAt(k[0], k[1]))
		assert.Same(t, c, table.Lookup(k[0], k[1]))
		assert.Same(t, c, table.Chunk(c.Handle()))
	}
	assert.Equal(t, 25*25, table.Len())

	count := 0
	for range table.All() {
		count++
	}
	assert.Equal(t, 25*25, count)
}

func TestLookupDoesNotCreate(t *testing.T) {
	table := NewChunkTable(64, NewGenerator(1))
	assert.Nil(t, table.Lookup(1, 2))
	assert.Equal(t, 0, table.Len())
}

func TestHashHandlesLargeAndNegativeCoordinates(t *testing.T) {
	table := NewChunkTable(DefaultTableCapacity, NewGenerator(1))
	coords := [][2]int{{math.MaxInt32, -math.MaxInt32}, {-1, -1}, {-4095, 4095}}
	for _, c := range coords {
		h := table.home(c[0], c[1])
		assert.True(t, h >= 0 && h < DefaultTableCapacity-1, "home %d", h)
		assert.Same(t, table.GetChunkAt(c[0], c[1]), table.GetChunkAt(c[0], c[1]))
	}
}

func BenchmarkGenerateGroundHigh(b *testing.B) {
	g := NewGenerator(1)
	for i := 0; i < b.N; i++ {
		_, _ = GenerateGround(g, i%16, i/16, LODDetail[LODHigh])
	}
}

func BenchmarkGetChunkAt(b *testing.B) {
	table := NewChunkTable(DefaultTableCapacity, NewGenerator(1))
	for i := 0; i < b.N; i++ {
		table.GetChunkAt(i%64-32, (i/64)%64-32)
	}
}
