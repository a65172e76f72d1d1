package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeNormalsFlatQuad(t *testing.T) {
	d := quadData()

	want := []float32{
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
	}
	assert.Equal(t, want, d.Normals)
}

func TestRecomputeNormalsIndexesPerVertex(t *testing.T) {
	// Two triangles folded along the x axis: a roof. Vertices on the ridge
	// average both faces, the eaves keep their own face normal.
	d := NewModelData(4, 6, false)
	copy(d.Positions, []float32{
		0, 0, 1, // ridge
		4, 0, 1, // ridge
		4, 2, 0, // +y eave
		0, -2, 0, // -y eave
	})
	copy(d.Indices, []uint32{0, 1, 2, 1, 0, 3})
	d.RecomputeNormals()

	n := func(i int) [3]float32 { return [3]float32{d.Normals[3*i], d.Normals[3*i+1], d.Normals[3*i+2]} }
	for i := range 2 {
		got := n(i)
		assert.InDelta(t, 0, got[0], 1e-6)
		assert.InDelta(t, 0, got[1], 1e-6)
		assert.InDelta(t, 1, got[2], 1e-6)
	}
	plus := n(2)
	assert.InDelta(t, 0, plus[0], 1e-6)
	assert.InDelta(t, 0.4472136, plus[1], 1e-6)
	assert.InDelta(t, 0.8944272, plus[2], 1e-6)
	minus := n(3)
	assert.InDelta(t, -0.4472136, minus[1], 1e-6)
	assert.InDelta(t, 0.8944272, minus[2], 1e-6)
}

func TestNewModelDataSharesOneAllocation(t *testing.T) {
	d := NewModelData(3, 3, true)
	require.Len(t, d.Positions, 9)
	require.Len(t, d.Normals, 9)
	require.Len(t, d.UVs, 6)

	// appending to one view must not clobber the next
	assert.Equal(t, 9, cap(d.Positions))
	assert.Equal(t, 9, cap(d.Normals))
}

func TestComputeBounds(t *testing.T) {
	d := NewModelData(3, 3, false)
	copy(d.Positions, []float32{3, 4, 0, 0, 0, -2, 1, 1, 5})
	d.ComputeBounds()
	assert.InDelta(t, 5.196152, d.Radius, 1e-5)
	assert.Equal(t, float32(-2), d.MinZ)
	assert.Equal(t, float32(5), d.MaxZ)
}

func TestParseOBJ(t *testing.T) {
	d, err := ParseOBJ([]byte(quadOBJ))
	require.NoError(t, err)
	assert.Equal(t, 4, d.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, d.Indices)
	assert.Equal(t, []float32{1, 1}, d.UVs[4:6])
	assert.Equal(t, float32(1), d.Normals[2], "normals computed when the file has none")
}

func TestParseOBJNormalsAndNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 -1
f -3//1 -2//1 -1//1
`
	d, err := ParseOBJ([]byte(src))
	require.NoError(t, err)
	assert.Nil(t, d.UVs)
	assert.Equal(t, []float32{0, 0, -1}, d.Normals[0:3], "file normals win")
	assert.Equal(t, 1, d.TriangleCount())
}

func TestParseOBJErrors(t *testing.T) {
	for name, src := range map[string]string{
		"bad float":    "v 0 x 0\n",
		"short face":   "v 0 0 0\nf 1 1\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"bad texcoord": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/9 2 3\n",
		"no triangles": "v 0 0 0\n",
	} {
		_, err := ParseOBJ([]byte(src))
		assert.Error(t, err, name)
	}
}
