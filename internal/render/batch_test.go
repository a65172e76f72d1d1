package render

import (
	"math/rand"
	"testing"

	"terrastream/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmd(depth bool, shader ShaderID, tex asset.TextureHandle, mesh asset.MeshHandle) Command {
	c := Command{Shader: shader, Texture: tex, Mesh: mesh}
	if depth {
		c.Flags |= FlagIgnoreDepth
	}
	return c
}

func TestSortUsesCompositeKey(t *testing.T) {
	var b Batch
	b.Add(cmd(true, 1, 1, 1))
	b.Add(cmd(false, 2, 1, 1))
	b.Add(cmd(false, 1, 2, 1))
	b.Add(cmd(false, 1, 1, 3))
	b.Add(cmd(false, 1, 1, 2))
	b.Sort()

	want := []Command{
		cmd(false, 1, 1, 2),
		cmd(false, 1, 1, 3),
		cmd(false, 1, 2, 1),
		cmd(false, 2, 1, 1),
		cmd(true, 1, 1, 1),
	}
	assert.Equal(t, want, b.Commands)
}

func TestSortForcedIgnoresShaderAndFlags(t *testing.T) {
	var b Batch
	b.Add(cmd(true, 9, 2, 1))
	b.Add(cmd(false, 1, 1, 5))
	b.Add(cmd(false, 3, 1, 4))
	b.SortForced()

	for i, want := range [][2]uint32{{1, 4}, {1, 5}, {2, 1}} {
		assert.Equal(t, asset.TextureHandle(want[0]), b.Commands[i].Texture)
		assert.Equal(t, asset.MeshHandle(want[1]), b.Commands[i].Mesh)
	}
}

func TestSortMinimizesStateChanges(t *testing.T) {
	var b Batch
	rng := rand.New(rand.NewSource(3))
	for range 200 {
		b.Add(cmd(false, ShaderID(rng.Intn(2)), asset.TextureHandle(rng.Intn(4)), asset.MeshHandle(rng.Intn(8))))
	}
	b.Sort()
	shaders, textures, _ := b.StateChanges()
	assert.Equal(t, 2, shaders)
	assert.LessOrEqual(t, textures, 8)
}

func TestResetKeepsStorage(t *testing.T) {
	var b Batch
	for i := range 10 {
		b.Add(cmd(false, 0, 0, asset.MeshHandle(i)))
	}
	c := cap(b.Commands)
	b.Reset()
	assert.Zero(t, b.Len())
	assert.Equal(t, c, cap(b.Commands))
	s, tx, m := b.StateChanges()
	assert.Zero(t, s+tx+m)
}

func TestNewCommandNormalMatrix(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, -10, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	rot := mgl32.HomogRotate3DZ(0.7)
	model := mgl32.Translate3D(4, 5, 6).Mul4(rot).Mul4(mgl32.Scale3D(3, 3, 3))

	c := NewCommand(2, view, model, 7)
	require.Equal(t, asset.MeshHandle(7), c.Mesh)
	assert.Equal(t, White, c.Tint)
	assert.True(t, c.ModelView.ApproxEqualThreshold(view.Mul4(model), 1e-5))

	// uniform scale: the normal matrix is the rotation divided by the scale
	want := view.Mul4(rot).Mat3().Mul(1.0 / 3)
	assert.True(t, c.Normal.ApproxEqualThreshold(want, 1e-5), "got %v want %v", c.Normal, want)
}

func TestTints(t *testing.T) {
	red, err := ParseTint("#ff0000")
	require.NoError(t, err)
	assert.InDelta(t, 1, red[0], 1e-6)
	assert.InDelta(t, 0, red[1], 1e-6)
	assert.InDelta(t, 1, red[3], 1e-6)

	_, err = ParseTint("not a colour")
	assert.Error(t, err)

	high := LevelTint(0, 3)
	low := LevelTint(2, 3)
	assert.Greater(t, high[1], high[0], "most detail is green")
	assert.Greater(t, low[0], low[1], "least detail is red")
	assert.NotEqual(t, LevelTint(1, 3), high)
}
