package render

import (
	"terrastream/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderID identifies a compiled program on the render side. Zero is the
// default program.
type ShaderID uint32

// CullMode selects which faces the rasterizer discards.
type CullMode uint8

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// Flags alter how a command is drawn.
type Flags uint32

const (
	// FlagIgnoreDepth draws without depth testing, after everything else.
	FlagIgnoreDepth Flags = 1 << iota
	FlagWireframe
	// FlagNoShadow keeps a command out of forced-shader passes.
	FlagNoShadow
)

// Command is one draw of a ready mesh. Commands are rebuilt every frame.
type Command struct {
	Shader    ShaderID
	ModelView mgl32.Mat4
	Normal    mgl32.Mat3
	Tint      mgl32.Vec4
	Cull      CullMode
	Flags     Flags
	Mesh      asset.MeshHandle
	// Texture is zero when the mesh is drawn untextured.
	Texture asset.TextureHandle
}

// NewCommand builds a command for mesh placed by model under view, with the
// normal matrix derived from the combined transform.
func NewCommand(shader ShaderID, view, model mgl32.Mat4, mesh asset.MeshHandle) Command {
	mv := view.Mul4(model)
	return Command{
		Shader:    shader,
		ModelView: mv,
		Normal:    NormalMatrix(mv),
		Tint:      White,
		Mesh:      mesh,
	}
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// IgnoresDepth reports whether FlagIgnoreDepth is set.
func (c *Command) IgnoresDepth() bool { return c.Flags&FlagIgnoreDepth != 0 }
