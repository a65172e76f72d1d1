package graphics

import (
	"fmt"

	"terrastream/internal/asset"
	"terrastream/internal/profiling"
	"terrastream/internal/render"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader ids the streamer emits.
const (
	ShaderGround render.ShaderID = iota
	ShaderProp
	ShaderDepth
)

// Renderer draws sorted command lists, rebinding programs, textures and
// vertex arrays only when they change between consecutive commands.
type Renderer struct {
	up      *Uploader
	shaders map[render.ShaderID]*Shader

	SunDir      mgl32.Vec3
	FogDistance float32
	ClearColor  mgl32.Vec4
}

// NewRenderer configures global GL state and loads the built-in programs.
func NewRenderer(up *Uploader) (*Renderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	r := &Renderer{
		up:          up,
		shaders:     make(map[render.ShaderID]*Shader),
		SunDir:      mgl32.Vec3{0.4, 0.3, 0.85}.Normalize(),
		FogDistance: 30000,
		ClearColor:  mgl32.Vec4{0.62, 0.74, 0.86, 1},
	}
	for id, name := range map[render.ShaderID]string{
		ShaderGround: "ground",
		ShaderProp:   "ground",
		ShaderDepth:  "depth",
	} {
		s, err := LoadShader(name)
		if err != nil {
			r.Dispose()
			return nil, fmt.Errorf("load shader %s: %w", name, err)
		}
		r.shaders[id] = s
	}
	return r, nil
}

// SetViewport resizes the GL viewport.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *Renderer) Clear() {
	c := r.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw issues cmds in order with the given projection and view. The sun
// direction is given in world space.
func (r *Renderer) Draw(cmds []render.Command, view, projection mgl32.Mat4) {
	defer profiling.Track("graphics.Draw")()
	sun := view.Mat3().Mul3x1(r.SunDir)

	var (
		shader  *Shader
		shaderI render.ShaderID
		tex     asset.TextureHandle
		meshH   asset.MeshHandle
		m       mesh
		cull    = render.CullBack
		flags   render.Flags
		first   = true
	)
	for i := range cmds {
		c := &cmds[i]
		if first || c.Shader != shaderI {
			s, ok := r.shaders[c.Shader]
			if !ok {
				continue
			}
			shader, shaderI = s, c.Shader
			shader.Use()
			shader.SetMat4("uProjection", projection)
			shader.SetVec3("uSunDir", sun)
			shader.SetFloat("uFogDistance", r.FogDistance)
			shader.SetInt("uTexture", 0)
			tex = ^asset.TextureHandle(0)
		}
		if first || c.Cull != cull {
			applyCull(c.Cull)
			cull = c.Cull
		}
		if first || c.Flags != flags {
			applyFlags(c.Flags)
			flags = c.Flags
		}
		first = false

		if c.Texture != tex {
			tex = c.Texture
			t, ok := r.up.textures[tex]
			shader.SetBool("uHasTexture", ok)
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, t)
		}
		if c.Mesh != meshH {
			var ok bool
			if m, ok = r.up.meshes[c.Mesh]; !ok {
				meshH = 0
				continue
			}
			meshH = c.Mesh
			gl.BindVertexArray(m.vao)
		}

		shader.SetMat4("uModelView", c.ModelView)
		shader.SetMat3("uNormal", c.Normal)
		shader.SetVec4("uTint", c.Tint)
		gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
	applyFlags(0)
	applyCull(render.CullBack)
}

// DepthPrepass fills the depth buffer from a forced-shader command list
// without writing color; a following Draw then shades each pixel once.
func (r *Renderer) DepthPrepass(cmds []render.Command, view, projection mgl32.Mat4) {
	gl.ColorMask(false, false, false, false)
	gl.DepthFunc(gl.LESS)
	r.Draw(cmds, view, projection)
	gl.ColorMask(true, true, true, true)
	gl.DepthFunc(gl.LEQUAL)
}

func applyCull(mode render.CullMode) {
	switch mode {
	case render.CullNone:
		gl.Disable(gl.CULL_FACE)
	case render.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
}

func applyFlags(f render.Flags) {
	if f&render.FlagIgnoreDepth != 0 {
		gl.Disable(gl.DEPTH_TEST)
	} else {
		gl.Enable(gl.DEPTH_TEST)
	}
	if f&render.FlagWireframe != 0 {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Dispose deletes the renderer's programs.
func (r *Renderer) Dispose() {
	for id, s := range r.shaders {
		s.Delete()
		delete(r.shaders, id)
	}
}
