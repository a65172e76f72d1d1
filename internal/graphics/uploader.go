package graphics

import (
	"fmt"

	"terrastream/internal/asset"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Vertex attribute locations shared by every shader.
const (
	attribPosition = 0
	attribNormal   = 1
	attribUV       = 2
)

type mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// Uploader creates GL objects for streamed assets. All methods must be called
// on the goroutine that owns the GL context.
type Uploader struct {
	meshes   map[asset.MeshHandle]mesh
	textures map[asset.TextureHandle]uint32
	next     uint32
}

func NewUploader() *Uploader {
	return &Uploader{
		meshes:   make(map[asset.MeshHandle]mesh),
		textures: make(map[asset.TextureHandle]uint32),
	}
}

// UploadMesh copies positions, normals and optional UVs into one
// non-interleaved buffer plus an index buffer.
func (u *Uploader) UploadMesh(d *asset.ModelData) (asset.MeshHandle, error) {
	if d.TriangleCount() == 0 {
		return 0, asset.ErrEmptyMesh
	}
	posBytes := len(d.Positions) * 4
	nrmBytes := len(d.Normals) * 4
	uvBytes := len(d.UVs) * 4

	var m mesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, posBytes+nrmBytes+uvBytes, nil, gl.STATIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, posBytes, gl.Ptr(d.Positions))
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, 3*4, 0)
	if nrmBytes > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, posBytes, nrmBytes, gl.Ptr(d.Normals))
		gl.EnableVertexAttribArray(attribNormal)
		gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, 3*4, uintptr(posBytes))
	}
	if uvBytes > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, posBytes+nrmBytes, uvBytes, gl.Ptr(d.UVs))
		gl.EnableVertexAttribArray(attribUV)
		gl.VertexAttribPointerWithOffset(attribUV, 2, gl.FLOAT, false, 2*4, uintptr(posBytes+nrmBytes))
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(d.Indices)*4, gl.Ptr(d.Indices), gl.STATIC_DRAW)
	m.count = int32(len(d.Indices))

	gl.BindVertexArray(0)
	if err := glError("upload mesh"); err != nil {
		u.deleteMesh(m)
		return 0, err
	}

	u.next++
	h := asset.MeshHandle(u.next)
	u.meshes[h] = m
	return h, nil
}

// UploadTexture creates a mipmapped RGBA texture.
func (u *Uploader) UploadTexture(d *asset.TextureData) (asset.TextureHandle, error) {
	if d.Width <= 0 || d.Height <= 0 || len(d.Pixels) < d.Width*d.Height*4 {
		return 0, fmt.Errorf("upload texture: bad size %dx%d with %d bytes", d.Width, d.Height, len(d.Pixels))
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(d.Width), int32(d.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(d.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError("upload texture"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}

	u.next++
	h := asset.TextureHandle(u.next)
	u.textures[h] = tex
	return h, nil
}

func (u *Uploader) ReleaseMesh(h asset.MeshHandle) {
	if m, ok := u.meshes[h]; ok {
		u.deleteMesh(m)
		delete(u.meshes, h)
	}
}

func (u *Uploader) ReleaseTexture(h asset.TextureHandle) {
	if tex, ok := u.textures[h]; ok {
		gl.DeleteTextures(1, &tex)
		delete(u.textures, h)
	}
}

// Meshes returns the number of live meshes.
func (u *Uploader) Meshes() int { return len(u.meshes) }

// Close releases every GL object created by u.
func (u *Uploader) Close() {
	for h := range u.meshes {
		u.ReleaseMesh(h)
	}
	for h := range u.textures {
		u.ReleaseTexture(h)
	}
}

func (u *Uploader) deleteMesh(m mesh) {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}
