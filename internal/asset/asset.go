package asset

import (
	"github.com/google/uuid"
)

// MeshHandle identifies an uploaded mesh on the render side. Zero is invalid.
type MeshHandle uint32

// TextureHandle identifies an uploaded texture on the render side. Zero is
// invalid.
type TextureHandle uint32

// GenerateFunc produces mesh data on a worker goroutine.
type GenerateFunc func() (*ModelData, error)

// Model is a streamed mesh. File models are imported from OBJ bytes;
// generated models run a callback on the generation queue.
type Model struct {
	st slot

	id        uuid.UUID
	path      string
	generate  GenerateFunc
	retainCPU bool

	// Fields below are owned by whoever moved st into StateProcessing.
	data   *ModelData
	handle MeshHandle
	radius float32
	err    error
}

// NewModel creates an empty model imported from path on first use.
func NewModel(path string) *Model {
	return &Model{id: uuid.New(), path: path}
}

// NewGeneratedModel creates an empty model whose data comes from gen. The CPU
// copy is kept after upload so it can serve geometry queries.
func NewGeneratedModel(name string, gen GenerateFunc) *Model {
	return &Model{id: uuid.New(), path: name, generate: gen, retainCPU: true}
}

func (m *Model) ID() uuid.UUID { return m.id }

// Name returns the source path or generator name.
func (m *Model) Name() string { return m.path }

func (m *Model) State() State { return m.st.load() }

// Generated reports whether the model comes from a generator callback.
func (m *Model) Generated() bool { return m.generate != nil }

// Handle returns the uploaded mesh, or zero if the model is not initialized.
func (m *Model) Handle() MeshHandle {
	if m.State() != StateInitialized {
		return 0
	}
	return m.handle
}

// Radius returns the bounding sphere radius once data has been loaded.
func (m *Model) Radius() float32 {
	switch m.State() {
	case StateHasData, StateInitialized:
		return m.radius
	}
	return 0
}

// Data returns the retained CPU mesh of an initialized model, or nil.
func (m *Model) Data() *ModelData {
	if m.State() != StateInitialized {
		return nil
	}
	return m.data
}

// Err returns the load or upload error of a failed model.
func (m *Model) Err() error {
	if m.State() != StateFailed {
		return nil
	}
	return m.err
}

// Texture is a streamed RGBA image. Pixels are dropped after upload.
type Texture struct {
	st slot

	id   uuid.UUID
	path string

	data   *TextureData
	handle TextureHandle
	width  int
	height int
	err    error
}

// NewTexture creates an empty texture decoded from path on first use.
func NewTexture(path string) *Texture {
	return &Texture{id: uuid.New(), path: path}
}

func (t *Texture) ID() uuid.UUID { return t.id }

func (t *Texture) Name() string { return t.path }

func (t *Texture) State() State { return t.st.load() }

// Handle returns the uploaded texture, or zero if not initialized.
func (t *Texture) Handle() TextureHandle {
	if t.State() != StateInitialized {
		return 0
	}
	return t.handle
}

// Size returns the pixel dimensions of an initialized texture.
func (t *Texture) Size() (int, int) {
	if t.State() != StateInitialized {
		return 0, 0
	}
	return t.width, t.height
}

func (t *Texture) Err() error {
	if t.State() != StateFailed {
		return nil
	}
	return t.err
}
