package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"terrastream/internal/jobs"
	"terrastream/internal/logging"
	"terrastream/internal/profiling"
)

var (
	ErrEmptyMesh        = errors.New("asset: mesh has no triangles")
	ErrNoFileReader     = errors.New("asset: no file reader configured")
	ErrUnsupportedModel = errors.New("asset: unsupported model format")
	ErrLoaderPanic      = errors.New("asset: loader panicked")
)

// recovered runs a loader on a worker goroutine and turns a panic into an
// error, so one bad asset fails instead of taking the process down.
func recovered[T any](load func() (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", ErrLoaderPanic, p)
		}
	}()
	return load()
}

// Submitter is the job submission side of a queue.
type Submitter interface {
	HasFreeSpot() bool
	Enqueue(fn jobs.Func, data any)
}

// FileReader reads a whole file.
type FileReader interface {
	ReadEntireFile(path string) ([]byte, error)
}

// FileReaderFunc adapts a function to FileReader.
type FileReaderFunc func(path string) ([]byte, error)

func (f FileReaderFunc) ReadEntireFile(path string) ([]byte, error) { return f(path) }

// DirReader reads files relative to Root.
type DirReader struct {
	Root string
}

func (r DirReader) ReadEntireFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && r.Root != "" {
		path = filepath.Join(r.Root, path)
	}
	return os.ReadFile(path)
}

// Uploader creates and destroys render-side resources. It is only called from
// the goroutine that drives Process and Unload.
type Uploader interface {
	UploadMesh(d *ModelData) (MeshHandle, error)
	UploadTexture(d *TextureData) (TextureHandle, error)
	ReleaseMesh(h MeshHandle)
	ReleaseTexture(h TextureHandle)
}

// Context carries the capabilities asset streaming needs: where jobs go, how
// files are read, and how data reaches the GPU.
type Context struct {
	Files    FileReader
	Uploader Uploader
	// IO runs decode and import jobs.
	IO Submitter
	// Generate runs procedural jobs. IO is used when nil.
	Generate Submitter
	Log      logging.Logger
}

func (c *Context) logger() logging.Logger { return logging.OrNop(c.Log) }

func (c *Context) queueFor(m *Model) Submitter {
	if m.Generated() && c.Generate != nil {
		return c.Generate
	}
	return c.IO
}

// HasRoomFor reports whether the queue that would load m can take a job now.
func (c *Context) HasRoomFor(m *Model) bool {
	return c.queueFor(m).HasFreeSpot()
}

// ProcessModel advances m by at most one step and reports whether it can be
// drawn this frame. Empty models are queued for loading when the queue has
// room, and loaded models are uploaded on the calling goroutine; both report
// false for this frame.
func (c *Context) ProcessModel(m *Model) bool {
	switch m.State() {
	case StateInitialized:
		return true
	case StateEmpty:
		q := c.queueFor(m)
		if q.HasFreeSpot() && m.st.acquire(StateEmpty) {
			q.Enqueue(c.loadModel, m)
		}
	case StateHasData:
		if m.st.acquire(StateHasData) {
			c.uploadModel(m)
		}
	}
	return false
}

func (c *Context) loadModel(data any) {
	m := data.(*Model)
	d, err := recovered(func() (*ModelData, error) { return c.importModel(m) })
	if err == nil && d.TriangleCount() == 0 {
		err = ErrEmptyMesh
	}
	if err != nil {
		m.err = fmt.Errorf("load model %s: %w", m.path, err)
		c.logger().Warnf("model %s (%s) failed: %v", m.path, m.id, err)
		m.st.set(StateFailed)
		return
	}
	d.ComputeBounds()
	m.data = d
	m.radius = d.Radius
	m.st.set(StateHasData)
}

func (c *Context) importModel(m *Model) (*ModelData, error) {
	if m.generate != nil {
		return m.generate()
	}
	if c.Files == nil {
		return nil, ErrNoFileReader
	}
	raw, err := c.Files.ReadEntireFile(m.path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(m.path) {
	case ".obj", ".OBJ":
		return ParseOBJ(raw)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, filepath.Ext(m.path))
}

func (c *Context) uploadModel(m *Model) {
	defer profiling.Track("asset.upload")()
	h, err := c.Uploader.UploadMesh(m.data)
	if err != nil {
		m.err = fmt.Errorf("upload model %s: %w", m.path, err)
		m.data = nil
		c.logger().Warnf("model %s (%s) upload failed: %v", m.path, m.id, err)
		m.st.set(StateFailed)
		return
	}
	m.handle = h
	if !m.retainCPU {
		m.data = nil
	}
	m.st.set(StateInitialized)
}

// UnloadModel releases an initialized model's GPU mesh and CPU data. It is a
// no-op returning false in any other state.
func (c *Context) UnloadModel(m *Model) bool {
	if !m.st.acquire(StateInitialized) {
		return false
	}
	c.Uploader.ReleaseMesh(m.handle)
	m.handle = 0
	m.data = nil
	m.radius = 0
	m.st.set(StateEmpty)
	return true
}

// ReclaimModel drops the CPU data of a model that was loaded but never
// uploaded. It returns false unless m was in StateHasData.
func (c *Context) ReclaimModel(m *Model) bool {
	if !m.st.acquire(StateHasData) {
		return false
	}
	m.data = nil
	m.radius = 0
	m.st.set(StateEmpty)
	return true
}

// ResetFailedModel moves a failed model back to empty so it is retried.
func (c *Context) ResetFailedModel(m *Model) bool {
	if !m.st.acquire(StateFailed) {
		return false
	}
	m.err = nil
	m.st.set(StateEmpty)
	return true
}

// ProcessTexture is ProcessModel for textures; decoding runs on the IO queue.
func (c *Context) ProcessTexture(t *Texture) bool {
	switch t.State() {
	case StateInitialized:
		return true
	case StateEmpty:
		if c.IO.HasFreeSpot() && t.st.acquire(StateEmpty) {
			c.IO.Enqueue(c.loadTexture, t)
		}
	case StateHasData:
		if t.st.acquire(StateHasData) {
			c.uploadTexture(t)
		}
	}
	return false
}

func (c *Context) loadTexture(data any) {
	t := data.(*Texture)
	d, err := recovered(func() (*TextureData, error) { return c.readTexture(t.path) })
	if err != nil {
		t.err = fmt.Errorf("load texture %s: %w", t.path, err)
		c.logger().Warnf("texture %s (%s) failed: %v", t.path, t.id, err)
		t.st.set(StateFailed)
		return
	}
	t.data = d
	t.st.set(StateHasData)
}

func (c *Context) readTexture(path string) (*TextureData, error) {
	if c.Files == nil {
		return nil, ErrNoFileReader
	}
	raw, err := c.Files.ReadEntireFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTexture(raw)
}

func (c *Context) uploadTexture(t *Texture) {
	defer profiling.Track("asset.upload")()
	h, err := c.Uploader.UploadTexture(t.data)
	if err != nil {
		t.err = fmt.Errorf("upload texture %s: %w", t.path, err)
		t.data = nil
		c.logger().Warnf("texture %s (%s) upload failed: %v", t.path, t.id, err)
		t.st.set(StateFailed)
		return
	}
	t.handle = h
	t.width, t.height = t.data.Width, t.data.Height
	t.data = nil
	t.st.set(StateInitialized)
}

// UnloadTexture releases an initialized texture. No-op in any other state.
func (c *Context) UnloadTexture(t *Texture) bool {
	if !t.st.acquire(StateInitialized) {
		return false
	}
	c.Uploader.ReleaseTexture(t.handle)
	t.handle = 0
	t.width, t.height = 0, 0
	t.st.set(StateEmpty)
	return true
}

// ReclaimTexture drops decoded pixels that were never uploaded.
func (c *Context) ReclaimTexture(t *Texture) bool {
	if !t.st.acquire(StateHasData) {
		return false
	}
	t.data = nil
	t.st.set(StateEmpty)
	return true
}

// ResetFailedTexture moves a failed texture back to empty.
func (c *Context) ResetFailedTexture(t *Texture) bool {
	if !t.st.acquire(StateFailed) {
		return false
	}
	t.err = nil
	t.st.set(StateEmpty)
	return true
}
