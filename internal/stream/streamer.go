package stream

import (
	"terrastream/internal/asset"
	"terrastream/internal/config"
	"terrastream/internal/cull"
	"terrastream/internal/entity"
	"terrastream/internal/logging"
	"terrastream/internal/profiling"
	"terrastream/internal/render"
	"terrastream/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/time/rate"
)

// DefaultReclaimEvery is how many frames pass between reclaim sweeps.
const DefaultReclaimEvery = 30

// Camera is the per-frame view supplied by the update logic.
type Camera struct {
	Position   mgl32.Vec3
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection() mgl32.Mat4 { return c.Projection.Mul4(c.View) }

// Stats counts what happened to the candidates of one frame.
type Stats struct {
	Chunks    int // chunk slots considered
	Culled    int
	Visible   int // commands emitted
	Pending   int // candidates waiting on a load or upload
	Deferred  int // generation requests held back by the budget
	Failed    int
	Reclaimed int
	Props     int
	Lights    int

	// rebinds the sorted command list needs
	ShaderSwitches  int
	TextureSwitches int
	MeshSwitches    int
}

// Frame is the output of one Streamer.Frame call. Commands and Lights are
// reused by the next call.
type Frame struct {
	Commands []render.Command
	Lights   []*entity.PointLight
	Stats    Stats
}

// Streamer decides each frame what terrain and props to load, drives their
// asset state machines and batches whatever is ready to draw. It must only
// be used from the frame goroutine.
type Streamer struct {
	assets *asset.Context
	chunks *terrain.ChunkTable
	cfg    *config.Streaming
	log    logging.Logger

	limiter *rate.Limiter
	budget  float64

	GroundShader  render.ShaderID
	PropShader    render.ShaderID
	GroundTexture *asset.Texture
	// ReclaimEvery is the frame interval of reclaim sweeps; <= 0 disables
	// them.
	ReclaimEvery int

	batch  render.Batch
	shadow render.Batch
	lights []*entity.PointLight
	frames int
}

// New creates a streamer. A nil cfg uses config.Default.
func New(assets *asset.Context, chunks *terrain.ChunkTable, cfg *config.Streaming, log logging.Logger) *Streamer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Streamer{
		assets:       assets,
		chunks:       chunks,
		cfg:          cfg,
		log:          logging.OrNop(log),
		ReclaimEvery: DefaultReclaimEvery,
	}
}

// Chunks returns the chunk table the streamer fills.
func (s *Streamer) Chunks() *terrain.ChunkTable { return s.chunks }

// Frame culls, requests and batches terrain around the camera plus the
// given entities, and returns the sorted draw list.
func (s *Streamer) Frame(cam Camera, entities []entity.Entity) Frame {
	defer profiling.Track("stream.Frame")()
	s.syncLimiter()
	s.batch.Reset()
	clear(s.lights)
	s.lights = s.lights[:0]

	var st Stats
	fr := cull.ExtractFrustum(cam.ViewProjection())
	s.streamTerrain(cam, &fr, &st)
	s.collectEntities(cam, &fr, entities, &st)

	func() {
		defer profiling.Track("stream.batch")()
		s.batch.Sort()
		st.ShaderSwitches, st.TextureSwitches, st.MeshSwitches = s.batch.StateChanges()
	}()

	s.frames++
	if s.ReclaimEvery > 0 && s.frames%s.ReclaimEvery == 0 {
		st.Reclaimed = s.reclaim(cam)
	}
	return Frame{Commands: s.batch.Commands, Lights: s.lights, Stats: st}
}

func (s *Streamer) syncLimiter() {
	b := s.cfg.GenerateBudget()
	if b == s.budget {
		return
	}
	s.budget = b
	if b <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(b), max(1, int(b)))
}

// visitChunks calls fn for every chunk within the view distance whose
// bounding sphere at the selected level touches the frustum.
func (s *Streamer) visitChunks(cam Camera, fr *cull.Frustum, st *Stats, fn func(c *terrain.Chunk, lod int)) {
	cx, cy := terrain.WorldToChunk(cam.Position[0], cam.Position[1])
	vd := s.cfg.ViewDistance()
	for dy := -vd; dy <= vd; dy++ {
		for dx := -vd; dx <= vd; dx++ {
			c := s.chunks.GetChunkAt(cx+dx, cy+dy)
			lod := terrain.SelectLOD(dx, dy)
			if st != nil {
				st.Chunks++
			}
			if !fr.SphereVisible(c.Origin(), c.BoundingRadius(lod)) {
				if st != nil {
					st.Culled++
				}
				continue
			}
			fn(c, lod)
		}
	}
}

func (s *Streamer) streamTerrain(cam Camera, fr *cull.Frustum, st *Stats) {
	defer profiling.Track("stream.cull")()
	var tex asset.TextureHandle
	if s.GroundTexture != nil && s.assets.ProcessTexture(s.GroundTexture) {
		tex = s.GroundTexture.Handle()
	}
	tint := s.cfg.DebugLODTint()

	s.visitChunks(cam, fr, st, func(c *terrain.Chunk, lod int) {
		// No fallback to another level: the chunk is skipped until the
		// selected one is ready.
		m := c.LOD[lod]
		if !s.request(m, st) {
			return
		}
		o := c.Origin()
		cmd := render.NewCommand(s.GroundShader, cam.View, mgl32.Translate3D(o[0], o[1], o[2]), m.Handle())
		cmd.Texture = tex
		if tint {
			cmd.Tint = render.LevelTint(lod, terrain.LODCount)
		}
		s.batch.Add(cmd)
		st.Visible++
	})
}

// request drives m one step and reports whether it can be drawn.
func (s *Streamer) request(m *asset.Model, st *Stats) bool {
	switch m.State() {
	case asset.StateInitialized:
		return true
	case asset.StateFailed:
		st.Failed++
		return false
	case asset.StateEmpty:
		if !s.assets.HasRoomFor(m) {
			st.Pending++
			return false
		}
		if m.Generated() && s.limiter != nil && !s.limiter.Allow() {
			st.Deferred++
			return false
		}
	}
	if s.assets.ProcessModel(m) {
		return true
	}
	st.Pending++
	return false
}

func (s *Streamer) collectEntities(cam Camera, fr *cull.Frustum, entities []entity.Entity, st *Stats) {
	for _, e := range entities {
		if !entity.Live(e) {
			continue
		}
		switch e := e.(type) {
		case *entity.Prop:
			st.Props++
			// Bounds are unknown until the model loads, so unloaded props
			// are requested without culling.
			if r := e.BoundingRadius(); r > 0 && !fr.SphereVisible(e.Pos, r) {
				st.Culled++
				continue
			}
			if !s.request(e.Model, st) {
				continue
			}
			if !fr.SphereVisible(e.Pos, e.BoundingRadius()) {
				st.Culled++
				continue
			}
			var tex asset.TextureHandle
			if e.Texture != nil {
				if !s.assets.ProcessTexture(e.Texture) {
					st.Pending++
					continue
				}
				tex = e.Texture.Handle()
			}
			s.batch.Add(s.propCommand(cam, e, tex))
			st.Visible++
		case *entity.PointLight:
			// a light without a range only matters where it stands
			visible := fr.PointVisible(e.Pos)
			if e.Range > 0 {
				visible = fr.SphereVisible(e.Pos, e.Range)
			}
			if visible {
				s.lights = append(s.lights, e)
				st.Lights++
			}
		}
	}
}

func (s *Streamer) propCommand(cam Camera, p *entity.Prop, tex asset.TextureHandle) render.Command {
	shader := p.Shader
	if shader == 0 {
		shader = s.PropShader
	}
	cmd := render.NewCommand(shader, cam.View, p.Transform(), p.Model.Handle())
	cmd.Texture = tex
	cmd.Tint = p.DrawTint()
	cmd.Flags = p.Flags
	cmd.Cull = p.Cull
	return cmd
}

// ShadowPass lists every already-initialized, depth-tested drawable visible
// from cam with shader forced, sorted by texture then mesh. It requests no
// loads. The result is reused by the next call.
func (s *Streamer) ShadowPass(cam Camera, entities []entity.Entity, shader render.ShaderID) []render.Command {
	defer profiling.Track("stream.shadow")()
	s.shadow.Reset()
	fr := cull.ExtractFrustum(cam.ViewProjection())

	s.visitChunks(cam, &fr, nil, func(c *terrain.Chunk, lod int) {
		m := c.LOD[lod]
		if m.State() != asset.StateInitialized {
			return
		}
		o := c.Origin()
		s.shadow.Add(render.NewCommand(shader, cam.View, mgl32.Translate3D(o[0], o[1], o[2]), m.Handle()))
	})
	for _, e := range entities {
		p, ok := e.(*entity.Prop)
		if !ok || !entity.Live(p) || p.Flags&(render.FlagIgnoreDepth|render.FlagNoShadow) != 0 {
			continue
		}
		if p.Model.State() != asset.StateInitialized || !fr.SphereVisible(p.Pos, p.BoundingRadius()) {
			continue
		}
		cmd := s.propCommand(cam, p, textureHandle(p.Texture))
		cmd.Shader = shader
		s.shadow.Add(cmd)
	}
	s.shadow.SortForced()
	return s.shadow.Commands
}

// reclaim drops CPU buffers of terrain levels that loaded but were never
// uploaded, for chunks outside the keep radius.
func (s *Streamer) reclaim(cam Camera) int {
	defer profiling.Track("stream.reclaim")()
	keep := s.cfg.KeepRadius()
	cx, cy := terrain.WorldToChunk(cam.Position[0], cam.Position[1])
	n := 0
	for c := range s.chunks.All() {
		if abs(c.X-cx) <= keep && abs(c.Y-cy) <= keep {
			continue
		}
		for _, m := range c.LOD {
			if s.assets.ReclaimModel(m) {
				n++
			}
		}
	}
	if n > 0 {
		s.log.Debugf("reclaimed %d terrain buffers beyond %d chunks", n, keep)
	}
	return n
}

func textureHandle(t *asset.Texture) asset.TextureHandle {
	if t == nil {
		return 0
	}
	return t.Handle()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
