package terrain

import (
	"fmt"
	"iter"
	"math"

	"terrastream/internal/asset"
	"terrastream/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTableCapacity is the number of home slots in a chunk table.
const DefaultTableCapacity = 4096

// Records live in fixed pages that are never reallocated, so chunk and asset
// pointers held by worker goroutines stay valid while the table grows.
const pageSize = 256

// Handle is the stable index of a chunk record.
type Handle int32

// NoChunk marks an empty slot or the end of a chain.
const NoChunk Handle = -1

// Chunk is one terrain tile with a mesh per level of detail.
type Chunk struct {
	X, Y int
	LOD  [LODCount]*asset.Model

	// MinHeight and MaxHeight come from the low-detail sample grid.
	MinHeight, MaxHeight float32

	handle Handle
	next   Handle
}

// Handle returns the chunk's stable record index.
func (c *Chunk) Handle() Handle { return c.handle }

// Origin returns the chunk's corner in world space.
func (c *Chunk) Origin() mgl32.Vec3 {
	return mgl32.Vec3{float32(float64(c.X) * ChunkSize), float32(float64(c.Y) * ChunkSize), 0}
}

// BoundingRadius returns the culling radius around Origin for a level. Before
// the level has loaded, a conservative estimate from the sampled height range
// is used.
func (c *Chunk) BoundingRadius(lod int) float32 {
	if r := c.LOD[lod].Radius(); r > 0 {
		return r
	}
	h := max(math.Abs(float64(c.MinHeight)), math.Abs(float64(c.MaxHeight)))
	// sampled heights can miss peaks between low-detail samples
	h = h*1.25 + 50
	return float32(math.Sqrt(2*ChunkSize*ChunkSize + h*h))
}

// ChunkTable maps chunk coordinates to chunk records, creating them on first
// touch. It is not safe for concurrent use; only the frame goroutine touches
// it.
type ChunkTable struct {
	slots []Handle
	pages []*[pageSize]Chunk
	count int
	gen   *Generator
}

// NewChunkTable creates a table with capacity home slots whose chunks are
// generated by gen.
func NewChunkTable(capacity int, gen *Generator) *ChunkTable {
	if capacity < 2 {
		panic(fmt.Sprintf("terrain: chunk table capacity %d too small", capacity))
	}
	slots := make([]Handle, capacity)
	for i := range slots {
		slots[i] = NoChunk
	}
	return &ChunkTable{slots: slots, gen: gen}
}

// Generator returns the height function the table's chunks are built from.
func (t *ChunkTable) Generator() *Generator { return t.gen }

// Len returns the number of chunk records.
func (t *ChunkTable) Len() int { return t.count }

func (t *ChunkTable) home(x, y int) int {
	m := int64(len(t.slots) - 1)
	if m == 0 {
		return 0
	}
	h := (6269*int64(x) + 8059*int64(y)) % m
	if h < 0 {
		h += m
	}
	return int(h)
}

// Chunk returns the record for h.
func (t *ChunkTable) Chunk(h Handle) *Chunk {
	return &t.pages[int(h)/pageSize][int(h)%pageSize]
}

// GetChunkAt returns the chunk at (x, y), creating it with three empty levels
// of detail when it does not exist yet. Repeated calls return the same chunk.
func (t *ChunkTable) GetChunkAt(x, y int) *Chunk {
	slot := &t.slots[t.home(x, y)]
	if *slot == NoChunk {
		c := t.alloc(x, y)
		*slot = c.handle
		return c
	}
	c := t.Chunk(*slot)
	for {
		if c.X == x && c.Y == y {
			return c
		}
		if c.next == NoChunk {
			n := t.alloc(x, y)
			c.next = n.handle
			return n
		}
		c = t.Chunk(c.next)
	}
}

// Lookup returns the chunk at (x, y) without creating it.
func (t *ChunkTable) Lookup(x, y int) *Chunk {
	h := t.slots[t.home(x, y)]
	for h != NoChunk {
		c := t.Chunk(h)
		if c.X == x && c.Y == y {
			return c
		}
		h = c.next
	}
	return nil
}

// All iterates over every chunk in creation order.
func (t *ChunkTable) All() iter.Seq[*Chunk] {
	return func(yield func(*Chunk) bool) {
		for i := range t.count {
			if !yield(t.Chunk(Handle(i))) {
				return
			}
		}
	}
}

func (t *ChunkTable) alloc(x, y int) *Chunk {
	defer profiling.Track("terrain.allocChunk")()
	h := Handle(t.count)
	if t.count%pageSize == 0 {
		t.pages = append(t.pages, new([pageSize]Chunk))
	}
	t.count++

	c := t.Chunk(h)
	*c = Chunk{X: x, Y: y, handle: h, next: NoChunk}
	c.MinHeight, c.MaxHeight = sampleHeightRange(t.gen, x, y)
	for lod := range LODCount {
		detail := LODDetail[lod]
		name := fmt.Sprintf("ground(%d,%d)@%g", x, y, detail)
		c.LOD[lod] = asset.NewGeneratedModel(name, func() (*asset.ModelData, error) {
			return GenerateGround(t.gen, x, y, detail)
		})
	}
	return c
}

// sampleHeightRange evaluates the low-detail grid of a chunk.
func sampleHeightRange(g *Generator, x, y int) (float32, float32) {
	n := gridSize(LODDetail[LODLow])
	cells := n - 1
	step := ChunkSize / float64(cells)
	lo := float32(math.Inf(1))
	hi := float32(math.Inf(-1))
	for j := range n {
		for i := range n {
			h := g.HeightAt(float64(x*cells+i)*step, float64(y*cells+j)*step)
			lo = min(lo, h)
			hi = max(hi, h)
		}
	}
	return lo, hi
}
