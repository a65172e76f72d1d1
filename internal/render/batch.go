package render

import (
	"cmp"
	"slices"
)

// Batch collects a frame's commands and orders them to minimize state
// changes. It is owned by the frame goroutine.
type Batch struct {
	Commands []Command
}

// Add appends c.
func (b *Batch) Add(c Command) { b.Commands = append(b.Commands, c) }

// Reset empties the batch, keeping its storage.
func (b *Batch) Reset() { b.Commands = b.Commands[:0] }

func (b *Batch) Len() int { return len(b.Commands) }

// Sort orders by depth flag, shader, texture then mesh. Depth-tested
// commands come first.
func (b *Batch) Sort() {
	slices.SortStableFunc(b.Commands, compareFull)
}

// SortForced orders by texture then mesh, for passes where every command is
// drawn with one shader.
func (b *Batch) SortForced() {
	slices.SortStableFunc(b.Commands, compareForced)
}

func compareFull(x, y Command) int {
	if c := cmp.Compare(flagBit(x.IgnoresDepth()), flagBit(y.IgnoresDepth())); c != 0 {
		return c
	}
	if c := cmp.Compare(x.Shader, y.Shader); c != 0 {
		return c
	}
	return compareForced(x, y)
}

func compareForced(x, y Command) int {
	if c := cmp.Compare(x.Texture, y.Texture); c != 0 {
		return c
	}
	return cmp.Compare(x.Mesh, y.Mesh)
}

func flagBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StateChanges counts shader, texture and mesh rebinds needed to draw the
// commands in order.
func (b *Batch) StateChanges() (shaders, textures, meshes int) {
	for i, c := range b.Commands {
		if i == 0 {
			shaders, textures, meshes = 1, 1, 1
			continue
		}
		p := b.Commands[i-1]
		if c.Shader != p.Shader {
			shaders++
		}
		if c.Texture != p.Texture {
			textures++
		}
		if c.Mesh != p.Mesh {
			meshes++
		}
	}
	return shaders, textures, meshes
}
