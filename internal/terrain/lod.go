package terrain

import "math"

// ChunkSize is the edge length of a chunk in world units.
const ChunkSize = 1000.0

const (
	LODHigh = iota
	LODMid
	LODLow
	LODCount
)

// LODDetail is the sample density, in samples per world unit, of each level.
var LODDetail = [LODCount]float64{0.03, 0.01, 0.005}

// SelectLOD picks the level for a chunk dx, dy chunks away from the camera's
// chunk. Squared distance below 4 gets high detail, below 16 medium.
func SelectLOD(dx, dy int) int {
	return LODForDistance2(dx*dx + dy*dy)
}

// LODForDistance2 maps a squared chunk distance to a level.
func LODForDistance2(d2 int) int {
	switch {
	case d2 < 4:
		return LODHigh
	case d2 < 16:
		return LODMid
	}
	return LODLow
}

// WorldToChunk returns the chunk containing world (x, y).
func WorldToChunk(x, y float32) (int, int) {
	return int(math.Floor(float64(x) / ChunkSize)), int(math.Floor(float64(y) / ChunkSize))
}

// gridSize returns the number of samples per axis at a density.
func gridSize(detail float64) int {
	return int(math.Round(ChunkSize*detail)) + 1
}
