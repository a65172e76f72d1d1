package terrain

import "math"

// Vertex cache optimization after Tom Forsyth's "Linear-Speed Vertex Cache
// Optimisation". Triangles are reordered, never rewritten, so every triangle
// keeps its vertices and winding.

const (
	vcacheSize        = 32
	vcacheDecayPower  = 1.5
	vcacheLastTri     = 0.75
	vcacheValenceBase = 2.0
	vcacheValencePow  = 0.5
)

func vertexCacheScore(cachePos int, remaining int32) float32 {
	if remaining == 0 {
		return -1
	}
	score := 0.0
	switch {
	case cachePos < 0:
	case cachePos < 3:
		score = vcacheLastTri
	default:
		s := 1 - float64(cachePos-3)/float64(vcacheSize-3)
		score = math.Pow(s, vcacheDecayPower)
	}
	score += vcacheValenceBase * math.Pow(float64(remaining), -vcacheValencePow)
	return float32(score)
}

// OptimizeVertexCache returns indices with triangles reordered for a small
// post-transform vertex cache.
func OptimizeVertexCache(indices []uint32, vertexCount int) []uint32 {
	triCount := len(indices) / 3
	out := make([]uint32, 0, triCount*3)
	if triCount == 0 {
		return out
	}

	// Per-vertex triangle adjacency; the first remaining[v] entries after
	// offsets[v] are the triangles not emitted yet.
	remaining := make([]int32, vertexCount)
	for _, v := range indices[:triCount*3] {
		remaining[v]++
	}
	offsets := make([]int32, vertexCount+1)
	for v := range vertexCount {
		offsets[v+1] = offsets[v] + remaining[v]
	}
	adj := make([]int32, triCount*3)
	fill := make([]int32, vertexCount)
	copy(fill, offsets[:vertexCount])
	for t := range triCount {
		for k := range 3 {
			v := indices[3*t+k]
			adj[fill[v]] = int32(t)
			fill[v]++
		}
	}

	cachePos := make([]int, vertexCount)
	vScore := make([]float32, vertexCount)
	for v := range vertexCount {
		cachePos[v] = -1
		vScore[v] = vertexCacheScore(-1, remaining[v])
	}
	tScore := make([]float32, triCount)
	emitted := make([]bool, triCount)
	for t := range triCount {
		tScore[t] = vScore[indices[3*t]] + vScore[indices[3*t+1]] + vScore[indices[3*t+2]]
	}

	cache := make([]uint32, 0, vcacheSize+3)
	next := make([]uint32, 0, vcacheSize+3)
	best := -1
	for len(out) < triCount*3 {
		if best < 0 {
			var bestScore float32 = -math.MaxFloat32
			for t := range triCount {
				if !emitted[t] && tScore[t] > bestScore {
					best, bestScore = t, tScore[t]
				}
			}
		}

		tri := indices[3*best : 3*best+3]
		out = append(out, tri...)
		emitted[best] = true

		for _, v := range tri {
			list := adj[offsets[v] : offsets[v]+remaining[v]]
			for i, t := range list {
				if int(t) == best {
					list[i] = list[len(list)-1]
					remaining[v]--
					break
				}
			}
		}

		// New cache: this triangle's vertices first, then the old contents.
		next = next[:0]
		for _, v := range tri {
			if !containsIndex(next, v) {
				next = append(next, v)
			}
		}
		for _, v := range cache {
			if !containsIndex(next, v) {
				next = append(next, v)
			}
		}
		for i, v := range next {
			if i < vcacheSize {
				cachePos[v] = i
			} else {
				cachePos[v] = -1
			}
		}

		best = -1
		var bestScore float32 = -math.MaxFloat32
		for _, v := range next {
			vScore[v] = vertexCacheScore(cachePos[v], remaining[v])
		}
		for _, v := range next {
			for _, t := range adj[offsets[v] : offsets[v]+remaining[v]] {
				s := vScore[indices[3*t]] + vScore[indices[3*t+1]] + vScore[indices[3*t+2]]
				tScore[t] = s
				if cachePos[v] >= 0 && s > bestScore {
					best, bestScore = int(t), s
				}
			}
		}

		if len(next) > vcacheSize {
			next = next[:vcacheSize]
		}
		cache, next = next, cache
	}
	return out
}

func containsIndex(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
