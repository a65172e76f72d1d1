package main

import (
	"math/rand"

	"terrastream/internal/asset"

	"github.com/lucasb-eyer/go-colorful"
)

// rockMesh is a squashed octahedron, unit radius.
func rockMesh() (*asset.ModelData, error) {
	d := asset.NewModelData(6, 24, false)
	copy(d.Positions, []float32{
		1, 0, 0, -1, 0, 0,
		0, 1, 0, 0, -1, 0,
		0, 0, 0.6, 0, 0, -0.3,
	})
	copy(d.Indices, []uint32{
		0, 2, 4, 2, 1, 4, 1, 3, 4, 3, 0, 4,
		2, 0, 5, 1, 2, 5, 3, 1, 5, 0, 3, 5,
	})
	d.RecomputeNormals()
	return d, nil
}

func rockColor(rng *rand.Rand) colorful.Color {
	return colorful.Hsv(25+rng.Float64()*20, 0.15+rng.Float64()*0.2, 0.45+rng.Float64()*0.25)
}
