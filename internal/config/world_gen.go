package config

import (
	"os"
	"strconv"
	"sync"
)

// Terrain holds world generation settings.
type Terrain struct {
	mu   sync.RWMutex
	seed int64
}

// DefaultTerrain returns generation settings with a fixed seed.
func DefaultTerrain() *Terrain {
	return &Terrain{seed: 1337}
}

// TerrainFromEnv reads TERRASTREAM_SEED over the defaults.
func TerrainFromEnv() *Terrain {
	t := DefaultTerrain()
	if v, ok := os.LookupEnv("TERRASTREAM_SEED"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			t.SetSeed(n)
		}
	}
	return t
}

// Seed returns the height function seed.
func (t *Terrain) Seed() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seed
}

func (t *Terrain) SetSeed(seed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seed = seed
}
