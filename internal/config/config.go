package config

import (
	"os"
	"strconv"
	"sync"
)

// Streaming holds the tunables of the streaming core. The zero value is not
// usable; start from Default or FromEnv.
type Streaming struct {
	mu sync.RWMutex

	viewDistance     int // in chunks
	keepMargin       int // chunks beyond the view distance whose CPU buffers survive
	tableCapacity    int
	generateCapacity int
	generateWorkers  int
	ioCapacity       int
	ioWorkers        int
	generateBudget   float64 // generation requests per second, 0 = unlimited
	fpsLimit         int
	debugLODTint     bool
}

const (
	minViewDistance = 1
	maxViewDistance = 64
)

// Default returns the settings the demo ships with.
func Default() *Streaming {
	return &Streaming{
		viewDistance:     12,
		keepMargin:       4,
		tableCapacity:    4096,
		generateCapacity: 512,
		ioCapacity:       512,
		ioWorkers:        2,
		fpsLimit:         60,
	}
}

// FromEnv returns Default overlaid with TERRASTREAM_* environment variables.
// Unparsable values are ignored.
func FromEnv() *Streaming {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) *Streaming {
	s := Default()
	intVar := func(name string, set func(int)) {
		if v, ok := lookup(name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				set(n)
			}
		}
	}
	intVar("TERRASTREAM_VIEW_DISTANCE", s.SetViewDistance)
	intVar("TERRASTREAM_KEEP_MARGIN", s.SetKeepMargin)
	intVar("TERRASTREAM_CHUNK_TABLE", func(n int) { s.tableCapacity = max(n, 2) })
	intVar("TERRASTREAM_GEN_QUEUE", func(n int) { s.generateCapacity = max(n, 2) })
	intVar("TERRASTREAM_GEN_WORKERS", func(n int) { s.generateWorkers = max(n, 0) })
	intVar("TERRASTREAM_IO_QUEUE", func(n int) { s.ioCapacity = max(n, 2) })
	intVar("TERRASTREAM_IO_WORKERS", func(n int) { s.ioWorkers = max(n, 1) })
	intVar("TERRASTREAM_FPS", s.SetFPSLimit)
	if v, ok := lookup("TERRASTREAM_GEN_BUDGET"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.SetGenerateBudget(f)
		}
	}
	if v, ok := lookup("TERRASTREAM_LOD_TINT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.SetDebugLODTint(b)
		}
	}
	return s
}

// ViewDistance returns the radius, in chunks, around the camera chunk that is
// considered every frame.
func (s *Streaming) ViewDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewDistance
}

// SetViewDistance sets the view distance, clamped to 1..64.
func (s *Streaming) SetViewDistance(distance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewDistance = min(max(distance, minViewDistance), maxViewDistance)
}

// KeepRadius returns the chunk radius outside which loaded but unuploaded
// terrain buffers are reclaimed.
func (s *Streaming) KeepRadius() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewDistance + s.keepMargin
}

// SetKeepMargin sets how far past the view distance buffers are kept.
func (s *Streaming) SetKeepMargin(chunks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepMargin = max(chunks, 0)
}

// TableCapacity returns the number of home slots of the chunk table.
func (s *Streaming) TableCapacity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tableCapacity
}

// GenerateQueue returns the generation queue's capacity and worker count. A
// worker count of zero means one per CPU.
func (s *Streaming) GenerateQueue() (capacity, workers int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generateCapacity, s.generateWorkers
}

// IOQueue returns the IO queue's capacity and worker count.
func (s *Streaming) IOQueue() (capacity, workers int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ioCapacity, s.ioWorkers
}

// GenerateBudget returns the generation requests allowed per second.
func (s *Streaming) GenerateBudget() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generateBudget
}

// SetGenerateBudget sets the generation request rate; values <= 0 disable it.
func (s *Streaming) SetGenerateBudget(perSecond float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateBudget = max(perSecond, 0)
}

// FPSLimit returns the frame cap; 0 means uncapped.
func (s *Streaming) FPSLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fpsLimit
}

// SetFPSLimit sets the frame cap, clamped to 0..1000.
func (s *Streaming) SetFPSLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fpsLimit = min(max(limit, 0), 1000)
}

// DebugLODTint reports whether terrain is tinted by level of detail.
func (s *Streaming) DebugLODTint() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugLODTint
}

func (s *Streaming) SetDebugLODTint(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugLODTint = enabled
}
