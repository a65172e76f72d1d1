package asset

import "sync/atomic"

// State is the lifecycle stage of a streamed asset.
type State int32

const (
	StateEmpty State = iota
	// StateProcessing means exactly one goroutine owns the asset's fields.
	StateProcessing
	StateHasData
	StateInitialized
	// StateFailed is terminal until ResetFailed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateProcessing:
		return "processing"
	case StateHasData:
		return "has-data"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// slot guards an asset. Leaving a resting state requires a successful
// compare-and-swap into StateProcessing; the winner then owns the asset until
// it publishes the next resting state with set.
type slot struct {
	v atomic.Int32
}

func (s *slot) load() State { return State(s.v.Load()) }

func (s *slot) acquire(from State) bool {
	return s.v.CompareAndSwap(int32(from), int32(StateProcessing))
}

func (s *slot) set(to State) { s.v.Store(int32(to)) }
