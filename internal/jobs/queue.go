package jobs

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

const (
	// DefaultCapacity is the ring size of both standard queues.
	DefaultCapacity = 512
	// DefaultIOWorkers is the worker count of the decode/import queue.
	DefaultIOWorkers = 2
)

// Func is a job callback. The callback owns data.
type Func func(data any)

// entry is a queued job. Ring slots hold pointers so a worker can copy one
// atomically before it claims it.
type entry struct {
	fn   Func
	data any
}

// Queue is a fixed-capacity ring buffer of jobs drained by a worker pool.
//
// Enqueue is called from a single producer (the frame thread). Workers load
// the oldest unread entry, then claim it with a compare-and-swap on the read
// index, and park on a semaphore when nothing is left to claim. The indices
// only grow; slot i lives at entries[i%size], so a stale claim can never
// succeed after the producer reuses its slot.
type Queue struct {
	name    string
	entries []atomic.Pointer[entry]
	size    uint64

	nextWrite atomic.Uint64
	nextRead  atomic.Uint64

	goal      atomic.Uint32
	completed atomic.Uint32

	sem chan struct{}

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// NewQueue creates a queue with the given ring capacity and starts workers
// goroutines. A capacity of n holds at most n-1 pending jobs. workers may be
// zero, in which case jobs only run through Drain.
func NewQueue(name string, capacity, workers int) *Queue {
	if capacity < 2 {
		panic(fmt.Sprintf("jobs: queue %q capacity %d too small", name, capacity))
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:    name,
		entries: make([]atomic.Pointer[entry], capacity),
		size:    uint64(capacity),
		sem:     make(chan struct{}, capacity),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := range workers {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// NewGenerationQueue creates the CPU-bound queue used for procedural terrain,
// one worker per host core.
func NewGenerationQueue(capacity int) *Queue {
	return NewQueue("generate", capacity, max(runtime.NumCPU(), 1))
}

// NewIOQueue creates the decode/import queue with a small fixed pool.
func NewIOQueue(capacity, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultIOWorkers
	}
	return NewQueue("io", capacity, workers)
}

// Name returns the queue name used in diagnostics.
func (q *Queue) Name() string { return q.name }

// Workers returns the number of worker goroutines.
func (q *Queue) Workers() int { return q.workers }

// Capacity returns the ring size.
func (q *Queue) Capacity() int { return int(q.size) }

// Pending returns the number of queued jobs not yet claimed by a worker.
func (q *Queue) Pending() int {
	// read first: r never passes a later load of w
	r := q.nextRead.Load()
	w := q.nextWrite.Load()
	return int(w - r)
}

// HasFreeSpot reports whether more than one free slot remains. Producers
// check it before every Enqueue.
func (q *Queue) HasFreeSpot() bool {
	free := int(q.size) - 1 - q.Pending()
	return free > 1
}

// Enqueue publishes a job and wakes one worker. Enqueueing into a full queue
// is a caller bug and panics.
func (q *Queue) Enqueue(fn Func, data any) {
	w := q.nextWrite.Load()
	if w-q.nextRead.Load() >= q.size-1 {
		panic(fmt.Sprintf("jobs: queue %q overflow (capacity %d)", q.name, q.size))
	}
	q.entries[w%q.size].Store(&entry{fn: fn, data: data})
	q.goal.Add(1)
	// publishes the entry to any worker that loads nextWrite
	q.nextWrite.Store(w + 1)

	select {
	case q.sem <- struct{}{}:
	default:
		// Enough wakeups are already pending for every queued job.
	}
}

// claim takes ownership of the oldest unread entry. The entry is copied
// before the compare-and-swap: once nextRead moves past r the producer may
// overwrite the slot.
func (q *Queue) claim() (*entry, bool) {
	for {
		r := q.nextRead.Load()
		if r == q.nextWrite.Load() {
			return nil, false
		}
		e := q.entries[r%q.size].Load()
		if q.nextRead.CompareAndSwap(r, r+1) {
			return e, true
		}
	}
}

// runNext claims and runs the oldest unread job. It returns false when the
// queue looked empty.
func (q *Queue) runNext() bool {
	e, ok := q.claim()
	if !ok {
		return false
	}
	q.run(e)
	return true
}

func (q *Queue) run(e *entry) {
	e.fn(e.data)
	q.completed.Add(1)
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for {
		if q.runNext() {
			continue
		}
		select {
		case <-q.sem:
		case <-q.ctx.Done():
			return
		}
	}
}

// Drain runs queued jobs on the calling goroutine until every enqueued job,
// including those claimed by workers, has completed.
func (q *Queue) Drain() {
	for q.completed.Load() != q.goal.Load() {
		if !q.runNext() {
			runtime.Gosched()
		}
	}
}

// Goal returns the number of jobs ever enqueued.
func (q *Queue) Goal() uint32 { return q.goal.Load() }

// Completed returns the number of jobs that finished running.
func (q *Queue) Completed() uint32 { return q.completed.Load() }

// Close stops the workers after their current job. Queued jobs that were not
// claimed yet are abandoned.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.cancel()
		q.wg.Wait()
	})
}
