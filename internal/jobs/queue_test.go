package jobs

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasFreeSpotKeepsOneSlotMargin(t *testing.T) {
	q := NewQueue("test", 4, 0)
	defer q.Close()

	// capacity 4 holds 3 entries, and HasFreeSpot wants two of them free
	require.True(t, q.HasFreeSpot())
	q.Enqueue(func(any) {}, nil)
	assert.True(t, q.HasFreeSpot())
	q.Enqueue(func(any) {}, nil)
	assert.False(t, q.HasFreeSpot())
	assert.Equal(t, 2, q.Pending())

	// the last physical slot is still usable, it is only reserved
	q.Enqueue(func(any) {}, nil)
	assert.Equal(t, 3, q.Pending())
}

func TestEnqueueOverflowPanics(t *testing.T) {
	q := NewQueue("tiny", 2, 0)
	defer q.Close()

	q.Enqueue(func(any) {}, nil)
	assert.PanicsWithValue(t, `jobs: queue "tiny" overflow (capacity 2)`, func() {
		q.Enqueue(func(any) {}, nil)
	})
}

func TestDrainRunsInFIFOOrder(t *testing.T) {
	q := NewQueue("fifo", 16, 0)
	defer q.Close()

	var order []int
	for i := range 10 {
		q.Enqueue(func(data any) { order = append(order, data.(int)) }, i)
	}
	q.Drain()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	assert.Equal(t, uint32(10), q.Goal())
	assert.Equal(t, uint32(10), q.Completed())
	assert.Equal(t, 0, q.Pending())
}

func TestWorkersRunEveryJobExactlyOnce(t *testing.T) {
	q := NewQueue("workers", 8, 4)
	defer q.Close()

	const total = 2000
	var runs [total]atomic.Int32
	submitted := 0
	for submitted < total {
		if !q.HasFreeSpot() {
			time.Sleep(10 * time.Microsecond)
			continue
		}
		q.Enqueue(func(data any) { runs[data.(int)].Add(1) }, submitted)
		submitted++
	}
	q.Drain()

	for i := range runs {
		require.Equal(t, int32(1), runs[i].Load(), "job %d", i)
	}
}

func TestIdleWorkersWakeOnEnqueue(t *testing.T) {
	q := NewIOQueue(8, 2)
	defer q.Close()

	// give workers time to park on the semaphore
	time.Sleep(5 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	q.Enqueue(func(any) { wg.Done() }, nil)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("parked worker never picked up the job")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := NewGenerationQueue(DefaultCapacity)
	assert.GreaterOrEqual(t, q.Workers(), 1)
	q.Close()
	q.Close()
}

func TestStalledClaimSurvivesProducerLapping(t *testing.T) {
	q := NewQueue("lap", 3, 0)
	defer q.Close()

	var ran []string
	job := func(data any) { ran = append(ran, data.(string)) }

	q.Enqueue(job, "job1")
	// a worker claims job1 and stalls before running it
	stalled, ok := q.claim()
	require.True(t, ok)

	for _, name := range []string{"job2", "job3", "job4"} {
		require.True(t, q.HasFreeSpot(), name)
		q.Enqueue(job, name)
		if name != "job4" {
			require.True(t, q.runNext())
		}
	}
	// the producer has reused job1's slot by now
	require.True(t, q.runNext())
	q.run(stalled)

	assert.Equal(t, []string{"job2", "job3", "job4", "job1"}, ran)
	assert.False(t, q.runNext())
	assert.Equal(t, q.Goal(), q.Completed())
}

func TestStaleReadIndexNeverClaims(t *testing.T) {
	q := NewQueue("aba", 3, 0)
	defer q.Close()

	q.Enqueue(func(any) {}, nil)
	r := q.nextRead.Load()
	q.Drain()

	// a full lap brings the slot index back around; the read index does not
	for range 3 {
		q.Enqueue(func(any) {}, nil)
		q.Drain()
	}
	q.Enqueue(func(any) {}, nil)
	assert.False(t, q.nextRead.CompareAndSwap(r, r+1))
	assert.Equal(t, 1, q.Pending())
	q.Drain()
}
