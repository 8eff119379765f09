package predict

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEvaluator returns a constant policy/value for every row in the batch
// and records the batch sizes it was actually called with. When block is
// set, each call waits until block is closed before returning.
type fakeEvaluator struct {
	mu         sync.Mutex
	batchSizes []int
	inputSize  int
	block      chan struct{}
}

func (f *fakeEvaluator) Infer(batch []float32) ([][]float32, []float32, error) {
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(batch)/f.inputSize)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}

	n := len(batch) / f.inputSize
	policies := make([][]float32, n)
	values := make([]float32, n)
	for i := range policies {
		policies[i] = []float32{0.5, 0.5}
		values[i] = 1
	}
	return policies, values, nil
}

func TestQueuePredictReturnsPolicyAndValue(t *testing.T) {
	nn := &fakeEvaluator{inputSize: 4}
	q, err := NewQueue(nn, nil, Config{BatchSize: 2, InputSize: 4, NumWorkers: 2, MaxPendingBatches: 4})
	require.NoError(t, err)
	defer q.Close()

	policy, value, err := q.Predict([]float32{1, 2, 3, 4}, 0, false)
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.5}, policy)
	require.Equal(t, float32(1), value)
}

// The lone-worker liveness rule: with only one worker started, a single
// request must not starve waiting for a full batch that never arrives.
func TestQueueSingleWorkerTakesShortBatch(t *testing.T) {
	nn := &fakeEvaluator{inputSize: 4}
	q, err := NewQueue(nn, nil, Config{BatchSize: 4, InputSize: 4, NumWorkers: 1, MaxPendingBatches: 4})
	require.NoError(t, err)
	defer q.Close()

	_, _, err = q.Predict([]float32{1, 2, 3, 4}, 0, false)
	require.NoError(t, err)
}

func TestQueueCachesResults(t *testing.T) {
	nn := &fakeEvaluator{inputSize: 4}
	cache := NewCache(0)
	q, err := NewQueue(nn, cache, Config{BatchSize: 1, InputSize: 4, NumWorkers: 1, MaxPendingBatches: 4})
	require.NoError(t, err)
	defer q.Close()

	_, _, err = q.Predict([]float32{1, 2, 3, 4}, 42, true)
	require.NoError(t, err)
	_, _, err = q.Predict([]float32{1, 2, 3, 4}, 42, true)
	require.NoError(t, err)

	nn.mu.Lock()
	calls := len(nn.batchSizes)
	nn.mu.Unlock()
	require.Equal(t, 1, calls, "second request should have been served from cache")
}

// Closing the queue must unblock any request still waiting to be picked up
// by a worker, returning an error rather than hanging forever. The lone
// worker takes even a short batch at once, so a first request holds it
// inside Infer while a second request stays pending.
func TestQueueCloseDrainsPending(t *testing.T) {
	nn := &fakeEvaluator{inputSize: 4, block: make(chan struct{})}
	q, err := NewQueue(nn, nil, Config{BatchSize: 100, InputSize: 4, NumWorkers: 1, MaxPendingBatches: 4})
	require.NoError(t, err)

	go q.Predict([]float32{1, 2, 3, 4}, 0, false)
	// Wait until the worker is inside Infer with the first request.
	for {
		nn.mu.Lock()
		busy := len(nn.batchSizes) > 0
		nn.mu.Unlock()
		if busy {
			break
		}
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := q.Predict([]float32{5, 6, 7, 8}, 0, false)
		done <- err
	}()

	// Give the second request a moment to enqueue before closing.
	q.mu.Lock()
	for len(q.pending) == 0 {
		q.mu.Unlock()
		q.mu.Lock()
	}
	q.mu.Unlock()

	// Close waits for the busy worker, so it runs until Infer is released.
	closed := make(chan error, 1)
	go func() { closed <- q.Close() }()
	err = <-done
	require.Error(t, err)
	close(nn.block)
	require.NoError(t, <-closed)
}

func TestCacheAdvanceInvalidatesPriorGeneration(t *testing.T) {
	c := NewCache(0)
	c.Put(1, []float32{0.1}, 0.2)

	_, _, ok := c.Get(1)
	require.True(t, ok)

	c.Advance()
	_, _, ok = c.Get(1)
	require.False(t, ok)
	require.Equal(t, uint64(1), c.Generation())
}

func TestCacheMaxPerGenDropsExcess(t *testing.T) {
	c := NewCache(1)
	c.Put(1, []float32{0.1}, 0.2)
	c.Put(2, []float32{0.3}, 0.4)

	_, _, ok1 := c.Get(1)
	_, _, ok2 := c.Get(2)
	require.True(t, ok1)
	require.False(t, ok2)
}
