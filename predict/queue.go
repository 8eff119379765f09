// Package predict implements the batched prediction queue: many self-play
// goroutines submit single positions, and a small pool of workers groups
// them into fixed-width batches before handing them to the network, so a
// GPU-bound Evaluator is kept busy with full batches instead of being
// called one leaf at a time.
package predict

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Evaluator is anything that can run a forward pass over an exact batch of
// flattened board encodings. *dual.Dual implements this.
type Evaluator interface {
	Infer(batch []float32) (policies [][]float32, values []float32, err error)
}

// Config controls queue batching behavior.
type Config struct {
	BatchSize         int // must match the Evaluator's fixed batch width
	InputSize         int // length of one request's encoded board
	NumWorkers        int
	MaxPendingBatches int // backpressure limit, in units of BatchSize
}

func (c Config) IsValid() error {
	if c.BatchSize <= 0 || c.InputSize <= 0 {
		return errors.New("predict: BatchSize and InputSize must be positive")
	}
	if c.NumWorkers <= 0 {
		return errors.New("predict: NumWorkers must be positive")
	}
	if c.MaxPendingBatches <= 0 {
		return errors.New("predict: MaxPendingBatches must be positive")
	}
	return nil
}

type request struct {
	input       []float32
	fingerprint uint64
	hasFP       bool
	result      chan result
}

type result struct {
	policy []float32
	value  float32
	err    error
}

// Queue batches single-position prediction requests into fixed-width
// network calls.
type Queue struct {
	Config

	nn    Evaluator
	cache *Cache

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*request
	closed  bool
	wg      sync.WaitGroup
}

// NewQueue starts conf.NumWorkers worker goroutines draining requests into
// nn. cache may be nil to disable prediction caching.
func NewQueue(nn Evaluator, cache *Cache, conf Config) (*Queue, error) {
	if err := conf.IsValid(); err != nil {
		return nil, err
	}
	q := &Queue{Config: conf, nn: nn, cache: cache}
	q.cond = sync.NewCond(&q.mu)
	for i := 0; i < conf.NumWorkers; i++ {
		q.wg.Add(1)
		go q.worker(i == 0)
	}
	return q, nil
}

// Predict submits one encoded board and blocks until its policy and value
// are available, either from cache or from a batched inference round-trip.
func (q *Queue) Predict(input []float32, fingerprint uint64, useCache bool) ([]float32, float32, error) {
	if useCache && q.cache != nil {
		if policy, value, ok := q.cache.Get(fingerprint); ok {
			return policy, value, nil
		}
	}

	req := &request{input: input, fingerprint: fingerprint, hasFP: useCache, result: make(chan result, 1)}

	q.mu.Lock()
	for len(q.pending) >= q.MaxPendingBatches*q.BatchSize && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		q.mu.Unlock()
		return nil, 0, errors.New("predict: queue closed")
	}
	q.pending = append(q.pending, req)
	q.cond.Broadcast()
	q.mu.Unlock()

	r := <-req.result
	if r.err != nil {
		return nil, 0, r.err
	}
	if useCache && q.cache != nil {
		q.cache.Put(fingerprint, r.policy, r.value)
	}
	return r.policy, r.value, nil
}

// worker drains batches off the pending queue. The primary worker (isFirst)
// will take whatever is available, even a short batch, so a lone request
// is never starved waiting for siblings that never arrive; every other
// worker only takes full-width batches, keeping steady-state throughput at
// maximum batch efficiency under load. A worker with nothing it may take
// yet (non-first, partial batch only) parks on the condition variable
// rather than spinning; Predict's enqueue and the first worker's partial
// take both broadcast to wake it.
func (q *Queue) worker(isFirst bool) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		for len(q.pending) == 0 || (!isFirst && len(q.pending) < q.BatchSize) {
			if len(q.pending) == 0 && q.closed {
				q.mu.Unlock()
				return
			}
			q.cond.Wait()
		}
		var batch []*request
		if len(q.pending) >= q.BatchSize {
			batch = q.pending[:q.BatchSize]
			q.pending = q.pending[q.BatchSize:]
		} else {
			batch = q.pending
			q.pending = nil
		}
		q.cond.Broadcast()
		q.mu.Unlock()

		q.run(batch)
	}
}

func (q *Queue) run(batch []*request) {
	flat := make([]float32, q.BatchSize*q.InputSize)
	for i, r := range batch {
		copy(flat[i*q.InputSize:(i+1)*q.InputSize], r.input)
	}

	policies, values, err := q.nn.Infer(flat)
	for i, r := range batch {
		if err != nil {
			r.result <- result{err: err}
			continue
		}
		r.result <- result{policy: policies[i], value: values[i]}
	}
}

// Close stops every worker and releases any goroutines blocked in
// Predict. Workers that were mid-batch finish delivering their current
// results first.
func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	unsent := q.pending
	q.pending = nil
	q.mu.Unlock()

	var errs *multierror.Error
	for _, r := range unsent {
		r.result <- result{err: errors.New("predict: queue closed before batch ran")}
	}
	q.wg.Wait()
	return errs.ErrorOrNil()
}
