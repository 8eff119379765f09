// Package train implements the shuffling trainer: self-play games deposit
// samples into a bounded, drop-oldest buffer, and a background worker
// repeatedly samples-with-replacement once the buffer is full enough to
// give a representative batch, pacing itself between steps so training
// cannot run arbitrarily far ahead of self-play production.
package train

import (
	"math/rand"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Sample is one (position, search policy, outcome) training example.
type Sample struct {
	Board  []float32
	Policy []float32
	Value  float32
}

// Trainer is anything that can run one gradient step over a flattened
// batch. *dual.Dual implements this.
type Trainer interface {
	Train(boards, policyTargets, valueTargets []float32) (float32, error)
}

// Config controls the shuffle buffer's size and training pace.
type Config struct {
	Capacity       int // buffer bound; Push drops the oldest sample past this
	ShuffleSize    int // minimum fill before the background worker starts training
	BatchSize      int
	BoardSize      int // length of one flattened board encoding
	PolicySize     int // length of one flattened policy target
	TrainStepPause time.Duration
}

func (c Config) IsValid() error {
	if c.Capacity <= 0 || c.ShuffleSize <= 0 || c.BatchSize <= 0 {
		return errors.New("train: Capacity, ShuffleSize and BatchSize must be positive")
	}
	if c.ShuffleSize > c.Capacity {
		return errors.New("train: ShuffleSize must not exceed Capacity")
	}
	if c.BoardSize <= 0 || c.PolicySize <= 0 {
		return errors.New("train: BoardSize and PolicySize must be positive")
	}
	return nil
}

// Shuffler is a bounded sample buffer with a background training loop.
type Shuffler struct {
	Config

	nn   Trainer
	rand *rand.Rand

	mu     sync.Mutex
	buf    []Sample
	closed bool

	done chan struct{}
	wg   sync.WaitGroup

	mErr   *multierror.Error
	errMu  sync.Mutex
	steps  uint64
}

// NewShuffler starts the background training loop against nn.
func NewShuffler(nn Trainer, conf Config) (*Shuffler, error) {
	if err := conf.IsValid(); err != nil {
		return nil, err
	}
	s := &Shuffler{
		Config: conf,
		nn:     nn,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s, nil
}

// Push deposits a new sample, evicting the oldest one first if the buffer
// is already at capacity. Never blocks self-play.
func (s *Shuffler) Push(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if len(s.buf) >= s.Capacity {
		copy(s.buf, s.buf[1:])
		s.buf = s.buf[:len(s.buf)-1]
	}
	s.buf = append(s.buf, sample)
}

// Len reports the current buffer occupancy.
func (s *Shuffler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Steps reports how many training steps have completed.
func (s *Shuffler) Steps() uint64 {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.steps
}

func (s *Shuffler) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		default:
		}

		batch, ok := s.sampleBatch()
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		boards := make([]float32, 0, len(batch)*s.BoardSize)
		policies := make([]float32, 0, len(batch)*s.PolicySize)
		values := make([]float32, 0, len(batch))
		for _, sample := range batch {
			boards = append(boards, sample.Board...)
			policies = append(policies, sample.Policy...)
			values = append(values, sample.Value)
		}

		if _, err := s.nn.Train(boards, policies, values); err != nil {
			s.errMu.Lock()
			s.mErr = multierror.Append(s.mErr, err)
			s.errMu.Unlock()
		}
		s.errMu.Lock()
		s.steps++
		s.errMu.Unlock()

		time.Sleep(s.TrainStepPause)
	}
}

// sampleBatch draws BatchSize samples with replacement, once the buffer
// holds at least ShuffleSize samples.
func (s *Shuffler) sampleBatch() ([]Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) < s.ShuffleSize {
		return nil, false
	}
	batch := make([]Sample, s.BatchSize)
	for i := range batch {
		batch[i] = s.buf[s.rand.Intn(len(s.buf))]
	}
	return batch, true
}

// Close stops the background worker and returns any training errors
// accumulated over the shuffler's lifetime.
func (s *Shuffler) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	close(s.done)
	s.wg.Wait()
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.mErr.ErrorOrNil()
}
