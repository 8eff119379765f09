package train

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeTrainer struct {
	mu    sync.Mutex
	steps int
	fail  bool
}

func (f *fakeTrainer) Train(boards, policyTargets, valueTargets []float32) (float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps++
	if f.fail {
		return 0, errors.New("training step failed")
	}
	return 0.1, nil
}

func (f *fakeTrainer) stepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.steps
}

func TestShufflerPushDropsOldestPastCapacity(t *testing.T) {
	nn := &fakeTrainer{}
	conf := Config{Capacity: 3, ShuffleSize: 3, BatchSize: 1, BoardSize: 1, PolicySize: 1}
	s, err := NewShuffler(nn, conf)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.Push(Sample{Board: []float32{float32(i)}, Policy: []float32{0}, Value: 0})
	}
	require.Equal(t, 3, s.Len())
}

// Training must not start until the buffer holds at least ShuffleSize
// samples, even though samples have already been pushed.
func TestShufflerWaitsForShuffleSize(t *testing.T) {
	nn := &fakeTrainer{}
	conf := Config{Capacity: 10, ShuffleSize: 5, BatchSize: 1, BoardSize: 1, PolicySize: 1}
	s, err := NewShuffler(nn, conf)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.Push(Sample{Board: []float32{0}, Policy: []float32{0}, Value: 0})
	}
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, nn.stepCount())

	for i := 0; i < 2; i++ {
		s.Push(Sample{Board: []float32{0}, Policy: []float32{0}, Value: 0})
	}
	require.Eventually(t, func() bool { return nn.stepCount() > 0 }, time.Second, 5*time.Millisecond)
}

func TestShufflerCloseAggregatesErrors(t *testing.T) {
	nn := &fakeTrainer{fail: true}
	conf := Config{Capacity: 4, ShuffleSize: 1, BatchSize: 1, BoardSize: 1, PolicySize: 1}
	s, err := NewShuffler(nn, conf)
	require.NoError(t, err)

	s.Push(Sample{Board: []float32{0}, Policy: []float32{0}, Value: 0})
	require.Eventually(t, func() bool { return nn.stepCount() > 0 }, time.Second, 5*time.Millisecond)

	require.Error(t, s.Close())
}

func TestConfigIsValidRejectsShuffleSizeAboveCapacity(t *testing.T) {
	conf := Config{Capacity: 2, ShuffleSize: 3, BatchSize: 1, BoardSize: 1, PolicySize: 1}
	require.Error(t, conf.IsValid())
}
