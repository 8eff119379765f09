// Package selfplay drives self-play games to produce MCTS-improved training
// samples, funnelling every tree's leaf evaluations through one shared
// predict.Queue and every finished game's samples into one shared
// train.Shuffler.
package selfplay

import (
	"context"
	"sync"

	"github.com/azcore/zeroengine/game"
	"github.com/azcore/zeroengine/mcts"
	"github.com/azcore/zeroengine/predict"
	"github.com/azcore/zeroengine/train"
	"github.com/pkg/errors"
)

// Config controls one Driver's worker pool and per-move search budget.
type Config struct {
	NumWorkers int
	MCTS       mcts.Config
	UseCache   bool
}

func (c Config) IsValid() error {
	if c.NumWorkers <= 0 {
		return errors.New("selfplay: NumWorkers must be positive")
	}
	if err := c.MCTS.IsValid(); err != nil {
		return err
	}
	return nil
}

// NewGame constructs a fresh starting position for the game being trained.
type NewGame func() game.State

// Driver runs self-play games against a shared prediction queue, pushing
// finished samples to a shared shuffler.
type Driver struct {
	Config
	newGame  NewGame
	queue    *predict.Queue
	shuffler *train.Shuffler

	recordsMu sync.Mutex
	records   []Record
}

// NewDriver builds a driver. shuffler may be nil for pure play/evaluation
// runs that should not feed a trainer.
func NewDriver(newGame NewGame, queue *predict.Queue, shuffler *train.Shuffler, conf Config) (*Driver, error) {
	if err := conf.IsValid(); err != nil {
		return nil, err
	}
	return &Driver{Config: conf, newGame: newGame, queue: queue, shuffler: shuffler}, nil
}

// Run plays numGames self-play games split across Config.NumWorkers
// goroutines, blocking until they all complete or ctx is cancelled.
func (d *Driver) Run(ctx context.Context, numGames int) error {
	var wg sync.WaitGroup
	gameCh := make(chan int, numGames)
	for i := 0; i < numGames; i++ {
		gameCh <- i
	}
	close(gameCh)

	errCh := make(chan error, d.NumWorkers)
	for w := 0; w < d.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range gameCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				rec, err := d.playOneGame(ctx)
				if err != nil {
					errCh <- err
					return
				}
				d.recordsMu.Lock()
				d.records = append(d.records, rec)
				d.recordsMu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// Records returns every game recorded by all Run calls on this Driver so
// far; records are not cleared between Runs.
func (d *Driver) Records() []Record {
	d.recordsMu.Lock()
	defer d.recordsMu.Unlock()
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

type plySample struct {
	board  []float32
	policy []float32
}

func (d *Driver) playOneGame(ctx context.Context) (Record, error) {
	state := d.newGame()
	tree := mcts.New(state, d.MCTS)

	var plies []plySample
	var moves []int32

	for ply := 0; ; ply++ {
		select {
		case <-ctx.Done():
			return Record{}, ctx.Err()
		default:
		}

		for i := 0; i < d.MCTS.NumIterations; i++ {
			pe, needsEval := tree.StartIteration()
			if !needsEval {
				continue
			}
			fp := pe.LeafState.Fingerprint()
			policy, value, err := d.queue.Predict(pe.LeafState.Encode(), fp, d.UseCache)
			if err != nil {
				return Record{}, errors.Wrap(err, "selfplay: prediction failed")
			}
			tree.FinishIteration(pe, policy, value)
		}

		pi, _ := tree.GetPrediction(state.NumMoveIndices())
		plies = append(plies, plySample{board: state.Encode(), policy: pi})

		move := tree.SelectMove(ply)
		next := state.Apply(int(move))
		tree.MakeMove(move, next)
		moves = append(moves, move)
		state = next

		if state.IsTerminal() {
			break
		}
	}

	final := state.TerminalValue()
	n := len(plies)
	for i, p := range plies {
		sign := float32(1)
		if (n-i)%2 == 1 {
			sign = -1
		}
		if d.shuffler != nil {
			d.shuffler.Push(train.Sample{Board: p.board, Policy: p.policy, Value: final * sign})
		}
	}

	return Record{Moves: moves, Result: final}, nil
}
