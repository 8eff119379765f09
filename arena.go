package agogo

import (
	"io"
	"log"

	"github.com/azcore/zeroengine/mcts"
	"github.com/azcore/zeroengine/predict"
	"github.com/azcore/zeroengine/selfplay"
	"github.com/pkg/errors"
)

// Arena plays evaluation matches between two agents: a challenger
// (current) and the reigning best. It never trains either network; its
// only job is to produce a win rate for the promotion gate.
type Arena struct {
	newGame  selfplay.NewGame
	mctsConf mcts.Config
	useCache bool
	logger   *log.Logger

	current, best *Agent

	wins, losses, draws int
}

// NewArena builds an arena that plays newGame() from the start position,
// searching mctsConf.NumIterations per ply for both sides. Log output, if
// any, is written to out.
func NewArena(newGame selfplay.NewGame, current, best *Agent, mctsConf mcts.Config, useCache bool, out io.Writer) *Arena {
	if out == nil {
		out = io.Discard
	}
	return &Arena{
		newGame:  newGame,
		mctsConf: mctsConf,
		useCache: useCache,
		logger:   log.New(out, "arena: ", log.LstdFlags),
		current:  current,
		best:     best,
	}
}

// Wins, Losses and Draws report the challenger's running tally across every
// game played by Evaluate so far.
func (ar *Arena) Wins() int   { return ar.wins }
func (ar *Arena) Losses() int { return ar.losses }
func (ar *Arena) Draws() int  { return ar.draws }

// WinRate is the challenger's score rate, counting a draw as half a win.
// It is 0 before any games have been played.
func (ar *Arena) WinRate() float64 {
	total := ar.wins + ar.losses + ar.draws
	if total == 0 {
		return 0
	}
	return (float64(ar.wins) + 0.5*float64(ar.draws)) / float64(total)
}

// Evaluate plays numGames games, alternating which agent moves first, and
// returns the challenger's final win rate.
func (ar *Arena) Evaluate(numGames int) (float64, error) {
	for g := 0; g < numGames; g++ {
		currentIsFirst := g%2 == 0
		outcome, err := ar.playOne(currentIsFirst)
		if err != nil {
			return 0, errors.Wrapf(err, "arena: game %d", g)
		}
		switch {
		case outcome > 0:
			ar.wins++
		case outcome < 0:
			ar.losses++
		default:
			ar.draws++
		}
		ar.logger.Printf("game %d/%d done (current first: %v), running record %d-%d-%d",
			g+1, numGames, currentIsFirst, ar.wins, ar.losses, ar.draws)
	}
	return ar.WinRate(), nil
}

// playOne plays a single game to completion and returns the result from
// the challenger's perspective: +1 win, -1 loss, 0 draw. Both agents'
// trees follow the whole game, but only the side to move runs simulations
// each ply; the idle tree is re-rooted for free via MakeMove.
func (ar *Arena) playOne(currentIsFirst bool) (float32, error) {
	state := ar.newGame()

	currentTree := mcts.New(state, ar.mctsConf)
	bestTree := mcts.New(state, ar.mctsConf)

	for {
		turnIsCurrent := (state.Turn() == 0) == currentIsFirst

		tree, queue := bestTree, ar.best.Queue
		if turnIsCurrent {
			tree, queue = currentTree, ar.current.Queue
		}

		if err := ar.search(tree, queue); err != nil {
			return 0, err
		}

		move := tree.SelectMove(ar.mctsConf.RandomPlyThreshold) // ply >= threshold: always greedy in evaluation matches
		next := state.Apply(int(move))
		currentTree.MakeMove(move, next)
		bestTree.MakeMove(move, next)
		state = next

		if state.IsTerminal() {
			break
		}
	}

	final := state.TerminalValue()
	if final == 0 {
		return 0, nil
	}
	// final is from the perspective of the side to move in the terminal
	// position, i.e. the side that just lost.
	toMoveIsCurrent := (state.Turn() == 0) == currentIsFirst
	if toMoveIsCurrent {
		return final, nil
	}
	return -final, nil
}

func (ar *Arena) search(tree *mcts.MCTS, queue *predict.Queue) error {
	for i := 0; i < ar.mctsConf.NumIterations; i++ {
		pe, needsEval := tree.StartIteration()
		if !needsEval {
			continue
		}
		policy, value, err := queue.Predict(pe.LeafState.Encode(), pe.LeafState.Fingerprint(), ar.useCache)
		if err != nil {
			return errors.Wrap(err, "arena: prediction failed")
		}
		tree.FinishIteration(pe, policy, value)
	}
	return nil
}
