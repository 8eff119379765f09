// Command evaluate plays an arena match between two saved model
// generations and reports the win rate, independent of the
// selfplaytrain promotion loop. Useful for comparing arbitrary
// checkpoints, e.g. regression-testing an older generation against the
// current one.
package main

import (
	"flag"
	"log"
	"os"

	agogo "github.com/azcore/zeroengine"
	dual "github.com/azcore/zeroengine/dualnet"
	"github.com/azcore/zeroengine/game"
	"github.com/azcore/zeroengine/mcts"
	"github.com/azcore/zeroengine/predict"
)

var (
	gameName      = flag.String("game", "connectfour", "game to evaluate: connectfour or chess")
	modelDir      = flag.String("model_dir", "models", "model collection directory")
	challengerGen = flag.Int("challenger_gen", -1, "generation to challenge with (-1 = current)")
	bestGen       = flag.Int("best_gen", -1, "generation to challenge against (-1 = current)")
	numGames      = flag.Int("games", 40, "arena games to play")
	numIterations = flag.Int("mcts_iterations", 200, "MCTS simulations per move")
)

const (
	connectFourActionSpace = 7
	chessActionSpace       = 4672
)

func newGameFunc(name string) (func() game.State, game.Dims, int) {
	switch name {
	case "chess":
		return func() game.State { return game.NewChess() }, game.ChessDims(), chessActionSpace
	default:
		return func() game.State { return game.NewConnectFour() }, game.ConnectFourDims(), connectFourActionSpace
	}
}

func loadAgent(name, path string, nnConf dual.Config, predConf predict.Config) (*agogo.Agent, error) {
	a, err := agogo.NewAgent(name, nnConf, predConf, nil)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		a.Close()
		return nil, err
	}
	defer f.Close()
	if err := a.NN.Restore(f); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	newGame, dims, actionSpace := newGameFunc(*gameName)

	nnConf := dual.DefaultConf(dims.Height, dims.Width, actionSpace)
	nnConf.Features = dims.Features
	nnConf.BatchSize = 32

	predConf := predict.Config{
		BatchSize:         nnConf.BatchSize,
		InputSize:         dims.Width * dims.Height * dims.Features,
		NumWorkers:        2,
		MaxPendingBatches: 4,
	}

	models, err := dual.NewModelCollection(*modelDir)
	if err != nil {
		log.Fatalf("evaluate: open model collection: %+v", err)
	}

	genPath := func(gen int) string {
		if gen < 0 {
			return models.CurrentPath()
		}
		return models.GenerationPath(gen)
	}

	challenger, err := loadAgent("challenger", genPath(*challengerGen), nnConf, predConf)
	if err != nil {
		log.Fatalf("evaluate: load challenger: %+v", err)
	}
	defer challenger.Close()

	best, err := loadAgent("best", genPath(*bestGen), nnConf, predConf)
	if err != nil {
		log.Fatalf("evaluate: load best: %+v", err)
	}
	defer best.Close()

	mctsConf := mcts.DefaultConfig()
	mctsConf.NumIterations = *numIterations

	arena := agogo.NewArena(newGame, challenger, best, mctsConf, false, os.Stdout)
	winRate, err := arena.Evaluate(*numGames)
	if err != nil {
		log.Fatalf("evaluate: %+v", err)
	}

	log.Printf("challenger record: %d-%d-%d, win rate %.3f", arena.Wins(), arena.Losses(), arena.Draws(), winRate)
}
