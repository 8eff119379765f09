// Command selfplaytrain runs the full learn/evaluate/promote loop: each
// iteration has a challenger network (restored from best) self-play a batch
// of games while it trains on the resulting samples, and promotes the
// challenger to "current" when its win rate against best is at least
// Config.UpdateThreshold.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	agogo "github.com/azcore/zeroengine"
	dual "github.com/azcore/zeroengine/dualnet"
	"github.com/azcore/zeroengine/game"
	"github.com/azcore/zeroengine/mcts"
	"github.com/azcore/zeroengine/predict"
	"github.com/azcore/zeroengine/train"
)

var (
	gameName        = flag.String("game", "connectfour", "game to train: connectfour or chess")
	modelDir        = flag.String("model_dir", "models", "model collection directory")
	iterations      = flag.Int("iterations", 10, "number of learn/evaluate/promote cycles")
	selfPlayGames   = flag.Int("selfplay_games", 100, "self-play games per iteration")
	evalGames       = flag.Int("eval_games", 40, "arena games per iteration")
	numWorkers      = flag.Int("workers", 4, "self-play worker goroutines")
	numIterations   = flag.Int("mcts_iterations", 200, "MCTS simulations per move")
	updateThreshold = flag.Float64("update_threshold", 0.55, "win rate required to promote the challenger")
)

func newGameFunc(name string) (func() game.State, game.Dims, int) {
	switch name {
	case "chess":
		return func() game.State { return game.NewChess() }, game.ChessDims(), chessActionSpace
	default:
		return func() game.State { return game.NewConnectFour() }, game.ConnectFourDims(), connectFourActionSpace
	}
}

const (
	connectFourActionSpace = 7
	chessActionSpace       = 4672
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	newGame, dims, actionSpace := newGameFunc(*gameName)

	nnConf := dual.DefaultConf(dims.Height, dims.Width, actionSpace)
	nnConf.Features = dims.Features
	nnConf.BatchSize = 32

	mctsConf := mcts.DefaultConfig()
	mctsConf.NumIterations = *numIterations

	conf := agogo.Config{
		Name:            *gameName,
		NN:              nnConf,
		MCTS:            mctsConf,
		UpdateThreshold: *updateThreshold,
		SelfPlayWorkers: *numWorkers,
		SelfPlayGames:   *selfPlayGames,
		EvalGames:       *evalGames,
		CacheSize:       50000,
		Predict: predict.Config{
			BatchSize:         nnConf.BatchSize,
			InputSize:         dims.Width * dims.Height * dims.Features,
			NumWorkers:        *numWorkers,
			MaxPendingBatches: 4,
		},
		Train: train.Config{
			Capacity:       200000,
			ShuffleSize:    2000,
			BatchSize:      nnConf.BatchSize,
			TrainStepPause: 10 * time.Millisecond,
		},
	}

	az, err := agogo.New(newGame, conf, *modelDir, os.Stdout)
	if err != nil {
		log.Fatalf("selfplaytrain: init: %+v", err)
	}
	defer az.Close()

	if err := az.Learn(context.Background(), *iterations); err != nil {
		log.Fatalf("selfplaytrain: learn: %+v", err)
	}
}
