// Command play runs an interactive terminal match between a human and the
// current best network: the engine searches its move, the human is shown
// the board and the list of legal move indices and types the one to play.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	agogo "github.com/azcore/zeroengine"
	dual "github.com/azcore/zeroengine/dualnet"
	"github.com/azcore/zeroengine/game"
	"github.com/azcore/zeroengine/mcts"
	"github.com/azcore/zeroengine/predict"
)

var (
	gameName      = flag.String("game", "connectfour", "game to play: connectfour or chess")
	modelDir      = flag.String("model_dir", "models", "model collection directory")
	numIterations = flag.Int("mcts_iterations", 400, "MCTS simulations per engine move")
	humanFirst    = flag.Bool("human_first", true, "human plays first (moves as player 0)")
)

const (
	connectFourActionSpace = 7
	chessActionSpace       = 4672
)

func newGame(name string) (func() game.State, game.Dims, int) {
	switch name {
	case "chess":
		return func() game.State { return game.NewChess() }, game.ChessDims(), chessActionSpace
	default:
		return func() game.State { return game.NewConnectFour() }, game.ConnectFourDims(), connectFourActionSpace
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	newGameFn, dims, actionSpace := newGame(*gameName)

	nnConf := dual.DefaultConf(dims.Height, dims.Width, actionSpace)
	nnConf.Features = dims.Features
	nnConf.BatchSize = 1

	predConf := predict.Config{
		BatchSize:         1,
		InputSize:         dims.Width * dims.Height * dims.Features,
		NumWorkers:        1,
		MaxPendingBatches: 4,
	}

	models, err := dual.NewModelCollection(*modelDir)
	if err != nil {
		log.Fatalf("play: open model collection: %+v", err)
	}

	engine, err := agogo.NewAgent("engine", nnConf, predConf, nil)
	if err != nil {
		log.Fatalf("play: build engine: %+v", err)
	}
	defer engine.Close()

	if f, err := os.Open(models.CurrentPath()); err == nil {
		restoreErr := engine.NN.Restore(f)
		f.Close()
		if restoreErr != nil {
			log.Fatalf("play: restore engine weights: %+v", restoreErr)
		}
	} else {
		log.Printf("play: no saved model found at %q, playing with a freshly initialized network", models.CurrentPath())
	}

	mctsConf := mcts.DefaultConfig()
	mctsConf.NumIterations = *numIterations

	state := newGameFn()
	tree := mcts.New(state, mctsConf)
	scanner := bufio.NewScanner(os.Stdin)

	humanTurn := 0
	if !*humanFirst {
		humanTurn = 1
	}

	for !state.IsTerminal() {
		fmt.Println(state.String())

		if state.Turn() == humanTurn {
			legal := state.LegalMoves()
			fmt.Printf("legal moves: %v\n> ", legal)
			if !scanner.Scan() {
				return
			}
			move, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil || !contains(legal, move) {
				fmt.Println("invalid move, try again")
				continue
			}
			next := state.Apply(move)
			tree.MakeMove(int32(move), next)
			state = next
			continue
		}

		fmt.Println("engine is thinking...")
		for i := 0; i < mctsConf.NumIterations; i++ {
			pe, needsEval := tree.StartIteration()
			if !needsEval {
				continue
			}
			policy, value, err := engine.Queue.Predict(pe.LeafState.Encode(), pe.LeafState.Fingerprint(), false)
			if err != nil {
				log.Fatalf("play: prediction failed: %+v", err)
			}
			tree.FinishIteration(pe, policy, value)
		}
		move := tree.SelectMove(mctsConf.RandomPlyThreshold)
		next := state.Apply(int(move))
		tree.MakeMove(move, next)
		state = next
		fmt.Printf("engine plays %d\n", move)
	}

	fmt.Println(state.String())
	switch state.TerminalValue() {
	case 0:
		fmt.Println("draw")
	default:
		loser := state.Turn()
		winner := 1 - loser
		fmt.Printf("player %d wins\n", winner)
	}
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
