// Package agogo wires the engine's independent packages (game, mcts,
// predict, train, selfplay, dualnet) into the top-level learn/evaluate/
// promote loop: self-play produces samples, a shuffler trains on them, and
// an arena decides whether the freshly trained network is strong enough to
// replace the best known one.
package agogo

import (
	dual "github.com/azcore/zeroengine/dualnet"
	"github.com/azcore/zeroengine/mcts"
	"github.com/azcore/zeroengine/predict"
	"github.com/azcore/zeroengine/selfplay"
	"github.com/azcore/zeroengine/train"
	"github.com/pkg/errors"
)

// Config bundles every sub-package's configuration plus the promotion gate
// that governs a full learn/evaluate/promote cycle.
type Config struct {
	Name string

	NN      dual.Config
	MCTS    mcts.Config
	Predict predict.Config
	Train   train.Config

	SelfPlayWorkers int
	SelfPlayGames   int
	EvalGames       int

	// UpdateThreshold is the win rate the freshly trained network must
	// reach against the current best before it is promoted.
	UpdateThreshold float64

	CacheSize int
}

func (c Config) IsValid() error {
	if c.Name == "" {
		return errors.New("agogo: Name must not be empty")
	}
	if !c.NN.IsValid() {
		return errors.New("agogo: invalid NN config")
	}
	if err := c.MCTS.IsValid(); err != nil {
		return errors.Wrap(err, "agogo: invalid MCTS config")
	}
	if err := c.Predict.IsValid(); err != nil {
		return errors.Wrap(err, "agogo: invalid Predict config")
	}
	if err := c.Train.IsValid(); err != nil {
		return errors.Wrap(err, "agogo: invalid Train config")
	}
	if c.SelfPlayWorkers <= 0 {
		return errors.New("agogo: SelfPlayWorkers must be positive")
	}
	if c.SelfPlayGames <= 0 {
		return errors.New("agogo: SelfPlayGames must be positive")
	}
	if c.EvalGames <= 0 {
		return errors.New("agogo: EvalGames must be positive")
	}
	if c.UpdateThreshold <= 0 || c.UpdateThreshold > 1 {
		return errors.New("agogo: UpdateThreshold must be in (0, 1]")
	}
	return nil
}

func (c Config) selfplayConfig() selfplay.Config {
	return selfplay.Config{NumWorkers: c.SelfPlayWorkers, MCTS: c.MCTS, UseCache: true}
}
