package agogo

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"

	dual "github.com/azcore/zeroengine/dualnet"
	"github.com/azcore/zeroengine/predict"
	"github.com/azcore/zeroengine/selfplay"
	"github.com/azcore/zeroengine/train"
	"github.com/pkg/errors"
)

// AZ is one learn/evaluate/promote cycle runner: it keeps a "best" agent
// and, each iteration, trains a challenger from the best's weights via
// self-play, plays it against best in an arena, and promotes it to the new
// best whenever it clears Config.UpdateThreshold.
type AZ struct {
	conf    Config
	newGame selfplay.NewGame
	models  *dual.ModelCollection
	cache   *predict.Cache
	logger  *log.Logger

	best *Agent
}

// New builds an AZ runner. modelDir is the ModelCollection root; if it
// already holds a "current" checkpoint, the best agent restores from it,
// otherwise a fresh network is initialized and saved as the initial
// checkpoint.
func New(newGame selfplay.NewGame, conf Config, modelDir string, out io.Writer) (*AZ, error) {
	if err := conf.IsValid(); err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}

	models, err := dual.NewModelCollection(modelDir)
	if err != nil {
		return nil, err
	}
	cache := predict.NewCache(conf.CacheSize)

	best, err := NewAgent("best", conf.NN, conf.Predict, cache)
	if err != nil {
		return nil, err
	}

	switch f, err := os.Open(models.CurrentPath()); {
	case err == nil:
		restoreErr := best.NN.Restore(f)
		f.Close()
		if restoreErr != nil {
			return nil, errors.Wrap(restoreErr, "agogo: restore best checkpoint")
		}
	case os.IsNotExist(err):
		var buf bytes.Buffer
		if err := best.NN.Checkpoint(&buf); err != nil {
			return nil, errors.Wrap(err, "agogo: checkpoint fresh network")
		}
		if err := models.SaveCurrent(buf.Bytes()); err != nil {
			return nil, errors.Wrap(err, "agogo: save initial checkpoint")
		}
	default:
		return nil, errors.Wrap(err, "agogo: open current checkpoint")
	}

	return &AZ{
		conf:    conf,
		newGame: newGame,
		models:  models,
		cache:   cache,
		logger:  log.New(out, "agogo: ", log.LstdFlags),
		best:    best,
	}, nil
}

// Learn runs iterations full learn/evaluate/promote cycles.
func (az *AZ) Learn(ctx context.Context, iterations int) error {
	for i := 0; i < iterations; i++ {
		az.logger.Printf("iteration %d/%d: training challenger", i+1, iterations)
		promoted, winRate, err := az.iterate(ctx)
		if err != nil {
			return errors.Wrapf(err, "agogo: iteration %d", i)
		}
		az.logger.Printf("iteration %d/%d: challenger win rate %.3f, promoted=%v", i+1, iterations, winRate, promoted)
	}
	return nil
}

// iterate runs one self-play/train/evaluate/promote cycle and reports
// whether the challenger was promoted.
func (az *AZ) iterate(ctx context.Context) (promoted bool, winRate float64, err error) {
	challenger, err := NewAgent("challenger", az.conf.NN, az.conf.Predict, az.cache)
	if err != nil {
		return false, 0, err
	}
	defer challenger.Close()

	if f, ferr := os.Open(az.models.CurrentPath()); ferr == nil {
		restoreErr := challenger.NN.Restore(f)
		f.Close()
		if restoreErr != nil {
			return false, 0, errors.Wrap(restoreErr, "agogo: restore challenger from best")
		}
	}

	trainConf := az.conf.Train
	trainConf.BoardSize = az.conf.NN.Width * az.conf.NN.Height * az.conf.NN.Features
	trainConf.PolicySize = az.conf.NN.ActionSpace
	shuffler, err := train.NewShuffler(challenger.NN, trainConf)
	if err != nil {
		return false, 0, err
	}

	driver, err := selfplay.NewDriver(az.newGame, challenger.Queue, shuffler, az.conf.selfplayConfig())
	if err != nil {
		shuffler.Close()
		return false, 0, err
	}
	if err := driver.Run(ctx, az.conf.SelfPlayGames); err != nil {
		shuffler.Close()
		return false, 0, errors.Wrap(err, "agogo: self-play failed")
	}
	if err := shuffler.Close(); err != nil {
		return false, 0, errors.Wrap(err, "agogo: training failed")
	}

	az.cache.Advance()

	arena := NewArena(az.newGame, challenger, az.best, az.conf.MCTS, true, io.Discard)
	winRate, err = arena.Evaluate(az.conf.EvalGames)
	if err != nil {
		return false, 0, err
	}

	if winRate < az.conf.UpdateThreshold {
		return false, winRate, nil
	}

	var buf bytes.Buffer
	if err := challenger.NN.Checkpoint(&buf); err != nil {
		return false, winRate, errors.Wrap(err, "agogo: checkpoint challenger")
	}
	if _, err := az.models.Promote(); err != nil {
		return false, winRate, errors.Wrap(err, "agogo: archive previous best")
	}
	if err := az.models.SaveCurrent(buf.Bytes()); err != nil {
		return false, winRate, errors.Wrap(err, "agogo: save promoted checkpoint")
	}

	promotedAgent, err := NewAgent("best", az.conf.NN, az.conf.Predict, az.cache)
	if err != nil {
		return false, winRate, err
	}
	if err := promotedAgent.NN.Restore(bytes.NewReader(buf.Bytes())); err != nil {
		promotedAgent.Close()
		return false, winRate, errors.Wrap(err, "agogo: restore promoted network")
	}

	az.best.Close()
	az.best = promotedAgent
	az.cache.Advance()
	return true, winRate, nil
}

// Best returns the current best agent, the one served for play.
func (az *AZ) Best() *Agent { return az.best }

// Close releases the best agent's prediction queue.
func (az *AZ) Close() error {
	return az.best.Close()
}
