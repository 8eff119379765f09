package agogo

import (
	dual "github.com/azcore/zeroengine/dualnet"
	"github.com/azcore/zeroengine/predict"
	"github.com/pkg/errors"
)

// Agent is one instantiated network paired with the prediction queue that
// batches every tree searching against it. Self-play workers and arena
// matches alike evaluate leaves by calling Agent.Queue.Predict.
type Agent struct {
	Name  string
	NN    *dual.Dual
	Queue *predict.Queue
}

// NewAgent builds and initializes a network of nnConf's shape and starts
// its prediction queue. cache may be nil to disable prediction caching.
func NewAgent(name string, nnConf dual.Config, predConf predict.Config, cache *predict.Cache) (*Agent, error) {
	nn, err := dual.New(nnConf)
	if err != nil {
		return nil, errors.Wrapf(err, "agogo: build network for agent %q", name)
	}
	if err := nn.Init(); err != nil {
		return nil, errors.Wrapf(err, "agogo: init network for agent %q", name)
	}
	queue, err := predict.NewQueue(nn, cache, predConf)
	if err != nil {
		return nil, errors.Wrapf(err, "agogo: start prediction queue for agent %q", name)
	}
	return &Agent{Name: name, NN: nn, Queue: queue}, nil
}

// Close stops the agent's prediction queue, releasing its worker goroutines.
func (a *Agent) Close() error {
	return a.Queue.Close()
}
