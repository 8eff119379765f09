// Package mcts implements PUCT tree search over a game.State, split into a
// StartIteration/FinishIteration protocol so that leaf evaluations can be
// batched across many concurrent searchers instead of calling the network
// one position at a time.
package mcts

import (
	"math/rand"
	"sync"
	"time"

	"github.com/azcore/zeroengine/game"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// Config controls one MCTS instance's search behavior.
type Config struct {
	Cpuct              float32 // exploration constant in the PUCT formula
	NumIterations      int     // simulations to run per move decision
	BatchSize          int     // leaf evaluations grouped per prediction round-trip
	RandomPlyThreshold int     // below this ply count, sample moves by visit count^(1/T)
	RandomTemperature  float32
	DirichletAlpha     float64 // root prior noise shape parameter
	DirichletWeight    float32 // fraction of root prior replaced by noise
}

// DefaultConfig returns the reference hyperparameters used across both
// supported games; callers tune NumIterations/BatchSize to their hardware.
func DefaultConfig() Config {
	return Config{
		Cpuct:              1.5,
		NumIterations:      800,
		BatchSize:          8,
		RandomPlyThreshold: 30,
		RandomTemperature:  1.0,
		DirichletAlpha:     0.3,
		DirichletWeight:    0.25,
	}
}

func (c Config) IsValid() error {
	if c.Cpuct <= 0 {
		return errors.New("mcts: Cpuct must be positive")
	}
	if c.NumIterations <= 0 {
		return errors.New("mcts: NumIterations must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("mcts: BatchSize must be positive")
	}
	if c.RandomTemperature <= 0 {
		return errors.New("mcts: RandomTemperature must be positive")
	}
	return nil
}

// MCTS is a single search tree rooted at a live game.State. It is not safe
// for concurrent use: one goroutine drives StartIteration/FinishIteration,
// and FinishIteration expands a leaf without checking whether another
// pending iteration has already expanded it.
type MCTS struct {
	sync.RWMutex
	Config
	rand *rand.Rand

	nodes    []Node
	children [][]naughty
	freelist []naughty

	root  naughty
	state game.State
}

// New builds a tree rooted at root. root is cloned; the caller keeps
// ownership of its own copy.
func New(root game.State, conf Config) *MCTS {
	t := &MCTS{
		Config: conf,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		state:  root.Clone(),
	}
	t.root = t.alloc()
	rootNode := t.nodeFromNaughty(t.root)
	rootNode.move = -1
	rootNode.psa = 1
	rootNode.status = uint32(Active)
	return t
}

func (t *MCTS) alloc() naughty {
	t.Lock()
	defer t.Unlock()
	if l := len(t.freelist); l > 0 {
		n := t.freelist[l-1]
		t.freelist = t.freelist[:l-1]
		return n
	}
	n := Node{id: naughty(len(t.nodes))}
	t.nodes = append(t.nodes, n)
	t.children = append(t.children, nil)
	return naughty(len(t.nodes) - 1)
}

func (t *MCTS) free(n naughty) {
	t.Lock()
	t.children[n] = t.children[n][:0]
	t.freelist = append(t.freelist, n)
	t.Unlock()
	t.nodes[n].reset()
}

func (t *MCTS) nodeFromNaughty(n naughty) *Node {
	t.RLock()
	defer t.RUnlock()
	return &t.nodes[n]
}

func (t *MCTS) Children(of naughty) []naughty {
	t.RLock()
	defer t.RUnlock()
	return t.children[of]
}

func (t *MCTS) addChild(parent, child naughty) {
	t.Lock()
	t.children[parent] = append(t.children[parent], child)
	t.Unlock()
}

// Nodes reports the number of allocated arena slots, including freed ones
// still pending reuse.
func (t *MCTS) Nodes() int { return len(t.nodes) }

// expand turns a childless leaf into an internal node: one child per legal
// move, primed with the policy head's probability for that move
// (renormalized over the legal subset, since the raw policy spans the
// whole dense move space).
func (t *MCTS) expand(leaf naughty, st game.State, policy []float32) {
	moves := st.LegalMoves()
	if len(moves) == 0 {
		return
	}
	var sum float32
	for _, m := range moves {
		sum += policy[m]
	}
	if sum <= 0 {
		sum = 1
	}
	for _, m := range moves {
		child := t.alloc()
		cn := t.nodeFromNaughty(child)
		cn.lock.Lock()
		cn.move = int32(m)
		cn.psa = policy[m] / sum
		cn.status = uint32(Active)
		cn.lock.Unlock()
		t.addChild(leaf, child)
	}
	t.nodeFromNaughty(leaf).SetHasChildren(true)
}

// addRootNoise mixes Dirichlet noise into the root's children priors, the
// standard AlphaZero exploration boost. FinishIteration calls it when it
// expands the root itself; a root inherited already expanded through
// MakeMove gets no noise.
func (t *MCTS) addRootNoise() {
	children := t.Children(t.root)
	if len(children) == 0 {
		return
	}
	alpha := make([]float64, len(children))
	for i := range alpha {
		alpha[i] = t.DirichletAlpha
	}
	dir := distmv.NewDirichlet(alpha, distrand.NewSource(uint64(time.Now().UnixNano())))
	noise := dir.Rand(nil)

	for i, kid := range children {
		n := t.nodeFromNaughty(kid)
		n.lock.Lock()
		n.psa = (1-t.DirichletWeight)*n.psa + t.DirichletWeight*float32(noise[i])
		n.lock.Unlock()
	}
}

// GetPrediction returns the root's improved policy (visit-count
// distribution over the full dense move space) and its mean value
// estimate, the pair written into a training sample. The root node itself
// is never backed up (StartIteration's path never includes it), so the
// value estimate is the visit-weighted mean of the children's QSA instead,
// already stored from the root's own perspective.
func (t *MCTS) GetPrediction(numMoveIndices int) ([]float32, float32) {
	pi := make([]float32, numMoveIndices)
	children := t.Children(t.root)
	var total uint32
	for _, kid := range children {
		total += t.nodeFromNaughty(kid).Visits()
	}
	if total == 0 {
		return pi, 0
	}
	var valueSum float32
	for _, kid := range children {
		n := t.nodeFromNaughty(kid)
		visits := n.Visits()
		pi[n.Move()] = float32(visits) / float32(total)
		valueSum += n.QSA() * float32(visits)
	}
	return pi, valueSum / float32(total)
}

// SelectMove samples a move from the root's visit-count distribution,
// using RandomTemperature while ply < RandomPlyThreshold and greedy
// argmax afterwards, matching AlphaZero's anneal-to-greedy schedule.
func (t *MCTS) SelectMove(ply int) int32 {
	children := t.Children(t.root)
	if len(children) == 0 {
		panic("mcts: SelectMove called on a tree with no root children")
	}
	if ply >= t.RandomPlyThreshold {
		best := nilNode
		var bestVisits uint32
		for _, kid := range children {
			n := t.nodeFromNaughty(kid)
			if n.Visits() >= bestVisits {
				bestVisits = n.Visits()
				best = kid
			}
		}
		return t.nodeFromNaughty(best).Move()
	}

	weights := make([]float32, len(children))
	var denom float32
	for i, kid := range children {
		w := math32.Pow(float32(t.nodeFromNaughty(kid).Visits()), 1/t.RandomTemperature)
		weights[i] = w
		denom += w
	}
	r := t.rand.Float32() * denom
	var accum float32
	for i, w := range weights {
		accum += w
		if r <= accum {
			return t.nodeFromNaughty(children[i]).Move()
		}
	}
	return t.nodeFromNaughty(children[len(children)-1]).Move()
}

// MakeMove re-roots the tree at the child reached by playing move, pruning
// every sibling subtree. If the root has no child for move (the root was
// never expanded, e.g. no search ran on this tree before the move), a
// fresh unexpanded root is allocated in its place.
func (t *MCTS) MakeMove(move int32, next game.State) {
	rootNode := t.nodeFromNaughty(t.root)
	child := rootNode.findChild(t, move)

	oldRoot := t.root
	if child == nilNode {
		child = t.alloc()
		cn := t.nodeFromNaughty(child)
		cn.move = move
		cn.status = uint32(Active)
	}

	for _, kid := range t.Children(oldRoot) {
		if kid != child {
			t.invalidateSubtree(kid)
		}
	}
	t.Lock()
	t.children[oldRoot] = nil
	t.Unlock()

	t.root = child
	t.state = next.Clone()
}

func (t *MCTS) invalidateSubtree(n naughty) {
	for _, kid := range t.Children(n) {
		t.invalidateSubtree(kid)
	}
	t.nodeFromNaughty(n).Invalidate()
	t.free(n)
}

// RootState returns the state the tree is currently rooted at.
func (t *MCTS) RootState() game.State { return t.state }
