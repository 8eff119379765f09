package mcts

import (
	"testing"

	"github.com/azcore/zeroengine/game"
	"github.com/stretchr/testify/require"
)

func uniformPolicy(n int) []float32 {
	p := make([]float32, n)
	for i := range p {
		p[i] = 1.0 / float32(n)
	}
	return p
}

// Driving a handful of StartIteration/FinishIteration rounds with a uniform
// policy and a constant value should leave the root's children with visits
// (every evaluated iteration but the first, which only expands the root),
// and the improved policy returned by GetPrediction should itself sum to 1.
func TestStartFinishIterationAccumulatesVisits(t *testing.T) {
	root := game.NewConnectFour()
	conf := DefaultConfig()
	conf.NumIterations = 50
	tree := New(root, conf)

	completed := 0
	for i := 0; i < conf.NumIterations; i++ {
		pe, needsEval := tree.StartIteration()
		if !needsEval {
			continue
		}
		policy := uniformPolicy(pe.LeafState.NumMoveIndices())
		tree.FinishIteration(pe, policy, 0.1)
		completed++
	}
	require.Greater(t, completed, 0)

	pi, _ := tree.GetPrediction(root.NumMoveIndices())
	var sum float32
	for _, p := range pi {
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-3)
}

// MakeMove must re-root the tree at the chosen child and drop every
// sibling subtree, so the node count doesn't grow unboundedly across a
// full game's worth of moves.
func TestMakeMoveReroots(t *testing.T) {
	root := game.NewConnectFour()
	conf := DefaultConfig()
	conf.NumIterations = 20
	tree := New(root, conf)

	for i := 0; i < conf.NumIterations; i++ {
		pe, needsEval := tree.StartIteration()
		if !needsEval {
			continue
		}
		tree.FinishIteration(pe, uniformPolicy(root.NumMoveIndices()), 0)
	}

	move := tree.SelectMove(0)
	next := root.Apply(int(move))
	tree.MakeMove(move, next)

	require.True(t, tree.RootState().Eq(next))
}

// AddVirtualLoss/Update must balance: after charging a virtual loss and
// then updating with the settled value, QSA reflects exactly that one
// real visit, with no residual virtual contribution.
func TestVirtualLossBalancesWithUpdate(t *testing.T) {
	n := &Node{status: uint32(Active)}
	n.AddVirtualLoss()
	require.Equal(t, uint32(0), n.Visits())
	require.Equal(t, float32(-1), n.QSA())

	n.Update(0.5)
	require.Equal(t, uint32(1), n.Visits())
	require.Equal(t, float32(0.5), n.QSA())
}
