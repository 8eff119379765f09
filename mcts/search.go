package mcts

import "github.com/azcore/zeroengine/game"

// PendingEval is a leaf awaiting a neural network verdict. The caller
// (selfplay, typically funnelling many trees through one predict.Queue)
// encodes LeafState.Encode(), submits it for batched inference, and feeds
// the policy/value result back through FinishIteration.
type PendingEval struct {
	path      []naughty
	leaf      naughty
	LeafState game.State
}

// StartIteration descends from the root by repeated PUCT selection,
// charging a virtual loss on every edge it takes so concurrently running
// iterations spread across different branches, until it reaches a
// childless node. If that node's state is terminal, the true result is
// known immediately and is backed up on the spot with no network call;
// StartIteration returns (nil, false) and the caller should simply call it
// again for the next iteration. Otherwise it returns a PendingEval the
// caller must eventually pass to FinishIteration.
func (t *MCTS) StartIteration() (*PendingEval, bool) {
	cur := t.state.Clone()
	node := t.root
	var path []naughty

	for t.nodeFromNaughty(node).HasChildren() {
		n := t.nodeFromNaughty(node)
		child := n.Select(t)
		t.nodeFromNaughty(child).AddVirtualLoss()
		cur = cur.Apply(int(t.nodeFromNaughty(child).Move()))
		path = append(path, child)
		node = child
	}

	if cur.IsTerminal() {
		t.backup(path, cur.TerminalValue())
		return nil, false
	}

	return &PendingEval{path: path, leaf: node, LeafState: cur}, true
}

// uncertaintyDamping scales a network value estimate before it is backed
// up, fixed at 1.0 (no damping). Kept as a named constant, matching
// chess/mcts.cpp's kUncertainty, rather than inlining the multiply.
const uncertaintyDamping float32 = 1.0

// FinishIteration expands pe's leaf with the network's policy (masked to
// the leaf's legal moves) and backs value up the path pe recorded,
// alternating sign at each ply since adjacent plies are opposite
// perspectives. Calling it for the tree's very first iteration (whose leaf
// is the root itself) also primes the root with Dirichlet exploration
// noise.
func (t *MCTS) FinishIteration(pe *PendingEval, policy []float32, value float32) {
	t.expand(pe.leaf, pe.LeafState, policy)
	if pe.leaf == t.root {
		t.addRootNoise()
		return
	}
	t.backup(pe.path, value*uncertaintyDamping)
}

// backup walks path from leaf to root, updating each node from its own
// parent's perspective. value is the leaf state's own-perspective result, so
// the node that represents the move into the leaf (the last entry in path)
// takes -value; perspective alternates back with each step up, matching
// Select's direct (non-negated) read of a child's QSA.
func (t *MCTS) backup(path []naughty, value float32) {
	v := -value
	for i := len(path) - 1; i >= 0; i-- {
		t.nodeFromNaughty(path[i]).Update(v)
		v = -v
	}
}
