package mcts

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"
)

// Status is a node's lifecycle state within the arena.
type Status uint32

const (
	Invalid Status = iota
	Active
	Pruned
)

func (s Status) String() string {
	switch s {
	case Invalid:
		return "Invalid"
	case Active:
		return "Active"
	case Pruned:
		return "Pruned"
	}
	return "UNKNOWN STATUS"
}

// Node is one entry in the search tree's arena: a single action edge, in
// the sense that it stores the move that was taken to reach it and the
// accumulated statistics for having taken it, per the usual AlphaZero
// (s,a) bookkeeping.
type Node struct {
	lock sync.Mutex

	move   int32  // dense move index that leads to this node
	status uint32

	visits      uint32  // N(s,a): completed backups
	totalValue  float32 // sum of backed-up values, this node's perspective
	psa         float32 // P(s,a): prior from the policy head
	hasChildren bool

	virtualVisits uint32  // pending evaluations in flight along this edge
	virtualTotal  float32 // their provisional (negative) contribution

	id   naughty
	tree uintptr
}

func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{Node %v move=%v Q=%v P=%v N=%v status=%v}",
		n.id, n.Move(), n.QSA(), n.PSA(), n.Visits(), Status(n.status))
}

func (n *Node) Move() int32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.move
}

// QSA returns Q(s,a), folding in any virtual losses currently charged
// against this edge so concurrent searchers see it as provisionally worse
// than its settled value until their in-flight evaluations land.
func (n *Node) QSA() float32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	visits := n.visits + n.virtualVisits
	if visits == 0 {
		return 0
	}
	return (n.totalValue + n.virtualTotal) / float32(visits)
}

func (n *Node) PSA() float32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.psa
}

func (n *Node) SetPSA(p float32) {
	n.lock.Lock()
	n.psa = p
	n.lock.Unlock()
}

func (n *Node) Visits() uint32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.visits
}

// effectiveVisits is visits plus any pending virtual visits, used to
// compute the PUCT exploration term so concurrent searchers spread out
// across siblings instead of piling onto the same path.
func (n *Node) effectiveVisits() uint32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.visits + n.virtualVisits
}

// Update records a completed backup of value v (from this node's own
// perspective) and clears one pending virtual loss.
func (n *Node) Update(v float32) {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.virtualVisits > 0 {
		n.virtualVisits--
		n.virtualTotal += 1
	}
	n.visits++
	n.totalValue += v
}

// AddVirtualLoss charges a pending visit with a provisional loss, so later
// iterations started while this one's evaluation is in flight see this edge
// as temporarily worse than its last settled Q.
func (n *Node) AddVirtualLoss() {
	n.lock.Lock()
	n.virtualVisits++
	n.virtualTotal -= 1
	n.lock.Unlock()
}

func (n *Node) Activate() {
	n.lock.Lock()
	n.status = uint32(Active)
	n.lock.Unlock()
}

func (n *Node) Invalidate() {
	n.lock.Lock()
	n.status = uint32(Invalid)
	n.lock.Unlock()
}

func (n *Node) IsValid() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return Status(n.status) != Invalid
}

func (n *Node) IsActive() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return Status(n.status) == Active
}

func (n *Node) HasChildren() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.hasChildren
}

func (n *Node) SetHasChildren(f bool) {
	n.lock.Lock()
	n.hasChildren = f
	n.lock.Unlock()
}

// Select picks the child maximizing the PUCT upper bound:
//
//	U(s,a) = Q(s,a) + cpuct * P(s,a) * sqrt(N(s)) / (1 + N(s,a))
//
// Visit counts include pending virtual losses, so a second iteration
// started while the first's evaluation is in flight is steered toward a
// different child instead of piling onto the same one.
func (n *Node) Select(tree *MCTS) naughty {
	children := tree.Children(n.id)

	var parentVisits uint32
	for _, kid := range children {
		child := tree.nodeFromNaughty(kid)
		if child.IsValid() {
			parentVisits += child.effectiveVisits()
		}
	}
	numerator := math32.Sqrt(float32(parentVisits))

	best := nilNode
	bestValue := math32.Inf(-1)
	for _, kid := range children {
		child := tree.nodeFromNaughty(kid)
		if !child.IsActive() {
			continue
		}
		// child.QSA() is already backed up from this node's own
		// perspective (see backup in search.go), so it is read directly
		// with no further negation.
		q := child.QSA()
		u := tree.Cpuct * child.PSA() * numerator / (1 + float32(child.effectiveVisits()))
		score := q + u
		if score > bestValue {
			bestValue = score
			best = kid
		}
	}
	if best == nilNode {
		panic("mcts: Select found no active child")
	}
	return best
}

func (n *Node) findChild(tree *MCTS, move int32) naughty {
	for _, kid := range tree.Children(n.id) {
		if tree.nodeFromNaughty(kid).Move() == move {
			return kid
		}
	}
	return nilNode
}

func (n *Node) reset() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.move = -1
	n.status = 0
	n.visits = 0
	n.totalValue = 0
	n.psa = 0
	n.hasChildren = false
	n.virtualVisits = 0
	n.virtualTotal = 0
}
