package mcts

// naughty is an index into the tree's node arena; effectively a typed,
// relocation-safe substitute for *Node so the arena can grow its backing
// slice without invalidating references held by other goroutines.
type naughty int32

func (n naughty) isValid() bool { return n >= 0 }

const nilNode naughty = -1
