// Package game defines the game-agnostic state abstraction that mcts,
// predict, train, and selfplay are built against, plus the two concrete
// games implementing it: Connect Four and chess.
package game

// State is a position in some two-player, zero-sum, perfect-information
// game. Implementations are expected to be cheap to clone (selfplay and
// mcts both hold many live copies at once) and must treat a State value
// as immutable once Apply has produced it: Apply returns a new State
// rather than mutating the receiver.
type State interface {
	// Turn returns 0 or 1 identifying the side to move.
	Turn() int

	// LegalMoves returns the dense move indices available to the side to
	// move, in [0, NumMoveIndices()).
	LegalMoves() []int

	// Apply plays a move index, returned by LegalMoves, and returns the
	// resulting state. Applying a move absent from LegalMoves is a
	// programming error and may panic.
	Apply(move int) State

	// IsTerminal reports whether no further moves can be played.
	IsTerminal() bool

	// TerminalValue returns the result from the perspective of the side to
	// move in a terminal state: 0 for a draw, -1 if that side has lost.
	// Calling it on a non-terminal state is a programming error.
	TerminalValue() float32

	// Fingerprint returns a hash identifying the state for caching
	// purposes. Collisions are tolerated by callers.
	Fingerprint() uint64

	// NumMoveIndices returns the size of this game's dense move-index
	// space, fixed for the lifetime of the game.
	NumMoveIndices() int

	// Encode renders the state as a flattened Width*Height*Features
	// tensor, canonically oriented so the side to move always appears to
	// be playing "up the board".
	Encode() []float32

	// Clone returns an independent copy of the state.
	Clone() State

	// Eq reports whether two states are equivalent for search purposes.
	Eq(other State) bool

	String() string
}

// Dims describes the tensor shape a game's Encode produces, needed to size
// the neural network's input layer.
type Dims struct {
	Width, Height, Features int
}
