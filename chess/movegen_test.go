package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func hasMove(moves []Move, from, to Square) bool {
	for _, m := range moves {
		if m.From == from && m.To == to {
			return true
		}
	}
	return false
}

func TestCastlingAvailableWhenClear(t *testing.T) {
	b, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	moves := b.LegalMoves()
	require.True(t, hasMove(moves, SquareE1, SquareG1), "white kingside castle")
	require.True(t, hasMove(moves, SquareE1, SquareC1), "white queenside castle")
}

// A rook attacking the square the king must pass through (f1) forbids
// kingside castling even though the king's own square is safe.
func TestCastlingForbiddenThroughAttackedSquare(t *testing.T) {
	b, err := ParseFEN("r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	moves := b.LegalMoves()
	require.False(t, hasMove(moves, SquareE1, SquareG1), "must not castle through an attacked square")
	require.True(t, hasMove(moves, SquareE1, SquareC1), "queenside castle is unaffected")
}

func TestCastlingForbiddenWhenInCheck(t *testing.T) {
	b, err := ParseFEN("r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	require.True(t, b.InCheck())
	moves := b.LegalMoves()
	require.False(t, hasMove(moves, SquareE1, SquareG1))
	require.False(t, hasMove(moves, SquareE1, SquareC1))
}

// An ordinary en-passant capture is legal.
func TestEnPassantCaptureAvailable(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	require.NoError(t, err)
	moves := b.LegalMoves()
	require.True(t, hasMove(moves, RankFile(4, 4), RankFile(5, 3)))
}

// The classic discovered-check en-passant pin: both pawns leaving the
// fourth rank simultaneously would expose the black king to the white
// rook along that rank, so the capture must be excluded even though
// neither pawn is individually pinned.
func TestEnPassantExcludedWhenDiscoveringCheck(t *testing.T) {
	// White just played e2-e4; black's d4 pawn could normally capture en
	// passant to e3, but doing so would remove both the d4 and e4 pawns
	// from the fourth rank at once, exposing the black king on a4 to the
	// white rook on h4 along that same rank.
	b, err := ParseFEN("8/8/8/8/k2pP2R/8/8/4K3 b - e3 0 1")
	require.NoError(t, err)
	moves := b.LegalMoves()
	require.False(t, hasMove(moves, RankFile(3, 3), RankFile(2, 4)), "en-passant must not expose the king to the rook")
}
