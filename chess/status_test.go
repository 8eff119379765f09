package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoolsMateIsCheckmate(t *testing.T) {
	b := StartingPosition()
	moves := []Move{
		{From: RankFile(1, 5), To: RankFile(2, 5)}, // 1. f3
		{From: RankFile(6, 4), To: RankFile(4, 4)}, // 1... e5
		{From: RankFile(1, 6), To: RankFile(3, 6)}, // 2. g4
		{From: RankFile(7, 3), To: RankFile(3, 7)}, // 2... Qh4#
	}
	for _, m := range moves {
		b = b.Apply(m)
	}
	require.True(t, b.InCheck())
	require.True(t, b.IsCheckmate())
	require.True(t, b.IsTerminal())
}

func TestStalemateHasNoLegalMoves(t *testing.T) {
	// Classic king-and-queen stalemate: black king on a8 has no legal move
	// and is not in check.
	b, err := ParseFEN("k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	require.NoError(t, err)
	require.False(t, b.InCheck())
	require.True(t, b.IsStalemate())
	require.True(t, b.IsTerminal())
}

func TestInsufficientMaterialKingsOnly(t *testing.T) {
	b, err := ParseFEN("8/8/8/4k3/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	require.True(t, b.IsInsufficientMaterial())
}

func TestSufficientMaterialWithRook(t *testing.T) {
	b, err := ParseFEN("8/8/8/4k3/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)
	require.False(t, b.IsInsufficientMaterial())
}

func TestFiftyMoveDrawClaim(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 100 60")
	require.NoError(t, err)
	require.True(t, b.IsFiftyMoveDraw())
	require.True(t, b.IsTerminal())
}
