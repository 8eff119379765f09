package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFENRoundTripStartingPosition(t *testing.T) {
	b := StartingPosition()
	fen := b.FEN()
	require.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", fen)

	parsed, err := ParseFEN(fen)
	require.NoError(t, err)
	require.True(t, b.Eq(parsed))
}

func TestFENRoundTripKiwipete(t *testing.T) {
	want := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	b, err := ParseFEN(want)
	require.NoError(t, err)
	require.Equal(t, want, b.FEN())
}

func TestParseFENRejectsMalformedInput(t *testing.T) {
	_, err := ParseFEN("not a fen string")
	require.Error(t, err)

	_, err = ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1")
	require.Error(t, err)
}
