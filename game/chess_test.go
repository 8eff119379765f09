package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChessEncodeLength(t *testing.T) {
	c := NewChess()
	dims := ChessDims()
	require.Len(t, c.Encode(), dims.Width*dims.Height*dims.Features)
}

// Castling-rights planes are always written in mine-first order, so from
// the starting position (where both sides hold all rights) the encoding
// is identical regardless of whose turn it nominally is.
func TestChessEncodeStartingPositionHasAllCastlingPlanes(t *testing.T) {
	c := NewChess()
	enc := c.Encode()
	dims := ChessDims()

	for plane := 12; plane <= 15; plane++ {
		var any bool
		for row := 0; row < dims.Height; row++ {
			for col := 0; col < dims.Width; col++ {
				if enc[row*dims.Width*dims.Features+col*dims.Features+plane] == 1 {
					any = true
				}
			}
		}
		require.Truef(t, any, "castling plane %d should be set from the starting position", plane)
	}
}

func TestChessApplyAdvancesTurn(t *testing.T) {
	var s State = NewChess()
	require.Equal(t, 0, s.Turn())
	moves := s.LegalMoves()
	require.NotEmpty(t, moves)
	s = s.Apply(moves[0])
	require.Equal(t, 1, s.Turn())
}

func TestChessCloneIndependence(t *testing.T) {
	var s State = NewChess()
	clone := s.Clone()
	moves := s.LegalMoves()
	s = s.Apply(moves[0])
	require.False(t, s.Eq(clone))
	require.True(t, clone.Eq(NewChess()))
}
