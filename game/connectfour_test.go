package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectFourMoveOrderIsCenterOut(t *testing.T) {
	c := NewConnectFour()
	require.Equal(t, []int{3, 2, 4, 1, 5, 0, 6}, c.LegalMoves())
}

func TestConnectFourSkipsFullColumns(t *testing.T) {
	var s State = NewConnectFour()
	for i := 0; i < 6; i++ {
		s = s.Apply(0)
	}
	moves := s.LegalMoves()
	for _, m := range moves {
		require.NotEqual(t, 0, m, "column 0 is full and must not be offered")
	}
	require.Len(t, moves, 6)
}

// A vertical four-in-a-row by player 0 must report a terminal loss from the
// perspective of the side to move next (player 1).
func TestConnectFourVerticalWin(t *testing.T) {
	var s State = NewConnectFour()
	// 0(col3) 1(col2) 0(col3) 1(col2) 0(col3) 1(col2) 0(col3) -> four in col3 for player 0
	moves := []int{3, 2, 3, 2, 3, 2, 3}
	for _, m := range moves {
		s = s.Apply(m)
	}
	require.True(t, s.IsTerminal())
	require.Equal(t, float32(-1), s.TerminalValue())
	require.Equal(t, 1, s.Turn())
}

func TestConnectFourEncodeDims(t *testing.T) {
	c := NewConnectFour()
	dims := ConnectFourDims()
	require.Len(t, c.Encode(), dims.Width*dims.Height*dims.Features)
}

func TestConnectFourCloneIndependence(t *testing.T) {
	var s State = NewConnectFour()
	clone := s.Clone()
	s = s.Apply(3)
	require.True(t, s.Eq(s.Clone()))
	require.False(t, s.Eq(clone))
}
