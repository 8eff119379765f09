package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Every legal move from the starting position and after 1.e4 must
// round-trip through the dense move index: MoveFromIndex(MoveIndex(m)) == m.
func TestMoveIndexRoundTrip(t *testing.T) {
	positions := []Board{StartingPosition()}

	e4 := Move{From: RankFile(1, 4), To: RankFile(3, 4)}
	positions = append(positions, StartingPosition().Apply(e4))

	for _, b := range positions {
		for _, m := range b.LegalMoves() {
			idx, ok := MoveIndex(m, b.Turn())
			require.Truef(t, ok, "move %s has no dense index", m)
			require.GreaterOrEqualf(t, idx, 0, "move %s", m)
			require.Lessf(t, idx, NumMoveIndices, "move %s", m)

			back, ok := MoveFromIndex(idx, b.Turn())
			require.Truef(t, ok, "index %d did not decode", idx)
			require.Equalf(t, m.From, back.From, "move %s", m)
			require.Equalf(t, m.To, back.To, "move %s", m)

			// A queen promotion shares its plane with a same-direction
			// non-promoting move; decoding always yields NoPiece there,
			// relying on Board.Apply's auto-queen rule at the back rank.
			wantPromotion := m.Promotion
			if wantPromotion == Queen {
				wantPromotion = NoPiece
			}
			require.Equalf(t, wantPromotion, back.Promotion, "move %s", m)
		}
	}
}
