package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPerftStartingPosition(t *testing.T) {
	b := StartingPosition()
	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}
	for _, c := range cases {
		got := Perft(b, c.depth)
		require.Equalf(t, c.want, got, "perft depth %d", c.depth)
	}
}

func TestPerftKiwipete(t *testing.T) {
	b, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 48},
		{2, 2039},
	}
	for _, c := range cases {
		got := Perft(b, c.depth)
		require.Equalf(t, c.want, got, "perft depth %d", c.depth)
	}
}
