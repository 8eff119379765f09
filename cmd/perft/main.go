// Command perft counts leaf nodes of the legal move tree from a FEN
// position to a fixed depth, the standard correctness check for a chess
// move generator.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/azcore/zeroengine/chess"
)

var (
	fen    = flag.String("fen", "", "FEN position (default: standard starting position)")
	depth  = flag.Int("depth", 5, "perft depth")
	divide = flag.Bool("divide", false, "print per-move subtree counts at the top ply")
)

func main() {
	flag.Parse()

	b := chess.StartingPosition()
	if *fen != "" {
		var err error
		b, err = chess.ParseFEN(*fen)
		if err != nil {
			log.Fatalf("perft: parse FEN: %+v", err)
		}
	}

	if *divide {
		counts := chess.PerftDivide(b, *depth)
		moves := make([]string, 0, len(counts))
		for m := range counts {
			moves = append(moves, m)
		}
		sort.Strings(moves)
		var total uint64
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, counts[m])
			total += counts[m]
		}
		fmt.Printf("total: %d\n", total)
		return
	}

	fmt.Println(chess.Perft(b, *depth))
}
