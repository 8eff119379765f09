package chess

// NumMoveIndices is the size of the dense move-index space: one of 73
// planes per origin square (8x8x73), the AlphaZero move encoding. A move is
// mapped to an index by first rotating the board 180 degrees if Black is to
// move, so the encoding is always expressed from the mover's own
// perspective; this keeps the index space, and therefore the policy head
// shape, identical for both sides.
const NumMoveIndices = 64 * 73

const (
	planesQueen   = 56 // 8 directions x 7 distances
	planesKnight  = 8
	planesPromo   = 9 // 3 directions x {knight, bishop, rook}
	planesPerSq   = planesQueen + planesKnight + planesPromo
)

var queenDirs = [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}

var knightDirs = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}

var underpromoPieces = [3]Piece{Knight, Bishop, Rook}

func flipSquare(sq Square) Square {
	if sq == NoSquare {
		return NoSquare
	}
	return Square(63 - int(sq))
}

// canonical rotates a move into the mover's own forward-facing orientation:
// identity for White, 180-degree rotation (flip both rank and file) for
// Black.
func canonical(m Move, turn Color) Move {
	if turn == White {
		return m
	}
	return Move{From: flipSquare(m.From), To: flipSquare(m.To), Promotion: m.Promotion}
}

// MoveIndex maps a legal move, played by turn, to its dense index in
// [0, NumMoveIndices). The mapping is a bijection restricted to the set of
// geometrically valid chess moves; it is stable across runs since it is a
// pure function of square geometry, with no board-dependent component.
func MoveIndex(m Move, turn Color) (int, bool) {
	c := canonical(m, turn)
	df := c.To.File() - c.From.File()
	dr := c.To.Rank() - c.From.Rank()

	plane, ok := planeFor(df, dr, c.Promotion)
	if !ok {
		return 0, false
	}
	return int(c.From)*planesPerSq + plane, true
}

func planeFor(df, dr int, promotion Piece) (int, bool) {
	if promotion != NoPiece && promotion != Queen {
		if dr != 1 {
			return 0, false
		}
		dirIdx := df + 1
		if dirIdx < 0 || dirIdx > 2 {
			return 0, false
		}
		pieceIdx := -1
		for i, p := range underpromoPieces {
			if p == promotion {
				pieceIdx = i
			}
		}
		if pieceIdx < 0 {
			return 0, false
		}
		return planesQueen + planesKnight + dirIdx*3 + pieceIdx, true
	}

	for i, d := range knightDirs {
		if d[0] == df && d[1] == dr {
			return planesQueen + i, true
		}
	}

	adf, adr := sign(df), sign(dr)
	dist := maxAbs(df, dr)
	if dist == 0 || dist > 7 {
		return 0, false
	}
	if !isStraightOrDiagonal(df, dr) {
		return 0, false
	}
	for i, d := range queenDirs {
		if d[0] == adf && d[1] == adr {
			return i*7 + (dist - 1), true
		}
	}
	return 0, false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

func isStraightOrDiagonal(df, dr int) bool {
	if df == 0 || dr == 0 {
		return true
	}
	ad, rd := df, dr
	if ad < 0 {
		ad = -ad
	}
	if rd < 0 {
		rd = -rd
	}
	return ad == rd
}

// MoveFromIndex decodes a dense move index back into a Move for the side
// given by turn. The queen-like and knight planes always produce a
// Promotion of NoPiece (auto-queen semantics apply when the destination
// turns out to be the back rank, matching Board.Apply).
func MoveFromIndex(idx int, turn Color) (Move, bool) {
	if idx < 0 || idx >= NumMoveIndices {
		return Move{}, false
	}
	from := Square(idx / planesPerSq)
	plane := idx % planesPerSq

	var to Square
	var promotion Piece
	switch {
	case plane < planesQueen:
		dirIdx := plane / 7
		dist := plane%7 + 1
		d := queenDirs[dirIdx]
		f := from.File() + d[0]*dist
		r := from.Rank() + d[1]*dist
		if !onBoard(r, f) {
			return Move{}, false
		}
		to = RankFile(r, f)
	case plane < planesQueen+planesKnight:
		d := knightDirs[plane-planesQueen]
		f := from.File() + d[0]
		r := from.Rank() + d[1]
		if !onBoard(r, f) {
			return Move{}, false
		}
		to = RankFile(r, f)
	default:
		promoPlane := plane - planesQueen - planesKnight
		dirIdx := promoPlane / 3
		pieceIdx := promoPlane % 3
		df := dirIdx - 1
		f := from.File() + df
		r := from.Rank() + 1
		if !onBoard(r, f) {
			return Move{}, false
		}
		to = RankFile(r, f)
		promotion = underpromoPieces[pieceIdx]
	}

	m := Move{From: from, To: to, Promotion: promotion}
	return canonical(m, turn), true
}
