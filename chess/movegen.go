package chess

// LegalMoves returns every legal move available to the side to move. Move
// generation proceeds in three passes: find checkers and pins against the
// king, derive the capture/push masks a non-king move must land in to
// resolve any check, then emit per-piece moves filtered by those masks and
// by each piece's own pin line.
func (b Board) LegalMoves() []Move {
	us := b.turn
	them := us.Opposite()
	kingSq := b.King(us)

	checkers, pinLines := pinsAndCheckers(b, kingSq, us)
	danger := kingDangerSquares(b, them)

	moves := make([]Move, 0, 32)
	moves = appendKingMoves(b, moves, kingSq, us, danger, checkers)

	switch checkers.Popcnt() {
	case 0:
		moves = appendCastles(b, moves, us, danger)
		moves = appendPieceMoves(b, moves, us, BbAll, BbAll, pinLines, kingSq)
	case 1:
		checkerSq := checkers.AsSquare()
		captureMask := checkers
		pushMask := BbEmpty
		if _, p, _ := b.PieceAt(checkerSq); p == Rook || p == Bishop || p == Queen {
			pushMask = RayBetween(kingSq, checkerSq)
		}
		moves = appendPieceMoves(b, moves, us, captureMask, pushMask, pinLines, kingSq)
	default:
		// Double check: only the king can move.
	}
	return moves
}

// pawnAttacks returns the squares a pawn of c standing on sq attacks. Used
// both for real pawn move generation and, applied to the king's own square
// with the opposite color, to find checking pawns.
func pawnAttacks(c Color, sq Square) Bitboard {
	r, f := sq.Rank(), sq.File()
	dir := 1
	if c == Black {
		dir = -1
	}
	var bb Bitboard
	if onBoard(r+dir, f-1) {
		bb |= RankFile(r+dir, f-1).Bitboard()
	}
	if onBoard(r+dir, f+1) {
		bb |= RankFile(r+dir, f+1).Bitboard()
	}
	return bb
}

// pinsAndCheckers finds every piece of `them` giving check to the king on
// kingSq, and every `us` piece pinned against that king (soft pins: a ray
// from the king through exactly one same-colored piece to an enemy slider
// of the matching line). Returned pinLines maps a pinned piece's square to
// the bitboard of squares it may still move to without exposing the king.
func pinsAndCheckers(b Board, kingSq Square, us Color) (checkers Bitboard, pinLines map[Square]Bitboard) {
	them := us.Opposite()
	occ := b.Occ()
	pinLines = make(map[Square]Bitboard)

	checkers |= KnightAttacks(kingSq) & b.Bitboard(them, Knight)
	checkers |= pawnAttacks(us, kingSq) & b.Bitboard(them, Pawn)

	lines := []struct {
		deltas [4][2]int
		pieces [2]Piece
	}{
		{rookDeltas, [2]Piece{Rook, Queen}},
		{bishopDeltas, [2]Piece{Bishop, Queen}},
	}
	for _, line := range lines {
		for _, d := range line.deltas {
			r, f := kingSq.Rank(), kingSq.File()
			blocker := NoSquare
			for {
				r, f = r+d[0], f+d[1]
				if !onBoard(r, f) {
					break
				}
				sq := RankFile(r, f)
				if occ&sq.Bitboard() == 0 {
					continue
				}
				c, p, _ := b.PieceAt(sq)
				if blocker == NoSquare {
					if c == us {
						blocker = sq
						continue
					}
					if c == them && (p == line.pieces[0] || p == line.pieces[1]) {
						checkers |= sq.Bitboard()
					}
					break
				}
				if c == them && (p == line.pieces[0] || p == line.pieces[1]) {
					pinLines[blocker] = RayBetween(kingSq, sq) | sq.Bitboard()
				}
				break
			}
		}
	}
	return checkers, pinLines
}

// kingDangerSquares returns every square attacked by color attacker, with
// the defending king removed from the blocking occupancy so that sliding
// attacks are correctly seen to continue past the square the king would
// otherwise vacate into.
func kingDangerSquares(b Board, attacker Color) Bitboard {
	defender := attacker.Opposite()
	occWithoutKing := b.Occ() &^ b.Bitboard(defender, King)

	var danger Bitboard
	pawns := b.Bitboard(attacker, Pawn)
	for pawns != 0 {
		danger |= pawnAttacks(attacker, pawns.Pop())
	}
	knights := b.Bitboard(attacker, Knight)
	for knights != 0 {
		danger |= KnightAttacks(knights.Pop())
	}
	bishops := b.Bitboard(attacker, Bishop) | b.Bitboard(attacker, Queen)
	for bishops != 0 {
		danger |= BishopAttacks(bishops.Pop(), occWithoutKing)
	}
	rooks := b.Bitboard(attacker, Rook) | b.Bitboard(attacker, Queen)
	for rooks != 0 {
		danger |= RookAttacks(rooks.Pop(), occWithoutKing)
	}
	danger |= KingAttacks(b.King(attacker))
	return danger
}

func appendKingMoves(b Board, moves []Move, kingSq Square, us Color, danger, checkers Bitboard) []Move {
	targets := KingAttacks(kingSq) &^ b.OccOf(us) &^ danger
	for targets != 0 {
		moves = append(moves, Move{From: kingSq, To: targets.Pop()})
	}
	return moves
}

// appendCastles appends legal castling moves. Only called when the king is
// not currently in check.
func appendCastles(b Board, moves []Move, us Color, danger Bitboard) []Move {
	occ := b.Occ()
	type spec struct {
		right    Castle
		kingTo   Square
		empty    Bitboard
		unsafe   Bitboard
		kingFrom Square
	}
	var specs []spec
	if us == White {
		specs = []spec{
			{WhiteKingside, SquareG1, SquareF1.Bitboard() | SquareG1.Bitboard(), SquareF1.Bitboard() | SquareG1.Bitboard(), SquareE1},
			{WhiteQueenside, SquareC1, SquareB1.Bitboard() | SquareC1.Bitboard() | SquareD1.Bitboard(), SquareC1.Bitboard() | SquareD1.Bitboard(), SquareE1},
		}
	} else {
		specs = []spec{
			{BlackKingside, SquareG8, SquareF8.Bitboard() | SquareG8.Bitboard(), SquareF8.Bitboard() | SquareG8.Bitboard(), SquareE8},
			{BlackQueenside, SquareC8, SquareB8.Bitboard() | SquareC8.Bitboard() | SquareD8.Bitboard(), SquareC8.Bitboard() | SquareD8.Bitboard(), SquareE8},
		}
	}
	for _, s := range specs {
		if b.castle&s.right == 0 {
			continue
		}
		if occ&s.empty != 0 {
			continue
		}
		// The b1/b8 square may be occupied-free-but-attacked; only the
		// king's transit squares must be unattacked.
		if danger&s.unsafe != 0 {
			continue
		}
		moves = append(moves, Move{From: s.kingFrom, To: s.kingTo})
	}
	return moves
}

// appendPieceMoves emits every non-king move for us whose destination lies
// in captureMask (landing on a checker) or pushMask (blocking a check),
// restricted further for pinned pieces to their own pin line.
func appendPieceMoves(b Board, moves []Move, us Color, captureMask, pushMask Bitboard, pinLines map[Square]Bitboard, kingSq Square) []Move {
	allowed := func(from Square) Bitboard {
		mask := captureMask | pushMask
		if line, ok := pinLines[from]; ok {
			mask &= line
		}
		return mask
	}

	occ := b.Occ()
	usOcc := b.OccOf(us)
	them := us.Opposite()
	themOcc := b.OccOf(them)

	knights := b.Bitboard(us, Knight)
	for knights != 0 {
		from := knights.Pop()
		targets := KnightAttacks(from) &^ usOcc & allowed(from)
		for targets != 0 {
			moves = append(moves, Move{From: from, To: targets.Pop()})
		}
	}
	bishops := b.Bitboard(us, Bishop)
	for bishops != 0 {
		from := bishops.Pop()
		targets := BishopAttacks(from, occ) &^ usOcc & allowed(from)
		for targets != 0 {
			moves = append(moves, Move{From: from, To: targets.Pop()})
		}
	}
	rooks := b.Bitboard(us, Rook)
	for rooks != 0 {
		from := rooks.Pop()
		targets := RookAttacks(from, occ) &^ usOcc & allowed(from)
		for targets != 0 {
			moves = append(moves, Move{From: from, To: targets.Pop()})
		}
	}
	queens := b.Bitboard(us, Queen)
	for queens != 0 {
		from := queens.Pop()
		targets := QueenAttacks(from, occ) &^ usOcc & allowed(from)
		for targets != 0 {
			moves = append(moves, Move{From: from, To: targets.Pop()})
		}
	}

	moves = appendPawnMoves(b, moves, us, occ, themOcc, captureMask, pushMask, pinLines, kingSq)
	return moves
}

func appendPawnMoves(b Board, moves []Move, us Color, occ, themOcc, captureMask, pushMask Bitboard, pinLines map[Square]Bitboard, kingSq Square) []Move {
	dir, startRank, promoRank := 1, 1, 7
	if us == Black {
		dir, startRank, promoRank = -1, 6, 0
	}

	emitTo := func(moves []Move, from, to Square) []Move {
		if to.Rank() == promoRank {
			for _, p := range [4]Piece{Queen, Rook, Bishop, Knight} {
				moves = append(moves, Move{From: from, To: to, Promotion: p})
			}
			return moves
		}
		return append(moves, Move{From: from, To: to})
	}

	allowed := func(from Square) Bitboard {
		mask := captureMask | pushMask
		if line, ok := pinLines[from]; ok {
			mask &= line
		}
		return mask
	}

	pawns := b.Bitboard(us, Pawn)
	for pawns != 0 {
		from := pawns.Pop()
		r, f := from.Rank(), from.File()
		mask := allowed(from)

		if onBoard(r+dir, f) {
			one := RankFile(r+dir, f)
			if occ&one.Bitboard() == 0 {
				if pushMask&one.Bitboard() != 0 && (mask&one.Bitboard() != 0) {
					moves = emitTo(moves, from, one)
				}
				if r == startRank {
					two := RankFile(r+2*dir, f)
					if occ&two.Bitboard() == 0 && mask&two.Bitboard() != 0 {
						moves = append(moves, Move{From: from, To: two})
					}
				}
			}
		}
		for _, df := range [2]int{-1, 1} {
			if !onBoard(r+dir, f+df) {
				continue
			}
			to := RankFile(r+dir, f+df)
			if themOcc&to.Bitboard() != 0 && mask&to.Bitboard() != 0 {
				moves = emitTo(moves, from, to)
			}
		}

		if b.epSq != NoSquare && (onBoard(r+dir, f-1) || onBoard(r+dir, f+1)) {
			if b.epSq.Rank() == r+dir && (b.epSq.File() == f-1 || b.epSq.File() == f+1) {
				if (captureMask|pushMask)&enPassantRelevantMask(b, from, b.epSq) != 0 {
					if isPinOK(pinLines, from, b.epSq) && !enPassantExposesCheck(b, us, from, b.epSq, kingSq) {
						moves = append(moves, Move{From: from, To: b.epSq})
					}
				}
			}
		}
	}
	return moves
}

func isPinOK(pinLines map[Square]Bitboard, from, to Square) bool {
	line, ok := pinLines[from]
	return !ok || line&to.Bitboard() != 0
}

// enPassantRelevantMask reports the mask an en-passant capture must satisfy
// to resolve an existing check: capturing the checker itself, or landing on
// the epSq target square which always counts as a capture of the pawn that
// just double-stepped (it may be the checker even though its bitboard entry
// sits on a different square than the target).
func enPassantRelevantMask(b Board, from, epSq Square) Bitboard {
	capturedSq := RankFile(from.Rank(), epSq.File())
	return epSq.Bitboard() | capturedSq.Bitboard()
}

// enPassantExposesCheck handles the classic discovered-check edge case: both
// the moving pawn and the captured pawn leave the same rank simultaneously,
// which can uncover a rook or queen attack along that rank even though
// neither pawn was individually pinned.
func enPassantExposesCheck(b Board, us Color, from, epSq Square, kingSq Square) bool {
	capturedSq := RankFile(from.Rank(), epSq.File())
	occ := b.Occ() &^ from.Bitboard() &^ capturedSq.Bitboard() | epSq.Bitboard()
	them := us.Opposite()
	rank := RankBb(kingSq.Rank())
	attackers := (b.Bitboard(them, Rook) | b.Bitboard(them, Queen)) & rank
	if attackers == 0 {
		return false
	}
	return RookAttacks(kingSq, occ)&attackers != 0
}
