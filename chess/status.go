package chess

// InCheck reports whether the side to move is in check.
func (b Board) InCheck() bool {
	checkers, _ := pinsAndCheckers(b, b.King(b.turn), b.turn)
	return checkers != 0
}

// IsCheckmate reports whether the side to move has no legal moves while in
// check.
func (b Board) IsCheckmate() bool {
	return b.InCheck() && len(b.LegalMoves()) == 0
}

// IsStalemate reports whether the side to move has no legal moves and is
// not in check.
func (b Board) IsStalemate() bool {
	return !b.InCheck() && len(b.LegalMoves()) == 0
}

// IsFiftyMoveDraw reports whether the fifty-move rule allows a draw claim.
func (b Board) IsFiftyMoveDraw() bool {
	return b.halfmove >= 100
}

// IsInsufficientMaterial reports whether neither side has enough material
// to deliver checkmate (king vs king, king+minor vs king).
func (b Board) IsInsufficientMaterial() bool {
	minorsOnly := func(c Color) (knights, bishops, rest int) {
		knights = b.Bitboard(c, Knight).Popcnt()
		bishops = b.Bitboard(c, Bishop).Popcnt()
		rest = b.Bitboard(c, Pawn).Popcnt() + b.Bitboard(c, Rook).Popcnt() + b.Bitboard(c, Queen).Popcnt()
		return
	}
	wn, wb, wr := minorsOnly(White)
	bn, bb, br := minorsOnly(Black)
	if wr != 0 || br != 0 {
		return false
	}
	whiteMinors := wn + wb
	blackMinors := bn + bb
	if whiteMinors == 0 && blackMinors == 0 {
		return true
	}
	if whiteMinors == 1 && blackMinors == 0 || whiteMinors == 0 && blackMinors == 1 {
		return true
	}
	return false
}

// IsTerminal reports whether the game has ended: checkmate, stalemate,
// the fifty-move rule, or insufficient material.
func (b Board) IsTerminal() bool {
	if len(b.LegalMoves()) == 0 {
		return true
	}
	return b.IsFiftyMoveDraw() || b.IsInsufficientMaterial()
}
