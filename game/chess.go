package game

import "github.com/azcore/zeroengine/chess"

const (
	chessWidth    = 8
	chessHeight   = 8
	chessFeatures = 12 + 4 + 1 // piece planes, castling rights, en-passant target
)

// Chess wraps the bitboard chess engine to satisfy game.State.
type Chess struct {
	board chess.Board
}

// NewChess returns the standard chess starting position.
func NewChess() *Chess {
	return &Chess{board: chess.StartingPosition()}
}

// ChessFromFEN builds a Chess state from Forsyth-Edwards notation.
func ChessFromFEN(fen string) (*Chess, error) {
	b, err := chess.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Chess{board: b}, nil
}

// Board exposes the underlying bitboard position, for callers (perft,
// debug tools) that need chess-specific operations State doesn't expose.
func (c *Chess) Board() chess.Board { return c.board }

func (c *Chess) Turn() int { return int(c.board.Turn()) }

func (c *Chess) NumMoveIndices() int { return chess.NumMoveIndices }

func (c *Chess) LegalMoves() []int {
	legal := c.board.LegalMoves()
	indices := make([]int, 0, len(legal))
	for _, m := range legal {
		idx, ok := chess.MoveIndex(m, c.board.Turn())
		if !ok {
			panic("game: legal move has no dense index: " + m.String())
		}
		indices = append(indices, idx)
	}
	return indices
}

func (c *Chess) Apply(move int) State {
	m, ok := chess.MoveFromIndex(move, c.board.Turn())
	if !ok {
		panic("game: move index out of range")
	}
	return &Chess{board: c.board.Apply(m)}
}

func (c *Chess) IsTerminal() bool { return c.board.IsTerminal() }

func (c *Chess) TerminalValue() float32 {
	if c.board.InCheck() && len(c.board.LegalMoves()) == 0 {
		return -1
	}
	return 0
}

func (c *Chess) Fingerprint() uint64 { return c.board.Fingerprint() }

func (c *Chess) Clone() State {
	return &Chess{board: c.board}
}

func (c *Chess) Eq(other State) bool {
	o, ok := other.(*Chess)
	if !ok {
		return false
	}
	return c.board.Eq(o.board)
}

func (c *Chess) String() string { return c.board.String() }

// Encode renders a 12-plane piece placement (mine first, by piece type),
// a constant-valued plane per castling right (mine kingside/queenside,
// theirs kingside/queenside), and an en-passant target plane, all spatially
// rotated 180 degrees when Black is to move so the network always sees the
// side to move advancing "up" the board.
func (c *Chess) Encode() []float32 {
	enc := make([]float32, chessHeight*chessWidth*chessFeatures)
	us := c.board.Turn()
	them := us.Opposite()
	flip := us == chess.Black

	canon := func(sq chess.Square) chess.Square {
		if flip {
			return chess.Square(63 - int(sq))
		}
		return sq
	}

	for sq := chess.Square(0); sq < 64; sq++ {
		col, piece, ok := c.board.PieceAt(sq)
		if !ok {
			continue
		}
		plane := int(piece) - 1
		if col == them {
			plane += 6
		}
		csq := canon(sq)
		idx := csq.Rank()*chessWidth*chessFeatures + csq.File()*chessFeatures + plane
		enc[idx] = 1
	}

	setPlane := func(plane int, value float32) {
		for row := 0; row < chessHeight; row++ {
			for col := 0; col < chessWidth; col++ {
				enc[row*chessWidth*chessFeatures+col*chessFeatures+plane] = value
			}
		}
	}
	rights := c.board.Castle()
	mineKingside, mineQueenside, theirKingside, theirQueenside := chess.WhiteKingside, chess.WhiteQueenside, chess.BlackKingside, chess.BlackQueenside
	if us == chess.Black {
		mineKingside, mineQueenside, theirKingside, theirQueenside = chess.BlackKingside, chess.BlackQueenside, chess.WhiteKingside, chess.WhiteQueenside
	}
	if rights&mineKingside != 0 {
		setPlane(12, 1)
	}
	if rights&mineQueenside != 0 {
		setPlane(13, 1)
	}
	if rights&theirKingside != 0 {
		setPlane(14, 1)
	}
	if rights&theirQueenside != 0 {
		setPlane(15, 1)
	}

	if ep := c.board.EnPassant(); ep != chess.NoSquare {
		csq := canon(ep)
		enc[csq.Rank()*chessWidth*chessFeatures+csq.File()*chessFeatures+16] = 1
	}
	return enc
}

// ChessDims describes the tensor shape produced by Chess.Encode.
func ChessDims() Dims { return Dims{Width: chessWidth, Height: chessHeight, Features: chessFeatures} }
