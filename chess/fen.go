package chess

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var pieceFromFEN = map[byte]Piece{
	'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
}

// ParseFEN parses Forsyth-Edwards notation into a Board.
func ParseFEN(fen string) (Board, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return Board{}, errors.Errorf("chess: FEN must have 6 fields, got %d: %q", len(fields), fen)
	}

	var b Board
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Board{}, errors.Errorf("chess: FEN placement must have 8 ranks: %q", fields[0])
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p, ok := pieceFromFEN[toLowerByte(ch)]
			if !ok {
				return Board{}, errors.Errorf("chess: invalid FEN piece %q", string(ch))
			}
			if file > 7 {
				return Board{}, errors.Errorf("chess: FEN rank %d overflows 8 files", rank)
			}
			c := White
			if ch >= 'a' && ch <= 'z' {
				c = Black
			}
			b.setPiece(c, p, RankFile(rank, file))
			file++
		}
		if file != 8 {
			return Board{}, errors.Errorf("chess: FEN rank %d has %d files, want 8", rank, file)
		}
	}

	switch fields[1] {
	case "w":
		b.turn = White
	case "b":
		b.turn = Black
	default:
		return Board{}, errors.Errorf("chess: invalid FEN side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				b.castle |= WhiteKingside
			case 'Q':
				b.castle |= WhiteQueenside
			case 'k':
				b.castle |= BlackKingside
			case 'q':
				b.castle |= BlackQueenside
			default:
				return Board{}, errors.Errorf("chess: invalid FEN castling rights %q", fields[2])
			}
		}
	}

	epSq, err := SquareFromString(fields[3])
	if err != nil {
		return Board{}, errors.Wrap(err, "chess: invalid FEN en-passant target")
	}
	b.epSq = epSq

	halfmove, err := strconv.Atoi(fields[4])
	if err != nil {
		return Board{}, errors.Wrap(err, "chess: invalid FEN halfmove clock")
	}
	b.halfmove = halfmove

	fullmove, err := strconv.Atoi(fields[5])
	if err != nil {
		return Board{}, errors.Wrap(err, "chess: invalid FEN fullmove number")
	}
	b.fullmove = fullmove

	return b, nil
}

func toLowerByte(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

// FEN renders b in Forsyth-Edwards notation.
func (b Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			c, p, ok := b.PieceAt(RankFile(rank, file))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sym := p.String()
			if c == Black {
				sym = strings.ToLower(sym)
			}
			sb.WriteString(sym)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.turn.String())
	sb.WriteByte(' ')
	sb.WriteString(b.castle.String())
	sb.WriteByte(' ')
	sb.WriteString(b.epSq.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmove))
	return sb.String()
}

// String renders an ASCII board diagram, rank 8 at the top.
func (b Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			c, p, ok := b.PieceAt(RankFile(rank, file))
			if !ok {
				sb.WriteByte('.')
				continue
			}
			sym := p.String()
			if c == Black {
				sym = strings.ToLower(sym)
			}
			sb.WriteString(sym)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
