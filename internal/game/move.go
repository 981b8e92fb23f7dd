package game

import (
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/notnil/chess"
)

type Move struct {
	Start     int
	End       int
	Piece     Piece
	Captured  Piece
	Promotion Optional[PieceType]
	EnPassant bool
	Castle    bool

	raw *chess.Move
}

// Equal compares the squares and the moving piece only. Captures, promotions
// and special-move flags are metadata.
func (m Move) Equal(other Move) bool {
	return m.Start == other.Start && m.End == other.End && m.Piece == other.Piece
}

func (m Move) IsCapture() bool {
	return !m.Captured.IsEmpty()
}

func (m Move) String() string {
	result := StringFromBoardIndex(m.Start) + StringFromBoardIndex(m.End)
	if m.Promotion.HasValue() {
		result += m.Promotion.Value().String()
	}
	return result
}

func (m Move) DebugString() string {
	separator := ""
	if m.IsCapture() {
		separator = "x"
	}
	result := m.Piece.String() + StringFromBoardIndex(m.Start) + separator + StringFromBoardIndex(m.End)
	if m.Promotion.HasValue() {
		result += "=" + m.Promotion.Value().String()
	}
	return result
}

// MoveFromString parses long algebraic (uci) notation. Only the squares and
// the promotion are filled in; Position.FindMove resolves the rest.
func MoveFromString(s string) (Move, Error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, Errorf("invalid move %v", s)
	}

	start, err := BoardIndexFromString(s[0:2])
	if !IsNil(err) {
		return Move{}, Errorf("invalid move %v: %w", s, err)
	}
	end, err := BoardIndexFromString(s[2:4])
	if !IsNil(err) {
		return Move{}, Errorf("invalid move %v: %w", s, err)
	}

	move := Move{Start: start, End: end}
	if len(s) == 5 {
		promotion := PieceTypeFromString(s[4:5])
		if promotion == InvalidPiece || promotion == King || promotion == Pawn {
			return Move{}, Errorf("invalid promotion %v", s)
		}
		move.Promotion = Some(promotion)
	}
	return move, NilError
}

var _pieceTypesFromChess = map[chess.PieceType]PieceType{
	chess.King:   King,
	chess.Queen:  Queen,
	chess.Rook:   Rook,
	chess.Bishop: Bishop,
	chess.Knight: Knight,
	chess.Pawn:   Pawn,
}

func pieceTypeFromChess(t chess.PieceType) PieceType {
	if result, ok := _pieceTypesFromChess[t]; ok {
		return result
	}
	return InvalidPiece
}

func pieceFromChess(p chess.Piece) Piece {
	if p == chess.NoPiece {
		return XX
	}
	player := White
	if p.Color() == chess.Black {
		player = Black
	}
	return NewPiece(player, pieceTypeFromChess(p.Type()))
}

func moveFromChess(board *chess.Board, m *chess.Move) Move {
	piece := pieceFromChess(board.Piece(m.S1()))

	move := Move{
		Start:     int(m.S1()),
		End:       int(m.S2()),
		Piece:     piece,
		Captured:  pieceFromChess(board.Piece(m.S2())),
		EnPassant: m.HasTag(chess.EnPassant),
		Castle:    m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle),
		raw:       m,
	}
	if move.EnPassant {
		move.Captured = NewPiece(piece.Player().Other(), Pawn)
	}
	if m.Promo() != chess.NoPieceType {
		move.Promotion = Some(pieceTypeFromChess(m.Promo()))
	}
	return move
}
