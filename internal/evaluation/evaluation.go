package evaluation

import (
	. "github.com/cricklet/negachess/internal/helpers"
)

const (
	// Checkmate is larger than any reachable material balance.
	Checkmate = 100
	Stalemate = 0
)

var _pieceValues = [7]int{
	Rook:         5,
	Knight:       3,
	Bishop:       3,
	King:         0,
	Queen:        9,
	Pawn:         1,
	InvalidPiece: 0,
}

func PieceValue(t PieceType) int {
	return _pieceValues[t]
}

// Evaluate is the material balance of the board, positive when white is ahead.
func Evaluate(board BoardArray) int {
	score := 0
	for _, piece := range board {
		if piece.IsWhite() {
			score += PieceValue(piece.PieceType())
		} else if piece.IsBlack() {
			score -= PieceValue(piece.PieceType())
		}
	}
	return score
}

type Scorable interface {
	IsCheckmate() bool
	IsStalemate() bool
	Player() Player
	Board() BoardArray
}

// EvaluatePosition scores a position from white's perspective. A mated side
// to move scores as a loss for that side, stalemate is neutral, and anything
// else falls back to material.
func EvaluatePosition[P Scorable](p P) int {
	if p.IsCheckmate() {
		if p.Player() == White {
			return -Checkmate
		}
		return Checkmate
	}
	if p.IsStalemate() {
		return Stalemate
	}
	return Evaluate(p.Board())
}
