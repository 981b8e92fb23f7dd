package game

import (
	"strings"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/notnil/chess"
)

const StartingFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a mutable game state backed by immutable rules-engine snapshots.
// Apply pushes a snapshot and Revert pops it, so every Apply followed by a
// Revert restores the position exactly.
type Position struct {
	history []*chess.Position
	moves   []Move
}

func NewPosition() *Position {
	p, err := PositionFromFen(StartingFen)
	if !IsNil(err) {
		panic(err)
	}
	return p
}

func PositionFromFen(fen string) (*Position, Error) {
	fenOption, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, Errorf("couldn't parse fen %v: %w", fen, err)
	}
	g := chess.NewGame(fenOption)
	return &Position{
		history: []*chess.Position{g.Position()},
		moves:   []Move{},
	}, NilError
}

func (p *Position) current() *chess.Position {
	return p.history[len(p.history)-1]
}

// Snapshot returns an independent copy of the current position with an empty
// move log. It shares no memory with p, so it may be handed to another
// goroutine.
func (p *Position) Snapshot() (*Position, Error) {
	return PositionFromFen(p.Fen())
}

func (p *Position) Fen() string {
	return p.current().String()
}

func (p *Position) BaseFen() string {
	return p.history[0].String()
}

func (p *Position) Player() Player {
	if p.current().Turn() == chess.Black {
		return Black
	}
	return White
}

func (p *Position) Board() BoardArray {
	result := BoardArray{}
	board := p.current().Board()
	for i := 0; i < 64; i++ {
		result[i] = pieceFromChess(board.Piece(chess.Square(i)))
	}
	return result
}

func (p *Position) IsCheckmate() bool {
	return p.current().Status() == chess.Checkmate
}

func (p *Position) IsStalemate() bool {
	return p.current().Status() == chess.Stalemate
}

func (p *Position) IsGameOver() bool {
	status := p.current().Status()
	return status == chess.Checkmate || status == chess.Stalemate
}

// InCheck reports whether the last applied move gave check. A position loaded
// from a fen has no last move and reports false.
func (p *Position) InCheck() bool {
	if len(p.moves) == 0 {
		return false
	}
	return p.moves[len(p.moves)-1].raw.HasTag(chess.Check)
}

func (p *Position) LegalMoves() []Move {
	pos := p.current()
	board := pos.Board()
	valid := pos.ValidMoves()

	result := make([]Move, len(valid))
	for i, m := range valid {
		result[i] = moveFromChess(board, m)
	}
	return result
}

func (p *Position) Apply(move Move) Error {
	legal, err := p.resolveMove(move)
	if !IsNil(err) {
		return err
	}

	p.history = append(p.history, p.current().Update(legal.raw))
	p.moves = append(p.moves, legal)
	return NilError
}

// resolveMove maps a move onto one of the current position's valid moves. A
// move generated by another position is accepted only if the same transition
// is legal here.
func (p *Position) resolveMove(move Move) (Move, Error) {
	if move.raw == nil {
		return p.matchLegalMove(move)
	}

	pos := p.current()
	for _, m := range pos.ValidMoves() {
		if m == move.raw {
			return move, NilError
		}
		if m.S1() == move.raw.S1() && m.S2() == move.raw.S2() && m.Promo() == move.raw.Promo() {
			return moveFromChess(pos.Board(), m), NilError
		}
	}
	return Move{}, Errorf("%v is not legal in %v", move.String(), p.Fen())
}

func (p *Position) Revert() Error {
	if len(p.moves) == 0 {
		return Errorf("no move to revert at %v", p.Fen())
	}
	p.history[len(p.history)-1] = nil
	p.history = p.history[:len(p.history)-1]
	p.moves = p.moves[:len(p.moves)-1]
	return NilError
}

func (p *Position) NumMoves() int {
	return len(p.moves)
}

func (p *Position) MoveLog() []Move {
	return append([]Move{}, p.moves...)
}

func (p *Position) LastMove() Optional[Move] {
	if len(p.moves) == 0 {
		return Empty[Move]()
	}
	return Some(p.moves[len(p.moves)-1])
}

func (p *Position) matchLegalMove(move Move) (Move, Error) {
	if move.Piece.IsEmpty() {
		move.Piece = p.Board()[move.Start]
	}

	candidates := FilterSlice(p.LegalMoves(), func(m Move) bool {
		return m.Equal(move)
	})
	if len(candidates) == 0 {
		return Move{}, Errorf("%v is not legal in %v", move.String(), p.Fen())
	}

	promotion := move.Promotion.ValueOr(Queen)
	for _, m := range candidates {
		if m.Promotion.IsEmpty() || m.Promotion.Value() == promotion {
			return m, NilError
		}
	}
	return Move{}, Errorf("%v has no matching promotion in %v", move.String(), p.Fen())
}

// FindMove maps a player's intended move (uci notation) onto a legal move.
func (p *Position) FindMove(s string) (Move, Error) {
	move, err := MoveFromString(s)
	if !IsNil(err) {
		return Move{}, err
	}
	return p.matchLegalMove(move)
}

func (p *Position) MovesForSelection(selection string) ([]Move, Error) {
	index, err := BoardIndexFromString(selection)
	if !IsNil(err) {
		return nil, Errorf("failed to parse selection %w", err)
	}
	return FilterSlice(p.LegalMoves(), func(m Move) bool {
		return m.Start == index
	}), NilError
}

// Notation returns the standard algebraic notation of a legal move.
func (p *Position) Notation(move Move) string {
	legal, err := p.matchLegalMove(move)
	if !IsNil(err) {
		return move.String()
	}
	return chess.AlgebraicNotation{}.Encode(p.current(), legal.raw)
}

// MoveFromNotation finds the legal move written in standard algebraic
// notation, e.g. "Nf3" or "exd5". Check and annotation suffixes are ignored.
func (p *Position) MoveFromNotation(san string) (Move, Error) {
	strip := func(s string) string {
		return strings.TrimRight(s, "+#!?")
	}

	target := strip(strings.TrimSpace(san))
	for _, m := range p.LegalMoves() {
		if strip(chess.AlgebraicNotation{}.Encode(p.current(), m.raw)) == target {
			return m, NilError
		}
	}
	return Move{}, Errorf("couldn't find %v in %v", san, p.Fen())
}

// Pgn replays the move log from the base position.
func (p *Position) Pgn() (string, Error) {
	fenOption, err := chess.FEN(p.BaseFen())
	if err != nil {
		return "", Wrap(err)
	}

	g := chess.NewGame(fenOption)
	for _, m := range p.moves {
		err = g.Move(m.raw)
		if err != nil {
			return "", Errorf("replaying %v: %w", m.String(), err)
		}
	}
	return g.String(), NilError
}
