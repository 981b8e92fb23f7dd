package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/stretchr/testify/assert"
)

func newSession(t *testing.T, white PlayerKind, black PlayerKind, fen string) *Session {
	s, err := NewSession(SessionOptions{
		White:  white,
		Black:  black,
		Fen:    fen,
		Search: search.SearcherOptions{Depth: 1, Seed: Some(int64(1))},
	})
	assert.True(t, IsNil(err), err)
	return s
}

func engineMove(t *testing.T, s *Session) game.Move {
	move, err := s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
	assert.True(t, s.Searching())

	s.WaitForSearch()

	move, err = s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.HasValue())
	assert.False(t, s.Searching())
	return move.Value()
}

func TestEngineRepliesToHuman(t *testing.T) {
	s := newSession(t, Human, Engine, "")
	assert.True(t, s.HumanTurn())

	_, err := s.PlayMove("e2e4")
	assert.True(t, IsNil(err), err)
	assert.False(t, s.HumanTurn())

	move := engineMove(t, s)
	assert.True(t, move.Piece.IsBlack())
	assert.Equal(t, 2, s.Position().NumMoves())
	assert.True(t, s.HumanTurn())

	// Nothing to do on a human turn
	tick, err := s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, tick.IsEmpty())
	assert.False(t, s.Searching())
}

func TestHumanMoveOnEngineTurn(t *testing.T) {
	s := newSession(t, Engine, Human, "")
	_, err := s.PlayMove("e2e4")
	assert.False(t, IsNil(err))
	assert.Equal(t, 0, s.Position().NumMoves())
}

func TestIllegalHumanMove(t *testing.T) {
	s := newSession(t, Human, Human, "")
	_, err := s.PlayMove("e2e5")
	assert.False(t, IsNil(err))
	assert.Equal(t, game.StartingFen, s.Position().Fen())
}

func TestEngineFinishesGame(t *testing.T) {
	lines := []string{}
	s, err := NewSession(SessionOptions{
		White:  Engine,
		Black:  Engine,
		Fen:    "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
		Search: search.SearcherOptions{Depth: 2, Seed: Some(int64(1))},
		Logger: FuncLogger(func(s string) { lines = append(lines, strings.TrimSpace(s)) }),
	})
	assert.True(t, IsNil(err), err)

	move := engineMove(t, s)
	assert.Equal(t, "a1a8", move.String())
	assert.True(t, s.IsGameOver())
	assert.Equal(t, "white wins by checkmate", s.Outcome())
	assert.Equal(t, []string{"white plays Ra8#", "white wins by checkmate"}, lines)

	tick, err := s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, tick.IsEmpty())
	assert.False(t, s.Searching())
}

func TestStalemateEndsGame(t *testing.T) {
	s := newSession(t, Human, Human, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.True(t, s.IsGameOver())
	assert.Equal(t, "draw by stalemate", s.Outcome())

	_, err := s.PlayMove("h8h7")
	assert.False(t, IsNil(err))
}

func TestUndoAbandonsSearch(t *testing.T) {
	s := newSession(t, Human, Engine, "")

	_, err := s.PlayMove("e2e4")
	assert.True(t, IsNil(err), err)

	_, err = s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, s.Searching())

	err = s.Undo()
	assert.True(t, IsNil(err), err)
	s.WaitForSearch()

	move, err := s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
	assert.False(t, s.Searching())
	assert.Equal(t, game.StartingFen, s.Position().Fen())
	assert.Equal(t, 0, s.Position().NumMoves())
}

func TestUndoRestartsEngineSearch(t *testing.T) {
	s := newSession(t, Engine, Engine, "")

	engineMove(t, s)
	engineMove(t, s)
	assert.True(t, IsNil(s.Undo()))

	// The stale search is dropped before a new one starts
	move := engineMove(t, s)
	assert.True(t, move.Piece.IsBlack())
	assert.Equal(t, 2, s.Position().NumMoves())
}

func TestUndoWithoutMoves(t *testing.T) {
	s := newSession(t, Human, Human, "")
	assert.False(t, IsNil(s.Undo()))
}

func TestReset(t *testing.T) {
	s := newSession(t, Human, Human, "")
	_, err := s.PlayMove("e2e4")
	assert.True(t, IsNil(err), err)

	assert.True(t, IsNil(s.Reset()))
	assert.Equal(t, game.StartingFen, s.Position().Fen())
	assert.Equal(t, 0, s.Position().NumMoves())
}

func TestClick(t *testing.T) {
	s := newSession(t, Human, Engine, "")

	move, err := s.Click("e2")
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())

	e3, _ := BoardIndexFromString("e3")
	e4, _ := BoardIndexFromString("e4")
	assert.ElementsMatch(t, []int{e3, e4}, s.Highlights())
	assert.Contains(t, stripansi.Strip(s.Board()), "·")

	// Not a legal target, so it becomes the new selection
	_, err = s.Click("e5")
	assert.True(t, IsNil(err), err)
	assert.Empty(t, s.Highlights())
	_, err = s.Click("e5")
	assert.True(t, IsNil(err), err)
	assert.True(t, s.Selection().IsEmpty())

	_, err = s.Click("g1")
	assert.True(t, IsNil(err), err)
	move, err = s.Click("f3")
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "g1f3", move.Value().String())
	assert.True(t, s.Selection().IsEmpty())

	_, err = s.Click("e7")
	assert.False(t, IsNil(err))
}

func TestMovesForSelection(t *testing.T) {
	s := newSession(t, Human, Human, "")
	moves, err := s.MovesForSelection("b1")
	assert.True(t, IsNil(err), err)
	assert.ElementsMatch(t, []string{"b1a3", "b1c3"}, MapSlice(moves, game.Move.String))
}

func TestPgn(t *testing.T) {
	s := newSession(t, Human, Human, "")
	for _, m := range []string{"e2e4", "e7e5", "g1f3"} {
		_, err := s.PlayMove(m)
		assert.True(t, IsNil(err), err)
	}

	pgn, err := s.Pgn()
	assert.True(t, IsNil(err), err)
	assert.Contains(t, pgn, "1. e4 e5 2. Nf3")
}

func TestFallbackWhenEngineFails(t *testing.T) {
	s, err := NewSession(SessionOptions{
		White:      Human,
		Black:      Engine,
		Worker:     SubprocessWorker,
		EnginePath: "/nonexistent/negachess-uci",
		Search:     search.SearcherOptions{Depth: 1, Seed: Some(int64(1))},
	})
	assert.True(t, IsNil(err), err)

	_, err = s.PlayMove("d2d4")
	assert.True(t, IsNil(err), err)

	move := engineMove(t, s)
	assert.True(t, move.Piece.IsBlack())
	assert.True(t, s.HumanTurn())
}

func TestSwitchingPlayersAbandonsSearch(t *testing.T) {
	s := newSession(t, Human, Engine, "")
	_, err := s.PlayMove("e2e4")
	assert.True(t, IsNil(err), err)

	_, err = s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, s.Searching())

	s.SetPlayerKind(Black, Human)
	s.WaitForSearch()
	_, err = s.PlayMove("c7c5")
	assert.True(t, IsNil(err), err)

	s.SetPlayerKind(Black, Engine)
	_, err = s.PlayMove("g1f3")
	assert.True(t, IsNil(err), err)

	// The old search was for a different position and must not be committed
	move, err := s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
	assert.True(t, s.Searching())

	engineMoveAfterStart(t, s)
	assert.Equal(t, 4, s.Position().NumMoves())
}

func engineMoveAfterStart(t *testing.T, s *Session) game.Move {
	s.WaitForSearch()
	move, err := s.Tick()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.HasValue())
	return move.Value()
}

func TestLoad(t *testing.T) {
	s := newSession(t, Human, Human, "")
	fen := "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"

	assert.True(t, IsNil(s.Load(fen)))
	assert.Equal(t, fen, s.Position().Fen())

	_, err := s.PlayMove("a1a2")
	assert.True(t, IsNil(err), err)
	assert.True(t, IsNil(s.Reset()))
	assert.Equal(t, fen, s.Position().Fen())

	assert.False(t, IsNil(s.Load("garbage")))
	assert.Equal(t, fen, s.Position().Fen())
}

func TestFallbackWhenEngineHangs(t *testing.T) {
	enginePath := filepath.Join(t.TempDir(), "hanging-engine")
	assert.True(t, os.WriteFile(enginePath, []byte("#!/bin/sh\nexec sleep 30\n"), 0755) == nil)

	s, err := NewSession(SessionOptions{
		White:         Human,
		Black:         Engine,
		Worker:        SubprocessWorker,
		EnginePath:    enginePath,
		EngineTimeout: 200 * time.Millisecond,
		Search:        search.SearcherOptions{Depth: 1, Seed: Some(int64(1))},
	})
	assert.True(t, IsNil(err), err)

	_, err = s.PlayMove("e2e4")
	assert.True(t, IsNil(err), err)

	start := time.Now()
	move := engineMove(t, s)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.True(t, move.Piece.IsBlack())
	assert.True(t, s.HumanTurn())
}
