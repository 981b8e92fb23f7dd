package uci

import (
	"strings"
	"testing"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/stretchr/testify/assert"
)

func newRunner(depth int) *UciRunner {
	return NewUciRunner(search.SearcherOptions{Depth: depth, Seed: Some(int64(1))})
}

func handle(t *testing.T, r *UciRunner, input string) []string {
	output, err := r.HandleInput(input)
	assert.True(t, IsNil(err), err)
	return output
}

func TestHandshake(t *testing.T) {
	r := newRunner(1)
	output := handle(t, r, "uci")
	assert.Equal(t, "uciok", output[len(output)-1])
	assert.True(t, strings.HasPrefix(output[0], "id name "))

	assert.Equal(t, []string{"readyok"}, handle(t, r, "isready"))
	assert.Empty(t, handle(t, r, "setoption name Hash value 16"))
}

func TestPosition(t *testing.T) {
	r := newRunner(1)

	handle(t, r, "position startpos moves e2e4 e7e5")
	output := handle(t, r, "fen")
	assert.Len(t, output, 1)
	assert.True(t, strings.HasPrefix(output[0], "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq "), output)

	fen := "2kr3r/p1p2ppp/2n1b3/2bqp3/Pp1p4/1P1P1N1P/2PBBPP1/R2Q1RK1 w - - 24 13"
	handle(t, r, "position fen "+fen)
	assert.Equal(t, []string{fen}, handle(t, r, "fen"))

	handle(t, r, "position fen "+fen+" moves g2g4")
	assert.Equal(t, 1, r.Position().NumMoves())
	assert.Equal(t, Black, r.Position().Player())

	handle(t, r, "ucinewgame")
	assert.Equal(t, []string{game.StartingFen}, handle(t, r, "fen"))
}

func TestCastlingMoves(t *testing.T) {
	r := newRunner(1)
	fen := "rn1qk2r/ppp3pp/3b1n2/3ppb2/8/2NPBNP1/PPP2PBP/R2QK2R b KQkq - 15 8"
	handle(t, r, "position fen "+fen+" moves e8g8 d3d4")

	castle := r.Position().MoveLog()[0]
	assert.True(t, castle.Castle)

	output := handle(t, r, "go depth 1")
	assert.True(t, strings.HasPrefix(output[len(output)-1], "bestmove "))
}

func TestInvalidPosition(t *testing.T) {
	r := newRunner(1)

	_, err := r.HandleInput("position nonsense")
	assert.False(t, IsNil(err))

	_, err = r.HandleInput("position startpos moves e2e5")
	assert.False(t, IsNil(err))

	// A failed setup leaves the previous position alone
	assert.Equal(t, []string{game.StartingFen}, handle(t, r, "fen"))
}

func TestGoFindsMate(t *testing.T) {
	r := newRunner(1)
	handle(t, r, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")

	output := handle(t, r, "go depth 2")
	assert.Equal(t, []string{
		output[0],
		"bestmove a1a8",
	}, output)
	assert.True(t, strings.HasPrefix(output[0], "info depth 2 score cp 10000 nodes "))
}

func TestGoWithoutLegalMoves(t *testing.T) {
	r := newRunner(2)
	handle(t, r, "position fen rnbqkbnr/ppppp2p/5p2/6pQ/4P3/8/PPPP1PPP/RNB1KBNR b KQkq - 1 3")

	output := handle(t, r, "go")
	assert.Equal(t, "bestmove 0000", output[len(output)-1])
}

func TestGoInvalidDepth(t *testing.T) {
	r := newRunner(1)

	_, err := r.HandleInput("go depth")
	assert.False(t, IsNil(err))

	_, err = r.HandleInput("go depth -2")
	assert.False(t, IsNil(err))
}

func TestDisplay(t *testing.T) {
	r := newRunner(1)
	output := handle(t, r, "d")
	assert.Equal(t, "rnbqkbnr", output[0])
	assert.Equal(t, "Fen: "+game.StartingFen, output[len(output)-1])
}
