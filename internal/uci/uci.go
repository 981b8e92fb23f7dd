package uci

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
)

// NullMove is sent as the best move when the search produced none.
const NullMove = "0000"

type UciRunner struct {
	position *game.Position
	searcher *search.ChessSearcher
	depth    int

	Logger Logger
}

func NewUciRunner(options search.SearcherOptions) *UciRunner {
	u := &UciRunner{
		position: game.NewPosition(),
		searcher: search.NewChessSearcher(options),
		depth:    options.Depth,
		Logger:   options.Logger,
	}
	if u.Logger == nil {
		u.Logger = &SilentLogger
	}
	return u
}

func (u *UciRunner) Position() *game.Position {
	return u.position
}

func parseFen(input string) (string, Error) {
	s := strings.TrimSpace(strings.TrimPrefix(input, "position"))

	if strings.HasPrefix(s, "fen ") {
		s = strings.TrimPrefix(s, "fen ")
		return strings.TrimSpace(strings.Split(s, " moves")[0]), NilError
	} else if strings.HasPrefix(s, "startpos") {
		return game.StartingFen, NilError
	}

	return "", Errorf("couldn't parse '%v'", input)
}

func parseMoves(input string) []string {
	result := []string{}
	if strings.Contains(input, " moves ") {
		fields := strings.Fields(strings.SplitN(input, " moves ", 2)[1])
		result = append(result, fields...)
	}
	return result
}

func parseDepth(input string, defaultDepth int) (int, Error) {
	fields := strings.Fields(input)
	for i, field := range fields {
		if field != "depth" {
			continue
		}
		if i+1 >= len(fields) {
			return 0, Errorf("missing depth in '%v'", input)
		}
		depth, err := strconv.Atoi(fields[i+1])
		if err != nil || depth < 0 {
			return 0, Errorf("invalid depth in '%v'", input)
		}
		return depth, NilError
	}
	return defaultDepth, NilError
}

func (u *UciRunner) setupPosition(input string) Error {
	fen, err := parseFen(input)
	if !IsNil(err) {
		return err
	}

	position, err := game.PositionFromFen(fen)
	if !IsNil(err) {
		return err
	}

	for _, s := range parseMoves(input) {
		move, err := position.FindMove(s)
		if !IsNil(err) {
			return err
		}
		err = position.Apply(move)
		if !IsNil(err) {
			return err
		}
	}

	u.position = position
	return NilError
}

func (u *UciRunner) search(input string) ([]string, Error) {
	depth, err := parseDepth(input, u.depth)
	if !IsNil(err) {
		return nil, err
	}

	u.searcher.Depth = depth
	result, err := u.searcher.FindBestMove(u.position, u.position.LegalMoves())
	if !IsNil(err) {
		return nil, err
	}

	bestMove := NullMove
	if result.Move.HasValue() {
		bestMove = result.Move.Value().String()
	}

	return []string{
		fmt.Sprintf("info depth %v score cp %v nodes %v", result.Depth, result.Score*100, result.Nodes),
		fmt.Sprintf("bestmove %v", bestMove),
	}, NilError
}

func (u *UciRunner) HandleInput(input string) ([]string, Error) {
	input = strings.TrimSpace(input)
	result := []string{}

	if input == "uci" {
		result = append(result, "id name negachess 1")
		result = append(result, "id author Kenrick Rilee")
		result = append(result, "uciok")
	} else if input == "ucinewgame" {
		u.position = game.NewPosition()
	} else if input == "isready" {
		result = append(result, "readyok")
	} else if strings.HasPrefix(input, "position ") {
		err := u.setupPosition(input)
		if !IsNil(err) {
			return result, err
		}
	} else if input == "go" || strings.HasPrefix(input, "go ") {
		return u.search(input)
	} else if input == "fen" {
		result = append(result, u.position.Fen())
	} else if input == "d" {
		result = append(result, strings.Split(u.position.Board().String(), "\n")...)
		result = append(result, "Fen: "+u.position.Fen())
	} else if input != "" {
		u.Logger.Println("ignoring unknown command:", input)
	}

	return result, NilError
}
