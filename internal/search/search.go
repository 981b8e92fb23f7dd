package search

import (
	"math/rand"
	"time"

	"github.com/cricklet/negachess/internal/evaluation"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/dustin/go-humanize"
)

// Position is the part of the rules engine the searcher needs. LegalMoves must
// be exact, and Revert must undo the most recent Apply exactly.
type Position[M any] interface {
	LegalMoves() []M
	Apply(move M) Error
	Revert() Error
	Player() Player
}

// Evaluator scores a position from white's perspective.
type Evaluator[P any] func(p P) int

type Result[M any] struct {
	Score int
	Move  Optional[M]
	Depth int
	Nodes int
}

type Searcher[M any, P Position[M]] struct {
	Logger Logger
	Depth  int

	evaluate Evaluator[P]
	rand     *rand.Rand
	verbose  bool

	nodes int
}

func NewSearcher[M any, P Position[M]](evaluate Evaluator[P], options SearcherOptions) *Searcher[M, P] {
	s := &Searcher[M, P]{
		Logger:   options.Logger,
		Depth:    options.Depth,
		evaluate: evaluate,
		rand:     options.newRand(),
		verbose:  options.Verbose,
	}
	if s.Logger == nil {
		s.Logger = &SilentLogger
	}
	return s
}

// Search is a fail-soft negamax with alpha-beta pruning. The score is relative
// to the side to move (turnSign is +1 when that side is white). The returned
// move is the root move that produced the score; it is empty when no move beat
// the initial -Checkmate bound or when depth is 0. p is restored to its
// original state before Search returns, including on error.
func (s *Searcher[M, P]) Search(p P, moves []M, depth int, alpha int, beta int, turnSign int) (int, Optional[M], Error) {
	if depth < 0 {
		return 0, Empty[M](), Errorf("negative search depth %v", depth)
	}
	if alpha >= beta {
		return 0, Empty[M](), Errorf("empty search window (%v, %v)", alpha, beta)
	}
	if turnSign != 1 && turnSign != -1 {
		return 0, Empty[M](), Errorf("invalid turn sign %v", turnSign)
	}
	return s.negamax(p, moves, depth, alpha, beta, turnSign, true)
}

func (s *Searcher[M, P]) negamax(p P, moves []M, depth int, alpha int, beta int, turnSign int, isRoot bool) (int, Optional[M], Error) {
	s.nodes++

	if depth == 0 {
		return turnSign * s.evaluate(p), Empty[M](), NilError
	}

	best := -evaluation.Checkmate
	bestMove := Empty[M]()

	for _, move := range moves {
		score, err := s.searchMove(p, move, depth, alpha, beta, turnSign)
		if !IsNil(err) {
			return best, bestMove, err
		}

		if score > best {
			best = score
			if isRoot {
				bestMove = Some(move)
			}
		}

		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			// The opponent will avoid this line
			break
		}
	}

	return best, bestMove, NilError
}

func (s *Searcher[M, P]) searchMove(p P, move M, depth int, alpha int, beta int, turnSign int) (returnScore int, returnError Error) {
	err := p.Apply(move)
	if !IsNil(err) {
		return 0, Errorf("applying %v: %w", move, err)
	}
	defer func() {
		err := p.Revert()
		if !IsNil(err) {
			returnError = Join(returnError, Errorf("reverting %v: %w", move, err))
		}
	}()

	score, _, err := s.negamax(p, p.LegalMoves(), depth-1, -beta, -alpha, -turnSign, false)
	return -score, err
}

// FindBestMove shuffles the root moves once, then searches them to the
// configured depth with the full window.
func (s *Searcher[M, P]) FindBestMove(p P, moves []M) (Result[M], Error) {
	s.nodes = 0
	start := time.Now()

	ordered := append([]M{}, moves...)
	s.rand.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})

	player := p.Player()
	score, move, err := s.Search(p, ordered, s.Depth, -evaluation.Checkmate, evaluation.Checkmate, player.Sign())

	result := Result[M]{
		Score: score,
		Move:  move,
		Depth: s.Depth,
		Nodes: s.nodes,
	}
	if !IsNil(err) {
		return result, err
	}

	if s.verbose {
		s.Logger.Println("searched", humanize.Comma(int64(result.Nodes)), "nodes",
			"to depth", result.Depth,
			"in", time.Since(start).Round(time.Millisecond),
			"- player", player,
			"- best move", moveString(result.Move),
			"- score", result.Score)
	}

	return result, NilError
}

func moveString[M any](move Optional[M]) any {
	if move.IsEmpty() {
		return "none"
	}
	return move.Value()
}

// FindRandomMove picks uniformly among moves. It is empty only when moves is.
func FindRandomMove[M any](r *rand.Rand, moves []M) Optional[M] {
	if len(moves) == 0 {
		return Empty[M]()
	}
	return Some(moves[r.Intn(len(moves))])
}
