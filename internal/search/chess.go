package search

import (
	"github.com/cricklet/negachess/internal/evaluation"
	"github.com/cricklet/negachess/internal/game"
)

type ChessSearcher = Searcher[game.Move, *game.Position]

func NewChessSearcher(options SearcherOptions) *ChessSearcher {
	return NewSearcher[game.Move](evaluation.EvaluatePosition[*game.Position], options)
}
