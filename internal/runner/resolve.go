package runner

import (
	"math/rand"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
)

// ResolveMove turns a finished handle into the move to commit. A missing or
// unrecognised result falls back to a random legal move, so the result is
// only empty when moves is.
func ResolveMove(h *Handle, moves []game.Move, r *rand.Rand) (Optional[game.Move], Error) {
	result, err := h.Poll()
	if !IsNil(err) {
		return Empty[game.Move](), err
	}

	if result.HasValue() {
		legal := FindInSlice(moves, sameMove(result.Value()))
		if legal.HasValue() {
			return legal, NilError
		}
	}

	return search.FindRandomMove(r, moves), NilError
}
