package accuracy

import (
	"bufio"
	_ "embed"
	"io"
	"math/rand"
	"strings"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
)

// MateSuite is a small set of mate-in-one positions in EPD format.
//
//go:embed mates.epd
var MateSuite string

type Epd struct {
	Epd string
	Fen string
	Id  string

	BestMoves  []string
	AvoidMoves []string
}

// EpdToFen keeps the four position fields of an EPD line and adds move
// counters.
func EpdToFen(epd string) string {
	fields := strings.Fields(epd)
	if len(fields) > 4 {
		fields = fields[0:4]
	}
	return strings.Join(fields, " ") + " 0 1"
}

func operations(epd string) map[string]string {
	result := map[string]string{}

	fields := strings.Fields(epd)
	if len(fields) <= 4 {
		return result
	}

	// Some suites keep the move counters or a stray "-" before the operations
	rest := fields[4:]
	for len(rest) > 0 && strings.Trim(rest[0], "-0123456789") == "" {
		rest = rest[1:]
	}

	for _, operation := range strings.Split(strings.Join(rest, " "), ";") {
		opcode, operand, _ := strings.Cut(strings.TrimSpace(operation), " ")
		if opcode != "" {
			result[opcode] = strings.Trim(strings.TrimSpace(operand), "\"")
		}
	}
	return result
}

// MovesFromEpd converts the SAN operands of an opcode (bm or am) into uci
// moves.
func MovesFromEpd(opcode string, epd string, p *game.Position) ([]string, Error) {
	moves := []string{}

	operand, ok := operations(epd)[opcode]
	if !ok {
		return moves, NilError
	}

	for _, san := range strings.Fields(operand) {
		move, err := p.MoveFromNotation(san)
		if !IsNil(err) {
			return []string{}, err
		}
		moves = append(moves, move.String())
	}

	return moves, NilError
}

func ParseEpd(epd string) (*Epd, Error) {
	fen := EpdToFen(epd)
	p, err := game.PositionFromFen(fen)
	if !IsNil(err) {
		return nil, Errorf("couldn't parse %v: %w", epd, err)
	}

	bestMoves, err := MovesFromEpd("bm", epd, p)
	if !IsNil(err) {
		return nil, err
	}

	avoidMoves, err := MovesFromEpd("am", epd, p)
	if !IsNil(err) {
		return nil, err
	}

	if len(bestMoves) == 0 && len(avoidMoves) == 0 {
		return nil, Errorf("no bm or am in epd: %v", epd)
	}

	return &Epd{
		Epd:        epd,
		Fen:        fen,
		Id:         operations(epd)["id"],
		BestMoves:  bestMoves,
		AvoidMoves: avoidMoves,
	}, NilError
}

// LoadEpd reads one position per line, skipping blank lines and # comments.
func LoadEpd(r io.Reader) ([]string, Error) {
	results := []string{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		results = append(results, line)
	}

	return results, Wrap(scanner.Err())
}

func calculateSuccess(move string, bestMoves []string, avoidMoves []string) bool {
	if len(bestMoves) > 0 && !Contains(bestMoves, move) {
		return false
	}
	if len(avoidMoves) > 0 && Contains(avoidMoves, move) {
		return false
	}
	return true
}

type EpdResult struct {
	Id       string `json:"id"`
	Move     string `json:"move"`
	Success  bool   `json:"success"`
	Fallback bool   `json:"fallback"`
}

// SearchEpd asks the launcher for a move and grades it. It waits for the
// worker, so it is meant for batch runs rather than interactive callers.
func SearchEpd(launcher runner.Launcher, epd *Epd, r *rand.Rand) (EpdResult, Error) {
	result := EpdResult{Id: epd.Id}

	p, err := game.PositionFromFen(epd.Fen)
	if !IsNil(err) {
		return result, err
	}

	moves := p.LegalMoves()
	handle := launcher.StartSearch(p, moves)
	handle.Wait()

	found, err := handle.Poll()
	if !IsNil(err) {
		return result, err
	}
	result.Fallback = found.IsEmpty()

	move, err := runner.ResolveMove(handle, moves, r)
	if !IsNil(err) {
		return result, err
	}
	if move.IsEmpty() {
		return result, Errorf("no legal moves in %v", epd.Fen)
	}

	result.Move = move.Value().String()
	result.Success = calculateSuccess(result.Move, epd.BestMoves, epd.AvoidMoves)
	return result, NilError
}
