package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/cricklet/negachess/internal/binary"
	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
)

type Launcher interface {
	// StartSearch begins a search for the side to move in p and returns
	// immediately. p is not retained.
	StartSearch(p *game.Position, moves []game.Move) *Handle
}

var _ Launcher = (*InProcessLauncher)(nil)
var _ Launcher = (*SubprocessLauncher)(nil)

type findFunc func(p *game.Position, moves []game.Move) (search.Result[game.Move], Error)

// InProcessLauncher searches on a dedicated goroutine over a snapshot of the
// position.
type InProcessLauncher struct {
	Options search.SearcherOptions
	Logger  Logger

	find findFunc
}

func NewInProcessLauncher(options search.SearcherOptions) *InProcessLauncher {
	l := &InProcessLauncher{
		Options: options,
		Logger:  options.Logger,
	}
	if l.Logger == nil {
		l.Logger = &SilentLogger
	}
	l.find = func(p *game.Position, moves []game.Move) (search.Result[game.Move], Error) {
		return search.NewChessSearcher(l.Options).FindBestMove(p, moves)
	}
	return l
}

// sameMove also tells promotions apart, which Move.Equal does not.
func sameMove(move game.Move) func(game.Move) bool {
	return func(other game.Move) bool {
		return move.Equal(other) && move.String() == other.String()
	}
}

// movesForSnapshot maps moves onto the snapshot's own legal moves so the
// worker shares nothing with the caller.
func movesForSnapshot(snapshot *game.Position, moves []game.Move) ([]game.Move, Error) {
	legalMoves := snapshot.LegalMoves()
	result := make([]game.Move, 0, len(moves))
	for _, move := range moves {
		legal := FindInSlice(legalMoves, sameMove(move))
		if legal.IsEmpty() {
			return nil, Errorf("%v is not legal in %v", move, snapshot.Fen())
		}
		result = append(result, legal.Value())
	}
	return result, NilError
}

func (l *InProcessLauncher) StartSearch(p *game.Position, moves []game.Move) *Handle {
	snapshot, err := p.Snapshot()
	if !IsNil(err) {
		return finishedHandle(Empty[game.Move](), err)
	}

	snapshotMoves, err := movesForSnapshot(snapshot, moves)
	if !IsNil(err) {
		return finishedHandle(Empty[game.Move](), err)
	}

	return startWorker(l.Logger, func() (Optional[game.Move], Error) {
		result, err := l.find(snapshot, snapshotMoves)
		if !IsNil(err) {
			return Empty[game.Move](), err
		}
		return result.Move, NilError
	})
}

const DefaultEngineTimeout = 30 * time.Second

// SubprocessLauncher runs the uci engine binary once per search. Any failure
// of the child process ends the search without a result, as does an engine
// still running after Timeout.
type SubprocessLauncher struct {
	CmdPath string
	Args    []string
	Depth   int
	Timeout Optional[time.Duration]
	Logger  Logger
}

func NewSubprocessLauncher(cmdPath string, args []string, options search.SearcherOptions) *SubprocessLauncher {
	l := &SubprocessLauncher{
		CmdPath: cmdPath,
		Args:    args,
		Depth:   options.Depth,
		Timeout: Some(DefaultEngineTimeout),
		Logger:  options.Logger,
	}
	if l.Logger == nil {
		l.Logger = &SilentLogger
	}
	return l
}

func parseBestMove(line string) Optional[string] {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return Empty[string]()
	}
	return Some(fields[1])
}

func (l *SubprocessLauncher) StartSearch(p *game.Position, moves []game.Move) *Handle {
	fen := p.Fen()
	moves = append([]game.Move{}, moves...)

	return startWorker(l.Logger, func() (Optional[game.Move], Error) {
		return l.run(fen, moves), NilError
	})
}

func (l *SubprocessLauncher) run(fen string, moves []game.Move) Optional[game.Move] {
	none := Empty[game.Move]()

	engine, err := binary.SetupBinaryRunner(l.CmdPath, l.Args, binary.WithLogger(&SilentLogger))
	if !IsNil(err) {
		l.Logger.Println("couldn't start engine:", err)
		return none
	}
	defer engine.Close()

	if l.Timeout.HasValue() {
		watchdog := time.AfterFunc(l.Timeout.Value(), engine.Kill)
		defer watchdog.Stop()
	}

	for _, input := range []string{
		"position fen " + fen,
		fmt.Sprintf("go depth %v", l.Depth),
		"quit",
	} {
		err = engine.Run(input)
		if !IsNil(err) {
			// The engine may already have answered and exited
			l.Logger.Println("couldn't write to engine:", err)
			break
		}
	}
	_ = engine.CloseInput()

	lines, err := engine.ReadUntil("bestmove", l.Timeout)
	if !IsNil(err) {
		l.Logger.Println("engine failed:", err)
		return none
	}

	err = engine.Wait()
	if !IsNil(err) {
		l.Logger.Println("engine exited abnormally:", err)
		return none
	}

	bestMove := parseBestMove(lines[len(lines)-1])
	if bestMove.IsEmpty() || bestMove.Value() == "0000" {
		l.Logger.Println("engine found no move for", fen)
		return none
	}

	move := FindInSlice(moves, func(m game.Move) bool {
		return m.String() == bestMove.Value()
	})
	if move.IsEmpty() {
		l.Logger.Println("engine chose unknown move", bestMove.Value(), "for", fen)
	}
	return move
}
