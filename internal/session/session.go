package session

import (
	"math/rand"
	"time"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
)

type pendingSearch struct {
	handle     *runner.Handle
	generation int
}

// Session owns one game. Tick drives engine turns without ever blocking;
// human turns are fed through PlayMove or Click.
type Session struct {
	Logger Logger

	options  SessionOptions
	position *game.Position
	launcher runner.Launcher
	rand     *rand.Rand

	// Bumped whenever the position or the players change, so results from
	// abandoned searches are recognised and dropped.
	generation int
	pending    Optional[pendingSearch]

	selection Optional[int]
}

func NewSession(options SessionOptions) (*Session, Error) {
	s := &Session{
		Logger:  options.Logger,
		options: options,
		pending: Empty[pendingSearch](),
	}
	if s.Logger == nil {
		s.Logger = &SilentLogger
	}
	if options.Search.Logger == nil {
		options.Search.Logger = NewPrefixLogger("search:", s.Logger)
	}

	s.rand = rand.New(rand.NewSource(options.Search.Seed.ValueOr(time.Now().UnixNano())))

	switch options.Worker {
	case SubprocessWorker:
		launcher := runner.NewSubprocessLauncher(options.EnginePath, nil, options.Search)
		if options.EngineTimeout > 0 {
			launcher.Timeout = Some(options.EngineTimeout)
		}
		s.launcher = launcher
	default:
		s.launcher = runner.NewInProcessLauncher(options.Search)
	}

	err := s.Reset()
	if !IsNil(err) {
		return nil, err
	}
	return s, NilError
}

func (s *Session) Position() *game.Position {
	return s.position
}

func (s *Session) Options() SessionOptions {
	return s.options
}

func (s *Session) HumanTurn() bool {
	return s.options.Kind(s.position.Player()) == Human
}

func (s *Session) IsGameOver() bool {
	return s.position.IsGameOver()
}

// Outcome describes a finished game, or is empty while it is still going.
func (s *Session) Outcome() string {
	if s.position.IsCheckmate() {
		return s.position.Player().Other().String() + " wins by checkmate"
	}
	if s.position.IsStalemate() {
		return "draw by stalemate"
	}
	return ""
}

func (s *Session) Searching() bool {
	return s.pending.HasValue()
}

func (s *Session) commit(move game.Move) Error {
	player := s.position.Player()
	notation := s.position.Notation(move)

	err := s.position.Apply(move)
	if !IsNil(err) {
		return err
	}

	s.generation++
	s.selection = Empty[int]()
	s.Logger.Println(player, "plays", notation)

	if outcome := s.Outcome(); outcome != "" {
		s.Logger.Println(outcome)
	}
	return NilError
}

// Tick advances engine turns. It starts a search when the engine is to move,
// and commits the result once the worker has finished. It returns the move it
// committed, if any.
func (s *Session) Tick() (Optional[game.Move], Error) {
	none := Empty[game.Move]()

	if s.pending.HasValue() && s.pending.Value().generation != s.generation {
		s.Logger.Println("discarding search for an abandoned position")
		s.pending = Empty[pendingSearch]()
	}

	if s.IsGameOver() || s.HumanTurn() {
		return none, NilError
	}

	if s.pending.IsEmpty() {
		s.pending = Some(pendingSearch{
			handle:     s.launcher.StartSearch(s.position, s.position.LegalMoves()),
			generation: s.generation,
		})
		return none, NilError
	}

	handle := s.pending.Value().handle
	if handle.Alive() {
		return none, NilError
	}
	s.pending = Empty[pendingSearch]()

	legalMoves := s.position.LegalMoves()
	move, err := runner.ResolveMove(handle, legalMoves, s.rand)
	if !IsNil(err) {
		return none, err
	}
	if move.IsEmpty() {
		return none, Errorf("no legal moves in %v", s.position.Fen())
	}

	err = s.commit(move.Value())
	if !IsNil(err) {
		return none, err
	}
	return move, NilError
}

// WaitForSearch blocks until the outstanding search, if any, has finished.
func (s *Session) WaitForSearch() {
	if s.pending.HasValue() {
		s.pending.Value().handle.Wait()
	}
}

func (s *Session) checkHumanTurn() Error {
	if s.IsGameOver() {
		return Errorf("game is over: %v", s.Outcome())
	}
	if !s.HumanTurn() {
		return Errorf("%v is played by the engine", s.position.Player())
	}
	return NilError
}

// PlayMove commits a human move given in uci notation.
func (s *Session) PlayMove(uci string) (game.Move, Error) {
	err := s.checkHumanTurn()
	if !IsNil(err) {
		return game.Move{}, err
	}

	move, err := s.position.FindMove(uci)
	if !IsNil(err) {
		return game.Move{}, err
	}

	return move, s.commit(move)
}

// Click selects squares the way a board front end does: the first click picks
// a piece, the second either completes a legal move or becomes the new
// selection. Clicking the selected square again clears it.
func (s *Session) Click(square string) (Optional[game.Move], Error) {
	none := Empty[game.Move]()

	err := s.checkHumanTurn()
	if !IsNil(err) {
		return none, err
	}

	index, err := BoardIndexFromString(square)
	if !IsNil(err) {
		return none, err
	}

	if s.selection.IsEmpty() {
		s.selection = Some(index)
		return none, NilError
	}

	start := s.selection.Value()
	if start == index {
		s.selection = Empty[int]()
		return none, NilError
	}

	move := FindInSlice(s.position.LegalMoves(), func(m game.Move) bool {
		return m.Start == start && m.End == index &&
			(m.Promotion.IsEmpty() || m.Promotion.Value() == Queen)
	})
	if move.IsEmpty() {
		s.selection = Some(index)
		return none, NilError
	}

	return move, s.commit(move.Value())
}

func (s *Session) Selection() Optional[int] {
	return s.selection
}

// Highlights are the target squares of the selected piece.
func (s *Session) Highlights() []int {
	if s.selection.IsEmpty() {
		return []int{}
	}
	moves, err := s.position.MovesForSelection(StringFromBoardIndex(s.selection.Value()))
	if !IsNil(err) {
		return []int{}
	}
	return MapSlice(moves, func(m game.Move) int {
		return m.End
	})
}

func (s *Session) MovesForSelection(square string) ([]game.Move, Error) {
	return s.position.MovesForSelection(square)
}

// Undo takes back one ply. An in-flight search is abandoned.
func (s *Session) Undo() Error {
	err := s.position.Revert()
	if !IsNil(err) {
		return err
	}
	s.generation++
	s.selection = Empty[int]()
	s.Logger.Println("undo")
	return NilError
}

// Reset starts over from the configured position. An in-flight search is
// abandoned.
func (s *Session) Reset() Error {
	fen := s.options.Fen
	if fen == "" {
		fen = game.StartingFen
	}

	position, err := game.PositionFromFen(fen)
	if !IsNil(err) {
		return err
	}

	s.position = position
	s.generation++
	s.selection = Empty[int]()
	return NilError
}

// Load replaces the game with a new starting position.
func (s *Session) Load(fen string) Error {
	_, err := game.PositionFromFen(fen)
	if !IsNil(err) {
		return err
	}
	s.options.Fen = fen
	return s.Reset()
}

func (s *Session) SetPlayerKind(player Player, kind PlayerKind) {
	s.options.SetKind(player, kind)
	s.generation++
	s.Logger.Println(player, "is now played by", kind)
}

func (s *Session) Pgn() (string, Error) {
	return s.position.Pgn()
}

func (s *Session) Board() string {
	highlights := s.Highlights()
	if s.selection.HasValue() {
		highlights = append(highlights, s.selection.Value())
	}
	return s.position.Board().Unicode(highlights...)
}
