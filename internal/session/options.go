package session

import (
	"strings"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
	"github.com/cricklet/negachess/internal/search"
)

type PlayerKind int

const (
	Human PlayerKind = iota
	Engine
)

func (k PlayerKind) String() string {
	return [...]string{"human", "engine"}[k]
}

func PlayerKindFromString(s string) (PlayerKind, Error) {
	switch s {
	case "human":
		return Human, NilError
	case "engine":
		return Engine, NilError
	}
	return Human, Errorf("unknown player kind: %v", s)
}

type WorkerKind int

const (
	GoroutineWorker WorkerKind = iota
	SubprocessWorker
)

func (k WorkerKind) String() string {
	return [...]string{"goroutine", "subprocess"}[k]
}

type SessionOptions struct {
	White PlayerKind
	Black PlayerKind

	Worker     WorkerKind
	EnginePath string

	// EngineTimeout bounds each subprocess search. Zero means
	// runner.DefaultEngineTimeout.
	EngineTimeout time.Duration

	Fen    string
	Search search.SearcherOptions
	Logger Logger
}

var DefaultSessionOptions = SessionOptions{
	White:         Human,
	Black:         Engine,
	Worker:        GoroutineWorker,
	EnginePath:    "negachess-uci",
	EngineTimeout: runner.DefaultEngineTimeout,
	Search:        search.DefaultSearchOptions,
}

func (o SessionOptions) Kind(player Player) PlayerKind {
	if player == White {
		return o.White
	}
	return o.Black
}

func (o *SessionOptions) SetKind(player Player, kind PlayerKind) {
	if player == White {
		o.White = kind
	} else {
		o.Black = kind
	}
}

// OptionsFromArgs reads key=value arguments. Players are keyed by colour
// (white=engine, b=human). Anything it doesn't recognise is handed to
// search.SearcherOptionsFromArgs.
func OptionsFromArgs(args ...string) (SessionOptions, Error) {
	options := DefaultSessionOptions
	searchArgs := []string{}

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		player, playerErr := PlayerFromString(key)
		var err Error

		switch {
		case found && IsNil(playerErr):
			var kind PlayerKind
			kind, err = PlayerKindFromString(value)
			options.SetKind(player, kind)
		case found && key == "worker":
			switch value {
			case "goroutine":
				options.Worker = GoroutineWorker
			case "subprocess":
				options.Worker = SubprocessWorker
			default:
				err = Errorf("unknown worker: %v", value)
			}
		case found && key == "engine":
			options.EnginePath = value
		case found && key == "timeout":
			timeout, parseErr := time.ParseDuration(value)
			if parseErr != nil || timeout <= 0 {
				err = Errorf("invalid engine timeout: %v", value)
			}
			options.EngineTimeout = timeout
		case found && key == "fen":
			options.Fen = value
		default:
			searchArgs = append(searchArgs, arg)
		}

		if !IsNil(err) {
			return options, err
		}
	}

	searchOptions, err := search.SearcherOptionsFromArgs(searchArgs...)
	if !IsNil(err) {
		return options, err
	}
	options.Search = searchOptions

	return options, NilError
}
