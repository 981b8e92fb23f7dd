package search

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
)

const DefaultDepth = 4

type SearcherOptions struct {
	Depth   int
	Seed    Optional[int64]
	Logger  Logger
	Verbose bool
}

var DefaultSearchOptions = SearcherOptions{
	Depth: DefaultDepth,
}

var AllSearchOptions = []string{
	"depth=<plies>",
	"seed=<int>",
	"verbose",
}

func (o SearcherOptions) newRand() *rand.Rand {
	seed := o.Seed.ValueOr(time.Now().UnixNano())
	return rand.New(rand.NewSource(seed))
}

func parseIntArg(arg string) (int64, Error) {
	parts := strings.SplitN(arg, "=", 2)
	if len(parts) != 2 {
		return 0, Errorf("expected a value for %v", arg)
	}
	n, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, Errorf("parsing %v: %w", arg, err)
	}
	return n, NilError
}

// SearcherOptionsFromArgs reads key=value arguments. Unknown arguments are an
// error so typos don't silently fall back to defaults.
func SearcherOptionsFromArgs(args ...string) (SearcherOptions, Error) {
	options := DefaultSearchOptions

	for _, arg := range args {
		if strings.HasPrefix(arg, "depth") {
			n, err := parseIntArg(arg)
			if !IsNil(err) {
				return options, err
			}
			if n < 0 {
				return options, Errorf("depth must not be negative: %v", arg)
			}
			options.Depth = int(n)
		} else if strings.HasPrefix(arg, "seed") {
			n, err := parseIntArg(arg)
			if !IsNil(err) {
				return options, err
			}
			options.Seed = Some(n)
		} else if arg == "verbose" {
			options.Verbose = true
		} else {
			return options, Errorf("unknown option: %s", arg)
		}
	}

	return options, NilError
}
