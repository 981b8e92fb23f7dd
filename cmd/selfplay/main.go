package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/session"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type config struct {
	games    int
	parallel int
	maxPlies int
	out      string

	sessionArgs []string
}

func configFromArgs(args []string) (config, Error) {
	c := config{
		games:    10,
		parallel: 4,
		maxPlies: 200,
	}

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		var target *int
		switch {
		case found && key == "games":
			target = &c.games
		case found && key == "parallel":
			target = &c.parallel
		case found && key == "maxplies":
			target = &c.maxPlies
		case found && key == "out":
			c.out = value
			continue
		default:
			c.sessionArgs = append(c.sessionArgs, arg)
			continue
		}

		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return c, Errorf("invalid value for %v", arg)
		}
		*target = n
	}

	return c, NilError
}

type tally struct {
	lock  sync.Mutex
	wins  map[string]int
	plies int
	pgns  []string
}

func (t *tally) add(outcome string, plies int, pgn string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.wins[outcome]++
	t.plies += plies
	t.pgns = append(t.pgns, pgn)
}

func playGame(options session.SessionOptions, maxPlies int) (string, int, string, Error) {
	s, err := session.NewSession(options)
	if !IsNil(err) {
		return "", 0, "", err
	}

	for !s.IsGameOver() && s.Position().NumMoves() < maxPlies {
		_, err := s.Tick()
		if !IsNil(err) {
			return "", 0, "", err
		}
		s.WaitForSearch()
	}

	outcome := s.Outcome()
	if outcome == "" {
		outcome = "unfinished"
	}

	pgn, err := s.Pgn()
	return outcome, s.Position().NumMoves(), pgn, err
}

func main() {
	c, err := configFromArgs(os.Args[1:])
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	options, err := session.OptionsFromArgs(c.sessionArgs...)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	options.White = session.Engine
	options.Black = session.Engine

	results := tally{wins: map[string]int{}}
	progress := CreateProgressBar(os.Stderr, c.games, "self-play")
	start := time.Now()

	group := errgroup.Group{}
	group.SetLimit(c.parallel)

	for i := 0; i < c.games; i++ {
		gameOptions := options
		if options.Search.Seed.HasValue() {
			gameOptions.Search.Seed = Some(options.Search.Seed.Value() + int64(i))
		}

		group.Go(func() error {
			outcome, plies, pgn, err := playGame(gameOptions, c.maxPlies)
			if !IsNil(err) {
				return err
			}
			results.add(outcome, plies, pgn)
			progress.Add(1)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		progress.Close()
		fmt.Fprintln(os.Stderr, Wrap(err).String())
		os.Exit(1)
	}
	progress.Close()

	fmt.Println()
	fmt.Println("played", humanize.Comma(int64(c.games)), "games",
		"at depth", options.Search.Depth,
		"in", time.Since(start).Round(time.Millisecond),
		"-", humanize.Comma(int64(results.plies)), "plies")
	for outcome, count := range results.wins {
		fmt.Printf("  %v: %v\n", outcome, count)
	}

	if c.out != "" {
		err := Wrap(os.WriteFile(c.out, []byte(strings.Join(results.pgns, "\n\n")+"\n"), 0644))
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("wrote", c.out)
	}
}
