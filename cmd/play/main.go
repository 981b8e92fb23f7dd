package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/session"
	"golang.org/x/term"
)

const framesPerSecond = 15

const help = `commands:
  <square>   select a piece, then a target square (e.g. e2 then e4)
  <move>     play a move in uci notation (e.g. e2e4, e7e8q)
  z          undo one ply
  r          restart
  pgn        print the game so far
  q          quit`

func readLines(lines chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- strings.TrimSpace(scanner.Text())
	}
	close(lines)
}

type display struct {
	color bool
}

func (d display) board(s *session.Session) {
	board := s.Board()
	if !d.color {
		board = stripansi.Strip(board)
	}
	fmt.Println(board)
	fmt.Println(s.Position().Fen())

	if s.IsGameOver() {
		fmt.Println(s.Outcome())
	} else if s.HumanTurn() {
		fmt.Printf("%v to move > ", s.Position().Player())
	} else {
		fmt.Printf("%v is thinking...\n", s.Position().Player())
	}
}

// handle applies one line of input. It returns false when the player quits.
func handle(s *session.Session, input string) (bool, Error) {
	switch {
	case input == "":
		return true, NilError
	case input == "q" || input == "quit":
		return false, NilError
	case input == "z":
		return true, s.Undo()
	case input == "r":
		return true, s.Reset()
	case input == "pgn":
		pgn, err := s.Pgn()
		fmt.Println(pgn)
		return true, err
	case input == "help":
		fmt.Println(help)
		return true, NilError
	case len(input) == 2:
		_, err := s.Click(input)
		return true, err
	default:
		_, err := s.PlayMove(input)
		return true, err
	}
}

func main() {
	options, err := session.OptionsFromArgs(os.Args[1:]...)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	options.Logger = &DefaultLogger

	s, err := session.NewSession(options)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	d := display{color: term.IsTerminal(int(os.Stdout.Fd()))}
	fmt.Println(help)
	d.board(s)

	lines := make(chan string)
	go readLines(lines)

	ticker := time.NewTicker(time.Second / framesPerSecond)
	defer ticker.Stop()

	for {
		select {
		case input, ok := <-lines:
			if !ok {
				return
			}
			running, err := handle(s, input)
			if !running {
				return
			}
			if !IsNil(err) {
				fmt.Println("error:", err)
			}
			d.board(s)

		case <-ticker.C:
			move, err := s.Tick()
			if !IsNil(err) {
				fmt.Fprintln(os.Stderr, err.String())
				os.Exit(1)
			}
			if move.HasValue() {
				d.board(s)
			}
		}
	}
}
