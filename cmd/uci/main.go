package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/cricklet/negachess/internal/uci"
	"github.com/pkg/profile"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "recover()", r)
			os.Exit(1)
		}
	}()

	args := os.Args[1:]

	if Contains(args, "profile") {
		profilePath := filepath.Join(os.TempDir(), "negachess", "CmdUciMain")
		p := profile.Start(profile.ProfilePath(profilePath))
		defer p.Stop()
	}
	args = FilterSlice(args, func(arg string) bool {
		return arg != "profile"
	})

	if len(args) > 0 && args[0] == "options" {
		for _, option := range search.AllSearchOptions {
			fmt.Println(option)
		}
		return
	}

	searchOptions, err := search.SearcherOptionsFromArgs(args...)
	if !IsNil(err) {
		panic(err)
	}

	// stdout carries the protocol
	searchOptions.Logger = FuncLogger(func(s string) {
		fmt.Fprint(os.Stderr, s)
	})

	r := uci.NewUciRunner(searchOptions)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := scanner.Text()
		if input == "quit" {
			break
		}
		result, err := r.HandleInput(input)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
			time.Sleep(200 * time.Millisecond)
			os.Exit(1)
		}
		for _, v := range result {
			fmt.Println(v)
		}
	}
}
