package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cricklet/negachess/internal/accuracy"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
	"github.com/cricklet/negachess/internal/search"
	"github.com/dustin/go-humanize"
)

func loadSuite(path string) ([]string, Error) {
	if path == "" {
		return accuracy.LoadEpd(strings.NewReader(accuracy.MateSuite))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, Wrap(err)
	}
	defer file.Close()
	return accuracy.LoadEpd(file)
}

func main() {
	path := ""
	searchArgs := []string{}
	for _, arg := range os.Args[1:] {
		if value, found := strings.CutPrefix(arg, "epd="); found {
			path = value
		} else {
			searchArgs = append(searchArgs, arg)
		}
	}

	options, err := search.SearcherOptionsFromArgs(searchArgs...)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	epds, err := loadSuite(path)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	launcher := runner.NewInProcessLauncher(options)
	r := rand.New(rand.NewSource(options.Seed.ValueOr(time.Now().UnixNano())))

	progress := CreateProgressBar(os.Stderr, len(epds), "epd")
	start := time.Now()

	successes := 0
	failures := []string{}
	for _, line := range epds {
		epd, err := accuracy.ParseEpd(line)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		result, err := accuracy.SearchEpd(launcher, epd, r)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err.String())
			os.Exit(1)
		}

		if result.Success {
			successes++
		} else {
			failures = append(failures, fmt.Sprintf("%v: played %v, expected %v", epd.Id, result.Move, epd.BestMoves))
		}
		progress.Add(1)
	}
	progress.Close()

	fmt.Println()
	fmt.Println("solved", humanize.Comma(int64(successes)), "/", humanize.Comma(int64(len(epds))),
		"at depth", options.Depth,
		"in", time.Since(start).Round(time.Millisecond))
	for _, failure := range failures {
		fmt.Println("  ", failure)
	}
}
