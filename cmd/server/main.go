package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/cricklet/negachess/internal/session"
)

func usage() string {
	return "usage: server [port=<port>] [white=human|engine] [black=human|engine] " +
		"[worker=goroutine|subprocess] [engine=<path>] " + strings.Join(search.AllSearchOptions, " ")
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, fmt.Sprint(r))
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
	}()

	port := 8002

	sessionArgs := []string{}
	for _, arg := range os.Args[1:] {
		if value, found := strings.CutPrefix(arg, "port="); found {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				fmt.Fprintln(os.Stderr, usage())
				os.Exit(1)
			}
			port = parsed
		} else {
			sessionArgs = append(sessionArgs, arg)
		}
	}

	options, err := session.OptionsFromArgs(sessionArgs...)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage())
		os.Exit(1)
	}

	s := &server{
		options: options,
		logger:  &DefaultLogger,
	}

	log.Println("serving at", port)
	err = Wrap(http.ListenAndServe(fmt.Sprintf(":%v", port), newRouter(s)))
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
