package runner

import (
	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

// Handle tracks one out-of-band search. The worker writes its result before
// closing done, so a caller that sees !Alive() can always Poll without
// blocking.
type Handle struct {
	done   chan struct{}
	result chan Optional[game.Move]
	err    Error

	polled bool
	cached Optional[game.Move]
}

func newHandle() *Handle {
	return &Handle{
		done:   make(chan struct{}),
		result: make(chan Optional[game.Move], 1),
		cached: Empty[game.Move](),
	}
}

func finishedHandle(move Optional[game.Move], err Error) *Handle {
	h := newHandle()
	h.finish(move, err)
	return h
}

func (h *Handle) finish(move Optional[game.Move], err Error) {
	h.result <- move
	h.err = err
	close(h.done)
}

// Alive reports whether the worker is still running. It never blocks.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done is closed when the worker terminates.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the worker terminates. Interactive callers should use
// Alive instead.
func (h *Handle) Wait() {
	<-h.done
}

// Poll returns the worker's move. It is only valid once Alive() is false; the
// result is read once and cached for later calls. An empty move with a nil
// error means the worker finished without a result.
func (h *Handle) Poll() (Optional[game.Move], Error) {
	if h.Alive() {
		return Empty[game.Move](), Errorf("search is still running")
	}

	if !h.polled {
		select {
		case move := <-h.result:
			h.cached = move
		default:
		}
		h.polled = true
	}

	return h.cached, h.err
}

// Err is the contract violation that aborted the search, if any.
func (h *Handle) Err() Error {
	if h.Alive() {
		return NilError
	}
	return h.err
}

// startWorker runs work on its own goroutine. A panic terminates the worker
// without a result.
func startWorker(logger Logger, work func() (Optional[game.Move], Error)) *Handle {
	h := newHandle()

	go func() {
		move := Empty[game.Move]()
		err := NilError

		defer func() {
			if r := recover(); r != nil {
				logger.Println("search worker died:", r)
				move = Empty[game.Move]()
				err = NilError
			}
			h.finish(move, err)
		}()

		move, err = work()
	}()

	return h
}
