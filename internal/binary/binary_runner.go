package binary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
)

// BinaryRunner drives a child process line by line over its stdin and stdout.
type BinaryRunner struct {
	cmdPath string
	cmd     *exec.Cmd
	process *os.Process

	stdin  io.WriteCloser
	stdout chan string

	recordLock sync.Mutex
	record     []string

	Logger Logger
}

type BinaryRunnerOption func(*BinaryRunner)

func WithLogger(logger Logger) BinaryRunnerOption {
	return func(u *BinaryRunner) {
		u.Logger = logger
	}
}

func (u *BinaryRunner) CmdPath() string {
	return u.cmdPath
}

func (u *BinaryRunner) appendRecord(line string) {
	u.recordLock.Lock()
	defer u.recordLock.Unlock()
	u.record = append(u.record, line)
}

func (u *BinaryRunner) flush(indent string) string {
	u.recordLock.Lock()
	defer u.recordLock.Unlock()
	return Indent(strings.Join(u.record, "\n"), indent)
}

// Flush returns everything sent to and received from the process so far.
func (u *BinaryRunner) Flush() string {
	return "> " + u.flush("> ")
}

func wrapError(u *BinaryRunner, err error) Error {
	if !IsNil(err) {
		return Wrap(fmt.Errorf("%w\n.  %v\n", err, u.flush(".  ")))
	}
	return NilError
}

func SetupBinaryRunner(cmdPath string, args []string, options ...BinaryRunnerOption) (*BinaryRunner, Error) {
	u := &BinaryRunner{
		cmdPath: cmdPath,
	}

	for _, option := range options {
		option(u)
	}

	if u.Logger == nil {
		u.Logger = &DefaultLogger
	}

	u.Logger.Println(cmdPath, args)
	u.cmd = exec.Command(cmdPath, args...)

	var err error
	u.stdin, err = u.cmd.StdinPipe()
	if err != nil {
		return u, wrapError(u, err)
	}

	var stdout io.Reader
	var stderr io.Reader
	stdout, err = u.cmd.StdoutPipe()
	if err != nil {
		return u, wrapError(u, err)
	}
	stderr, err = u.cmd.StderrPipe()
	if err != nil {
		return u, wrapError(u, err)
	}

	err = u.cmd.Start()
	if err != nil {
		return u, wrapError(u, err)
	}
	u.process = u.cmd.Process

	u.stdout = make(chan string, 64)
	go func() {
		defer close(u.stdout)
		stdoutScanner := bufio.NewScanner(bufio.NewReader(stdout))
		for stdoutScanner.Scan() {
			line := stdoutScanner.Text()
			u.Logger.Println("stdout: ", Ellipses(line, 140))
			u.appendRecord("out: " + line)
			u.stdout <- line
		}
	}()

	go func() {
		stderrScanner := bufio.NewScanner(bufio.NewReader(stderr))
		for stderrScanner.Scan() {
			u.appendRecord("err: " + stderrScanner.Text())
		}
	}()

	return u, NilError
}

func (u *BinaryRunner) Run(input string) Error {
	if u.cmd == nil {
		return wrapError(u, Errorf("cmd not setup: %v", u.cmdPath))
	}

	u.Logger.Println("stdin: ", input)
	u.appendRecord("in:  " + strings.TrimSpace(input))

	_, err := u.stdin.Write([]byte(input + "\n"))
	if err != nil {
		return wrapError(u, err)
	}

	return NilError
}

// ReadUntil collects stdout lines up to and including the first line that
// starts with prefix. It fails if the process closes stdout first or the
// timeout elapses.
func (u *BinaryRunner) ReadUntil(prefix string, timeout Optional[time.Duration]) ([]string, Error) {
	result := []string{}

	var timeoutChan <-chan time.Time
	if timeout.HasValue() {
		timer := time.NewTimer(timeout.Value())
		defer timer.Stop()
		timeoutChan = timer.C
	}

	for {
		select {
		case <-timeoutChan:
			return result, wrapError(u, fmt.Errorf("timeout waiting for %v", prefix))
		case line, ok := <-u.stdout:
			if !ok {
				return result, wrapError(u, fmt.Errorf("%v exited before %v", u.cmdPath, prefix))
			}
			result = append(result, line)
			if strings.HasPrefix(line, prefix) {
				return result, NilError
			}
		}
	}
}

// CloseInput signals end of input to the process.
func (u *BinaryRunner) CloseInput() Error {
	if u.cmd == nil {
		return NilError
	}
	err := u.stdin.Close()
	if err != nil {
		return wrapError(u, err)
	}
	return NilError
}

// Wait closes stdin and waits for the process to exit. A non-zero exit status
// is returned as an error.
func (u *BinaryRunner) Wait() Error {
	if u.cmd == nil {
		return NilError
	}

	_ = u.stdin.Close()
	// Drain so the scanner goroutine can finish
	for range u.stdout {
	}

	err := u.cmd.Wait()
	u.cmd = nil
	if err != nil {
		return wrapError(u, err)
	}
	return NilError
}

// Kill stops the process without waiting for it. It is safe to call from
// another goroutine while Run, ReadUntil or Wait are in progress.
func (u *BinaryRunner) Kill() {
	if u.process != nil {
		_ = u.process.Kill()
	}
}

func (u *BinaryRunner) Close() {
	if u.cmd != nil {
		_ = u.cmd.Process.Kill()
		_ = u.cmd.Wait()
		u.cmd = nil
	}
}
