package runner

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func shellLauncher(script string) *SubprocessLauncher {
	l := NewSubprocessLauncher("sh", []string{"-c", script}, testOptions(2))
	l.Timeout = Some(5 * time.Second)
	return l
}

func TestSubprocessBestMove(t *testing.T) {
	p := game.NewPosition()
	moves := p.LegalMoves()

	h := shellLauncher("cat > /dev/null; printf 'info depth 2\\nbestmove e2e4\\n'").StartSearch(p, moves)
	h.Wait()

	move, err := h.Poll()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.HasValue())
	assert.Equal(t, "e2e4", move.Value().String())
}

func TestSubprocessWithoutReadingInput(t *testing.T) {
	p := game.NewPosition()

	h := shellLauncher("printf 'bestmove d2d4\\n'").StartSearch(p, p.LegalMoves())
	h.Wait()

	move, err := h.Poll()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "d2d4", move.Value().String())
}

func TestSubprocessFailures(t *testing.T) {
	for _, script := range []string{
		"exit 3",
		"cat > /dev/null; printf 'bestmove 0000\\n'",
		"cat > /dev/null; printf 'bestmove e2e5\\n'",
		"cat > /dev/null; printf 'bestmove e2e4\\n'; exit 1",
	} {
		p := game.NewPosition()
		moves := p.LegalMoves()

		h := shellLauncher(script).StartSearch(p, moves)
		h.Wait()

		move, err := h.Poll()
		assert.True(t, IsNil(err), err)
		assert.True(t, move.IsEmpty(), script)

		resolved, err := ResolveMove(h, moves, rand.New(rand.NewSource(0)))
		assert.True(t, IsNil(err), err)
		assert.True(t, FindInSlice(moves, resolved.Value().Equal).HasValue(), script)
	}
}

func TestSubprocessTimeout(t *testing.T) {
	for _, script := range []string{
		// Never answers
		"exec sleep 30",
		// Answers but never exits
		"printf 'bestmove e2e4\\n'; exec sleep 30",
	} {
		p := game.NewPosition()
		moves := p.LegalMoves()

		l := shellLauncher(script)
		l.Timeout = Some(200 * time.Millisecond)

		start := time.Now()
		h := l.StartSearch(p, moves)
		h.Wait()
		assert.Less(t, time.Since(start), 10*time.Second, script)

		move, err := h.Poll()
		assert.True(t, IsNil(err), err)
		assert.True(t, move.IsEmpty(), script)

		resolved, err := ResolveMove(h, moves, rand.New(rand.NewSource(0)))
		assert.True(t, IsNil(err), err)
		assert.True(t, resolved.HasValue(), script)
	}
}

func TestSubprocessDefaultTimeout(t *testing.T) {
	l := NewSubprocessLauncher("negachess-uci", nil, testOptions(2))
	assert.Equal(t, DefaultEngineTimeout, l.Timeout.Value())
}

func TestSubprocessMissingBinary(t *testing.T) {
	p := game.NewPosition()

	l := NewSubprocessLauncher("/nonexistent/negachess-uci", nil, testOptions(2))
	h := l.StartSearch(p, p.LegalMoves())
	h.Wait()

	move, err := h.Poll()
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
}

func TestSubprocessReceivesPosition(t *testing.T) {
	p := game.NewPosition()
	move, err := p.FindMove("e2e4")
	assert.True(t, IsNil(err), err)
	assert.True(t, IsNil(p.Apply(move)))

	// Echo the requested fen back as proof of what was sent
	script := `read position; read search; read quit
case "$position" in
  "position fen rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq"*) ;;
  *) exit 2 ;;
esac
[ "$search" = "go depth 2" ] || exit 2
[ "$quit" = "quit" ] || exit 2
echo "bestmove e7e5"`

	h := shellLauncher(script).StartSearch(p, p.LegalMoves())
	h.Wait()

	result, err := h.Poll()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "e7e5", result.Value().String())
}
