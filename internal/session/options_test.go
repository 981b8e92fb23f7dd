package session

import (
	"testing"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestOptionsFromArgs(t *testing.T) {
	options, err := OptionsFromArgs()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, Human, options.White)
	assert.Equal(t, Engine, options.Black)
	assert.Equal(t, GoroutineWorker, options.Worker)

	options, err = OptionsFromArgs("white=engine", "black=human", "worker=subprocess", "engine=/tmp/uci", "timeout=2s", "depth=2", "seed=3")
	assert.True(t, IsNil(err), err)
	assert.Equal(t, Engine, options.White)
	assert.Equal(t, Human, options.Black)
	assert.Equal(t, SubprocessWorker, options.Worker)
	assert.Equal(t, "/tmp/uci", options.EnginePath)
	assert.Equal(t, 2*time.Second, options.EngineTimeout)
	assert.Equal(t, 2, options.Search.Depth)
	assert.Equal(t, int64(3), options.Search.Seed.Value())

	assert.Equal(t, Engine, options.Kind(White))
	assert.Equal(t, Human, options.Kind(Black))

	options, err = OptionsFromArgs("w=engine", "b=engine")
	assert.True(t, IsNil(err), err)
	assert.Equal(t, Engine, options.White)
	assert.Equal(t, Engine, options.Black)
}

func TestOptionsFromBadArgs(t *testing.T) {
	for _, arg := range []string{"white=robot", "b=robot", "worker=thread", "timeout=soon", "timeout=-1s", "bogus", "red=engine"} {
		_, err := OptionsFromArgs(arg)
		assert.False(t, IsNil(err), arg)
	}
}
