package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixLogger(t *testing.T) {
	lines := []string{}
	logger := NewPrefixLogger("engine:", FuncLogger(func(s string) {
		lines = append(lines, s)
	}))

	logger.Println("searched", 12)
	logger.Printf("depth %d", 4)

	assert.Equal(t, []string{"engine: searched 12\n", "engine: depth 4"}, lines)
}
