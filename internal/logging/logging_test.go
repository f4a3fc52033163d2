package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerWithLevelFallsBackOnUnknownLevel(t *testing.T) {
	l := NewLoggerWithLevel("not-a-level")
	assert.Equal(t, "info", l.entry.Logger.GetLevel().String())
}

func TestWithFieldReturnsDistinctLogger(t *testing.T) {
	base := NewDefaultLogger()
	tagged := base.WithField("connID", 7)
	assert.NotSame(t, base, tagged)
}
