package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowConsumesTokensUntilExhausted(t *testing.T) {
	b := New(2, time.Hour, 1)
	require.True(t, b.Allow())
	require.True(t, b.Allow())
	require.False(t, b.Allow())
}

func TestAllowRefillsAfterIntervalElapses(t *testing.T) {
	b := New(1, time.Millisecond, 1)
	require.True(t, b.Allow())
	require.False(t, b.Allow())

	time.Sleep(5 * time.Millisecond)
	require.True(t, b.Allow())
}
