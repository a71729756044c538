package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	now := time.Unix(1_712_000_000, 0)
	l := NewMemory(3, time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be admitted", i+1)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "over-limit request rejected")

	// different key, same window
	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok)

	// new window admits again
	now = now.Add(61 * time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
}

func TestMemoryLimiterSweepsExpired(t *testing.T) {
	now := time.Unix(1_712_000_000, 0)
	l := NewMemory(1, time.Second)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		_, _ = l.Allow(ctx, string(rune('a'+i%26))+string(rune('0'+i%10)))
	}
	now = now.Add(5 * time.Second)
	_, _ = l.Allow(ctx, "fresh")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.LessOrEqual(t, len(l.m), 1)
}
