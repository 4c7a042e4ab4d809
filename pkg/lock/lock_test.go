package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_Exclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "article:1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "article:1", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	// other keys are independent
	other, err := l.Acquire(ctx, "article:2", time.Minute)
	require.NoError(t, err)
	other()

	release()
	again, err := l.Acquire(ctx, "article:1", time.Minute)
	require.NoError(t, err)
	again()
}

func TestLocalLocker_Expires(t *testing.T) {
	l := NewLocalLocker()
	now := time.Now()
	l.now = func() time.Time { return now }

	stale, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	// the expired holder must not release the new one
	stale()
	_, err = l.Acquire(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)
	fresh()
}

func TestLocalLocker_ReleaseTwice(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	release()
	release()
}

func TestLocalLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocalLocker().Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_FallsBackWithoutRedis(t *testing.T) {
	assert.IsType(t, &LocalLocker{}, New(nil, "lock:"))
}
