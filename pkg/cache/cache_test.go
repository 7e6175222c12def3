package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemory_Remember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("second call within ttl is seen", func(t *testing.T) {
		t.Parallel()

		m := NewMemory(WithCleanupInterval(0))
		t.Cleanup(func() { _ = m.Close() })

		seen, err := m.Remember(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.False(t, seen)

		seen, err = m.Remember(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.True(t, seen)
	})

	t.Run("expired keys are forgotten", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		m := NewMemory(WithCleanupInterval(0))
		m.now = func() time.Time { return now }
		t.Cleanup(func() { _ = m.Close() })

		_, _ = m.Remember(ctx, "k", time.Second)
		now = now.Add(2 * time.Second)

		seen, err := m.Remember(ctx, "k", time.Second)
		require.NoError(t, err)
		require.False(t, seen)

		now = now.Add(5 * time.Second)
		m.deleteExpired()
		require.Zero(t, m.Len())
	})

	t.Run("max entries evicts the oldest key", func(t *testing.T) {
		t.Parallel()

		m := NewMemory(WithCleanupInterval(0), WithMaxEntries(2))
		t.Cleanup(func() { _ = m.Close() })

		for _, k := range []string{"a", "b", "c"} {
			_, err := m.Remember(ctx, k, time.Minute)
			require.NoError(t, err)
		}
		require.Equal(t, 2, m.Len())

		seen, err := m.Remember(ctx, "a", time.Minute)
		require.NoError(t, err)
		require.False(t, seen)
	})

	t.Run("closed store fails", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		require.NoError(t, m.Close())
		require.NoError(t, m.Close())

		_, err := m.Remember(ctx, "k", time.Minute)
		require.ErrorIs(t, err, ErrClosed)
	})
}

type fakeSetNX struct {
	err  error
	keys map[string]bool
}

func (f *fakeSetNX) SetNX(ctx context.Context, key string, _ any, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	created := !f.keys[key]
	f.keys[key] = true
	cmd.SetVal(created)
	return cmd
}

func TestRedis_Remember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeSetNX{keys: map[string]bool{}}
	r := newRedis(fake, WithPrefix("app"))

	seen, err := r.Remember(ctx, "ERROR:boom", time.Minute)
	require.NoError(t, err)
	require.False(t, seen)
	require.True(t, fake.keys["app:ERROR:boom"])

	seen, err = r.Remember(ctx, "ERROR:boom", time.Minute)
	require.NoError(t, err)
	require.True(t, seen)
	require.NoError(t, r.Close())

	boom := errors.New("connection refused")
	_, err = newRedis(&fakeSetNX{err: boom}).Remember(ctx, "k", time.Second)
	require.ErrorIs(t, err, boom)
}
