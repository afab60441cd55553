package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"order-webhook-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store := NewSessionStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.AdminSession{ID: "a", IssuedAt: base, ExpiresAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &domain.AdminSession{ID: "b", IssuedAt: base, ExpiresAt: base.Add(time.Minute)}))

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := store.Get(ctx, "a")
		require.NoError(t, err)
		got.ExpiresAt = base

		again, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, base.Add(time.Hour), again.ExpiresAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, "zzz")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("expired session reads as absent", func(t *testing.T) {
		now = base.Add(2 * time.Minute)
		_, err := store.Get(ctx, "b")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		_, err = store.Get(ctx, "a")
		assert.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "a"))
		_, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.NoError(t, store.Delete(ctx, "a"))
	})
}

func TestSessionStore_Sweep(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.now = func() time.Time { return base.Add(30 * time.Minute) }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.AdminSession{ID: "old", ExpiresAt: base.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, &domain.AdminSession{ID: "new", ExpiresAt: base.Add(time.Hour)}))

	assert.Equal(t, 1, store.Sweep())
	assert.Len(t, store.sessions, 1)
	assert.Zero(t, store.Sweep())
}

func TestSessionStore_Concurrent(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = store.Save(ctx, &domain.AdminSession{ID: id, ExpiresAt: exp})
			_, _ = store.Get(ctx, id)
			if i%3 == 0 {
				_ = store.Delete(ctx, id)
			}
		}(i)
	}
	wg.Wait()
}

func TestSessionStore_RunSweeperStops(t *testing.T) {
	store := NewSessionStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
