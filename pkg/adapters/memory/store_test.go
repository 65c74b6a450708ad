package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/mkuleshov/pgdbot/pkg/adapters/memory"
	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/mkuleshov/pgdbot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.NewStore(memory.WithTTL(30*time.Minute), memory.WithClock(clock))
	ctx := context.Background()

	sess := domain.NewSession(domain.ModeSingle, now)
	require.NoError(t, store.Save(ctx, "u1", sess))

	// Within the TTL the session is visible.
	now = now.Add(29 * time.Minute)
	_, err := store.Load(ctx, "u1")
	assert.NoError(t, err)

	// Past the TTL it is evicted as if it never existed.
	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStore_ListSkipsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.NewStore(memory.WithTTL(30*time.Minute), memory.WithClock(clock))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", domain.NewSession(domain.ModeSingle, now)))

	now = now.Add(20 * time.Minute)
	require.NoError(t, store.Save(ctx, "fresh", domain.NewSession(domain.ModeSingle, now)))

	// 31 minutes after "old" was written, only "fresh" is listed.
	now = now.Add(11 * time.Minute)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}
