package ports

import (
	"context"
	"testing"
	"time"

	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a
// SessionStore implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	identity := "contract-test-" + time.Now().Format("20060102150405")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(domain.ModeSingle, now)
		sess.Subject.Name = "Anna"
		sess.Phase = domain.PhaseAwaitingBirthDate

		err := store.Save(ctx, identity, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, identity)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.PhaseAwaitingBirthDate, loaded.Phase)
		assert.Equal(t, "Anna", loaded.Subject.Name)
		assert.Equal(t, domain.ModeSingle, loaded.Mode)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, identity)
		require.NoError(t, err)

		loaded.Subject.Name = "mutated"

		again, err := store.Load(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, "Anna", again.Subject.Name, "mutating a loaded session must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+identity)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, identity)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, identity)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		// Deleting twice is fine.
		assert.NoError(t, store.Delete(ctx, identity))
	})

	t.Run("List", func(t *testing.T) {
		id1 := identity + "-1"
		id2 := identity + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(domain.ModeSingle, now))
		_ = store.Save(ctx, id2, domain.NewSession(domain.ModePair, now))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
