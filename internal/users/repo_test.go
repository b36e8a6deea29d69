package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-track/placement-track-backend/internal/store/storetest"
)

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("nil for a user without a profile", func(t *testing.T) {
		repo := NewRepo(storetest.NewMemory())

		profile, err := repo.Get(ctx, "uid-1")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("reads a stored profile", func(t *testing.T) {
		mem := storetest.NewMemory()
		mem.Seed("users", "uid-1", map[string]any{
			"displayName":   "Alice",
			"bio":           "CS student",
			"acceptedTerms": true,
		})
		repo := NewRepo(mem)

		profile, err := repo.Get(ctx, "uid-1")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "uid-1", profile.UID)
		assert.Equal(t, "Alice", profile.DisplayName)
		assert.True(t, profile.AcceptedTerms)
	})
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and updates under the uid", func(t *testing.T) {
		repo := NewRepo(storetest.NewMemory())

		profile, err := repo.Upsert(ctx, "uid-1", UpsertInput{DisplayName: "Alice", Bio: "v1"})
		require.NoError(t, err)
		assert.Equal(t, "v1", profile.Bio)

		profile, err = repo.Upsert(ctx, "uid-1", UpsertInput{DisplayName: "Alice", Bio: "v2"})
		require.NoError(t, err)
		assert.Equal(t, "v2", profile.Bio)
		assert.False(t, profile.LastUpdated.IsZero())
	})

	t.Run("preserves terms acceptance across profile saves", func(t *testing.T) {
		repo := NewRepo(storetest.NewMemory())

		require.NoError(t, repo.AcceptTerms(ctx, "uid-1"))

		profile, err := repo.Upsert(ctx, "uid-1", UpsertInput{DisplayName: "Alice"})
		require.NoError(t, err)
		assert.True(t, profile.AcceptedTerms)
		assert.NotNil(t, profile.AcceptedTermsAt)
	})
}

func TestAcceptTerms(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the document for a fresh user", func(t *testing.T) {
		repo := NewRepo(storetest.NewMemory())

		require.NoError(t, repo.AcceptTerms(ctx, "uid-1"))

		profile, err := repo.Get(ctx, "uid-1")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.True(t, profile.AcceptedTerms)
		require.NotNil(t, profile.AcceptedTermsAt)
	})

	t.Run("updates an existing profile in place", func(t *testing.T) {
		mem := storetest.NewMemory()
		mem.Seed("users", "uid-1", map[string]any{"displayName": "Alice"})
		repo := NewRepo(mem)

		require.NoError(t, repo.AcceptTerms(ctx, "uid-1"))

		profile, err := repo.Get(ctx, "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", profile.DisplayName)
		assert.True(t, profile.AcceptedTerms)
	})
}
