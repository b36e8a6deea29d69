package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/config"
	"github.com/placement-track/placement-track-backend/internal/auth"
	companiesdomain "github.com/placement-track/placement-track-backend/internal/companies/domain"
	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	"github.com/placement-track/placement-track-backend/internal/experiences/domain"
	"github.com/placement-track/placement-track-backend/internal/experiences/repository"
	"github.com/placement-track/placement-track-backend/internal/store"
	"github.com/placement-track/placement-track-backend/internal/store/storetest"
)

func setupService(t *testing.T, cfg config.AggregatesConfig) (*Service, *storetest.Memory) {
	t.Helper()
	mem := storetest.NewMemory()
	svc := New(
		repository.New(mem, zap.NewNop()),
		companiesrepo.New(mem),
		cfg,
		zap.NewNop(),
	)
	return svc, mem
}

func seedCompany(mem *storetest.Memory, id, name string, count int64) {
	mem.Seed("companies", id, map[string]any{
		"name":            name,
		"experienceCount": count,
		"summary":         "",
		"rating":          float64(0),
	})
}

var alice = &auth.Identity{UID: "user-alice", DisplayName: "Alice"}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("increments the company counter on success", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		seedCompany(mem, "acme", "Acme", 2)

		id, err := svc.Submit(ctx, alice, SubmitInput{
			CompanyID:   "acme",
			Position:    "SWE Intern",
			Description: "Three rounds, mostly DSA.",
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		company, ok := mem.Raw("companies", "acme")
		require.True(t, ok)
		assert.Equal(t, int64(3), store.Int64(company, "experienceCount"))

		exp, ok := mem.Raw("experiences", id)
		require.True(t, ok)
		assert.Equal(t, "user-alice", store.String(exp, "userId"))
		assert.Equal(t, "Acme", store.String(exp, "companyName"))
		assert.False(t, store.Time(exp, "createdAt").IsZero())
	})

	t.Run("rejects submissions with missing fields", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		seedCompany(mem, "acme", "Acme", 0)

		_, err := svc.Submit(ctx, alice, SubmitInput{CompanyID: "acme"})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ElementsMatch(t, []string{"position", "description"}, vErr.Fields)

		company, _ := mem.Raw("companies", "acme")
		assert.Equal(t, int64(0), store.Int64(company, "experienceCount"))
	})

	t.Run("requires authentication", func(t *testing.T) {
		svc, _ := setupService(t, config.AggregatesConfig{})

		_, err := svc.Submit(ctx, nil, SubmitInput{CompanyID: "acme", Position: "x", Description: "y"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("does not increment when the insert fails", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		seedCompany(mem, "acme", "Acme", 5)
		mem.InsertErr = func(collection string) error {
			return errors.New("write refused")
		}

		_, err := svc.Submit(ctx, alice, SubmitInput{
			CompanyID:   "acme",
			Position:    "SWE",
			Description: "desc",
		})
		require.Error(t, err)

		company, _ := mem.Raw("companies", "acme")
		assert.Equal(t, int64(5), store.Int64(company, "experienceCount"))
	})

	t.Run("still succeeds when the increment fails after insert", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		seedCompany(mem, "acme", "Acme", 5)
		mem.UpdateErr = func(collection, id string) error {
			if collection == "companies" {
				return errors.New("increment refused")
			}
			return nil
		}

		id, err := svc.Submit(ctx, alice, SubmitInput{
			CompanyID:   "acme",
			Position:    "SWE",
			Description: "desc",
		})
		require.NoError(t, err)

		_, ok := mem.Raw("experiences", id)
		assert.True(t, ok, "experience must be persisted despite the failed increment")
		company, _ := mem.Raw("companies", "acme")
		assert.Equal(t, int64(5), store.Int64(company, "experienceCount"))
	})

	t.Run("creates the company inline when requested", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})

		id, err := svc.Submit(ctx, alice, SubmitInput{
			NewCompany:  &companiesdomain.CreateInput{Name: "Initech", Industry: "Software"},
			Position:    "Backend Engineer",
			Description: "System design heavy.",
		})
		require.NoError(t, err)

		exp, _ := mem.Raw("experiences", id)
		companyID := store.String(exp, "companyId")
		require.NotEmpty(t, companyID)

		company, ok := mem.Raw("companies", companyID)
		require.True(t, ok)
		assert.Equal(t, "Initech", store.String(company, "name"))
		assert.Equal(t, int64(1), store.Int64(company, "experienceCount"))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	seedExperience := func(mem *storetest.Memory, id, userID, companyID string) {
		mem.Seed("experiences", id, map[string]any{
			"userId":    userID,
			"companyId": companyID,
		})
	}

	t.Run("leaves the counter untouched by default", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		seedCompany(mem, "acme", "Acme", 4)
		seedExperience(mem, "exp-1", alice.UID, "acme")

		require.NoError(t, svc.Delete(ctx, alice, "exp-1"))

		_, ok := mem.Raw("experiences", "exp-1")
		assert.False(t, ok)
		company, _ := mem.Raw("companies", "acme")
		assert.Equal(t, int64(4), store.Int64(company, "experienceCount"))
	})

	t.Run("decrements when decrement-on-delete is enabled", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{DecrementOnDelete: true})
		seedCompany(mem, "acme", "Acme", 4)
		seedExperience(mem, "exp-1", alice.UID, "acme")

		require.NoError(t, svc.Delete(ctx, alice, "exp-1"))

		company, _ := mem.Raw("companies", "acme")
		assert.Equal(t, int64(3), store.Int64(company, "experienceCount"))
	})

	t.Run("rejects deletion by a non-owner", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		seedCompany(mem, "acme", "Acme", 4)
		seedExperience(mem, "exp-1", "someone-else", "acme")

		err := svc.Delete(ctx, alice, "exp-1")
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		_, ok := mem.Raw("experiences", "exp-1")
		assert.True(t, ok)
	})

	t.Run("reports a missing experience", func(t *testing.T) {
		svc, _ := setupService(t, config.AggregatesConfig{})

		err := svc.Delete(ctx, alice, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("merges the patch for the owner", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		mem.Seed("experiences", "exp-1", map[string]any{
			"userId":   alice.UID,
			"position": "SWE Intern",
			"tips":     "",
		})

		tips := "Practice graphs."
		require.NoError(t, svc.Edit(ctx, alice, "exp-1", EditInput{Tips: &tips}))

		exp, _ := mem.Raw("experiences", "exp-1")
		assert.Equal(t, "Practice graphs.", store.String(exp, "tips"))
		assert.Equal(t, "SWE Intern", store.String(exp, "position"))
		assert.False(t, store.Time(exp, "lastUpdated").IsZero())
	})

	t.Run("rejects edits by a non-owner", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		mem.Seed("experiences", "exp-1", map[string]any{"userId": "someone-else"})

		position := "Staff Engineer"
		err := svc.Edit(ctx, alice, "exp-1", EditInput{Position: &position})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
}

func TestCounters(t *testing.T) {
	ctx := context.Background()

	t.Run("views and upvotes accumulate independently", func(t *testing.T) {
		svc, mem := setupService(t, config.AggregatesConfig{})
		mem.Seed("experiences", "exp-1", map[string]any{
			"userId": alice.UID, "views": int64(0), "upvotes": int64(0),
		})

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.RecordView(ctx, "exp-1"))
		}
		require.NoError(t, svc.RecordUpvote(ctx, "exp-1"))

		exp, _ := mem.Raw("experiences", "exp-1")
		assert.Equal(t, int64(3), store.Int64(exp, "views"))
		assert.Equal(t, int64(1), store.Int64(exp, "upvotes"))
	})

	t.Run("counting against a missing experience fails", func(t *testing.T) {
		svc, _ := setupService(t, config.AggregatesConfig{})
		assert.ErrorIs(t, svc.RecordView(ctx, "nope"), domain.ErrNotFound)
	})
}
