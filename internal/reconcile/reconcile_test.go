package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
	"github.com/placement-track/placement-track-backend/internal/store"
	"github.com/placement-track/placement-track-backend/internal/store/storetest"
)

func setupReconciler(t *testing.T) (*Reconciler, *storetest.Memory) {
	t.Helper()
	mem := storetest.NewMemory()
	r := New(
		companiesrepo.New(mem),
		experiencesrepo.New(mem, zap.NewNop()),
		zap.NewNop(),
	)
	return r, mem
}

func seedCompany(mem *storetest.Memory, id string, count int64) {
	mem.Seed("companies", id, map[string]any{
		"name":            id,
		"experienceCount": count,
	})
}

func seedExperiences(mem *storetest.Memory, companyID string, n int) {
	for i := 0; i < n; i++ {
		mem.Seed("experiences", companyID+"-exp-"+string(rune('a'+i)), map[string]any{
			"companyId": companyID,
		})
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites drifted counters only", func(t *testing.T) {
		r, mem := setupReconciler(t)
		seedCompany(mem, "drifted", 7)
		seedExperiences(mem, "drifted", 2)
		seedCompany(mem, "accurate", 3)
		seedExperiences(mem, "accurate", 3)

		report, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, Report{Checked: 2, Fixed: 1}, report)

		drifted, _ := mem.Raw("companies", "drifted")
		assert.Equal(t, int64(2), store.Int64(drifted, "experienceCount"))
		assert.False(t, store.Time(drifted, "lastUpdated").IsZero())

		accurate, _ := mem.Raw("companies", "accurate")
		assert.Equal(t, int64(3), store.Int64(accurate, "experienceCount"))
		_, touched := accurate["lastUpdated"]
		assert.False(t, touched, "an accurate counter must not be rewritten")
	})

	t.Run("a failing recount skips the company and continues", func(t *testing.T) {
		r, mem := setupReconciler(t)
		seedCompany(mem, "broken", 9)
		seedCompany(mem, "drifted", 5)
		seedExperiences(mem, "drifted", 1)

		mem.QueryErr = func(collection string, q store.Query) error {
			for _, f := range q.Filters {
				if f.Value == "broken" {
					return errors.New("recount failed")
				}
			}
			return nil
		}

		report, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, Report{Checked: 2, Fixed: 1}, report)

		broken, _ := mem.Raw("companies", "broken")
		assert.Equal(t, int64(9), store.Int64(broken, "experienceCount"))
	})

	t.Run("fails when companies cannot be listed", func(t *testing.T) {
		r, mem := setupReconciler(t)
		listErr := errors.New("list unavailable")
		mem.QueryErr = func(collection string, q store.Query) error {
			if collection == "companies" {
				return listErr
			}
			return nil
		}

		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, listErr)
	})
}
