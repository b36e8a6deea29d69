package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/internal/companies/domain"
	"github.com/placement-track/placement-track-backend/internal/companies/repository"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
	"github.com/placement-track/placement-track-backend/internal/llm"
	"github.com/placement-track/placement-track-backend/internal/store/storetest"
)

func setupCompanies(t *testing.T, gen llm.TextGenerator) (*Service, *storetest.Memory) {
	t.Helper()
	mem := storetest.NewMemory()
	companies := repository.New(mem)
	experiences := experiencesrepo.New(mem, zap.NewNop())
	summaries := NewSummaryService(companies, experiences, gen, zap.NewNop())
	return New(companies, experiences, summaries, zap.NewNop()), mem
}

func TestList(t *testing.T) {
	svc, mem := setupCompanies(t, &fakeGenerator{})
	mem.Seed("companies", "small", map[string]any{"name": "Small", "experienceCount": int64(1)})
	mem.Seed("companies", "big", map[string]any{"name": "Big", "experienceCount": int64(9)})

	companies, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Big", companies[0].Name)
	assert.Equal(t, "Small", companies[1].Name)
}

func TestCreate(t *testing.T) {
	svc, _ := setupCompanies(t, &fakeGenerator{})

	company, err := svc.Create(context.Background(), domain.CreateInput{Name: "  Initech  "})
	require.NoError(t, err)
	assert.Equal(t, "Initech", company.Name)
	assert.Equal(t, int64(0), company.ExperienceCount)
	assert.Empty(t, company.Summary)
	assert.False(t, company.LastUpdated.IsZero())
}

func TestGetDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("bundles company, experiences and summary", func(t *testing.T) {
		svc, mem := setupCompanies(t, &fakeGenerator{reply: "generated"})
		seedCompany(mem, "acme", "Acme", "")
		seedExperience(mem, "exp-1", "acme", "SWE", "desc")

		detail, err := svc.GetDetail(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme", detail.Company.Name)
		assert.Len(t, detail.Experiences, 1)
		assert.Equal(t, "generated", detail.Summary)
		assert.NoError(t, detail.SummaryErr)
	})

	t.Run("reports summary failure without failing the page", func(t *testing.T) {
		svc, mem := setupCompanies(t, &fakeGenerator{err: &llm.UpstreamError{Status: 500, Message: "boom"}})
		seedCompany(mem, "acme", "Acme", "")
		seedExperience(mem, "exp-1", "acme", "SWE", "desc")

		detail, err := svc.GetDetail(ctx, "acme")
		require.NoError(t, err)
		assert.Len(t, detail.Experiences, 1)
		assert.Empty(t, detail.Summary)
		var genErr *SummaryGenerationError
		assert.ErrorAs(t, detail.SummaryErr, &genErr)
	})

	t.Run("reports a missing company", func(t *testing.T) {
		svc, _ := setupCompanies(t, &fakeGenerator{})
		_, err := svc.GetDetail(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
