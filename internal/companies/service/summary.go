package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/internal/companies/domain"
	"github.com/placement-track/placement-track-backend/internal/companies/repository"
	expdomain "github.com/placement-track/placement-track-backend/internal/experiences/domain"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
	"github.com/placement-track/placement-track-backend/internal/llm"
)

// SummaryGenerationError reports a failed generation attempt for a company.
// The cached summary is left untouched when this is returned.
type SummaryGenerationError struct {
	CompanyID string
	Err       error
}

func (e *SummaryGenerationError) Error() string {
	return fmt.Sprintf("summary generation for company %s: %v", e.CompanyID, e.Err)
}

func (e *SummaryGenerationError) Unwrap() error { return e.Err }

// SummaryService maintains the per-company summary cache. A summary moves
// through three states: absent (empty string), generating (in-flight call,
// no persisted marker), cached (non-empty string that never expires on its
// own). Only an explicit Regenerate replaces a cached value.
type SummaryService struct {
	companies   *repository.Repo
	experiences *experiencesrepo.Repo
	gen         llm.TextGenerator
	log         *zap.Logger
}

func NewSummaryService(companies *repository.Repo, experiences *experiencesrepo.Repo, gen llm.TextGenerator, log *zap.Logger) *SummaryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SummaryService{companies: companies, experiences: experiences, gen: gen, log: log}
}

// GetOrCreate returns the cached summary when present, otherwise generates
// and persists one. A company with no experiences yields an empty summary
// and no generator call. Generation failures persist nothing; the next read
// simply retries.
func (s *SummaryService) GetOrCreate(ctx context.Context, companyID string) (string, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(company.Summary) != "" {
		return company.Summary, nil
	}
	return s.generate(ctx, company)
}

// Regenerate discards the cache check and produces a fresh summary from the
// company's current experience set. Unlike GetOrCreate it treats an empty
// experience set as an error so the caller can distinguish "nothing to
// summarize" from a blank result.
func (s *SummaryService) Regenerate(ctx context.Context, companyID string) (string, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return "", err
	}

	experiences, err := s.experiences.GetByCompany(ctx, companyID, company.Name)
	if err != nil {
		return "", err
	}
	if len(experiences) == 0 {
		return "", domain.ErrNoExperiences
	}
	return s.generateFrom(ctx, company.ID, experiences)
}

func (s *SummaryService) generate(ctx context.Context, company *domain.Company) (string, error) {
	experiences, err := s.experiences.GetByCompany(ctx, company.ID, company.Name)
	if err != nil {
		return "", err
	}
	if len(experiences) == 0 {
		return "", nil
	}
	return s.generateFrom(ctx, company.ID, experiences)
}

func (s *SummaryService) generateFrom(ctx context.Context, companyID string, experiences []expdomain.Experience) (string, error) {
	summary, err := s.gen.Generate(ctx, BuildSummaryPrompt(experiences))
	if err != nil {
		s.log.Warn("summary generation failed",
			zap.String("companyId", companyID),
			zap.Int("experiences", len(experiences)),
			zap.Error(err),
		)
		return "", &SummaryGenerationError{CompanyID: companyID, Err: err}
	}

	if err := s.companies.UpdateSummary(ctx, companyID, summary); err != nil {
		// The text was generated but could not be cached; hand it to the
		// caller anyway so the current request still benefits.
		s.log.Warn("generated summary could not be persisted",
			zap.String("companyId", companyID),
			zap.Error(err),
		)
	}
	return summary, nil
}
