package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/internal/companies/domain"
	"github.com/placement-track/placement-track-backend/internal/companies/repository"
	expdomain "github.com/placement-track/placement-track-backend/internal/experiences/domain"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
)

// Service serves the browse and detail views for companies.
type Service struct {
	companies   *repository.Repo
	experiences *experiencesrepo.Repo
	summaries   *SummaryService
	log         *zap.Logger
}

func New(companies *repository.Repo, experiences *experiencesrepo.Repo, summaries *SummaryService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{companies: companies, experiences: experiences, summaries: summaries, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Company, error) {
	return s.companies.List(ctx)
}

func (s *Service) Create(ctx context.Context, in domain.CreateInput) (*domain.Company, error) {
	id, err := s.companies.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.companies.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Company, error) {
	return s.companies.Get(ctx, id)
}

// Detail is the company page payload: the company, its experiences and the
// resolved summary. SummaryErr carries a generation failure without failing
// the whole request; the page still renders without the summary.
type Detail struct {
	Company     *domain.Company
	Experiences []expdomain.Experience
	Summary     string
	SummaryErr  error
}

// GetDetail loads a company with its experiences and resolves the summary,
// lazily generating it on first view. A summary failure is reported in the
// result rather than returned.
func (s *Service) GetDetail(ctx context.Context, id string) (*Detail, error) {
	company, err := s.companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	experiences, err := s.experiences.GetByCompany(ctx, id, company.Name)
	if err != nil {
		return nil, err
	}

	d := &Detail{Company: company, Experiences: experiences}
	d.Summary, d.SummaryErr = s.summaries.GetOrCreate(ctx, id)
	if d.SummaryErr != nil {
		d.Summary = company.Summary
	}
	return d, nil
}
