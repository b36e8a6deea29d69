package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/config"
	"github.com/placement-track/placement-track-backend/internal/auth"
	companiesdomain "github.com/placement-track/placement-track-backend/internal/companies/domain"
	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	"github.com/placement-track/placement-track-backend/internal/experiences/domain"
	"github.com/placement-track/placement-track-backend/internal/experiences/repository"
)

var ErrUnauthenticated = errors.New("authentication required")

// Service wraps the experience repository with validation, ownership
// enforcement and aggregate maintenance. The experience insert and the
// company counter increment are two independent store operations; when the
// increment fails after a successful insert the company is left undercounted
// and the divergence is logged, not surfaced (the submission itself
// succeeded). No compensating transaction exists; the reconciliation job
// re-derives counts offline.
type Service struct {
	repo      *repository.Repo
	companies *companiesrepo.Repo
	cfg       config.AggregatesConfig
	log       *zap.Logger
}

func New(repo *repository.Repo, companies *companiesrepo.Repo, cfg config.AggregatesConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, companies: companies, cfg: cfg, log: log}
}

// SubmitInput is a raw submission. Either CompanyID references an existing
// company, or NewCompany asks for one to be created first (the company must
// exist before the experience references it).
type SubmitInput struct {
	CompanyID     string
	NewCompany    *companiesdomain.CreateInput
	Position      string
	Description   string
	Rounds        []string
	Tips          string
	Difficulty    domain.Difficulty
	OfferStatus   domain.OfferStatus
	Salary        string
	Location      string
	InterviewDate *time.Time
}

// Submit validates and persists a new experience, then bumps the owning
// company's experienceCount. Returns the new experience id.
func (s *Service) Submit(ctx context.Context, ident *auth.Identity, in SubmitInput) (string, error) {
	if ident == nil {
		return "", ErrUnauthenticated
	}

	companyID := in.CompanyID
	companyName := ""

	if in.NewCompany != nil {
		id, err := s.companies.Create(ctx, *in.NewCompany)
		if err != nil {
			return "", err
		}
		companyID = id
		companyName = in.NewCompany.Name
	}

	var missing []string
	if companyID == "" {
		missing = append(missing, "companyId")
	}
	if in.Position == "" {
		missing = append(missing, "position")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return "", &domain.ValidationError{Fields: missing}
	}

	if companyName == "" {
		company, err := s.companies.Get(ctx, companyID)
		if err != nil {
			return "", err
		}
		companyName = company.Name
	}

	id, err := s.repo.Add(ctx, repository.AddInput{
		UserID:        ident.UID,
		CompanyID:     companyID,
		CompanyName:   companyName,
		Position:      in.Position,
		Description:   in.Description,
		Rounds:        in.Rounds,
		Tips:          in.Tips,
		Difficulty:    in.Difficulty,
		OfferStatus:   in.OfferStatus,
		Salary:        in.Salary,
		Location:      in.Location,
		InterviewDate: in.InterviewDate,
	})
	if err != nil {
		return "", err
	}

	if err := s.companies.IncrementExperienceCount(ctx, companyID); err != nil {
		s.log.Warn("experienceCount increment failed after successful insert; company is undercounted",
			zap.String("companyId", companyID),
			zap.String("experienceId", id),
			zap.Error(err),
		)
	}

	return id, nil
}

// EditInput lists the patchable fields; nil pointers are left untouched.
type EditInput struct {
	Position      *string
	Description   *string
	Rounds        []string
	Tips          *string
	Difficulty    *domain.Difficulty
	OfferStatus   *domain.OfferStatus
	Salary        *string
	Location      *string
	InterviewDate *time.Time
}

// Edit merges the patch into an experience owned by the caller. Aggregates
// are not adjusted even if the patch moves the experience across companies.
func (s *Service) Edit(ctx context.Context, ident *auth.Identity, id string, in EditInput) error {
	if err := s.requireOwner(ctx, ident, id); err != nil {
		return err
	}

	patch := map[string]any{}
	if in.Position != nil {
		patch["position"] = *in.Position
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Rounds != nil {
		patch["rounds"] = in.Rounds
	}
	if in.Tips != nil {
		patch["tips"] = *in.Tips
	}
	if in.Difficulty != nil {
		patch["difficulty"] = *in.Difficulty
	}
	if in.OfferStatus != nil {
		patch["offerStatus"] = *in.OfferStatus
	}
	if in.Salary != nil {
		patch["salary"] = *in.Salary
	}
	if in.Location != nil {
		patch["location"] = *in.Location
	}
	if in.InterviewDate != nil {
		patch["interviewDate"] = *in.InterviewDate
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes an experience owned by the caller. By default the company
// counter is left as-is; DecrementOnDelete opts into the consistent variant.
func (s *Service) Delete(ctx context.Context, ident *auth.Identity, id string) error {
	exp, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if ident == nil {
		return ErrUnauthenticated
	}
	if exp.UserID != ident.UID {
		return domain.ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cfg.DecrementOnDelete {
		if err := s.companies.DecrementExperienceCount(ctx, exp.CompanyID); err != nil {
			s.log.Warn("experienceCount decrement failed after delete; company is overcounted",
				zap.String("companyId", exp.CompanyID),
				zap.String("experienceId", id),
				zap.Error(err),
			)
		}
	}

	return nil
}

// RecordView bumps the view counter; no ownership check.
func (s *Service) RecordView(ctx context.Context, id string) error {
	return s.repo.IncrementViews(ctx, id)
}

// RecordUpvote bumps the upvote counter; no ownership check.
func (s *Service) RecordUpvote(ctx context.Context, id string) error {
	return s.repo.IncrementUpvotes(ctx, id)
}

// Recent returns the latest experiences across all companies.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Experience, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetRecent(ctx, limit)
}

// Mine returns the caller's own experiences.
func (s *Service) Mine(ctx context.Context, ident *auth.Identity) ([]domain.Experience, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}
	return s.repo.GetByUser(ctx, ident.UID)
}

func (s *Service) requireOwner(ctx context.Context, ident *auth.Identity, id string) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	exp, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if exp.UserID != ident.UID {
		return domain.ErrNotOwner
	}
	return nil
}
