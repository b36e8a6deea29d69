// Package reconcile re-derives company experience counts from the
// experiences collection. The request path only ever applies atomic
// increments, so a crash between an insert and its increment (or a delete
// with decrement-on-delete disabled) leaves a drifted counter until this job
// recounts it.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
)

type Reconciler struct {
	companies   *companiesrepo.Repo
	experiences *experiencesrepo.Repo
	log         *zap.Logger
}

func New(companies *companiesrepo.Repo, experiences *experiencesrepo.Repo, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{companies: companies, experiences: experiences, log: log}
}

// Report summarizes one reconciliation pass.
type Report struct {
	Checked int
	Fixed   int
}

// Run recounts every company and overwrites counters that drifted. Per-company
// failures are logged and skipped so one bad document cannot stall the pass.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	companies, err := r.companies.List(ctx)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, company := range companies {
		report.Checked++

		actual, err := r.experiences.CountByCompany(ctx, company.ID)
		if err != nil {
			r.log.Warn("recount failed, skipping company",
				zap.String("companyId", company.ID),
				zap.Error(err),
			)
			continue
		}
		if actual == company.ExperienceCount {
			continue
		}

		if err := r.companies.SetExperienceCount(ctx, company.ID, actual); err != nil {
			r.log.Warn("counter overwrite failed",
				zap.String("companyId", company.ID),
				zap.Error(err),
			)
			continue
		}

		r.log.Info("experienceCount reconciled",
			zap.String("companyId", company.ID),
			zap.String("company", company.Name),
			zap.Int64("stored", company.ExperienceCount),
			zap.Int64("actual", actual),
		)
		report.Fixed++
	}
	return report, nil
}
