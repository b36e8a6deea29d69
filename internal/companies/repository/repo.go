package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/placement-track/placement-track-backend/internal/companies/domain"
	"github.com/placement-track/placement-track-backend/internal/store"
)

const collection = "companies"

// Repo is the company aggregate maintainer: it owns the derived
// experienceCount / summary / lastUpdated fields and only ever touches them
// through atomic field-level operations, never read-modify-write.
type Repo struct {
	store store.DocumentStore
}

func New(s store.DocumentStore) *Repo {
	return &Repo{store: s}
}

// Create persists a new company with zeroed derived fields.
func (r *Repo) Create(ctx context.Context, in domain.CreateInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("company name required")
	}

	doc := map[string]any{
		"name":            strings.TrimSpace(in.Name),
		"industry":        in.Industry,
		"description":     in.Description,
		"website":         in.Website,
		"headquarters":    in.Headquarters,
		"employeeCount":   in.EmployeeCount,
		"rating":          float64(0),
		"experienceCount": int64(0),
		"summary":         "",
		"lastUpdated":     store.ServerTimestamp,
	}
	if in.Founded != nil {
		doc["founded"] = *in.Founded
	}

	return r.store.Insert(ctx, collection, doc)
}

// Get returns one company or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Company, error) {
	doc, err := r.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return fromDoc(doc), nil
}

// List returns all companies ordered by experienceCount descending, the
// primary discovery ordering for the browse view.
func (r *Repo) List(ctx context.Context) ([]domain.Company, error) {
	docs, err := r.store.Query(ctx, collection, store.Query{
		OrderBy: "experienceCount",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Company, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *fromDoc(doc))
	}
	return out, nil
}

// IncrementExperienceCount applies an atomic +1 and refreshes lastUpdated.
// It is invoked exactly once per successful experience insert and provides
// no deduplication of its own.
func (r *Repo) IncrementExperienceCount(ctx context.Context, id string) error {
	return r.adjustExperienceCount(ctx, id, 1)
}

// DecrementExperienceCount is only used when decrement-on-delete is enabled
// by configuration.
func (r *Repo) DecrementExperienceCount(ctx context.Context, id string) error {
	return r.adjustExperienceCount(ctx, id, -1)
}

func (r *Repo) adjustExperienceCount(ctx context.Context, id string, delta int64) error {
	err := r.store.Update(ctx, collection, id, map[string]any{
		"experienceCount": store.Increment(delta),
		"lastUpdated":     store.ServerTimestamp,
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// SetExperienceCount overwrites the counter with a recounted value; only the
// reconciliation job calls this.
func (r *Repo) SetExperienceCount(ctx context.Context, id string, count int64) error {
	err := r.store.Update(ctx, collection, id, map[string]any{
		"experienceCount": count,
		"lastUpdated":     store.ServerTimestamp,
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// UpdateSummary overwrites the cached summary and refreshes lastUpdated.
func (r *Repo) UpdateSummary(ctx context.Context, id, summary string) error {
	err := r.store.Update(ctx, collection, id, map[string]any{
		"summary":     summary,
		"lastUpdated": store.ServerTimestamp,
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func fromDoc(doc store.Document) *domain.Company {
	c := &domain.Company{
		ID:              doc.ID,
		Name:            store.String(doc.Data, "name"),
		Industry:        store.String(doc.Data, "industry"),
		Description:     store.String(doc.Data, "description"),
		Website:         store.String(doc.Data, "website"),
		Headquarters:    store.String(doc.Data, "headquarters"),
		EmployeeCount:   store.String(doc.Data, "employeeCount"),
		Rating:          store.Float64(doc.Data, "rating"),
		ExperienceCount: store.Int64(doc.Data, "experienceCount"),
		Summary:         store.String(doc.Data, "summary"),
		LastUpdated:     store.Time(doc.Data, "lastUpdated"),
	}
	if _, ok := doc.Data["founded"]; ok {
		founded := store.Int64(doc.Data, "founded")
		c.Founded = &founded
	}
	return c
}
