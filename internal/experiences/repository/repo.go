package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/internal/experiences/domain"
	"github.com/placement-track/placement-track-backend/internal/store"
)

const collection = "experiences"

type Repo struct {
	store store.DocumentStore
	log   *zap.Logger
}

func New(s store.DocumentStore, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{store: s, log: log}
}

// AddInput carries a validated submission. CreatedAt and the counters are
// assigned here, not by the caller.
type AddInput struct {
	UserID        string
	CompanyID     string
	CompanyName   string
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

// Add persists a new experience with a server-assigned creation timestamp
// and zeroed counters. It does not touch company aggregates; the service
// layer orchestrates the increment so a failed insert never increments.
func (r *Repo) Add(ctx context.Context, in AddInput) (string, error) {
	doc := map[string]any{
		"userId":      in.UserID,
		"companyId":   in.CompanyID,
		"companyName": in.CompanyName,
		"position":    in.Position,
		"description": in.Description,
		"rounds":      in.Rounds,
		"tips":        in.Tips,
		"difficulty":  in.Difficulty,
		"offerStatus": in.OfferStatus,
		"salary":      in.Salary,
		"location":    in.Location,
		"createdAt":   store.ServerTimestamp,
		"views":       int64(0),
		"upvotes":     int64(0),
	}
	if in.InterviewDate != nil {
		doc["interviewDate"] = *in.InterviewDate
	}

	return r.store.Insert(ctx, collection, doc)
}

// Get returns one experience or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Experience, error) {
	doc, err := r.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return fromDoc(doc), nil
}

// GetByCompany returns all experiences for a company. When the primary
// companyId query fails (a missing composite index being the classic case),
// it falls back to querying by the denormalized company display name ordered
// by interview date. The two paths are not guaranteed to return identical
// sets; callers treat the fallback as best-effort.
func (r *Repo) GetByCompany(ctx context.Context, companyID, companyName string) ([]domain.Experience, error) {
	docs, err := r.store.Query(ctx, collection, store.Query{
		Filters: []store.Filter{{Field: "companyId", Value: companyID}},
	})
	if err == nil {
		return fromDocs(docs), nil
	}

	r.log.Warn("experience query by companyId failed, falling back to company name",
		zap.String("companyId", companyID),
		zap.String("companyName", companyName),
		zap.Error(err),
	)

	docs, fbErr := r.store.Query(ctx, collection, store.Query{
		Filters: []store.Filter{{Field: "companyName", Value: companyName}},
		OrderBy: "interviewDate",
		Desc:    true,
	})
	if fbErr != nil {
		// Surface the primary failure; the fallback was best-effort.
		return nil, err
	}
	return fromDocs(docs), nil
}

// GetByUser returns all experiences owned by a user; no ordering guarantee.
func (r *Repo) GetByUser(ctx context.Context, userID string) ([]domain.Experience, error) {
	docs, err := r.store.Query(ctx, collection, store.Query{
		Filters: []store.Filter{{Field: "userId", Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	return fromDocs(docs), nil
}

// GetRecent returns up to limit experiences ordered by interview date
// descending.
func (r *Repo) GetRecent(ctx context.Context, limit int) ([]domain.Experience, error) {
	docs, err := r.store.Query(ctx, collection, store.Query{
		OrderBy: "interviewDate",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	return fromDocs(docs), nil
}

// CountByCompany recounts experiences for a company via the primary relation
// only; the reconciliation job uses it to re-derive experienceCount.
func (r *Repo) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	docs, err := r.store.Query(ctx, collection, store.Query{
		Filters: []store.Filter{{Field: "companyId", Value: companyID}},
	})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Update merges patch fields into the record and refreshes lastUpdated.
// Company aggregates are never touched here, even when companyId changes.
func (r *Repo) Update(ctx context.Context, id string, patch map[string]any) error {
	fields := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		fields[k] = v
	}
	fields["lastUpdated"] = store.ServerTimestamp

	err := r.store.Update(ctx, collection, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, collection, id)
}

func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	return r.increment(ctx, id, "views")
}

func (r *Repo) IncrementUpvotes(ctx context.Context, id string) error {
	return r.increment(ctx, id, "upvotes")
}

func (r *Repo) increment(ctx context.Context, id, field string) error {
	err := r.store.AtomicIncrement(ctx, collection, id, field, 1)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func fromDocs(docs []store.Document) []domain.Experience {
	out := make([]domain.Experience, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *fromDoc(doc))
	}
	return out
}

func fromDoc(doc store.Document) *domain.Experience {
	return &domain.Experience{
		ID:            doc.ID,
		UserID:        store.String(doc.Data, "userId"),
		CompanyID:     store.String(doc.Data, "companyId"),
		CompanyName:   store.String(doc.Data, "companyName"),
		Position:      store.String(doc.Data, "position"),
		Description:   store.String(doc.Data, "description"),
		Rounds:        store.StringSlice(doc.Data, "rounds"),
		Tips:          store.String(doc.Data, "tips"),
		Difficulty:    store.String(doc.Data, "difficulty"),
		OfferStatus:   store.String(doc.Data, "offerStatus"),
		Salary:        store.String(doc.Data, "salary"),
		Location:      store.String(doc.Data, "location"),
		InterviewDate: store.TimePtr(doc.Data, "interviewDate"),
		CreatedAt:     store.Time(doc.Data, "createdAt"),
		LastUpdated:   store.Time(doc.Data, "lastUpdated"),
		Views:         store.Int64(doc.Data, "views"),
		Upvotes:       store.Int64(doc.Data, "upvotes"),
	}
}
