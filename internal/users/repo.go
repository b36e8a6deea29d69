// Package users stores the public profile each account may fill in. Profiles
// live under the account uid, so writes are keyed upserts rather than
// inserts: a user who never opened the profile page simply has no document.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/placement-track/placement-track-backend/internal/store"
)

const collection = "users"

// Profile is the user-editable account page plus the terms-acceptance record.
type Profile struct {
	UID             string     `json:"uid"`
	DisplayName     string     `json:"displayName,omitempty"`
	Email           string     `json:"email,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	LinkedIn        string     `json:"linkedin,omitempty"`
	GitHub          string     `json:"github,omitempty"`
	AcceptedTerms   bool       `json:"acceptedTerms"`
	AcceptedTermsAt *time.Time `json:"acceptedTermsAt,omitempty"`
	LastUpdated     time.Time  `json:"lastUpdated,omitempty"`
}

// UpsertInput carries the editable fields; the terms flags are managed by
// AcceptTerms only.
type UpsertInput struct {
	DisplayName string
	Email       string
	Bio         string
	LinkedIn    string
	GitHub      string
}

type Repo struct {
	store store.DocumentStore
}

func NewRepo(s store.DocumentStore) *Repo {
	return &Repo{store: s}
}

// Get returns the profile for uid, or nil when the user never created one.
func (r *Repo) Get(ctx context.Context, uid string) (*Profile, error) {
	doc, err := r.store.Get(ctx, collection, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromDoc(uid, doc.Data), nil
}

// Upsert writes the editable fields, preserving an existing terms-acceptance
// record across the full-document replace.
func (r *Repo) Upsert(ctx context.Context, uid string, in UpsertInput) (*Profile, error) {
	doc := map[string]any{
		"displayName": in.DisplayName,
		"email":       in.Email,
		"bio":         in.Bio,
		"linkedin":    in.LinkedIn,
		"github":      in.GitHub,
		"lastUpdated": store.ServerTimestamp,
	}

	if existing, err := r.Get(ctx, uid); err != nil {
		return nil, err
	} else if existing != nil && existing.AcceptedTerms {
		doc["acceptedTerms"] = true
		if existing.AcceptedTermsAt != nil {
			doc["acceptedTermsAt"] = *existing.AcceptedTermsAt
		}
	}

	if err := r.store.Set(ctx, collection, uid, doc); err != nil {
		return nil, err
	}
	return r.Get(ctx, uid)
}

// AcceptTerms records the acceptance timestamp, creating the profile
// document when the user accepts before ever editing their profile.
func (r *Repo) AcceptTerms(ctx context.Context, uid string) error {
	fields := map[string]any{
		"acceptedTerms":   true,
		"acceptedTermsAt": store.ServerTimestamp,
		"lastUpdated":     store.ServerTimestamp,
	}

	err := r.store.Update(ctx, collection, uid, fields)
	if errors.Is(err, store.ErrNotFound) {
		return r.store.Set(ctx, collection, uid, fields)
	}
	return err
}

func fromDoc(uid string, data map[string]any) *Profile {
	return &Profile{
		UID:             uid,
		DisplayName:     store.String(data, "displayName"),
		Email:           store.String(data, "email"),
		Bio:             store.String(data, "bio"),
		LinkedIn:        store.String(data, "linkedin"),
		GitHub:          store.String(data, "github"),
		AcceptedTerms:   store.Bool(data, "acceptedTerms"),
		AcceptedTermsAt: store.TimePtr(data, "acceptedTermsAt"),
		LastUpdated:     store.Time(data, "lastUpdated"),
	}
}
