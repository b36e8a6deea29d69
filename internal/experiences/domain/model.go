package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("experience not found")
	// ErrNotOwner is returned when a caller tries to edit or delete an
	// experience submitted by someone else.
	ErrNotOwner = errors.New("experience belongs to another user")
)

// ValidationError reports missing required submission fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

type Difficulty = string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type OfferStatus = string

const (
	OfferAccepted  OfferStatus = "Accepted"
	OfferRejected  OfferStatus = "Rejected"
	OfferPending   OfferStatus = "Pending"
	OfferWithdrawn OfferStatus = "Withdrawn"
)

// Experience is one user-submitted interview account. CompanyName is a
// denormalized copy of the company's display name kept for rendering and as
// the fallback query key; CompanyID stays the authoritative relation. Views
// and Upvotes are shared-mutable and only ever change via atomic increments.
type Experience struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	CompanyID     string      `json:"companyId"`
	CompanyName   string      `json:"companyName"`
	Position      string      `json:"position"`
	Description   string      `json:"description"`
	Rounds        []string    `json:"rounds,omitempty"`
	Tips          string      `json:"tips,omitempty"`
	Difficulty    Difficulty  `json:"difficulty,omitempty"`
	OfferStatus   OfferStatus `json:"offerStatus,omitempty"`
	Salary        string      `json:"salary,omitempty"`
	Location      string      `json:"location,omitempty"`
	InterviewDate *time.Time  `json:"interviewDate,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastUpdated   time.Time   `json:"lastUpdated,omitempty"`
	Views         int64       `json:"views"`
	Upvotes       int64       `json:"upvotes"`
}
