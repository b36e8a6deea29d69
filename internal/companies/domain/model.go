package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("company not found")

// ErrNoExperiences is returned by explicit summary regeneration when the
// company has nothing to summarize.
var ErrNoExperiences = errors.New("no experiences available for summary")

// Company is the aggregate root for all experiences referencing it.
// ExperienceCount, Summary and LastUpdated are derived fields owned by the
// aggregate maintainer and the summary cache; everything else is plain
// user-entered data. Rating is stored as-is and never derived.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Industry        string    `json:"industry,omitempty"`
	Description     string    `json:"description,omitempty"`
	Website         string    `json:"website,omitempty"`
	Headquarters    string    `json:"headquarters,omitempty"`
	Founded         *int64    `json:"founded,omitempty"`
	EmployeeCount   string    `json:"employeeCount,omitempty"`
	Rating          float64   `json:"rating"`
	ExperienceCount int64     `json:"experienceCount"`
	Summary         string    `json:"summary"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// CreateInput carries the user-entered fields for a new company. The derived
// fields always start at zero / empty.
type CreateInput struct {
	Name          string
	Industry      string
	Description   string
	Website       string
	Headquarters  string
	Founded       *int64
	EmployeeCount string
}
