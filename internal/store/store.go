package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get and by id-addressed writes when the
// document does not exist.
var ErrNotFound = errors.New("document not found")

// StoreError wraps any non-not-found failure from a DocumentStore
// implementation so callers can classify store trouble without knowing
// which backend is wired in.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Document is one record of a collection. Data holds the raw field map as
// the backend returned it; use the typed accessors in values.go to read it.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is an equality constraint on a single field.
type Filter struct {
	Field string
	Value any
}

// Query describes a filtered, optionally ordered and limited read of a
// collection.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// DocumentStore is the narrow port every repository runs on. Implementations
// must support per-field atomic increments; that is the only concurrency
// primitive the aggregation logic relies on. Whole-document read-modify-write
// of shared counters is never performed through this interface.
type DocumentStore interface {
	// Insert persists a new document and returns its id. Field values equal
	// to ServerTimestamp are replaced with the store's server time.
	Insert(ctx context.Context, collection string, doc map[string]any) (string, error)

	// Set writes a document under a caller-chosen id, creating or fully
	// replacing it. Sentinels are applied as in Insert.
	Set(ctx context.Context, collection, id string, doc map[string]any) error

	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns the documents matching q. Implementations without native
	// composite indexes may evaluate filters and ordering client-side.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Update merges fields into an existing document. ServerTimestamp and
	// IncrementValue sentinels are applied atomically per field.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// AtomicIncrement adds delta to a numeric field without reading the
	// document first.
	AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error
}

type serverTimestamp struct{}

// ServerTimestamp marks a field to be filled with the store's server time.
var ServerTimestamp = serverTimestamp{}

// IncrementValue marks a field for atomic addition inside Update.
type IncrementValue struct {
	Delta int64
}

// Increment returns a field value that atomically adds delta on Update.
func Increment(delta int64) IncrementValue {
	return IncrementValue{Delta: delta}
}

// Pinger is implemented by backends that can cheaply report liveness; the
// health endpoint uses it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}
