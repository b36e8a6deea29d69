// Package storetest provides a deterministic in-memory DocumentStore for
// unit tests, with per-operation failure injection so repositories and
// services can be exercised against partial-write scenarios.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/placement-track/placement-track-backend/internal/store"
)

type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	now         func() time.Time

	// Failure hooks. Each is consulted before the operation runs; returning a
	// non-nil error aborts the call with that error wrapped in a StoreError.
	InsertErr    func(collection string) error
	SetErr       func(collection, id string) error
	GetErr       func(collection, id string) error
	QueryErr     func(collection string, q store.Query) error
	UpdateErr    func(collection, id string) error
	DeleteErr    func(collection, id string) error
	IncrementErr func(collection, id, field string) error

	// Counters for assertions.
	QueryCalls int
}

func NewMemory() *Memory {
	return &Memory{
		collections: map[string]map[string]map[string]any{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock fixes the server-timestamp source for deterministic tests.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) coll(name string) map[string]map[string]any {
	c, ok := m.collections[name]
	if !ok {
		c = map[string]map[string]any{}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		if err := m.InsertErr(collection); err != nil {
			return "", &store.StoreError{Op: "insert", Collection: collection, Err: err}
		}
	}

	id := uuid.New().String()
	data := map[string]any{}
	for k, v := range doc {
		data[k] = m.resolve(data, k, v)
	}
	m.coll(collection)[id] = data
	return id, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		if err := m.SetErr(collection, id); err != nil {
			return &store.StoreError{Op: "set", Collection: collection, Err: err}
		}
	}

	data := map[string]any{}
	for k, v := range doc {
		data[k] = m.resolve(data, k, v)
	}
	m.coll(collection)[id] = data
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		if err := m.GetErr(collection, id); err != nil {
			return store.Document{}, &store.StoreError{Op: "get", Collection: collection, Err: err}
		}
	}

	data, ok := m.coll(collection)[id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return store.Document{ID: id, Data: cloneMap(data)}, nil
}

func (m *Memory) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCalls++
	if m.QueryErr != nil {
		if err := m.QueryErr(collection, q); err != nil {
			return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
		}
	}

	var out []store.Document
	for id, data := range m.coll(collection) {
		if matches(data, q.Filters) {
			out = append(out, store.Document{ID: id, Data: cloneMap(data)})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := store.Compare(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	} else {
		// Map iteration order is random; keep results stable for tests.
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		if err := m.UpdateErr(collection, id); err != nil {
			return &store.StoreError{Op: "update", Collection: collection, Err: err}
		}
	}

	data, ok := m.coll(collection)[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		data[k] = m.resolve(data, k, v)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		if err := m.DeleteErr(collection, id); err != nil {
			return &store.StoreError{Op: "delete", Collection: collection, Err: err}
		}
	}

	delete(m.coll(collection), id)
	return nil
}

func (m *Memory) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IncrementErr != nil {
		if err := m.IncrementErr(collection, id, field); err != nil {
			return &store.StoreError{Op: "increment", Collection: collection, Err: err}
		}
	}

	data, ok := m.coll(collection)[id]
	if !ok {
		return store.ErrNotFound
	}
	data[field] = store.Int64(data, field) + delta
	return nil
}

// Seed inserts a document with a caller-chosen id, bypassing failure hooks.
func (m *Memory) Seed(collection, id string, doc map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := map[string]any{}
	for k, v := range doc {
		data[k] = m.resolve(data, k, v)
	}
	m.coll(collection)[id] = data
}

// Raw returns the live field map of a document for direct assertions.
func (m *Memory) Raw(collection, id string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.coll(collection)[id]
	if !ok {
		return nil, false
	}
	return cloneMap(data), true
}

func (m *Memory) resolve(data map[string]any, key string, v any) any {
	switch sv := v.(type) {
	case store.IncrementValue:
		return store.Int64(data, key) + sv.Delta
	default:
		if v == store.ServerTimestamp {
			return m.now()
		}
		return v
	}
}

func matches(data map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		if fmt.Sprint(data[f.Field]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
