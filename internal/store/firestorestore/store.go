// Package firestorestore implements the document store port on Cloud
// Firestore. This is the production backend: server timestamps and field
// increments map directly onto Firestore primitives.
package firestorestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/placement-track/placement-track-backend/internal/store"
)

type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, translate(doc))
	if err != nil {
		return "", &store.StoreError{Op: "insert", Collection: collection, Err: err}
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, translate(doc)); err != nil {
		return &store.StoreError{Op: "set", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return store.Document{}, store.ErrNotFound
		}
		return store.Document{}, &store.StoreError{Op: "get", Collection: collection, Err: err}
	}
	return store.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	snaps, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
	}

	out := make([]store.Document, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, store.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range translate(fields) {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return &store.StoreError{Op: "update", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return &store.StoreError{Op: "delete", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.Increment(delta)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return &store.StoreError{Op: "increment", Collection: collection, Err: err}
	}
	return nil
}

// translate swaps the port's sentinels for Firestore's.
func translate(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch sv := v.(type) {
		case store.IncrementValue:
			out[k] = firestore.Increment(sv.Delta)
		default:
			if v == store.ServerTimestamp {
				out[k] = firestore.ServerTimestamp
			} else {
				out[k] = v
			}
		}
	}
	return out
}
