// Package pgstore implements the document store port on Postgres, holding
// every collection in a single jsonb documents table. Atomic increments are
// expressed as a single UPDATE over jsonb_set, so concurrent writers never
// lose counter updates.
package pgstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/placement-track/placement-track-backend/internal/store"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates the documents table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS documents (
  collection text NOT NULL,
  id         text NOT NULL,
  data       jsonb NOT NULL,
  PRIMARY KEY (collection, id)
);
`
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	id := uuid.New().String()

	payload, err := json.Marshal(s.resolve(doc))
	if err != nil {
		return "", &store.StoreError{Op: "insert", Collection: collection, Err: err}
	}

	const q = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := s.db.ExecContext(ctx, q, collection, id, string(payload)); err != nil {
		return "", &store.StoreError{Op: "insert", Collection: collection, Err: err}
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc map[string]any) error {
	payload, err := json.Marshal(s.resolve(doc))
	if err != nil {
		return &store.StoreError{Op: "set", Collection: collection, Err: err}
	}

	const q = `
INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`
	if _, err := s.db.ExecContext(ctx, q, collection, id, string(payload)); err != nil {
		return &store.StoreError{Op: "set", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	const q = `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var payload string
	err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Document{}, store.ErrNotFound
		}
		return store.Document{}, &store.StoreError{Op: "get", Collection: collection, Err: err}
	}
	return store.Document{ID: id, Data: decode(payload)}, nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	sqlQ := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}
	for _, f := range q.Filters {
		args = append(args, f.Field, fmt.Sprint(f.Value))
		sqlQ += fmt.Sprintf(` AND data ->> $%d = $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, sqlQ, args...)
	if err != nil {
		return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
	}
	defer rows.Close()

	var out []store.Document
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
		}
		out = append(out, store.Document{ID: id, Data: decode(payload)})
	}
	if err := rows.Err(); err != nil {
		return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
	}

	// Ordering happens here rather than in SQL so that numeric fields order
	// numerically regardless of how jsonb text extraction would collate them.
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := store.Compare(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	expr := "data"
	args := []any{collection, id}

	for k, v := range fields {
		if inc, ok := v.(store.IncrementValue); ok {
			args = append(args, inc.Delta)
			expr = fmt.Sprintf(
				`jsonb_set(%s, '{%s}', to_jsonb(COALESCE((data ->> '%s')::bigint, 0) + $%d))`,
				expr, k, k, len(args),
			)
			continue
		}
		payload, err := json.Marshal(s.resolveValue(v))
		if err != nil {
			return &store.StoreError{Op: "update", Collection: collection, Err: err}
		}
		args = append(args, string(payload))
		expr = fmt.Sprintf(`jsonb_set(%s, '{%s}', $%d::jsonb)`, expr, k, len(args))
	}

	sqlQ := fmt.Sprintf(`UPDATE documents SET data = %s WHERE collection = $1 AND id = $2`, expr)
	res, err := s.db.ExecContext(ctx, sqlQ, args...)
	if err != nil {
		return &store.StoreError{Op: "update", Collection: collection, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &store.StoreError{Op: "update", Collection: collection, Err: err}
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, q, collection, id); err != nil {
		return &store.StoreError{Op: "delete", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	sqlQ := fmt.Sprintf(
		`UPDATE documents SET data = jsonb_set(data, '{%s}', to_jsonb(COALESCE((data ->> '%s')::bigint, 0) + $3)) WHERE collection = $1 AND id = $2`,
		field, field,
	)
	res, err := s.db.ExecContext(ctx, sqlQ, collection, id, delta)
	if err != nil {
		return &store.StoreError{Op: "increment", Collection: collection, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &store.StoreError{Op: "increment", Collection: collection, Err: err}
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) resolve(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if inc, ok := v.(store.IncrementValue); ok {
			// Fresh document: the increment lands on a zero field.
			out[k] = inc.Delta
			continue
		}
		out[k] = s.resolveValue(v)
	}
	return out
}

func (s *Store) resolveValue(v any) any {
	if v == store.ServerTimestamp {
		v = s.now()
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return v
}

func decode(payload string) map[string]any {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return map[string]any{}
	}
	return data
}
