// Package redisstore implements the document store port on Redis. Each
// document is a hash with JSON-encoded field values, plus a per-collection
// id set for scans. HIncrBy provides the per-field atomic increment the
// aggregation logic needs. Filtering and ordering happen client-side, which
// is acceptable for the bounded collections this service keeps.
package redisstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/placement-track/placement-track-backend/internal/store"
)

type Store struct {
	client *redis.Client
	now    func() time.Time
}

func New(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) docKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

func (s *Store) collKey(collection string) string {
	return "coll:" + collection
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	id := uuid.New().String()

	values, err := s.encode(doc)
	if err != nil {
		return "", &store.StoreError{Op: "insert", Collection: collection, Err: err}
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.docKey(collection, id), values)
	pipe.SAdd(ctx, s.collKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", &store.StoreError{Op: "insert", Collection: collection, Err: err}
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc map[string]any) error {
	values, err := s.encode(doc)
	if err != nil {
		return &store.StoreError{Op: "set", Collection: collection, Err: err}
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.docKey(collection, id))
	pipe.HSet(ctx, s.docKey(collection, id), values)
	pipe.SAdd(ctx, s.collKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return &store.StoreError{Op: "set", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	raw, err := s.client.HGetAll(ctx, s.docKey(collection, id)).Result()
	if err != nil {
		return store.Document{}, &store.StoreError{Op: "get", Collection: collection, Err: err}
	}
	if len(raw) == 0 {
		return store.Document{}, store.ErrNotFound
	}
	return store.Document{ID: id, Data: decode(raw)}, nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	ids, err := s.client.SMembers(ctx, s.collKey(collection)).Result()
	if err != nil {
		return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.docKey(collection, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &store.StoreError{Op: "query", Collection: collection, Err: err}
	}

	var out []store.Document
	for i, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil || len(raw) == 0 {
			continue
		}
		data := decode(raw)
		if matches(data, q.Filters) {
			out = append(out, store.Document{ID: ids[i], Data: data})
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
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	key := s.docKey(collection, id)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return &store.StoreError{Op: "update", Collection: collection, Err: err}
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	pipe := s.client.Pipeline()
	for k, v := range fields {
		if inc, ok := v.(store.IncrementValue); ok {
			pipe.HIncrBy(ctx, key, k, inc.Delta)
			continue
		}
		encoded, err := s.encodeValue(v)
		if err != nil {
			return &store.StoreError{Op: "update", Collection: collection, Err: err}
		}
		pipe.HSet(ctx, key, k, encoded)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &store.StoreError{Op: "update", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.docKey(collection, id))
	pipe.SRem(ctx, s.collKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return &store.StoreError{Op: "delete", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	key := s.docKey(collection, id)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return &store.StoreError{Op: "increment", Collection: collection, Err: err}
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	if err := s.client.HIncrBy(ctx, key, field, delta).Err(); err != nil {
		return &store.StoreError{Op: "increment", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) encode(doc map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		encoded, err := s.encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = encoded
	}
	return out, nil
}

// encodeValue stores every field as JSON. Integers therefore serialize to
// plain digit strings, which keeps them compatible with HIncrBy.
func (s *Store) encodeValue(v any) (string, error) {
	if v == store.ServerTimestamp {
		v = s.now()
	}
	if t, ok := v.(time.Time); ok {
		v = t.Format(time.RFC3339Nano)
	}
	if inc, ok := v.(store.IncrementValue); ok {
		// Insert of a fresh document: the increment lands on a zero field.
		return strconv.FormatInt(inc.Delta, 10), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(raw map[string]string) map[string]any {
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		dec := json.NewDecoder(bytes.NewReader([]byte(v)))
		dec.UseNumber()
		var parsed any
		if err := dec.Decode(&parsed); err != nil {
			data[k] = v
			continue
		}
		data[k] = parsed
	}
	return data
}

func matches(data map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		if fmt.Sprint(data[f.Field]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}
