package pgstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-track/placement-track-backend/internal/store"
)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return New(db), mock, db
}

func TestInsert(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("companies", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.Insert(context.Background(), "companies", map[string]any{
		"name":            "Acme",
		"experienceCount": int64(0),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUpserts(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectExec(`ON CONFLICT \(collection, id\) DO UPDATE`).
		WithArgs("users", "uid-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Set(context.Background(), "users", "uid-1", map[string]any{"displayName": "Alice"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	t.Run("decodes the stored document", func(t *testing.T) {
		s, mock, db := setupStore(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT data FROM documents`).
			WithArgs("companies", "acme").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).
				AddRow(`{"name":"Acme","experienceCount":7}`))

		doc, err := s.Get(context.Background(), "companies", "acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme", store.String(doc.Data, "name"))
		assert.Equal(t, int64(7), store.Int64(doc.Data, "experienceCount"))
	})

	t.Run("maps no rows to not found", func(t *testing.T) {
		s, mock, db := setupStore(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT data FROM documents`).
			WithArgs("companies", "nope").
			WillReturnError(sql.ErrNoRows)

		_, err := s.Get(context.Background(), "companies", "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestQueryOrdersNumerically(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, data FROM documents WHERE collection = \$1`).
		WithArgs("companies").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow("a", `{"name":"Two","experienceCount":2}`).
			AddRow("b", `{"name":"Ten","experienceCount":10}`))

	docs, err := s.Query(context.Background(), "companies", store.Query{
		OrderBy: "experienceCount",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// 10 sorts before 2; text collation would invert this.
	assert.Equal(t, "Ten", store.String(docs[0].Data, "name"))
}

func TestAtomicIncrement(t *testing.T) {
	t.Run("issues a single guarded update", func(t *testing.T) {
		s, mock, db := setupStore(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE documents SET data = jsonb_set`).
			WithArgs("experiences", "exp-1", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.AtomicIncrement(context.Background(), "experiences", "exp-1", "views", 1)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero affected rows to not found", func(t *testing.T) {
		s, mock, db := setupStore(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE documents SET data = jsonb_set`).
			WithArgs("experiences", "nope", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.AtomicIncrement(context.Background(), "experiences", "nope", "views", 1)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUpdateIncrementSentinel(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE documents SET data = jsonb_set`).
		WithArgs("companies", "acme", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Update(context.Background(), "companies", "acme", map[string]any{
		"experienceCount": store.Increment(1),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	s, mock, db := setupStore(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM documents`).
		WithArgs("experiences", "exp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Delete(context.Background(), "experiences", "exp-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
