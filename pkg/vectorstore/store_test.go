package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	store := New("faq_chunks", func() (*gorm.DB, error) { return db, nil })
	t.Cleanup(store.Close)
	return store, mock
}

func TestSearchOrdersByDistance(t *testing.T) {
	store, mock := newMockStore(t)

	closest := uuid.NewString()
	farther := uuid.NewString()
	rows := sqlmock.NewRows([]string{"id", "document", "source", "score"}).
		AddRow(closest, "Q: Delivery?\nA: Three days.", "faq.txt", 0.12).
		AddRow(farther, "Q: Returns?\nA: Thirty days.", "faq.txt", 0.38)

	// The distance expression is selected under the score alias and the
	// query must order by it; a query with no ORDER BY fails this match.
	mock.ExpectQuery(`SELECT id, document, source, embedding <=> .+ AS score FROM "faq_embeddings" WHERE collection = .+ ORDER BY score LIMIT .+`).
		WillReturnRows(rows)

	hits, err := store.Search(context.Background(), []float32{0.1, 0.2, 0.3}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, closest, hits[0].ID)
	assert.Equal(t, "Q: Delivery?\nA: Three days.", hits[0].Text)
	assert.InDelta(t, 0.12, hits[0].Score, 1e-9)
	assert.Equal(t, farther, hits[1].ID)
	assert.InDelta(t, 0.38, hits[1].Score, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchDefaultsTopK(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`ORDER BY score LIMIT .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document", "source", "score"}))

	hits, err := store.Search(context.Background(), []float32{0.5}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertChunksEmptyIsNoOp(t *testing.T) {
	// The store never touches the database for empty input, so a failing
	// open function must not matter.
	store := New("faq_chunks", func() (*gorm.DB, error) {
		return nil, errors.New("unreachable")
	})
	defer store.Close()

	ids, err := store.InsertChunks(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, ids)
}
