package vectorstore

import (
	"context"
	"fmt"

	"support-assistant-be/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChunkRecord is the unit of insertion: one embedded chunk with its source
// tag. ID may be empty, in which case the store assigns a random one.
type ChunkRecord struct {
	ID        string
	Embedding []float32
	Text      string
	Source    string
}

// Hit is one search result, ordered by cosine distance (smaller is closer).
type Hit struct {
	ID     string
	Score  float64
	Text   string
	Source string
}

// Store owns one named collection of embedded chunks, backed by a pgvector
// table. The underlying handle is confined to a single worker goroutine; all
// operations are marshalled onto it, so callers may share a Store freely but
// the handle itself never sees concurrent use.
type Store struct {
	collection string
	open       func() (*gorm.DB, error)

	ops chan func()
	db  *gorm.DB // worker-goroutine only
}

func New(collection string, open func() (*gorm.DB, error)) *Store {
	s := &Store{
		collection: collection,
		open:       open,
		ops:        make(chan func()),
	}
	go s.worker()
	return s
}

func (s *Store) worker() {
	for op := range s.ops {
		op()
	}
}

// Close stops the worker. The Store must not be used afterwards.
func (s *Store) Close() {
	close(s.ops)
}

// do runs fn on the worker goroutine and waits for it, honoring ctx while
// waiting. The operation itself is not cancelled once started.
func (s *Store) do(ctx context.Context, fn func(db *gorm.DB) error) error {
	done := make(chan error, 1)
	select {
	case s.ops <- func() {
		db, err := s.client()
		if err != nil {
			done <- err
			return
		}
		done <- fn(db.WithContext(ctx))
	}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) client() (*gorm.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	db, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("acquire vector store client: %w", err)
	}
	s.db = db
	return s.db, nil
}

// EnsureCollection creates the backing table if it is absent. With
// dropExisting it destructively clears prior data first: a table drop, or a
// bulk delete of the collection's rows when the drop fails. A destructive
// reset also invalidates the cached handle so the next operation re-acquires
// it.
func (s *Store) EnsureCollection(ctx context.Context, dropExisting bool) error {
	return s.do(ctx, func(db *gorm.DB) error {
		if dropExisting {
			if err := db.Migrator().DropTable(&model.FaqEmbedding{}); err != nil {
				// Fall back to a store-level purge of this collection.
				if delErr := db.Where("collection = ?", s.collection).
					Delete(&model.FaqEmbedding{}).Error; delErr != nil {
					return fmt.Errorf("reset collection %s: drop: %v, delete: %w", s.collection, err, delErr)
				}
			}
			s.db = nil
			fresh, err := s.client()
			if err != nil {
				return err
			}
			db = fresh.WithContext(ctx)
		}

		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("ensure pgvector extension: %w", err)
		}
		if err := db.AutoMigrate(&model.FaqEmbedding{}); err != nil {
			return fmt.Errorf("ensure collection %s: %w", s.collection, err)
		}
		return nil
	})
}

// InsertChunks bulk-upserts records by id and returns the assigned ids in
// input order. Empty input is a no-op.
func (s *Store) InsertChunks(ctx context.Context, records []ChunkRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	models := make([]*model.FaqEmbedding, len(records))
	ids := make([]string, len(records))
	for i, rec := range records {
		id, err := uuid.Parse(rec.ID)
		if rec.ID == "" || err != nil {
			id = uuid.New()
		}
		ids[i] = id.String()
		models[i] = &model.FaqEmbedding{
			Id:         id,
			Collection: s.collection,
			Embedding:  pgvector.NewVector(rec.Embedding),
			Document:   rec.Text,
			Source:     rec.Source,
		}
	}

	err := s.do(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"collection", "embedding", "document", "source"}),
		}).Create(models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}
	return ids, nil
}

// Search returns up to topK hits for the query embedding, closest first by
// cosine distance.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	type row struct {
		Id       uuid.UUID
		Document string
		Source   string
		Score    float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)
	err := s.do(ctx, func(db *gorm.DB) error {
		// Ordering must go through the aliased score column: gorm's Order
		// only accepts strings or order-by clauses, anything else is dropped
		// and the query would come out with no ORDER BY at all.
		return db.
			Table("faq_embeddings").
			Select("id, document, source, embedding <=> ? AS score", queryVector).
			Where("collection = ?", s.collection).
			Order("score").
			Limit(topK).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", s.collection, err)
	}

	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = Hit{
			ID:     r.Id.String(),
			Score:  r.Score,
			Text:   r.Document,
			Source: r.Source,
		}
	}
	return hits, nil
}
