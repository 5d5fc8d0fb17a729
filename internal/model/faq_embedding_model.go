package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type FaqEmbedding struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Collection string          `gorm:"type:varchar(128);index"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	Document   string          `gorm:"type:text"`
	Source     string          `gorm:"type:varchar(255)"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (FaqEmbedding) TableName() string {
	return "faq_embeddings"
}
