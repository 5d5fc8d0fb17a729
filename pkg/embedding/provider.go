package embedding

import "context"

// Provider defines the interface for generating text embeddings. The returned
// slice preserves input order: vector i belongs to texts[i].
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
