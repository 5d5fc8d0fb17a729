package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"support-assistant-be/pkg/embedding"

	gpt "github.com/sashabaranov/go-openai"
)

type Provider struct {
	client *gpt.Client
	model  gpt.EmbeddingModel
}

var _ embedding.Provider = &Provider{}

func NewProvider(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = string(gpt.SmallEmbedding3)
	}
	cfg := gpt.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	return &Provider{
		client: gpt.NewClientWithConfig(cfg),
		model:  gpt.EmbeddingModel(model),
	}, nil
}

func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, gpt.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		// Data is input-order addressable via Index.
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
