package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"support-assistant-be/pkg/llm"

	gpt "github.com/sashabaranov/go-openai"
)

type Provider struct {
	client *gpt.Client
	model  string
}

var _ llm.Provider = &Provider{}

func NewProvider(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = gpt.GPT4oMini
	}
	cfg := gpt.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	return &Provider{
		client: gpt.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message) (*llm.Completion, error) {
	messages := make([]gpt.ChatCompletionMessage, len(history))
	for i, msg := range history {
		messages[i] = gpt.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, gpt.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: empty choices")
	}

	return &llm.Completion{
		Text: resp.Choices[0].Message.Content,
		Meta: llm.Metadata{
			Model:            resp.Model,
			RequestID:        resp.ID,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
