package qa

import (
	"context"

	"support-assistant-be/internal/constant"
	"support-assistant-be/pkg/llm"
)

// Normalizer converts raw document text into Q/A pairs via the completion
// provider plus a two-stage parse of the model output.
type Normalizer struct {
	provider llm.Provider
}

func NewNormalizer(provider llm.Provider) *Normalizer {
	return &Normalizer{provider: provider}
}

// Normalize returns the pairs extracted from text. Malformed model output is
// not an error; it produces an empty slice. Only a failed provider call
// returns an error.
func (n *Normalizer) Normalize(ctx context.Context, text string) ([]Pair, error) {
	completion, err := n.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.NormalizerSystemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return nil, err
	}

	if pairs := ParsePairs(completion.Text); len(pairs) > 0 {
		return pairs, nil
	}
	return ParsePairsJSON(completion.Text), nil
}
