package data

import (
	"context"

	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/infra/openai"
)

// openaiRepo implements the language model repository
type openaiRepo struct {
	client *openai.Client
}

// NewOpenAIRepo creates an OpenAI repository; a nil client disables it
func NewOpenAIRepo(client *openai.Client) repo.SuggestRepo {
	if client == nil {
		return nil
	}
	return &openaiRepo{client: client}
}

// Complete runs one completion
func (r *openaiRepo) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	return r.client.Chat(ctx, systemPrompt, userText)
}
