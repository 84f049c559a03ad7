package repo

import "context"

// SuggestRepo is the language model interface
type SuggestRepo interface {
	// Complete runs one completion with a fixed system instruction and returns the raw text
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
