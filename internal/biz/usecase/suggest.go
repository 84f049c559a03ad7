package usecase

import (
	"context"
	"strings"
	"unicode"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
)

// DefaultEmojiSystemPrompt instructs the model to answer with plain emoji names
const DefaultEmojiSystemPrompt = `You're a program for the Slack Bot API. Extract the keywords from the user's message, except for the greeting text, and return your feelings after reading the message and between 2 and 5 slack emojis representing the keywords. If the message includes a greeting, include sunny instead of wave.
Please return only emoji names in your response, as slack emoji names in plain text (not the unicode emoji character and without surrounding colons), separated by commas(,).

Please use emojis used by young people as much as possible.

Emoji used by old men
grinning,smiley,grin,sweat_smile,cold_sweat,disappointed_relieved,sweat,hand,sweat_drops,exclamation,bangbang,question,interrobang,grey_exclamation,grey_question,star,sunny

Emoji used by young people
joy,rolling_on_the_floor_laughing,upside_down_face,pleading_face,heart_eyes,smiling_face_with_3_hearts,raised_hands,face_palm,heartbeat`

// Suggester produces reaction tokens for non-greeting text
type Suggester interface {
	Suggest(ctx context.Context, text string) domain.Suggestion
}

// SuggestUsecase adapts the language model into a reaction token list
type SuggestUsecase struct {
	suggestRepo  repo.SuggestRepo
	systemPrompt string
	ack          string
}

// NewSuggestUsecase creates a new suggest usecase.
// A nil repo disables suggestions; every call then yields an empty set.
func NewSuggestUsecase(suggestRepo repo.SuggestRepo, systemPrompt, ack string) *SuggestUsecase {
	if systemPrompt == "" {
		systemPrompt = DefaultEmojiSystemPrompt
	}
	if ack == "" {
		ack = domain.TokenAcknowledge
	}
	return &SuggestUsecase{
		suggestRepo:  suggestRepo,
		systemPrompt: systemPrompt,
		ack:          ack,
	}
}

// Suggest asks the model for tokens. Failures are reported, never raised.
func (uc *SuggestUsecase) Suggest(ctx context.Context, text string) domain.Suggestion {
	if uc.suggestRepo == nil {
		return domain.Suggestion{Failure: domain.FailureDisabled}
	}

	raw, err := uc.suggestRepo.Complete(ctx, uc.systemPrompt, text)
	if err != nil {
		return domain.Suggestion{Failure: domain.FailureNetwork, Err: err}
	}

	tokens := ParseSuggestion(raw)
	if len(tokens) == 0 {
		return domain.Suggestion{Raw: raw, Failure: domain.FailureMalformed}
	}
	return domain.Suggestion{
		Tokens: tokens.WithAcknowledgement(uc.ack),
		Raw:    raw,
	}
}

// ParseSuggestion strips code fences, colons and whitespace, then splits on commas.
// Empty tokens and tokens holding anything but name characters are dropped.
func ParseSuggestion(raw string) domain.ReactionSet {
	cleaned := strings.ReplaceAll(raw, "```", "")
	cleaned = strings.ReplaceAll(cleaned, ":", "")
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)

	var tokens domain.ReactionSet
	for _, part := range strings.Split(cleaned, ",") {
		if isTokenName(part) {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

func isTokenName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '_', '-', '+', '\'':
			continue
		}
		return false
	}
	return true
}
