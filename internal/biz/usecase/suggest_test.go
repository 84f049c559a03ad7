package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.ReactionSet
	}{
		{"plain", "smile,thinking_face", domain.ReactionSet{"smile", "thinking_face"}},
		{"colons and spaces", ":joy:, :raised_hands: ,:sunny:", domain.ReactionSet{"joy", "raised_hands", "sunny"}},
		{"code fence", "```\n:smile:,:+1:\n```", domain.ReactionSet{"smile", "+1"}},
		{"empty parts", "smile,,joy,", domain.ReactionSet{"smile", "joy"}},
		{"unicode glyph dropped", "🥺,heart_eyes", domain.ReactionSet{"heart_eyes"}},
		{"glued emoji codes stay glued", ":a::b:", domain.ReactionSet{"ab"}},
		{"nothing usable", "I cannot help with that.", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestion(tt.raw))
		})
	}
}

func TestSuggestUsecase_AppendsAcknowledgement(t *testing.T) {
	mock := &mockSuggestRepo{response: "smile,thinking_face"}
	uc := NewSuggestUsecase(mock, "", "")

	s := uc.Suggest(context.Background(), "오늘 날씨 어때요?")

	assert.True(t, s.OK())
	assert.Equal(t, domain.ReactionSet{"smile", "thinking_face", "blob-wave"}, s.Tokens)
	assert.Equal(t, "오늘 날씨 어때요?", mock.userText)
	assert.Equal(t, DefaultEmojiSystemPrompt, mock.systemPrompt)
}

func TestSuggestUsecase_KeepsExistingAcknowledgement(t *testing.T) {
	uc := NewSuggestUsecase(&mockSuggestRepo{response: "blob-wave, joy"}, "", "")

	s := uc.Suggest(context.Background(), "ㅋㅋㅋ")
	assert.Equal(t, domain.ReactionSet{"blob-wave", "joy"}, s.Tokens)
}

func TestSuggestUsecase_CaseSensitiveAcknowledgement(t *testing.T) {
	uc := NewSuggestUsecase(&mockSuggestRepo{response: "Blob-Wave"}, "", "")

	s := uc.Suggest(context.Background(), "hi")
	assert.Equal(t, domain.ReactionSet{"Blob-Wave", "blob-wave"}, s.Tokens)
}

func TestSuggestUsecase_Failures(t *testing.T) {
	s := NewSuggestUsecase(&mockSuggestRepo{err: errors.New("429 too many requests")}, "", "").
		Suggest(context.Background(), "hi")
	assert.Equal(t, domain.FailureNetwork, s.Failure)
	assert.Empty(t, s.Tokens)

	s = NewSuggestUsecase(&mockSuggestRepo{response: "   "}, "", "").
		Suggest(context.Background(), "hi")
	assert.Equal(t, domain.FailureMalformed, s.Failure)
	assert.Empty(t, s.Tokens)

	s = NewSuggestUsecase(nil, "", "").Suggest(context.Background(), "hi")
	assert.Equal(t, domain.FailureDisabled, s.Failure)
	assert.Empty(t, s.Tokens)
}

func TestSuggestUsecase_CustomPrompt(t *testing.T) {
	mock := &mockSuggestRepo{response: "ok_hand"}
	uc := NewSuggestUsecase(mock, "custom prompt", "wave")

	s := uc.Suggest(context.Background(), "hello")
	assert.Equal(t, "custom prompt", mock.systemPrompt)
	assert.Equal(t, domain.ReactionSet{"ok_hand", "wave"}, s.Tokens)
}
