package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

func greeting(segment domain.Segment) domain.Classification {
	return domain.Classification{Verdict: domain.VerdictGreeting, Segment: segment, Score: 1}
}

func TestResolverUsecase_GreetingSegments(t *testing.T) {
	suggester := &mockSuggester{}
	uc := NewResolverUsecase(suggester, nil, "", nil, nil)
	msg := &domain.Message{ChannelID: "C1", TS: "1.0", Text: "좋은아침"}

	tests := []struct {
		segment domain.Segment
		want    domain.ReactionSet
	}{
		{domain.SegmentMorning, domain.ReactionSet{"sunny", "blob-wave"}},
		{domain.SegmentNoon, domain.ReactionSet{"clock12", "blob-wave"}},
		{domain.SegmentEvening, domain.ReactionSet{"city_sunset", "blob-wave"}},
		{domain.SegmentNone, domain.ReactionSet{"blob-wave"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.segment), func(t *testing.T) {
			assert.Equal(t, tt.want, uc.Resolve(context.Background(), msg, greeting(tt.segment)))
		})
	}
	assert.Zero(t, suggester.calls, "greetings never reach the language model")
}

func TestResolverUsecase_NotGreetingUsesSuggester(t *testing.T) {
	suggester := &mockSuggester{suggestion: domain.Suggestion{
		Tokens: domain.ReactionSet{"smile", "thinking_face", "blob-wave"},
	}}
	uc := NewResolverUsecase(suggester, nil, "", nil, nil)
	msg := &domain.Message{ChannelID: "C1", TS: "1.0", Text: "오늘 날씨 어때요?"}

	set := uc.Resolve(context.Background(), msg, domain.Classification{Verdict: domain.VerdictNotGreeting})

	assert.Equal(t, domain.ReactionSet{"smile", "thinking_face", "blob-wave"}, set)
	assert.Equal(t, 1, suggester.calls)
}

func TestResolverUsecase_SuggestionFailureIsEmpty(t *testing.T) {
	suggester := &mockSuggester{suggestion: domain.Suggestion{
		Failure: domain.FailureNetwork,
		Err:     errors.New("timeout"),
	}}
	uc := NewResolverUsecase(suggester, nil, "", nil, nil)
	msg := &domain.Message{ChannelID: "C1", TS: "1.0", Text: "회의 몇 시죠"}

	set := uc.Resolve(context.Background(), msg, domain.Classification{Verdict: domain.VerdictNotGreeting})
	assert.Empty(t, set)
}

func TestResolverUsecase_NoSuggester(t *testing.T) {
	uc := NewResolverUsecase(nil, nil, "", nil, nil)
	msg := &domain.Message{ChannelID: "C1", TS: "1.0", Text: "hello"}

	assert.Empty(t, uc.Resolve(context.Background(), msg, domain.Classification{Verdict: domain.VerdictNotGreeting}))
}

func TestResolverUsecase_CustomTokens(t *testing.T) {
	tokens := map[domain.Segment]string{domain.SegmentMorning: "sunrise"}
	uc := NewResolverUsecase(nil, tokens, "wave", nil, nil)
	msg := &domain.Message{ChannelID: "C1", TS: "1.0"}

	assert.Equal(t, domain.ReactionSet{"sunrise", "wave"}, uc.Resolve(context.Background(), msg, greeting(domain.SegmentMorning)))
	// no token configured for noon falls back to the acknowledgement alone
	assert.Equal(t, domain.ReactionSet{"wave"}, uc.Resolve(context.Background(), msg, greeting(domain.SegmentNoon)))
}
