package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/metrics"
)

// DefaultSegmentTokens returns the fixed icon per greeting segment
func DefaultSegmentTokens() map[domain.Segment]string {
	return map[domain.Segment]string{
		domain.SegmentMorning: domain.TokenSunny,
		domain.SegmentNoon:    domain.TokenClock12,
		domain.SegmentEvening: domain.TokenCitySunset,
	}
}

// ResolverUsecase turns a classification into the reaction set for a message
type ResolverUsecase struct {
	suggester     Suggester
	segmentTokens map[domain.Segment]string
	ack           string
	log           *zap.SugaredLogger
	metrics       *metrics.Metrics
}

// NewResolverUsecase creates a new resolver usecase
func NewResolverUsecase(
	suggester Suggester,
	segmentTokens map[domain.Segment]string,
	ack string,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *ResolverUsecase {
	if len(segmentTokens) == 0 {
		segmentTokens = DefaultSegmentTokens()
	}
	if ack == "" {
		ack = domain.TokenAcknowledge
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ResolverUsecase{
		suggester:     suggester,
		segmentTokens: segmentTokens,
		ack:           ack,
		log:           log,
		metrics:       m,
	}
}

// Resolve returns the ordered reaction set. The sunny token is left in place;
// it is swapped for the live weather when the set is applied.
func (uc *ResolverUsecase) Resolve(ctx context.Context, msg *domain.Message, cls domain.Classification) domain.ReactionSet {
	if cls.IsGreeting() {
		token, ok := uc.segmentTokens[cls.Segment]
		if !ok || token == "" {
			// greeting without a time segment: acknowledge only
			return domain.ReactionSet{uc.ack}
		}
		return domain.ReactionSet{token}.WithAcknowledgement(uc.ack)
	}

	if uc.suggester == nil {
		return nil
	}
	suggestion := uc.suggester.Suggest(ctx, msg.Text)
	uc.metrics.ObserveSuggestion(string(suggestion.Failure))
	if !suggestion.OK() {
		uc.log.Warnw("emoji suggestion failed",
			"channel", msg.ChannelID,
			"ts", msg.TS,
			"reason", suggestion.Failure,
			"raw", suggestion.Raw,
			"error", suggestion.Err,
		)
		return nil
	}
	return suggestion.Tokens
}
