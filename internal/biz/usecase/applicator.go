package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/metrics"
)

// WeatherResolver resolves the live weather token
type WeatherResolver interface {
	Resolve(ctx context.Context) domain.WeatherResolution
}

// ApplicatorUsecase adds reaction tokens to a message one by one
type ApplicatorUsecase struct {
	messageRepo repo.MessageRepo
	weather     WeatherResolver // nil disables sunny substitution
	log         *zap.SugaredLogger
	metrics     *metrics.Metrics
}

// NewApplicatorUsecase creates a new applicator usecase
func NewApplicatorUsecase(messageRepo repo.MessageRepo, weather WeatherResolver, log *zap.SugaredLogger, m *metrics.Metrics) *ApplicatorUsecase {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ApplicatorUsecase{
		messageRepo: messageRepo,
		weather:     weather,
		log:         log,
		metrics:     m,
	}
}

// Apply attempts every token independently. A failed add is logged and the
// remaining tokens are still attempted; nothing is retried or rolled back.
func (uc *ApplicatorUsecase) Apply(ctx context.Context, msg *domain.Message, set domain.ReactionSet) {
	for _, token := range set {
		name := uc.substitute(ctx, msg, token)

		err := uc.messageRepo.AddReaction(ctx, msg.ChannelID, msg.TS, name)
		result := reactionResult(err)
		uc.metrics.ObserveReaction(result)
		if err != nil {
			log := uc.log.Warnw
			if result == "already_reacted" {
				log = uc.log.Debugw
			}
			log("reaction add failed",
				"channel", msg.ChannelID,
				"ts", msg.TS,
				"reaction", name,
				"result", result,
				"error", err,
			)
			continue
		}
		uc.log.Debugw("reaction added", "channel", msg.ChannelID, "ts", msg.TS, "reaction", name)
	}
}

// substitute swaps the sunny token for the live weather, once per occurrence
func (uc *ApplicatorUsecase) substitute(ctx context.Context, msg *domain.Message, token string) string {
	if token != domain.TokenSunny || uc.weather == nil {
		return token
	}
	res := uc.weather.Resolve(ctx)
	uc.metrics.ObserveWeather(string(res.Failure))
	if !res.OK() {
		uc.log.Warnw("weather resolution fell back to default",
			"channel", msg.ChannelID,
			"ts", msg.TS,
			"reason", res.Failure,
			"token", res.Token,
			"error", res.Err,
		)
	}
	return res.Token
}

func reactionResult(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, repo.ErrAlreadyReacted):
		return "already_reacted"
	case errors.Is(err, repo.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, repo.ErrInvalidName):
		return "invalid_name"
	default:
		return "error"
	}
}
