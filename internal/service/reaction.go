package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/usecase"
	"github.com/greetbot/greetbot/internal/metrics"
)

// Message sources, used as log fields and metric labels
const (
	SourceLive     = "live"
	SourceBackfill = "backfill"
)

// Processor runs the classify → resolve → apply pipeline for one message
type Processor interface {
	Process(ctx context.Context, msg *domain.Message, source string) domain.ReactionSet
}

// ReactionService is the single greeting pipeline shared by the live
// handler and the backfill scanner
type ReactionService struct {
	filterUC     *usecase.FilterUsecase
	classifierUC *usecase.ClassifierUsecase
	resolverUC   *usecase.ResolverUsecase
	applicatorUC *usecase.ApplicatorUsecase

	// channels restricts the live path; nil means every channel
	channels map[string]bool

	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewReactionService creates a new reaction service
func NewReactionService(
	filterUC *usecase.FilterUsecase,
	classifierUC *usecase.ClassifierUsecase,
	resolverUC *usecase.ResolverUsecase,
	applicatorUC *usecase.ApplicatorUsecase,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *ReactionService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReactionService{
		filterUC:     filterUC,
		classifierUC: classifierUC,
		resolverUC:   resolverUC,
		applicatorUC: applicatorUC,
		log:          log,
		metrics:      m,
	}
}

// RestrictChannels limits the live path to the given channels
func (s *ReactionService) RestrictChannels(channels []domain.Channel) {
	if len(channels) == 0 {
		s.channels = nil
		return
	}
	s.channels = make(map[string]bool, len(channels))
	for _, ch := range channels {
		s.channels[ch.ID] = true
	}
}

// Prefilter is the coarse keyword check shared by both entry points
func (s *ReactionService) Prefilter(text string) bool {
	return s.filterUC.Matches(text)
}

// HandleMessage is the live entry point. It reports whether the message
// went through the pipeline.
func (s *ReactionService) HandleMessage(ctx context.Context, msg *domain.Message) bool {
	if s.channels != nil && !s.channels[msg.ChannelID] {
		return false
	}
	if !s.Prefilter(msg.Text) {
		return false
	}
	s.Process(ctx, msg, SourceLive)
	return true
}

// Process classifies, resolves and applies reactions for one message
// and returns the resolved set (before weather substitution)
func (s *ReactionService) Process(ctx context.Context, msg *domain.Message, source string) domain.ReactionSet {
	start := time.Now()

	cls := s.classifierUC.ClassifyText(msg.Text)
	s.metrics.ObserveClassification(string(cls.Verdict), string(cls.Segment))

	set := s.resolverUC.Resolve(ctx, msg, cls)
	s.log.Infow("message classified",
		"source", source,
		"channel", msg.ChannelID,
		"ts", msg.TS,
		"verdict", cls.Verdict,
		"segment", cls.Segment,
		"score", cls.Score,
		"keyword", cls.Keyword,
		"reactions", []string(set),
	)

	s.applicatorUC.Apply(ctx, msg, set)
	s.metrics.ObserveProcessing(source, time.Since(start))
	return set
}
