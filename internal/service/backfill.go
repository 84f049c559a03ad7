package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/metrics"
)

// DefaultBackfillWindow is the lookback used when none is configured
const DefaultBackfillWindow = 24 * time.Hour

// Backfill outcomes per message
const (
	BackfillProcessed = "processed"
	BackfillFiltered  = "filtered"
	BackfillReacted   = "already_reacted"
)

// Prefilterer is the coarse keyword check the scanner runs before the pipeline
type Prefilterer interface {
	Prefilter(text string) bool
}

// BackfillReport summarizes one scan
type BackfillReport struct {
	Channels       int
	FailedChannels []string
	Scanned        int
	Processed      int
	Skipped        int
}

// BackfillScanner catches up on greetings posted while the live handler was down
type BackfillScanner struct {
	messageRepo repo.MessageRepo
	filter      Prefilterer
	processor   Processor
	channels    []domain.Channel
	window      time.Duration
	now         func() time.Time

	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewBackfillScanner creates a new backfill scanner
func NewBackfillScanner(
	messageRepo repo.MessageRepo,
	filter Prefilterer,
	processor Processor,
	channels []domain.Channel,
	window time.Duration,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *BackfillScanner {
	if window <= 0 {
		window = DefaultBackfillWindow
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &BackfillScanner{
		messageRepo: messageRepo,
		filter:      filter,
		processor:   processor,
		channels:    channels,
		window:      window,
		now:         time.Now,
		log:         log,
		metrics:     m,
	}
}

// Scan runs one pass over every configured channel. Only a failure to
// resolve the bot identity aborts the scan; channel failures are skipped.
func (s *BackfillScanner) Scan(ctx context.Context) (*BackfillReport, error) {
	botID, err := s.messageRepo.BotUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve bot user id: %w", err)
	}

	oldest := s.now().Add(-s.window)
	report := &BackfillReport{}
	s.log.Infow("backfill started", "channels", len(s.channels), "oldest", oldest, "bot_user_id", botID)

	for _, ch := range s.channels {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Channels++
		if err := s.scanChannel(ctx, ch, botID, oldest, report); err != nil {
			report.FailedChannels = append(report.FailedChannels, ch.ID)
			s.metrics.ObserveBackfillChannel("error")
			s.log.Errorw("backfill channel failed", "channel", ch.ID, "name", ch.Name, "error", err)
			continue
		}
		s.metrics.ObserveBackfillChannel("ok")
	}

	s.log.Infow("backfill finished",
		"channels", report.Channels,
		"failed", len(report.FailedChannels),
		"scanned", report.Scanned,
		"processed", report.Processed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *BackfillScanner) scanChannel(ctx context.Context, ch domain.Channel, botID string, oldest time.Time, report *BackfillReport) error {
	messages, err := s.messageRepo.GetHistory(ctx, ch.ID, oldest)
	if err != nil {
		return err
	}
	s.log.Infow("checking channel", "channel", ch.ID, "name", ch.Name, "messages", len(messages))

	for i := range messages {
		msg := &messages[i]
		if msg.ChannelID == "" {
			msg.ChannelID = ch.ID
		}
		report.Scanned++

		if !s.filter.Prefilter(msg.Text) {
			s.metrics.ObserveBackfillMessage(BackfillFiltered)
			continue
		}
		if msg.HasReactionFrom(botID) {
			report.Skipped++
			s.metrics.ObserveBackfillMessage(BackfillReacted)
			s.log.Debugw("message already has bot reactions, skipping", "channel", ch.ID, "ts", msg.TS)
			continue
		}

		s.processor.Process(ctx, msg, SourceBackfill)
		report.Processed++
		s.metrics.ObserveBackfillMessage(BackfillProcessed)
	}
	return nil
}
