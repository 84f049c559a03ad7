package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scanner runs one backfill pass
type Scanner interface {
	Scan(ctx context.Context) (*BackfillReport, error)
}

// BackfillScheduler runs the catch-up scan at startup and, when a cron
// spec is configured, periodically after a random jitter
type BackfillScheduler struct {
	scanner Scanner
	spec    string
	jitter  time.Duration
	cron    *cron.Cron
	log     *zap.SugaredLogger

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	randDuration func(max time.Duration) time.Duration
}

// NewBackfillScheduler creates a new backfill scheduler. An empty spec
// means startup only.
func NewBackfillScheduler(scanner Scanner, spec string, jitter time.Duration, loc *time.Location, log *zap.SugaredLogger) (*BackfillScheduler, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &BackfillScheduler{
		scanner: scanner,
		spec:    spec,
		jitter:  jitter,
		log:     log,
		randDuration: func(max time.Duration) time.Duration {
			return rand.N(max)
		},
	}
	if spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("invalid backfill cron %q: %w", spec, err)
		}
		s.cron = cron.New(cron.WithLocation(loc))
	}
	return s, nil
}

// Start runs the startup scan in the background and arms the cron schedule
func (s *BackfillScheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(s.ctx)
	}()

	if s.cron != nil {
		if _, err := s.cron.AddFunc(s.spec, s.runScheduled); err != nil {
			s.cancel()
			return fmt.Errorf("add backfill job: %w", err)
		}
		s.cron.Start()
		s.log.Infow("backfill scheduled", "cron", s.spec, "jitter", s.jitter)
	}
	return nil
}

// Stop cancels in-flight scans and waits for them to return
func (s *BackfillScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	s.log.Info("backfill scheduler stopped")
}

// RunOnce runs a scan unless one is already in progress
func (s *BackfillScheduler) RunOnce(ctx context.Context) (*BackfillReport, bool) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("backfill already running, skipping")
		return nil, false
	}
	defer s.running.Store(false)

	report, err := s.scanner.Scan(ctx)
	if err != nil {
		s.log.Errorw("backfill failed", "error", err)
	}
	return report, true
}

func (s *BackfillScheduler) runScheduled() {
	s.wg.Add(1)
	defer s.wg.Done()

	if s.jitter > 0 {
		delay := s.randDuration(s.jitter)
		s.log.Debugw("backfill jitter", "delay", delay)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}
	}
	s.RunOnce(s.ctx)
}
