package server

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/infra/slack"
)

const seenTTL = 5 * time.Minute

// SocketDialer opens Socket Mode connections
type SocketDialer interface {
	ConnectSocket(ctx context.Context) (*websocket.Conn, error)
}

// MessageHandler runs the greeting pipeline for a live message
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *domain.Message) bool
}

// MentionHandler answers messages that mention the bot
type MentionHandler interface {
	HandleMention(ctx context.Context, msg *domain.Message) error
}

// HomeHandler publishes the home tab
type HomeHandler interface {
	HandleHomeOpened(ctx context.Context, userID string) error
}

// SlackServer receives Socket Mode events and dispatches them
type SlackServer struct {
	dialer      SocketDialer
	messageRepo repo.MessageRepo
	messages    MessageHandler
	mentions    MentionHandler // nil disables mention handling
	home        HomeHandler    // nil disables the home tab

	botUserID      string
	reconnectDelay time.Duration
	connected      atomic.Bool
	handlers       sync.WaitGroup
	log            *zap.SugaredLogger

	// Redelivery deduplication cache
	seenMu sync.Mutex
	seen   map[string]time.Time
}

// NewSlackServer creates a new Slack server
func NewSlackServer(
	dialer SocketDialer,
	messageRepo repo.MessageRepo,
	messages MessageHandler,
	mentions MentionHandler,
	home HomeHandler,
	log *zap.SugaredLogger,
) *SlackServer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SlackServer{
		dialer:         dialer,
		messageRepo:    messageRepo,
		messages:       messages,
		mentions:       mentions,
		home:           home,
		reconnectDelay: 2 * time.Second,
		log:            log,
		seen:           make(map[string]time.Time),
	}
}

// Connected reports whether a socket is currently open
func (s *SlackServer) Connected() bool {
	return s.connected.Load()
}

// Run resolves the bot identity, then reads events until ctx is done,
// reconnecting whenever the socket drops
func (s *SlackServer) Run(ctx context.Context) error {
	botUserID, err := s.messageRepo.BotUserID(ctx)
	if err != nil {
		return err
	}
	s.botUserID = botUserID
	s.log.Infow("bot identity resolved", "bot_user_id", botUserID)

	defer s.handlers.Wait()
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := s.dialer.ConnectSocket(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warnw("socket connect failed", "error", err)
			if !sleep(ctx, s.reconnectDelay) {
				return nil
			}
			continue
		}

		s.connected.Store(true)
		s.log.Info("socket connected")
		err = s.consume(ctx, conn)
		s.connected.Store(false)

		if ctx.Err() != nil {
			s.log.Info("socket closed on shutdown")
			return nil
		}
		s.log.Warnw("socket dropped, reconnecting", "error", err)
	}
}

func (s *SlackServer) consume(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	return slack.ConsumeSocket(ctx, conn, func(env slack.Envelope) error {
		ev, ok, err := slack.ParseEvent(env, s.botUserID)
		if err != nil {
			s.log.Warnw("undecodable event", "envelope_id", env.EnvelopeID, "error", err)
			return nil
		}
		if !ok {
			return nil
		}
		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			s.dispatch(ctx, ev)
		}()
		return nil
	})
}

// dispatch routes one decoded event. Messages are independent of each other;
// the pipeline for a single message runs sequentially.
func (s *SlackServer) dispatch(ctx context.Context, ev *slack.InboundEvent) {
	key := ev.Type + ":" + ev.ChannelID + ":" + ev.TS
	if ev.Type == slack.EventAppHomeOpened {
		key = ev.Type + ":" + ev.EventID
	}
	if s.isSeen(key) {
		s.log.Debugw("duplicate event ignored", "key", key)
		return
	}
	s.markSeen(key)

	switch ev.Type {
	case slack.EventMessage:
		// mentions arrive twice, once as message and once as app_mention
		if s.mentions != nil && s.botUserID != "" && strings.Contains(ev.Text, "<@"+s.botUserID) {
			return
		}
		s.messages.HandleMessage(ctx, toMessage(ev))

	case slack.EventAppMention:
		if s.mentions == nil {
			return
		}
		if err := s.mentions.HandleMention(ctx, toMessage(ev)); err != nil {
			s.log.Warnw("mention reply failed", "channel", ev.ChannelID, "ts", ev.TS, "error", err)
		}

	case slack.EventAppHomeOpened:
		if s.home == nil {
			return
		}
		_ = s.home.HandleHomeOpened(ctx, ev.UserID)
	}
}

func toMessage(ev *slack.InboundEvent) *domain.Message {
	return &domain.Message{
		ChannelID: ev.ChannelID,
		TS:        ev.TS,
		ThreadTS:  ev.ThreadTS,
		UserID:    ev.UserID,
		Text:      ev.Text,
	}
}

// isSeen checks if an event has been handled recently
func (s *SlackServer) isSeen(key string) bool {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	_, exists := s.seen[key]
	return exists
}

// markSeen records an event and drops records older than the TTL
func (s *SlackServer) markSeen(key string) {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	now := time.Now()
	s.seen[key] = now

	cutoff := now.Add(-seenTTL)
	for k, ts := range s.seen {
		if ts.Before(cutoff) {
			delete(s.seen, k)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
