package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/repo"
)

// DefaultHomeText is shown on the app home tab
const DefaultHomeText = "*Welcome!* :blob-wave:\n" +
	"I react to greetings like 좋은아침, 점심, 저녁 and 안녕하세요.\n" +
	"Mention me with `emoji <text>` to get reactions, or ask me anything to get a reply in the thread."

// HomeService publishes the static home tab
type HomeService struct {
	messageRepo repo.MessageRepo
	text        string
	log         *zap.SugaredLogger
}

// NewHomeService creates a new home service
func NewHomeService(messageRepo repo.MessageRepo, text string, log *zap.SugaredLogger) *HomeService {
	if text == "" {
		text = DefaultHomeText
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HomeService{messageRepo: messageRepo, text: text, log: log}
}

// View builds the home view payload
func (s *HomeService) View() map[string]any {
	return map[string]any{
		"type": "home",
		"blocks": []any{
			map[string]any{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": s.text,
				},
			},
		},
	}
}

// HandleHomeOpened publishes the view for userID
func (s *HomeService) HandleHomeOpened(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.messageRepo.PublishHomeView(ctx, userID, s.View()); err != nil {
		s.log.Warnw("home view publish failed", "user", userID, "error", err)
		return err
	}
	return nil
}
