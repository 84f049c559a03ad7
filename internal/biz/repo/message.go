package repo

import (
	"context"
	"time"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

// MessageRepo is the chat platform repository interface
// Responsible for reading history and annotating messages
type MessageRepo interface {
	// BotUserID returns the bot's own user id (resolved once, then cached)
	BotUserID(ctx context.Context) (string, error)

	// GetHistory gets messages of a channel newer than oldest, with reaction metadata
	GetHistory(ctx context.Context, channelID string, oldest time.Time) ([]domain.Message, error)

	// AddReaction adds one emoji reaction to the message identified by channel+ts
	AddReaction(ctx context.Context, channelID, ts, name string) error

	// ReplyInThread posts text as a reply in the thread of threadTS
	ReplyInThread(ctx context.Context, channelID, threadTS, text string) error

	// PublishHomeView publishes a static home tab view for the user
	PublishHomeView(ctx context.Context, userID string, view map[string]any) error
}
