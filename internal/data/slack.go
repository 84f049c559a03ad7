package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/infra/slack"
)

// SlackAPI is the part of the Slack client the repository uses
type SlackAPI interface {
	AuthTest(ctx context.Context) (*slack.AuthTestResult, error)
	History(ctx context.Context, channelID string, oldest time.Time) ([]slack.HistoryMessage, error)
	AddReaction(ctx context.Context, channelID, ts, name string) error
	PostMessage(ctx context.Context, channelID, text, threadTS string) error
	PublishView(ctx context.Context, userID string, view map[string]any) error
}

// slackRepo implements the Slack message repository
type slackRepo struct {
	client SlackAPI

	mu        sync.Mutex
	botUserID string
}

// NewSlackRepo creates a new Slack repository
func NewSlackRepo(client SlackAPI) repo.MessageRepo {
	return &slackRepo{client: client}
}

// BotUserID resolves the bot identity once; failures are not cached
func (r *slackRepo) BotUserID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.botUserID != "" {
		return r.botUserID, nil
	}
	res, err := r.client.AuthTest(ctx)
	if err != nil {
		return "", err
	}
	r.botUserID = res.UserID
	return r.botUserID, nil
}

// GetHistory gets channel messages newer than oldest
func (r *slackRepo) GetHistory(ctx context.Context, channelID string, oldest time.Time) ([]domain.Message, error) {
	msgs, err := r.client.History(ctx, channelID, oldest)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", channelID, err)
	}

	result := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := domain.Message{
			ChannelID: channelID,
			TS:        m.TS,
			ThreadTS:  m.ThreadTS,
			UserID:    m.User,
			Text:      m.Text,
		}
		for _, reaction := range m.Reactions {
			msg.Reactions = append(msg.Reactions, domain.Reaction{
				Name:  reaction.Name,
				Users: reaction.Users,
				Count: reaction.Count,
			})
		}
		result = append(result, msg)
	}
	return result, nil
}

// AddReaction adds a reaction, translating Slack error codes into repo errors
func (r *slackRepo) AddReaction(ctx context.Context, channelID, ts, name string) error {
	err := r.client.AddReaction(ctx, channelID, ts, name)
	if err == nil {
		return nil
	}
	switch slack.ErrorCode(err) {
	case slack.CodeAlreadyReacted:
		return errors.Join(repo.ErrAlreadyReacted, err)
	case slack.CodeRateLimited:
		return errors.Join(repo.ErrRateLimited, err)
	case slack.CodeInvalidName:
		return errors.Join(repo.ErrInvalidName, err)
	}
	return err
}

// ReplyInThread posts text into the thread of threadTS
func (r *slackRepo) ReplyInThread(ctx context.Context, channelID, threadTS, text string) error {
	return r.client.PostMessage(ctx, channelID, text, threadTS)
}

// PublishHomeView publishes a home tab view
func (r *slackRepo) PublishHomeView(ctx context.Context, userID string, view map[string]any) error {
	return r.client.PublishView(ctx, userID, view)
}
