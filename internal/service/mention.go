package service

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/biz/usecase"
)

// CommandEmoji switches a mention from a free-form prompt to reactions
const CommandEmoji = "emoji"

const (
	DefaultMentionPrompt = "You are a friendly assistant living in a Slack workspace. Answer briefly in the language of the question."
	DefaultApology       = "죄송합니다. 지금은 답변을 드릴 수 없어요. 잠시 후 다시 시도해 주세요."
)

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)

// MentionConfig contains mention handling configuration
type MentionConfig struct {
	SystemPrompt string
	Apology      string
}

// MentionService handles messages that mention the bot
type MentionService struct {
	suggester    usecase.Suggester
	applicatorUC *usecase.ApplicatorUsecase
	suggestRepo  repo.SuggestRepo
	messageRepo  repo.MessageRepo

	systemPrompt string
	apology      string
	log          *zap.SugaredLogger
}

// NewMentionService creates a new mention service
func NewMentionService(
	suggester usecase.Suggester,
	applicatorUC *usecase.ApplicatorUsecase,
	suggestRepo repo.SuggestRepo,
	messageRepo repo.MessageRepo,
	cfg MentionConfig,
	log *zap.SugaredLogger,
) *MentionService {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultMentionPrompt
	}
	if cfg.Apology == "" {
		cfg.Apology = DefaultApology
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MentionService{
		suggester:    suggester,
		applicatorUC: applicatorUC,
		suggestRepo:  suggestRepo,
		messageRepo:  messageRepo,
		systemPrompt: cfg.SystemPrompt,
		apology:      cfg.Apology,
		log:          log,
	}
}

// HandleMention reacts to "emoji <text>" commands and answers anything
// else in the message thread
func (s *MentionService) HandleMention(ctx context.Context, msg *domain.Message) error {
	text := StripMentions(msg.Text)
	if cmd, rest := SplitCommand(text); cmd == CommandEmoji {
		return s.handleEmoji(ctx, msg, rest)
	}
	return s.handlePrompt(ctx, msg, text)
}

func (s *MentionService) handleEmoji(ctx context.Context, msg *domain.Message, text string) error {
	if text != "" && s.suggester != nil {
		suggestion := s.suggester.Suggest(ctx, text)
		if suggestion.OK() {
			s.applicatorUC.Apply(ctx, msg, suggestion.Tokens)
			return nil
		}
		s.log.Warnw("emoji command failed",
			"channel", msg.ChannelID,
			"ts", msg.TS,
			"reason", suggestion.Failure,
			"error", suggestion.Err,
		)
	}
	return s.reply(ctx, msg, s.apology)
}

func (s *MentionService) handlePrompt(ctx context.Context, msg *domain.Message, prompt string) error {
	if prompt == "" || s.suggestRepo == nil {
		return s.reply(ctx, msg, s.apology)
	}
	answer, err := s.suggestRepo.Complete(ctx, s.systemPrompt, prompt)
	answer = strings.TrimSpace(answer)
	if err != nil || answer == "" {
		s.log.Warnw("mention completion failed", "channel", msg.ChannelID, "ts", msg.TS, "error", err)
		return s.reply(ctx, msg, s.apology)
	}
	return s.reply(ctx, msg, answer)
}

func (s *MentionService) reply(ctx context.Context, msg *domain.Message, text string) error {
	threadTS := msg.ThreadTS
	if threadTS == "" {
		threadTS = msg.TS
	}
	return s.messageRepo.ReplyInThread(ctx, msg.ChannelID, threadTS, text)
}

// StripMentions removes every <@USER> marker from text
func StripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

// SplitCommand returns the first word and the trimmed remainder
func SplitCommand(text string) (cmd, rest string) {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}
