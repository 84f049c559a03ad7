package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/usecase"
)

// Mock implementations

type addedReaction struct {
	ChannelID string
	TS        string
	Name      string
}

type threadReply struct {
	ChannelID string
	ThreadTS  string
	Text      string
}

type mockMessageRepo struct {
	mu sync.Mutex

	botID      string
	botErr     error
	history    map[string][]domain.Message
	historyErr map[string]error
	oldest     map[string]time.Time

	added   []addedReaction
	replies []threadReply
	views   map[string]map[string]any
	viewErr error
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{
		botID:      "UBOT",
		history:    make(map[string][]domain.Message),
		historyErr: make(map[string]error),
		oldest:     make(map[string]time.Time),
		views:      make(map[string]map[string]any),
	}
}

func (m *mockMessageRepo) BotUserID(ctx context.Context) (string, error) {
	return m.botID, m.botErr
}

func (m *mockMessageRepo) GetHistory(ctx context.Context, channelID string, oldest time.Time) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oldest[channelID] = oldest
	if err := m.historyErr[channelID]; err != nil {
		return nil, err
	}
	// hand out a copy like a fresh fetch would
	return append([]domain.Message(nil), m.history[channelID]...), nil
}

func (m *mockMessageRepo) AddReaction(ctx context.Context, channelID, ts, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, addedReaction{ChannelID: channelID, TS: ts, Name: name})
	return nil
}

func (m *mockMessageRepo) ReplyInThread(ctx context.Context, channelID, threadTS, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, threadReply{ChannelID: channelID, ThreadTS: threadTS, Text: text})
	return nil
}

func (m *mockMessageRepo) PublishHomeView(ctx context.Context, userID string, view map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.viewErr != nil {
		return m.viewErr
	}
	m.views[userID] = view
	return nil
}

func (m *mockMessageRepo) reactionsOn(ts string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, a := range m.added {
		if a.TS == ts {
			names = append(names, a.Name)
		}
	}
	return names
}

type mockSuggestRepo struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	texts    []string
}

func (m *mockSuggestRepo) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, systemPrompt)
	m.texts = append(m.texts, userText)
	return m.response, m.err
}

func (m *mockSuggestRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

type mockWeather struct {
	token string
}

func (m *mockWeather) Resolve(ctx context.Context) domain.WeatherResolution {
	return domain.WeatherResolution{Token: m.token}
}

type recordingProcessor struct {
	mu        sync.Mutex
	processed []string
}

func (p *recordingProcessor) Process(ctx context.Context, msg *domain.Message, source string) domain.ReactionSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, msg.ChannelID+"/"+msg.TS)
	return nil
}

type mockScanner struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
	block chan struct{}
	err   error
}

func (s *mockScanner) Scan(ctx context.Context) (*BackfillReport, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
		}
	}
	if s.done != nil {
		s.done <- struct{}{}
	}
	return &BackfillReport{}, s.err
}

func (s *mockScanner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errBoom = errors.New("boom")

var testKeywords = []string{
	"아침", "점심", "저녁", "안녕하세요",
	"좋은아침", "좋은점심", "좋은저녁",
	"좋은아침입니다", "좋은점심입니다", "좋은저녁입니다",
}

// newTestPipeline wires the real usecases over mock repos
func newTestPipeline(messages *mockMessageRepo, suggest *mockSuggestRepo, weather usecase.WeatherResolver) *ReactionService {
	suggestUC := usecase.NewSuggestUsecase(suggest, "", "")
	return NewReactionService(
		usecase.NewFilterUsecase(testKeywords),
		usecase.NewClassifierUsecase(usecase.ClassifierConfig{Keywords: testKeywords}),
		usecase.NewResolverUsecase(suggestUC, nil, "", nil, nil),
		usecase.NewApplicatorUsecase(messages, weather, nil, nil),
		nil,
		nil,
	)
}
