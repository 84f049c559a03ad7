package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
)

// Mock implementations

type addedReaction struct {
	ChannelID string
	TS        string
	Name      string
}

type mockMessageRepo struct {
	mu        sync.Mutex
	added     []addedReaction
	attempted []string
	failOn    map[string]error
}

func (m *mockMessageRepo) BotUserID(ctx context.Context) (string, error) {
	return "UBOT", nil
}

func (m *mockMessageRepo) GetHistory(ctx context.Context, channelID string, oldest time.Time) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockMessageRepo) AddReaction(ctx context.Context, channelID, ts, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempted = append(m.attempted, name)
	if err, ok := m.failOn[name]; ok {
		return err
	}
	m.added = append(m.added, addedReaction{ChannelID: channelID, TS: ts, Name: name})
	return nil
}

func (m *mockMessageRepo) ReplyInThread(ctx context.Context, channelID, threadTS, text string) error {
	return nil
}

func (m *mockMessageRepo) PublishHomeView(ctx context.Context, userID string, view map[string]any) error {
	return nil
}

func (m *mockMessageRepo) addedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, a := range m.added {
		names = append(names, a.Name)
	}
	return names
}

type mockSuggestRepo struct {
	response     string
	err          error
	calls        int
	systemPrompt string
	userText     string
}

func (m *mockSuggestRepo) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	m.calls++
	m.systemPrompt = systemPrompt
	m.userText = userText
	return m.response, m.err
}

type mockWeatherRepo struct {
	forecast *domain.Forecast
	err      error
	calls    int
}

func (m *mockWeatherRepo) HourlyForecast(ctx context.Context, loc repo.Location) (*domain.Forecast, error) {
	m.calls++
	return m.forecast, m.err
}

type mockSuggester struct {
	suggestion domain.Suggestion
	calls      int
}

func (m *mockSuggester) Suggest(ctx context.Context, text string) domain.Suggestion {
	m.calls++
	return m.suggestion
}

type mockWeather struct {
	resolution domain.WeatherResolution
	calls      int
}

func (m *mockWeather) Resolve(ctx context.Context) domain.WeatherResolution {
	m.calls++
	return m.resolution
}

// defaultKeywords mirrors the built-in greeting keyword list
var defaultKeywords = []string{
	"아침",
	"점심",
	"저녁",
	"안녕하세요",
	"좋은아침",
	"좋은점심",
	"좋은저녁",
	"좋은아침입니다",
	"좋은점심입니다",
	"좋은저녁입니다",
}
