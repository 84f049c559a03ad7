package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/usecase"
)

type fakeSuggester struct {
	sug  domain.Suggestion
	seen string
}

func (f *fakeSuggester) Suggest(_ context.Context, text string) domain.Suggestion {
	f.seen = text
	return f.sug
}

type fakeWeather struct {
	res domain.WeatherResolution
}

func (f fakeWeather) Resolve(context.Context) domain.WeatherResolution { return f.res }

func newClassifier() *usecase.ClassifierUsecase {
	return usecase.NewClassifierUsecase(usecase.ClassifierConfig{
		Keywords: []string{"아침", "점심", "저녁", "안녕하세요", "좋은아침입니다"},
	})
}

func TestClassifyGreeting(t *testing.T) {
	s := NewServer("test", newClassifier(), nil, nil)

	_, out, err := s.handleClassifyGreeting(context.Background(), nil, ClassifyInput{Text: "좋은 아침입니다!"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.VerdictGreeting), out.Verdict)
	assert.Equal(t, string(domain.SegmentMorning), out.Segment)
	assert.Equal(t, 1.0, out.Score)

	_, out, err = s.handleClassifyGreeting(context.Background(), nil, ClassifyInput{Text: "배포 언제 하나요"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.VerdictNotGreeting), out.Verdict)
}

func TestSuggestReactions(t *testing.T) {
	sug := &fakeSuggester{sug: domain.Suggestion{Tokens: domain.ReactionSet{"joy", "blob-wave"}}}
	s := NewServer("test", newClassifier(), sug, nil)

	_, out, err := s.handleSuggestReactions(context.Background(), nil, SuggestInput{Text: "  ㅋㅋㅋ 웃기다 "})
	require.NoError(t, err)
	assert.Equal(t, []string{"joy", "blob-wave"}, out.Reactions)
	assert.Empty(t, out.Error)
	assert.Equal(t, "ㅋㅋㅋ 웃기다", sug.seen)
}

func TestSuggestReactions_Failures(t *testing.T) {
	sug := &fakeSuggester{sug: domain.Suggestion{Failure: domain.FailureNetwork, Err: errors.New("timeout")}}
	s := NewServer("test", newClassifier(), sug, nil)

	_, out, err := s.handleSuggestReactions(context.Background(), nil, SuggestInput{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, out.Reactions)
	assert.Equal(t, "network: timeout", out.Error)

	_, out, err = s.handleSuggestReactions(context.Background(), nil, SuggestInput{Text: "   "})
	require.NoError(t, err)
	assert.Equal(t, "text is required", out.Error)

	disabled := NewServer("test", newClassifier(), nil, nil)
	_, out, err = disabled.handleSuggestReactions(context.Background(), nil, SuggestInput{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "disabled", out.Error)
}

func TestResolveWeather(t *testing.T) {
	s := NewServer("test", newClassifier(), nil, fakeWeather{res: domain.WeatherResolution{
		Token:  "thunder_cloud_and_rain",
		Sample: &domain.WeatherSample{Code: 95, Hour: 13},
	}})

	_, out, err := s.handleResolveWeather(context.Background(), nil, WeatherInput{})
	require.NoError(t, err)
	assert.Equal(t, "thunder_cloud_and_rain", out.Reaction)
	require.NotNil(t, out.Code)
	assert.Equal(t, 95, *out.Code)
	assert.Equal(t, 13, *out.Hour)
	assert.Empty(t, out.Fallback)

	fallback := NewServer("test", newClassifier(), nil, fakeWeather{res: domain.WeatherResolution{
		Token: "sunny", Failure: domain.FailureUnknownCode,
	}})
	_, out, err = fallback.handleResolveWeather(context.Background(), nil, WeatherInput{})
	require.NoError(t, err)
	assert.Equal(t, "sunny", out.Reaction)
	assert.Equal(t, "unknown_code", out.Fallback)
	assert.Nil(t, out.Code)
}

func TestServer_ListsAndCallsToolsInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewServer("test", newClassifier(), nil, nil)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"classify_greeting", "suggest_reactions", "resolve_weather"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "classify_greeting",
		Arguments: map[string]any{"text": "안녕하세요"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"verdict":"greeting"`)
}
