package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

// Classifier classifies raw message text
type Classifier interface {
	ClassifyText(raw string) domain.Classification
}

// Suggester asks the language model for reaction tokens
type Suggester interface {
	Suggest(ctx context.Context, text string) domain.Suggestion
}

// WeatherResolver maps the current forecast to a reaction token
type WeatherResolver interface {
	Resolve(ctx context.Context) domain.WeatherResolution
}

// GreetbotMCPServer exposes the pipeline stages as MCP tools.
// Nothing here touches Slack; the tools are read-only previews.
type GreetbotMCPServer struct {
	server     *mcp.Server
	classifier Classifier
	suggester  Suggester
	weather    WeatherResolver
}

// NewServer creates the MCP server and registers its tools.
// suggester and weather may be nil; their tools then report the feature as disabled.
func NewServer(version string, classifier Classifier, suggester Suggester, weather WeatherResolver) *GreetbotMCPServer {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "greetbot",
		Version: version,
	}, nil)

	s := &GreetbotMCPServer{
		server:     server,
		classifier: classifier,
		suggester:  suggester,
		weather:    weather,
	}
	s.registerTools()
	return s
}

// Server returns the underlying MCP server
func (s *GreetbotMCPServer) Server() *mcp.Server {
	return s.server
}

// Run serves the tools over stdio until ctx is done or the client disconnects
func (s *GreetbotMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *GreetbotMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_greeting",
		Description: "Classify a chat message as a greeting. Returns the verdict, time-of-day segment, similarity score and best matching keyword.",
	}, s.handleClassifyGreeting)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest_reactions",
		Description: "Ask the language model for emoji reaction names for a message. The acknowledgement emoji is always included on success.",
	}, s.handleSuggestReactions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_weather",
		Description: "Resolve the reaction emoji for the current hour's weather forecast at the configured location.",
	}, s.handleResolveWeather)
}

// ClassifyInput is the input for classify_greeting
type ClassifyInput struct {
	Text string `json:"text" jsonschema:"the raw message text"`
}

// ClassifyOutput is the classification of one message
type ClassifyOutput struct {
	Verdict string  `json:"verdict"`
	Segment string  `json:"segment"`
	Score   float64 `json:"score"`
	Keyword string  `json:"keyword,omitempty"`
}

func (s *GreetbotMCPServer) handleClassifyGreeting(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	cls := s.classifier.ClassifyText(input.Text)
	return nil, ClassifyOutput{
		Verdict: string(cls.Verdict),
		Segment: string(cls.Segment),
		Score:   cls.Score,
		Keyword: cls.Keyword,
	}, nil
}

// SuggestInput is the input for suggest_reactions
type SuggestInput struct {
	Text string `json:"text" jsonschema:"the message text to react to"`
}

// SuggestOutput lists the suggested reaction names
type SuggestOutput struct {
	Reactions []string `json:"reactions"`
	Error     string   `json:"error,omitempty"`
}

func (s *GreetbotMCPServer) handleSuggestReactions(ctx context.Context, req *mcp.CallToolRequest, input SuggestInput) (*mcp.CallToolResult, SuggestOutput, error) {
	if s.suggester == nil {
		return nil, SuggestOutput{Reactions: []string{}, Error: string(domain.FailureDisabled)}, nil
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, SuggestOutput{Reactions: []string{}, Error: "text is required"}, nil
	}

	sug := s.suggester.Suggest(ctx, text)
	out := SuggestOutput{Reactions: []string(sug.Tokens)}
	if out.Reactions == nil {
		out.Reactions = []string{}
	}
	if !sug.OK() {
		out.Error = describeFailure(sug.Failure, sug.Err)
	}
	return nil, out, nil
}

// WeatherInput is empty, the location comes from configuration
type WeatherInput struct{}

// WeatherOutput is the resolved weather token
type WeatherOutput struct {
	Reaction string `json:"reaction"`
	Code     *int   `json:"code,omitempty"`
	Hour     *int   `json:"hour,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

func (s *GreetbotMCPServer) handleResolveWeather(ctx context.Context, req *mcp.CallToolRequest, input WeatherInput) (*mcp.CallToolResult, WeatherOutput, error) {
	if s.weather == nil {
		return nil, WeatherOutput{Reaction: domain.TokenSunny, Fallback: string(domain.FailureDisabled)}, nil
	}

	res := s.weather.Resolve(ctx)
	out := WeatherOutput{Reaction: res.Token}
	if res.Sample != nil {
		code, hour := res.Sample.Code, res.Sample.Hour
		out.Code, out.Hour = &code, &hour
	}
	if !res.OK() {
		out.Fallback = describeFailure(res.Failure, res.Err)
	}
	return nil, out, nil
}

func describeFailure(reason domain.FailureReason, err error) string {
	if err == nil {
		return string(reason)
	}
	return string(reason) + ": " + err.Error()
}
