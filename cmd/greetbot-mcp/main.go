package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	_ "time/tzdata"

	"github.com/greetbot/greetbot/internal/biz/usecase"
	"github.com/greetbot/greetbot/internal/conf"
	"github.com/greetbot/greetbot/internal/data"
	"github.com/greetbot/greetbot/internal/infra/openai"
	"github.com/greetbot/greetbot/internal/infra/openmeteo"
	"github.com/greetbot/greetbot/internal/mcp"
)

var version = "dev"

// greetbot-mcp serves the classifier, suggestion and weather stages as MCP
// tools over stdio. It never talks to Slack, so no Slack token is needed.
func main() {
	_ = godotenv.Load()

	cfg, err := conf.Load(viper.New())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[greetbot-mcp] Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Rules.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "[greetbot-mcp] Invalid rules: %v\n", err)
		os.Exit(1)
	}
	rules := cfg.Rules

	var suggester mcp.Suggester
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(openai.Config{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			MaxTokens: cfg.OpenAI.MaxTokens,
		})
		suggester = usecase.NewSuggestUsecase(data.NewOpenAIRepo(client), rules.Prompts.EmojiSystem, rules.AcknowledgementToken)
	}

	var weather mcp.WeatherResolver
	if cfg.Weather.Enabled {
		forecast := openmeteo.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.Weather.BaseURL)
		weatherRepo := data.NewWeatherRepo(forecast, data.DefaultBreakerConfig())
		weather = usecase.NewWeatherUsecase(weatherRepo, cfg.ToWeatherConfig())
	}

	classifier := usecase.NewClassifierUsecase(rules.ToClassifierConfig())
	server := mcp.NewServer(version, classifier, suggester, weather)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, "[greetbot-mcp] Serving tools on stdio")
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "[greetbot-mcp] Server error: %v\n", err)
		os.Exit(1)
	}
}
