package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/biz"
	"github.com/greetbot/greetbot/internal/biz/usecase"
	"github.com/greetbot/greetbot/internal/conf"
	"github.com/greetbot/greetbot/internal/data"
	"github.com/greetbot/greetbot/internal/infra/openai"
	"github.com/greetbot/greetbot/internal/infra/openmeteo"
	"github.com/greetbot/greetbot/internal/infra/slack"
	"github.com/greetbot/greetbot/internal/metrics"
	"github.com/greetbot/greetbot/internal/service"
)

// app holds every wired component
type app struct {
	cfg      *conf.Config
	log      *zap.SugaredLogger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	slack    *slack.Client
	repos    *data.Repositories
	usecases *biz.Usecases

	reactions *service.ReactionService
	backfill  *service.BackfillScanner
	mentions  *service.MentionService
	home      *service.HomeService
}

// newApp wires clients, repositories, usecases and services from cfg
func newApp(cfg *conf.Config, log *zap.SugaredLogger) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	rules := cfg.Rules

	// Initialize clients
	slackClient := slack.NewClient(slack.Config{
		BaseURL:            cfg.Slack.BaseURL,
		BotToken:           cfg.Slack.BotToken,
		AppToken:           cfg.Slack.AppToken,
		ReactionsPerMinute: cfg.ReactionRatePerMinute,
	})

	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		openaiClient = openai.NewClient(openai.Config{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			MaxTokens: cfg.OpenAI.MaxTokens,
		})
		log.Infow("language model enabled", "model", openaiClient.Model())
	} else {
		log.Warn("OPENAI_API_KEY not set, non-greeting messages get no reactions")
	}

	// An untyped nil keeps the weather repository disabled
	var forecastAPI data.ForecastAPI
	if cfg.Weather.Enabled {
		forecastAPI = openmeteo.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.Weather.BaseURL)
	}

	weatherLog := log.Named("weather")
	breaker := data.DefaultBreakerConfig()
	breaker.OnChange = func(name string, from, to gobreaker.State) {
		weatherLog.Warnw("forecast breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}

	// Initialize repository layer
	repos := data.NewRepositories(slackClient, openaiClient, forecastAPI, breaker)

	// Initialize usecase layer
	weatherUC := usecase.NewWeatherUsecase(repos.Weather, cfg.ToWeatherConfig())
	suggestUC := usecase.NewSuggestUsecase(repos.Suggest, rules.Prompts.EmojiSystem, rules.AcknowledgementToken)
	ucs := &biz.Usecases{
		Filter:     usecase.NewFilterUsecase(rules.GreetingKeywords),
		Classifier: usecase.NewClassifierUsecase(rules.ToClassifierConfig()),
		Weather:    weatherUC,
		Suggest:    suggestUC,
		Resolver:   usecase.NewResolverUsecase(suggestUC, rules.ToSegmentTokens(), rules.AcknowledgementToken, log.Named("suggest"), m),
		Applicator: usecase.NewApplicatorUsecase(repos.Message, weatherUC, log.Named("apply"), m),
	}

	// Initialize service layer
	reactions := service.NewReactionService(ucs.Filter, ucs.Classifier, ucs.Resolver, ucs.Applicator, log.Named("reaction"), m)
	if !cfg.Features.LiveAllChannels {
		reactions.RestrictChannels(rules.Channels)
	}
	backfill := service.NewBackfillScanner(repos.Message, reactions, reactions, rules.Channels, cfg.Backfill.Window, log.Named("backfill"), m)

	a := &app{
		cfg:       cfg,
		log:       log,
		registry:  registry,
		metrics:   m,
		slack:     slackClient,
		repos:     repos,
		usecases:  ucs,
		reactions: reactions,
		backfill:  backfill,
	}
	if cfg.Features.Mention {
		a.mentions = service.NewMentionService(suggestUC, ucs.Applicator, repos.Suggest, repos.Message, service.MentionConfig{
			SystemPrompt: rules.Prompts.MentionSystem,
			Apology:      rules.Prompts.Apology,
		}, log.Named("mention"))
	}
	if cfg.Features.HomeTab {
		a.home = service.NewHomeService(repos.Message, rules.Prompts.HomeView, log.Named("home"))
	}
	return a
}

func describeWeather(cfg *conf.Config) string {
	if !cfg.Weather.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("%.4f,%.4f (%s)", cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Weather.Timezone)
}
