package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	Slack    SlackConfig
	OpenAI   OpenAIConfig
	Server   ServerConfig
	Backfill BackfillConfig
	Weather  WeatherConfig
	Features FeatureConfig

	// ReactionRatePerMinute paces reactions.add; zero disables pacing
	ReactionRatePerMinute int

	LogLevel string

	// Rules loaded from YAML
	RulesPath string
	Rules     *RulesConfig
}

// SlackConfig contains Slack configuration
type SlackConfig struct {
	BotToken string
	AppToken string
	BaseURL  string
}

// OpenAIConfig contains language model configuration
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// ServerConfig contains the listener configuration
type ServerConfig struct {
	Port int
}

// BackfillConfig contains backfill scan configuration
type BackfillConfig struct {
	Enabled bool
	Window  time.Duration
	Cron    string // empty means startup only
	Jitter  time.Duration
}

// WeatherConfig contains the forecast location
type WeatherConfig struct {
	Enabled   bool
	Latitude  float64
	Longitude float64
	Timezone  string
	BaseURL   string
}

// FeatureConfig toggles the optional entry points
type FeatureConfig struct {
	Mention         bool
	HomeTab         bool
	LiveAllChannels bool
}

// Keys, matching the environment variable names
const (
	KeySlackBotToken         = "SLACK_BOT_TOKEN"
	KeySlackAppToken         = "SLACK_APP_TOKEN"
	KeySlackBaseURL          = "SLACK_API_BASE_URL"
	KeyOpenAIAPIKey          = "OPENAI_API_KEY"
	KeyOpenAIModel           = "OPENAI_MODEL"
	KeyOpenAIBaseURL         = "OPENAI_BASE_URL"
	KeyOpenAIMaxTokens       = "OPENAI_MAX_TOKENS"
	KeyPort                  = "PORT"
	KeyLogLevel              = "LOG_LEVEL"
	KeyBackfillEnabled       = "BACKFILL_ENABLED"
	KeyBackfillWindow        = "BACKFILL_WINDOW"
	KeyBackfillCron          = "BACKFILL_CRON"
	KeyBackfillJitter        = "BACKFILL_JITTER"
	KeyWeatherEnabled        = "WEATHER_ENABLED"
	KeyWeatherLatitude       = "WEATHER_LATITUDE"
	KeyWeatherLongitude      = "WEATHER_LONGITUDE"
	KeyWeatherTimezone       = "WEATHER_TIMEZONE"
	KeyWeatherBaseURL        = "WEATHER_BASE_URL"
	KeyMentionEnabled        = "MENTION_ENABLED"
	KeyHomeTabEnabled        = "HOME_TAB_ENABLED"
	KeyLiveAllChannels       = "LIVE_ALL_CHANNELS"
	KeyReactionRatePerMinute = "REACTION_RATE_PER_MINUTE"
	KeyRulesPath             = "GREETBOT_RULES_PATH"
)

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOpenAIModel, "gpt-4o-mini")
	v.SetDefault(KeyOpenAIMaxTokens, 150)
	v.SetDefault(KeyPort, 3000)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyBackfillEnabled, true)
	v.SetDefault(KeyBackfillWindow, 24*time.Hour)
	v.SetDefault(KeyBackfillCron, "")
	v.SetDefault(KeyBackfillJitter, 5*time.Minute)
	v.SetDefault(KeyWeatherEnabled, true)
	v.SetDefault(KeyWeatherLatitude, 35.6895)
	v.SetDefault(KeyWeatherLongitude, 139.6917)
	v.SetDefault(KeyWeatherTimezone, "Asia/Tokyo")
	v.SetDefault(KeyMentionEnabled, true)
	v.SetDefault(KeyHomeTabEnabled, false)
	v.SetDefault(KeyLiveAllChannels, true)
	v.SetDefault(KeyReactionRatePerMinute, 50)
}

// Load reads configuration from v (environment and bound flags) and the rules file
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Slack: SlackConfig{
			BotToken: strings.TrimSpace(v.GetString(KeySlackBotToken)),
			AppToken: strings.TrimSpace(v.GetString(KeySlackAppToken)),
			BaseURL:  v.GetString(KeySlackBaseURL),
		},
		OpenAI: OpenAIConfig{
			APIKey:    strings.TrimSpace(v.GetString(KeyOpenAIAPIKey)),
			Model:     v.GetString(KeyOpenAIModel),
			BaseURL:   v.GetString(KeyOpenAIBaseURL),
			MaxTokens: v.GetInt(KeyOpenAIMaxTokens),
		},
		Server: ServerConfig{
			Port: v.GetInt(KeyPort),
		},
		Backfill: BackfillConfig{
			Enabled: v.GetBool(KeyBackfillEnabled),
			Window:  v.GetDuration(KeyBackfillWindow),
			Cron:    strings.TrimSpace(v.GetString(KeyBackfillCron)),
			Jitter:  v.GetDuration(KeyBackfillJitter),
		},
		Weather: WeatherConfig{
			Enabled:   v.GetBool(KeyWeatherEnabled),
			Latitude:  v.GetFloat64(KeyWeatherLatitude),
			Longitude: v.GetFloat64(KeyWeatherLongitude),
			Timezone:  v.GetString(KeyWeatherTimezone),
			BaseURL:   v.GetString(KeyWeatherBaseURL),
		},
		Features: FeatureConfig{
			Mention:         v.GetBool(KeyMentionEnabled),
			HomeTab:         v.GetBool(KeyHomeTabEnabled),
			LiveAllChannels: v.GetBool(KeyLiveAllChannels),
		},
		ReactionRatePerMinute: v.GetInt(KeyReactionRatePerMinute),
		LogLevel:              v.GetString(KeyLogLevel),
	}

	rules, path, err := LoadRulesConfig(v.GetString(KeyRulesPath))
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules
	cfg.RulesPath = path
	return cfg, nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return &ConfigError{Field: KeySlackBotToken, Message: "required"}
	}
	if c.Backfill.Window <= 0 {
		return &ConfigError{Field: KeyBackfillWindow, Message: "must be positive"}
	}
	if c.Backfill.Jitter < 0 {
		return &ConfigError{Field: KeyBackfillJitter, Message: "must not be negative"}
	}
	if c.Weather.Enabled {
		if _, err := time.LoadLocation(c.Weather.Timezone); err != nil {
			return &ConfigError{Field: KeyWeatherTimezone, Message: err.Error()}
		}
	}
	if c.Rules != nil {
		if err := c.Rules.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateServe additionally checks what the long-running bot needs
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Slack.AppToken == "" {
		return &ConfigError{Field: KeySlackAppToken, Message: "required for socket mode"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: KeyPort, Message: fmt.Sprintf("invalid port %d", c.Server.Port)}
	}
	return nil
}

// Location converts the weather settings to a forecast location
func (c *WeatherConfig) Location() repo.Location {
	return repo.Location{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Timezone:  c.Timezone,
	}
}

// ToWeatherConfig converts to the weather usecase configuration
func (c *Config) ToWeatherConfig() usecase.WeatherConfig {
	cfg := usecase.WeatherConfig{Location: c.Weather.Location()}
	if c.Rules != nil {
		cfg.Tokens = c.Rules.WeatherTokens
		cfg.DefaultToken = c.Rules.DefaultWeatherToken
	}
	return cfg
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
