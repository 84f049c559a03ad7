package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/usecase"
	"github.com/greetbot/greetbot/internal/service"
)

// RulesConfig contains the greeting rules loaded from YAML
type RulesConfig struct {
	Channels             []domain.Channel `yaml:"channels"`
	GreetingKeywords     []string         `yaml:"greeting_keywords"`
	SegmentMarkers       SegmentStrings   `yaml:"segment_markers"`
	SegmentTokens        SegmentStrings   `yaml:"segment_tokens"`
	AcknowledgementToken string           `yaml:"acknowledgement_token"`
	SimilarityThreshold  float64          `yaml:"similarity_threshold"`
	WeatherTokens        map[int]string   `yaml:"weather_tokens"`
	DefaultWeatherToken  string           `yaml:"default_weather_token"`
	Prompts              PromptsConfig    `yaml:"prompts"`
}

// SegmentStrings holds one string per greeting segment
type SegmentStrings struct {
	Morning string `yaml:"morning"`
	Noon    string `yaml:"noon"`
	Evening string `yaml:"evening"`
}

// PromptsConfig contains the model prompts and fixed replies
type PromptsConfig struct {
	EmojiSystem   string `yaml:"emoji_system"`
	MentionSystem string `yaml:"mention_system"`
	Apology       string `yaml:"apology"`
	HomeView      string `yaml:"home_view"`
}

// LoadRulesConfig loads rules from configPath, or from the first file found
// on the search paths. Without any file the built-in defaults are used and
// the returned path is empty.
func LoadRulesConfig(configPath string) (*RulesConfig, string, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/rules.yaml",
			"/etc/greetbot/rules.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "rules.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data, loadedPath = b, p
			break
		}
		if configPath != "" {
			return nil, "", fmt.Errorf("read rules %s: %w", configPath, err)
		}
	}

	if data == nil {
		return DefaultRulesConfig(), "", nil
	}

	var config RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}
	config.fillDefaults()
	return &config, loadedPath, nil
}

// fillDefaults fills in default values for empty fields
func (c *RulesConfig) fillDefaults() {
	defaults := DefaultRulesConfig()

	if len(c.Channels) == 0 {
		c.Channels = defaults.Channels
	}
	if len(c.GreetingKeywords) == 0 {
		c.GreetingKeywords = defaults.GreetingKeywords
	}
	c.SegmentMarkers = c.SegmentMarkers.withDefaults(defaults.SegmentMarkers)
	c.SegmentTokens = c.SegmentTokens.withDefaults(defaults.SegmentTokens)
	if c.AcknowledgementToken == "" {
		c.AcknowledgementToken = defaults.AcknowledgementToken
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if len(c.WeatherTokens) == 0 {
		c.WeatherTokens = defaults.WeatherTokens
	}
	if c.DefaultWeatherToken == "" {
		c.DefaultWeatherToken = defaults.DefaultWeatherToken
	}

	if c.Prompts.EmojiSystem == "" {
		c.Prompts.EmojiSystem = defaults.Prompts.EmojiSystem
	}
	if c.Prompts.MentionSystem == "" {
		c.Prompts.MentionSystem = defaults.Prompts.MentionSystem
	}
	if c.Prompts.Apology == "" {
		c.Prompts.Apology = defaults.Prompts.Apology
	}
	if c.Prompts.HomeView == "" {
		c.Prompts.HomeView = defaults.Prompts.HomeView
	}
}

func (s SegmentStrings) withDefaults(d SegmentStrings) SegmentStrings {
	if s.Morning == "" {
		s.Morning = d.Morning
	}
	if s.Noon == "" {
		s.Noon = d.Noon
	}
	if s.Evening == "" {
		s.Evening = d.Evening
	}
	return s
}

// Validate checks the rules are usable
func (c *RulesConfig) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return &ConfigError{Field: "similarity_threshold", Message: fmt.Sprintf("%v not in (0, 1]", c.SimilarityThreshold)}
	}
	if len(c.GreetingKeywords) == 0 {
		return &ConfigError{Field: "greeting_keywords", Message: "required"}
	}
	for i, ch := range c.Channels {
		if ch.ID == "" {
			return &ConfigError{Field: fmt.Sprintf("channels[%d].id", i), Message: "required"}
		}
	}
	return nil
}

// ToClassifierConfig converts to the classifier configuration
func (c *RulesConfig) ToClassifierConfig() usecase.ClassifierConfig {
	return usecase.ClassifierConfig{
		Keywords:  c.GreetingKeywords,
		Threshold: c.SimilarityThreshold,
		Markers: usecase.SegmentMarkers{
			Morning: c.SegmentMarkers.Morning,
			Noon:    c.SegmentMarkers.Noon,
			Evening: c.SegmentMarkers.Evening,
		},
	}
}

// ToSegmentTokens converts to the resolver's segment token table
func (c *RulesConfig) ToSegmentTokens() map[domain.Segment]string {
	return map[domain.Segment]string{
		domain.SegmentMorning: c.SegmentTokens.Morning,
		domain.SegmentNoon:    c.SegmentTokens.Noon,
		domain.SegmentEvening: c.SegmentTokens.Evening,
	}
}

// DefaultRulesConfig returns the built-in rules
func DefaultRulesConfig() *RulesConfig {
	markers := usecase.DefaultSegmentMarkers()
	return &RulesConfig{
		Channels: []domain.Channel{
			{ID: "C085U16K56K", Name: "테스트"},
			{ID: "C13KZBY0G", Name: "잡담"},
		},
		GreetingKeywords: []string{
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
		},
		SegmentMarkers: SegmentStrings{
			Morning: markers.Morning,
			Noon:    markers.Noon,
			Evening: markers.Evening,
		},
		SegmentTokens: SegmentStrings{
			Morning: domain.TokenSunny,
			Noon:    domain.TokenClock12,
			Evening: domain.TokenCitySunset,
		},
		AcknowledgementToken: domain.TokenAcknowledge,
		SimilarityThreshold:  usecase.DefaultSimilarityThreshold,
		WeatherTokens:        usecase.DefaultWeatherTokens(),
		DefaultWeatherToken:  domain.TokenSunny,
		Prompts: PromptsConfig{
			EmojiSystem:   usecase.DefaultEmojiSystemPrompt,
			MentionSystem: service.DefaultMentionPrompt,
			Apology:       service.DefaultApology,
			HomeView:      service.DefaultHomeText,
		},
	}
}
