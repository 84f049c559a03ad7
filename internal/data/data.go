package data

import (
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/infra/openai"
)

// Repositories contains all repositories
type Repositories struct {
	Message repo.MessageRepo
	Suggest repo.SuggestRepo
	Weather repo.WeatherRepo
}

// NewRepositories creates all repositories. A nil openai client or
// forecast API leaves the matching repository disabled.
func NewRepositories(
	slackClient SlackAPI,
	openaiClient *openai.Client,
	forecastAPI ForecastAPI,
	breaker BreakerConfig,
) *Repositories {
	return &Repositories{
		Message: NewSlackRepo(slackClient),
		Suggest: NewOpenAIRepo(openaiClient),
		Weather: NewWeatherRepo(forecastAPI, breaker),
	}
}
