package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
)

// DefaultWeatherTokens maps WMO weather codes to reaction tokens
func DefaultWeatherTokens() map[int]string {
	return map[int]string{
		0:  "sunny",                  // clear sky
		1:  "partly_sunny",           // mainly clear
		2:  "cloud",                  // partly cloudy
		3:  "cloud",                  // overcast
		45: "fog",                    // fog
		48: "fog",                    // depositing rime fog
		51: "partly_sunny_rain",      // light drizzle
		53: "rain_cloud",             // moderate drizzle
		55: "rain",                   // heavy drizzle
		61: "partly_sunny_rain",      // light rain
		63: "rain_cloud",             // moderate rain
		65: "rain",                   // heavy rain
		71: "snowflake",              // light snowfall
		73: "snowflake",              // moderate snowfall
		75: "snowflake",              // heavy snowfall
		77: "snowflake",              // snow grains
		80: "partly_sunny_rain",      // light rain showers
		81: "rain_cloud",             // moderate rain showers
		82: "rain",                   // heavy rain showers
		85: "snowflake",              // light snow showers
		86: "snowflake",              // heavy snow showers
		95: "thunder_cloud_and_rain", // thunderstorm
		99: "thunder_cloud_and_rain", // severe thunderstorm
	}
}

// WeatherConfig contains weather resolver configuration
type WeatherConfig struct {
	Location     repo.Location
	Tokens       map[int]string
	DefaultToken string
}

// WeatherUsecase resolves the live weather into a reaction token.
// It never fails: any problem yields the default token plus a failure reason.
type WeatherUsecase struct {
	weatherRepo  repo.WeatherRepo
	location     repo.Location
	tz           *time.Location
	tokens       map[int]string
	defaultToken string
	now          func() time.Time
}

// NewWeatherUsecase creates a new weather usecase
func NewWeatherUsecase(weatherRepo repo.WeatherRepo, cfg WeatherConfig) *WeatherUsecase {
	tokens := cfg.Tokens
	if len(tokens) == 0 {
		tokens = DefaultWeatherTokens()
	}
	defaultToken := cfg.DefaultToken
	if defaultToken == "" {
		defaultToken = domain.TokenSunny
	}
	tz, err := time.LoadLocation(cfg.Location.Timezone)
	if err != nil || cfg.Location.Timezone == "" {
		tz = time.UTC
	}
	return &WeatherUsecase{
		weatherRepo:  weatherRepo,
		location:     cfg.Location,
		tz:           tz,
		tokens:       tokens,
		defaultToken: defaultToken,
		now:          time.Now,
	}
}

// Resolve fetches today's forecast and maps the code nearest the current hour
func (uc *WeatherUsecase) Resolve(ctx context.Context) domain.WeatherResolution {
	if uc.weatherRepo == nil {
		return uc.fallback(domain.FailureDisabled, nil, nil)
	}

	forecast, err := uc.weatherRepo.HourlyForecast(ctx, uc.location)
	if err != nil {
		if errors.Is(err, repo.ErrMalformedResponse) {
			return uc.fallback(domain.FailureMalformed, nil, err)
		}
		return uc.fallback(domain.FailureNetwork, nil, err)
	}
	if forecast == nil || len(forecast.Times) == 0 || len(forecast.Times) != len(forecast.Codes) {
		return uc.fallback(domain.FailureMalformed, nil, fmt.Errorf("forecast series: %w", repo.ErrMalformedResponse))
	}

	hour := uc.now().In(uc.tz).Hour()
	idx := ClosestHourIndex(forecast.Times, hour, uc.tz)
	sample := &domain.WeatherSample{
		Code: forecast.Codes[idx],
		Hour: forecast.Times[idx].In(uc.tz).Hour(),
	}

	token, ok := uc.tokens[sample.Code]
	if !ok {
		return uc.fallback(domain.FailureUnknownCode, sample, fmt.Errorf("unknown weather code %d", sample.Code))
	}
	return domain.WeatherResolution{Token: token, Sample: sample}
}

func (uc *WeatherUsecase) fallback(reason domain.FailureReason, sample *domain.WeatherSample, err error) domain.WeatherResolution {
	return domain.WeatherResolution{
		Token:   uc.defaultToken,
		Sample:  sample,
		Failure: reason,
		Err:     err,
	}
}

// ClosestHourIndex returns the index whose hour is nearest to hour; the first one wins ties
func ClosestHourIndex(times []time.Time, hour int, tz *time.Location) int {
	if tz == nil {
		tz = time.UTC
	}
	closest := 0
	minDiff := -1
	for i, t := range times {
		diff := t.In(tz).Hour() - hour
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			closest = i
			minDiff = diff
		}
	}
	return closest
}
