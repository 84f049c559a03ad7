package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/infra/openmeteo"
)

// ForecastAPI is the part of the Open-Meteo client the repository uses
type ForecastAPI interface {
	HourlyWeatherCodes(ctx context.Context, lat, lon float64, timezone string) (*openmeteo.Forecast, error)
}

// BreakerConfig contains circuit breaker settings for the forecast API
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	OnChange    func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig trips after 3 consecutive failures and probes again after a minute
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     time.Minute,
	}
}

// weatherRepo implements the weather repository behind a circuit breaker,
// so a dead forecast API falls back to the default token without waiting
type weatherRepo struct {
	client ForecastAPI
	cb     *gobreaker.CircuitBreaker
}

// NewWeatherRepo creates a weather repository; a nil client disables it
func NewWeatherRepo(client ForecastAPI, cfg BreakerConfig) repo.WeatherRepo {
	if client == nil {
		return nil
	}
	settings := gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: cfg.OnChange,
	}
	return &weatherRepo{client: client, cb: gobreaker.NewCircuitBreaker(settings)}
}

// HourlyForecast gets today's hourly codes for loc
func (r *weatherRepo) HourlyForecast(ctx context.Context, loc repo.Location) (*domain.Forecast, error) {
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.client.HourlyWeatherCodes(ctx, loc.Latitude, loc.Longitude, loc.Timezone)
	})
	if err != nil {
		if errors.Is(err, openmeteo.ErrMalformed) {
			return nil, fmt.Errorf("%w: %v", repo.ErrMalformedResponse, err)
		}
		return nil, fmt.Errorf("forecast: %w", err)
	}

	f := out.(*openmeteo.Forecast)
	return &domain.Forecast{Times: f.Times, Codes: f.Codes}, nil
}
