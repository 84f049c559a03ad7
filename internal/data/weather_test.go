package data

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greetbot/greetbot/internal/biz/repo"
	"github.com/greetbot/greetbot/internal/infra/openmeteo"
)

type fakeForecastAPI struct {
	calls    int
	forecast *openmeteo.Forecast
	err      error
}

func (f *fakeForecastAPI) HourlyWeatherCodes(ctx context.Context, lat, lon float64, timezone string) (*openmeteo.Forecast, error) {
	f.calls++
	return f.forecast, f.err
}

var tokyo = repo.Location{Latitude: 35.6895, Longitude: 139.6917, Timezone: "Asia/Tokyo"}

func TestWeatherRepo_HourlyForecast(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	api := &fakeForecastAPI{forecast: &openmeteo.Forecast{Times: []time.Time{now}, Codes: []int{61}}}

	f, err := NewWeatherRepo(api, DefaultBreakerConfig()).HourlyForecast(context.Background(), tokyo)
	require.NoError(t, err)
	assert.Equal(t, []int{61}, f.Codes)
	assert.Equal(t, []time.Time{now}, f.Times)
}

func TestWeatherRepo_MalformedIsClassified(t *testing.T) {
	api := &fakeForecastAPI{err: fmt.Errorf("%w: bad", openmeteo.ErrMalformed)}

	_, err := NewWeatherRepo(api, DefaultBreakerConfig()).HourlyForecast(context.Background(), tokyo)
	assert.ErrorIs(t, err, repo.ErrMalformedResponse)
}

func TestWeatherRepo_BreakerOpensAfterFailures(t *testing.T) {
	api := &fakeForecastAPI{err: errors.New("connection refused")}
	var opened bool
	cfg := DefaultBreakerConfig()
	cfg.OnChange = func(name string, from, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			opened = true
		}
	}
	r := NewWeatherRepo(api, cfg)

	for i := 0; i < 3; i++ {
		_, err := r.HourlyForecast(context.Background(), tokyo)
		require.Error(t, err)
	}
	assert.True(t, opened)

	_, err := r.HourlyForecast(context.Background(), tokyo)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NotErrorIs(t, err, repo.ErrMalformedResponse)
	assert.Equal(t, 3, api.calls)
}

func TestNewRepositories_DisabledCollaborators(t *testing.T) {
	repos := NewRepositories(&fakeSlackAPI{}, nil, nil, DefaultBreakerConfig())
	assert.NotNil(t, repos.Message)
	assert.Nil(t, repos.Suggest)
	assert.Nil(t, repos.Weather)
}
