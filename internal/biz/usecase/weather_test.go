package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/biz/repo"
)

var tokyo = repo.Location{Latitude: 35.6895, Longitude: 139.6917, Timezone: "Asia/Tokyo"}

// dayForecast builds a 24-hour series for 2024-05-01 in Tokyo with the given codes
func dayForecast(t *testing.T, codes []int) *domain.Forecast {
	t.Helper()
	tz, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	f := &domain.Forecast{}
	for i, code := range codes {
		f.Times = append(f.Times, time.Date(2024, 5, 1, i, 0, 0, 0, tz))
		f.Codes = append(f.Codes, code)
	}
	return f
}

func newTestWeatherUsecase(t *testing.T, weatherRepo repo.WeatherRepo, hour int) *WeatherUsecase {
	t.Helper()
	uc := NewWeatherUsecase(weatherRepo, WeatherConfig{Location: tokyo})
	uc.now = func() time.Time {
		return time.Date(2024, 5, 1, hour, 20, 0, 0, uc.tz)
	}
	return uc
}

func TestWeatherUsecase_ThunderstormAtClosestHour(t *testing.T) {
	codes := make([]int, 24)
	for i := range codes {
		codes[i] = []int{0, 61, 3, 71}[i%4]
	}
	codes[13] = 95

	uc := newTestWeatherUsecase(t, &mockWeatherRepo{forecast: dayForecast(t, codes)}, 13)
	res := uc.Resolve(context.Background())

	assert.True(t, res.OK())
	assert.Equal(t, "thunder_cloud_and_rain", res.Token)
	require.NotNil(t, res.Sample)
	assert.Equal(t, 95, res.Sample.Code)
	assert.Equal(t, 13, res.Sample.Hour)
}

func TestWeatherUsecase_MapsEachClass(t *testing.T) {
	tests := map[int]string{
		0:  "sunny",
		1:  "partly_sunny",
		3:  "cloud",
		45: "fog",
		51: "partly_sunny_rain",
		63: "rain_cloud",
		65: "rain",
		75: "snowflake",
		99: "thunder_cloud_and_rain",
	}
	for code, want := range tests {
		t.Run(fmt.Sprintf("code_%d", code), func(t *testing.T) {
			codes := make([]int, 24)
			codes[8] = code
			uc := newTestWeatherUsecase(t, &mockWeatherRepo{forecast: dayForecast(t, codes)}, 8)
			assert.Equal(t, want, uc.Resolve(context.Background()).Token)
		})
	}
}

func TestWeatherUsecase_NetworkErrorFallsBack(t *testing.T) {
	uc := newTestWeatherUsecase(t, &mockWeatherRepo{err: errors.New("dial tcp: connection refused")}, 9)

	var res domain.WeatherResolution
	assert.NotPanics(t, func() { res = uc.Resolve(context.Background()) })
	assert.Equal(t, domain.TokenSunny, res.Token)
	assert.Equal(t, domain.FailureNetwork, res.Failure)
	assert.Error(t, res.Err)
}

func TestWeatherUsecase_MalformedResponse(t *testing.T) {
	uc := newTestWeatherUsecase(t, &mockWeatherRepo{err: fmt.Errorf("decode: %w", repo.ErrMalformedResponse)}, 9)
	res := uc.Resolve(context.Background())
	assert.Equal(t, domain.FailureMalformed, res.Failure)
	assert.Equal(t, domain.TokenSunny, res.Token)

	uc = newTestWeatherUsecase(t, &mockWeatherRepo{forecast: &domain.Forecast{}}, 9)
	res = uc.Resolve(context.Background())
	assert.Equal(t, domain.FailureMalformed, res.Failure)

	mismatched := dayForecast(t, []int{0, 1, 2})
	mismatched.Codes = mismatched.Codes[:2]
	uc = newTestWeatherUsecase(t, &mockWeatherRepo{forecast: mismatched}, 9)
	assert.Equal(t, domain.FailureMalformed, uc.Resolve(context.Background()).Failure)
}

func TestWeatherUsecase_UnknownCode(t *testing.T) {
	codes := make([]int, 24)
	codes[10] = 42
	uc := newTestWeatherUsecase(t, &mockWeatherRepo{forecast: dayForecast(t, codes)}, 10)

	res := uc.Resolve(context.Background())
	assert.Equal(t, domain.TokenSunny, res.Token)
	assert.Equal(t, domain.FailureUnknownCode, res.Failure)
	require.NotNil(t, res.Sample)
	assert.Equal(t, 42, res.Sample.Code)
}

func TestWeatherUsecase_Disabled(t *testing.T) {
	uc := NewWeatherUsecase(nil, WeatherConfig{Location: tokyo})
	res := uc.Resolve(context.Background())
	assert.Equal(t, domain.FailureDisabled, res.Failure)
	assert.Equal(t, domain.TokenSunny, res.Token)
}

func TestWeatherUsecase_CustomDefaultToken(t *testing.T) {
	uc := NewWeatherUsecase(&mockWeatherRepo{err: errors.New("boom")}, WeatherConfig{Location: tokyo, DefaultToken: "question"})
	assert.Equal(t, "question", uc.Resolve(context.Background()).Token)
}

func TestClosestHourIndex(t *testing.T) {
	tz := time.UTC
	at := func(h int) time.Time { return time.Date(2024, 5, 1, h, 0, 0, 0, tz) }

	assert.Equal(t, 2, ClosestHourIndex([]time.Time{at(0), at(6), at(12), at(18)}, 13, tz))
	// equal distance: the first index wins
	assert.Equal(t, 0, ClosestHourIndex([]time.Time{at(10), at(14)}, 12, tz))
	assert.Equal(t, 0, ClosestHourIndex([]time.Time{at(5)}, 23, tz))
}
