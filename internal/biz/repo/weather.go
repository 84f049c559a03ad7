package repo

import (
	"context"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

// Location is a fixed forecast location
type Location struct {
	Latitude  float64
	Longitude float64
	Timezone  string
}

// WeatherRepo fetches hourly forecast codes
type WeatherRepo interface {
	// HourlyForecast gets today's hourly weather codes for the location
	HourlyForecast(ctx context.Context, loc Location) (*domain.Forecast, error)
}
