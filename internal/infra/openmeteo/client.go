package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// hourly times come without an offset and are local to the requested timezone
const timeLayout = "2006-01-02T15:04"

// ErrMalformed is returned when the body cannot be turned into a forecast
var ErrMalformed = errors.New("malformed forecast")

// Forecast is today's hourly weather codes
type Forecast struct {
	Times []time.Time
	Codes []int
}

type forecastResponse struct {
	Timezone string `json:"timezone"`
	Hourly   struct {
		Time        []string `json:"time"`
		WeatherCode []*int   `json:"weathercode"`
	} `json:"hourly"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client fetches hourly forecasts from Open-Meteo
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a new Open-Meteo client
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: baseURL}
}

// HourlyWeatherCodes gets today's hourly weather codes at lat/lon, with
// times interpreted in timezone
func (c *Client) HourlyWeatherCodes(ctx context.Context, lat, lon float64, timezone string) (*Forecast, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("hourly", "weathercode")
	q.Set("timezone", timezone)
	q.Set("forecast_days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("open-meteo: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo: http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out forecastResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out.Error {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, out.Reason)
	}
	return parseHourly(out, loc)
}

func parseHourly(out forecastResponse, loc *time.Location) (*Forecast, error) {
	times, codes := out.Hourly.Time, out.Hourly.WeatherCode
	if len(times) == 0 || len(times) != len(codes) {
		return nil, fmt.Errorf("%w: %d times, %d codes", ErrMalformed, len(times), len(codes))
	}

	f := &Forecast{
		Times: make([]time.Time, 0, len(times)),
		Codes: make([]int, 0, len(codes)),
	}
	for i, ts := range times {
		t, err := time.ParseInLocation(timeLayout, ts, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: time %q: %v", ErrMalformed, ts, err)
		}
		// null codes show up for hours the model has not produced yet
		if codes[i] == nil {
			continue
		}
		f.Times = append(f.Times, t)
		f.Codes = append(f.Codes, *codes[i])
	}
	if len(f.Times) == 0 {
		return nil, fmt.Errorf("%w: no weather codes", ErrMalformed)
	}
	return f, nil
}
