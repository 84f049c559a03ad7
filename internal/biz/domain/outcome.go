package domain

import "time"

// FailureReason classifies why an external lookup fell back to a default
type FailureReason string

const (
	FailureNone        FailureReason = ""
	FailureNetwork     FailureReason = "network"
	FailureMalformed   FailureReason = "malformed"
	FailureUnknownCode FailureReason = "unknown_code"
	FailureEmpty       FailureReason = "empty"
	FailureDisabled    FailureReason = "disabled"
)

// Forecast is the hourly forecast series for one day.
// Times and Codes are parallel arrays.
type Forecast struct {
	Times []time.Time
	Codes []int
}

// WeatherSample is the forecast code chosen for the current hour
type WeatherSample struct {
	Code int
	Hour int
}

// WeatherResolution carries the resolved weather token or the reason a default was used
type WeatherResolution struct {
	Token   string
	Sample  *WeatherSample
	Failure FailureReason
	Err     error
}

// OK reports whether the token came from a live forecast
func (r WeatherResolution) OK() bool {
	return r.Failure == FailureNone
}

// Suggestion carries the tokens suggested by the language model
type Suggestion struct {
	Tokens  ReactionSet
	Raw     string
	Failure FailureReason
	Err     error
}

// OK reports whether the model produced usable tokens
func (s Suggestion) OK() bool {
	return s.Failure == FailureNone
}
