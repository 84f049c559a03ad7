package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	Classifications    *prometheus.CounterVec
	Reactions          *prometheus.CounterVec
	WeatherResolutions *prometheus.CounterVec
	Suggestions        *prometheus.CounterVec
	BackfillMessages   *prometheus.CounterVec
	BackfillChannels   *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetbot_classifications_total",
				Help: "Messages classified, by verdict and segment (count)",
			},
			[]string{"verdict", "segment"},
		),
		Reactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetbot_reactions_total",
				Help: "Reaction add attempts, by result (count)",
			},
			[]string{"result"},
		),
		WeatherResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetbot_weather_resolutions_total",
				Help: "Weather token resolutions, by outcome (count)",
			},
			[]string{"outcome"},
		),
		Suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetbot_suggestions_total",
				Help: "Language model emoji suggestions, by outcome (count)",
			},
			[]string{"outcome"},
		),
		BackfillMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetbot_backfill_messages_total",
				Help: "Messages seen by the backfill scanner, by outcome (count)",
			},
			[]string{"outcome"},
		),
		BackfillChannels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetbot_backfill_channels_total",
				Help: "Channels scanned by the backfill scanner, by status (count)",
			},
			[]string{"status"},
		),
		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greetbot_message_processing_duration_ms",
				Help:    "Time from classification to last reaction attempt in milliseconds",
				Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
			[]string{"source"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Classifications,
			m.Reactions,
			m.WeatherResolutions,
			m.Suggestions,
			m.BackfillMessages,
			m.BackfillChannels,
			m.ProcessingDuration,
		)
	}
	return m
}

func (m *Metrics) ObserveClassification(verdict, segment string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(verdict, segment).Inc()
}

func (m *Metrics) ObserveReaction(result string) {
	if m == nil {
		return
	}
	m.Reactions.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveWeather(outcome string) {
	if m == nil {
		return
	}
	m.WeatherResolutions.WithLabelValues(labelOrOK(outcome)).Inc()
}

func (m *Metrics) ObserveSuggestion(outcome string) {
	if m == nil {
		return
	}
	m.Suggestions.WithLabelValues(labelOrOK(outcome)).Inc()
}

func (m *Metrics) ObserveBackfillMessage(outcome string) {
	if m == nil {
		return
	}
	m.BackfillMessages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBackfillChannel(status string) {
	if m == nil {
		return
	}
	m.BackfillChannels.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveProcessing(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProcessingDuration.WithLabelValues(source).Observe(float64(d.Milliseconds()))
}

func labelOrOK(outcome string) string {
	if outcome == "" {
		return "ok"
	}
	return outcome
}
