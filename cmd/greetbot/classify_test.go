package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

func TestPrintClassification(t *testing.T) {
	var buf bytes.Buffer
	cls := domain.Classification{Verdict: domain.VerdictGreeting, Segment: domain.SegmentMorning, Score: 1, Keyword: "좋은아침"}
	weather := &domain.WeatherResolution{Token: "sunny", Failure: domain.FailureNetwork}

	printClassification(&buf, cls, domain.ReactionSet{"sunny", "blob-wave"}, weather)

	out := buf.String()
	assert.Contains(t, out, "verdict:  greeting\n")
	assert.Contains(t, out, "segment:  morning\n")
	assert.Contains(t, out, "score:    1.000\n")
	assert.Contains(t, out, "keyword:  좋은아침\n")
	assert.Contains(t, out, "reactions: sunny, blob-wave\n")
	assert.Contains(t, out, "weather:  sunny (fallback: network)\n")
}

func TestPrintClassification_NotGreeting(t *testing.T) {
	var buf bytes.Buffer
	cls := domain.Classification{Verdict: domain.VerdictNotGreeting, Segment: domain.SegmentNone, Score: 0.2}

	printClassification(&buf, cls, domain.ReactionSet{}, nil)

	out := buf.String()
	assert.Contains(t, out, "verdict:  not_greeting\n")
	assert.NotContains(t, out, "keyword:")
	assert.NotContains(t, out, "weather:")
}
