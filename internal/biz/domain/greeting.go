package domain

// Segment is the coarse time-of-day category of a greeting
type Segment string

const (
	SegmentMorning Segment = "morning"
	SegmentNoon    Segment = "noon"
	SegmentEvening Segment = "evening"
	SegmentNone    Segment = "none"
)

// Verdict is the outcome of greeting classification
type Verdict string

const (
	VerdictNotGreeting Verdict = "not_greeting"
	VerdictGreeting    Verdict = "greeting"
)

// Classification is the transient result of classifying one message
type Classification struct {
	Verdict Verdict
	Segment Segment // SegmentNone for not_greeting and for greeting-other
	Score   float64
	Keyword string // best matching keyword
}

// IsGreeting checks if the verdict is a greeting of any segment
func (c Classification) IsGreeting() bool {
	return c.Verdict == VerdictGreeting
}

// IsGreetingOther checks for a greeting without a recognizable time segment
func (c Classification) IsGreetingOther() bool {
	return c.Verdict == VerdictGreeting && c.Segment == SegmentNone
}
