package domain

// Reaction tokens with fixed meaning in the pipeline
const (
	TokenSunny       = "sunny"
	TokenClock12     = "clock12"
	TokenCitySunset  = "city_sunset"
	TokenAcknowledge = "blob-wave"
)

// ReactionSet is an ordered sequence of reaction tokens. Duplicates are
// allowed here; dedup happens against the platform at application time.
type ReactionSet []string

// Contains checks for an exact, case-sensitive token match
func (s ReactionSet) Contains(token string) bool {
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}

// WithAcknowledgement returns the set with ack appended if it is not present
func (s ReactionSet) WithAcknowledgement(ack string) ReactionSet {
	if ack == "" || s.Contains(ack) {
		return s
	}
	out := make(ReactionSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, ack)
}
