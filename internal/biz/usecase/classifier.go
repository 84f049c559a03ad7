package usecase

import (
	"strings"

	"github.com/greetbot/greetbot/internal/biz/domain"
)

// DefaultSimilarityThreshold is the inclusive score at which text counts as a greeting
const DefaultSimilarityThreshold = 0.7

// SegmentMarkers are the substrings that pick a greeting's time segment
type SegmentMarkers struct {
	Morning string
	Noon    string
	Evening string
}

// DefaultSegmentMarkers returns the Korean time-of-day markers
func DefaultSegmentMarkers() SegmentMarkers {
	return SegmentMarkers{Morning: "아침", Noon: "점심", Evening: "저녁"}
}

// ClassifierConfig contains classifier configuration
type ClassifierConfig struct {
	Keywords  []string
	Threshold float64
	Markers   SegmentMarkers
}

// ClassifierUsecase scores text against greeting keywords
type ClassifierUsecase struct {
	keywords  []string
	threshold float64
	markers   SegmentMarkers
}

// NewClassifierUsecase creates a new classifier usecase.
// Keywords are normalized the same way as message text; list order is the tie-break order.
func NewClassifierUsecase(cfg ClassifierConfig) *ClassifierUsecase {
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		if n := Normalize(kw); n != "" {
			keywords = append(keywords, n)
		}
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	markers := cfg.Markers
	if markers == (SegmentMarkers{}) {
		markers = DefaultSegmentMarkers()
	}
	return &ClassifierUsecase{
		keywords:  keywords,
		threshold: threshold,
		markers:   markers,
	}
}

// ClassifyText normalizes raw message text and classifies it
func (uc *ClassifierUsecase) ClassifyText(raw string) domain.Classification {
	return uc.Classify(Normalize(raw))
}

// Classify classifies already-normalized text
func (uc *ClassifierUsecase) Classify(normalized string) domain.Classification {
	var best float64
	var bestKeyword string
	for _, kw := range uc.keywords {
		// strict '>' keeps the first keyword on ties
		if score := Similarity(kw, normalized); score > best {
			best = score
			bestKeyword = kw
		}
	}

	if best < uc.threshold {
		return domain.Classification{
			Verdict: domain.VerdictNotGreeting,
			Segment: domain.SegmentNone,
			Score:   best,
			Keyword: bestKeyword,
		}
	}

	return domain.Classification{
		Verdict: domain.VerdictGreeting,
		Segment: uc.segmentOf(normalized),
		Score:   best,
		Keyword: bestKeyword,
	}
}

// segmentOf checks markers in morning, noon, evening order; first match wins
func (uc *ClassifierUsecase) segmentOf(normalized string) domain.Segment {
	switch {
	case uc.markers.Morning != "" && strings.Contains(normalized, uc.markers.Morning):
		return domain.SegmentMorning
	case uc.markers.Noon != "" && strings.Contains(normalized, uc.markers.Noon):
		return domain.SegmentNoon
	case uc.markers.Evening != "" && strings.Contains(normalized, uc.markers.Evening):
		return domain.SegmentEvening
	}
	return domain.SegmentNone
}

// Similarity returns (maxLen - editDistance) / maxLen over runes, 1.0 for two empty strings
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longer := max(len(ra), len(rb))
	if longer == 0 {
		return 1.0
	}
	return float64(longer-levenshtein(ra, rb)) / float64(longer)
}

// LevenshteinDistance is the unit-cost insert/delete/substitute edit distance between a and b
func LevenshteinDistance(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	longer, shorter := a, b
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if len(shorter) == 0 {
		return len(longer)
	}

	// two rows sized by the shorter string
	prev := make([]int, len(shorter)+1)
	curr := make([]int, len(shorter)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(longer); j++ {
		curr[0] = j
		for i := 1; i <= len(shorter); i++ {
			cost := 1
			if shorter[i-1] == longer[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(shorter)]
}
