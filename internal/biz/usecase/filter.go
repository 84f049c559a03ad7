package usecase

import "strings"

// FilterUsecase is the coarse keyword pre-check run before classification.
// It is looser than the classifier: plain substring containment on raw text.
type FilterUsecase struct {
	keywords []string
}

// NewFilterUsecase creates a new filter usecase
func NewFilterUsecase(keywords []string) *FilterUsecase {
	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	return &FilterUsecase{keywords: kws}
}

// Matches reports whether text contains any keyword
func (uc *FilterUsecase) Matches(text string) bool {
	if text == "" {
		return false
	}
	for _, kw := range uc.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
