package usecase

import (
	"regexp"
	"strings"
	"unicode"
)

// emojiCodePattern matches platform emoji codes like :smile: or :city_sunset:
var emojiCodePattern = regexp.MustCompile(`:[a-z_]+:`)

const noiseChars = ":~!@#$%^&*()[]{};'\",./<>?|\\-_=+`"

// Normalize strips emoji codes, punctuation and all whitespace from raw text.
// Normalizing already-normalized text returns it unchanged.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = emojiCodePattern.ReplaceAllString(text, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\uFEFF' || strings.ContainsRune(noiseChars, r) {
			return -1
		}
		return r
	}, text)
}
