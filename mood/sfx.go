package mood

import "strings"

// DefaultSfxWords is how many trailing transcript words are scanned.
const DefaultSfxWords = 1

var boomKeywords = []string{"boom", "awesome"}

// SpotSfx scans the last words of a transcript for trigger keywords.
// Matching is a case-sensitive substring search; "crazy" beats "party",
// which beats the boom keywords.
func SpotSfx(transcript string, words int) Sfx {
	if words <= 0 {
		words = DefaultSfxWords
	}
	tokens := strings.Fields(transcript)
	if len(tokens) > words {
		tokens = tokens[len(tokens)-words:]
	}
	tail := strings.Join(tokens, " ")

	switch {
	case strings.Contains(tail, "crazy"):
		return SfxCrazy
	case strings.Contains(tail, "party"):
		return SfxParty
	}
	for _, kw := range boomKeywords {
		if strings.Contains(tail, kw) {
			return SfxBoom
		}
	}
	return SfxNone
}
