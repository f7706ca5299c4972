package orchestrator

import (
	"path"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

// trackPath is the looped track played once a mood is accepted.
func trackPath(base string, m mood.Mood) string {
	return path.Join(base, string(m)+".mp3")
}

// effectPath is the one-shot effect for a spotted keyword.
func effectPath(base string, sfx mood.Sfx) string {
	return path.Join(base, "sfx", string(sfx)+".mp3")
}

// appendBounded appends m and drops the oldest entries beyond limit.
func appendBounded(list []mood.Mood, m mood.Mood, limit int) []mood.Mood {
	list = append(list, m)
	if over := len(list) - limit; over > 0 {
		list = append(list[:0:0], list[over:]...)
	}
	return list
}

// faceCount sums detected faces over a batch of samples.
func faceCount(samples []Sample) int {
	n := 0
	for _, s := range samples {
		n += len(s.Detections)
	}
	return n
}
