// Package mood fuses per-frame face expressions with a voice sentiment score
// into a single categorical mood and smooths it over a short window.
//
// Everything in this package is pure: no I/O, no clocks, no shared state.
// Callers own the window and the accepted mood between ticks.
package mood

import "fmt"

// Mood is one of the seven expression labels reported by the detector.
type Mood string

const (
	Angry     Mood = "angry"
	Disgusted Mood = "disgusted"
	Fearful   Mood = "fearful"
	Happy     Mood = "happy"
	Neutral   Mood = "neutral"
	Sad       Mood = "sad"
	Surprised Mood = "surprised"

	// None marks an unset mood, e.g. before the first accepted transition.
	None Mood = ""
)

// All lists every mood in canonical order. Argmax tie-breaks follow it.
var All = []Mood{Angry, Disgusted, Fearful, Happy, Neutral, Sad, Surprised}

var (
	positive = []Mood{Happy, Surprised}
	negative = []Mood{Angry, Sad, Disgusted, Fearful}
)

// Valid reports whether m is one of the seven labels.
func (m Mood) Valid() bool {
	return m.index() >= 0
}

func (m Mood) index() int {
	for i, v := range All {
		if v == m {
			return i
		}
	}
	return -1
}

// Parse converts a label to a Mood.
func Parse(s string) (Mood, error) {
	m := Mood(s)
	if !m.Valid() {
		return None, fmt.Errorf("unknown mood %q", s)
	}
	return m, nil
}

// Sfx is a one-shot sound effect tag spotted in the transcript.
type Sfx string

const (
	SfxCrazy Sfx = "crazy"
	SfxParty Sfx = "party"
	SfxBoom  Sfx = "boom"
	SfxNone  Sfx = ""
)
