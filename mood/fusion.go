package mood

import "math"

const (
	// StrongVoice is the absolute voice score above which voice restricts
	// the candidate moods.
	StrongVoice = 3.0

	strongVoiceWeight = 0.7
	weakVoiceWeight   = 0.3
)

// Weights returns the voice and face weights for a voice score.
func Weights(voiceScore float64) (voice, face float64) {
	voice = weakVoiceWeight
	if math.Abs(voiceScore) > StrongVoice {
		voice = strongVoiceWeight
	}
	return voice, 1 - voice
}

// Fuse picks the instantaneous mood from aggregated face scores and a voice
// score. A strongly positive or negative voice narrows the choice to moods
// of that polarity the face actually shows; otherwise the face decides.
func Fuse(scores Scores, voiceScore float64) Mood {
	switch {
	case voiceScore > StrongVoice:
		return fuseWithin(scores, voiceScore, positive)
	case voiceScore < -StrongVoice:
		return fuseWithin(scores, voiceScore, negative)
	default:
		return Dominant(scores)
	}
}

func fuseWithin(scores Scores, voiceScore float64, candidates []Mood) Mood {
	voiceWeight, faceWeight := Weights(voiceScore)

	best := None
	bestScore := 0.0
	for _, m := range candidates {
		face := scores.Get(m)
		if face <= 0 {
			continue
		}
		blended := face*faceWeight + voiceWeight
		if best == None || blended > bestScore {
			best, bestScore = m, blended
		}
	}
	if best == None {
		return Dominant(scores)
	}
	return best
}

// Dominant returns the highest scoring mood. Neutral is the seed, and a
// later mood only wins with a strictly greater score.
func Dominant(scores Scores) Mood {
	best := Neutral
	for _, m := range All {
		if scores.Get(m) > scores.Get(best) {
			best = m
		}
	}
	return best
}
