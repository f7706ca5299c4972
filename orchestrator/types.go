package orchestrator

import (
	"context"
	"time"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

// Detector returns the expression sets of every face in the current frame.
type Detector interface {
	Detect(ctx context.Context) ([]mood.Expressions, error)
}

// ReadyChecker is implemented by detectors that load models before first use.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// TranscriptSource exposes the latest live transcript.
type TranscriptSource interface {
	Transcript() string
}

// Scorer turns transcript text into a voice sentiment score.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// StaticTranscript is a TranscriptSource that never changes.
type StaticTranscript string

func (s StaticTranscript) Transcript() string { return string(s) }

// Sample is what one tick observed.
type Sample struct {
	Detections []mood.Expressions `json:"detections" yaml:"-"`
	Transcript string             `json:"transcript" yaml:"transcript"`
	// VoiceScore, when set, bypasses the scorer.
	VoiceScore *float64 `json:"voice_score,omitempty" yaml:"voice_score,omitempty"`
}

// Cue tells the front end which sounds to play.
type Cue struct {
	Track  string `json:"track,omitempty"`  // looped mood track
	Effect string `json:"effect,omitempty"` // one-shot effect
}

// Report is the per-tick output handed to sinks and browsers.
type Report struct {
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
	mood.Result
	VoiceScore float64   `json:"voice_score"`
	Current    mood.Mood `json:"current_mood,omitempty"`
	Changed    bool      `json:"changed"`
	Cue        Cue       `json:"cue"`
	At         time.Time `json:"at"`
}
