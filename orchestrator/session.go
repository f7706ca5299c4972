package orchestrator

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/metrics"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

// maxHistory bounds the accepted-mood history; only the tail is ever read.
const maxHistory = 64

// Session is the caller-side state of one camera stream: the smoothing
// window and the accepted moods. It is not safe for concurrent use; exactly
// one goroutine drives it.
type Session struct {
	ID string

	engine *mood.Engine
	scorer Scorer
	sounds string
	log    logrus.FieldLogger
	now    func() time.Time

	window  mood.Window
	history []mood.Mood
	seq     int
}

type SessionOption func(*Session)

// WithScorer sets the transcript scorer. Without one the voice score is 0.
func WithScorer(s Scorer) SessionOption {
	return func(sess *Session) { sess.scorer = s }
}

// WithSounds sets the base path cue files are served from.
func WithSounds(base string) SessionOption {
	return func(sess *Session) { sess.sounds = base }
}

func WithLogger(l logrus.FieldLogger) SessionOption {
	return func(sess *Session) { sess.log = l }
}

// WithClock overrides time.Now for report timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(sess *Session) { sess.now = now }
}

func NewSession(id string, engine *mood.Engine, opts ...SessionOption) *Session {
	s := &Session{
		ID:     id,
		engine: engine,
		sounds: "/sounds",
		now:    time.Now,
		window: engine.NewWindow(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	s.log = s.log.WithField("session", id)
	return s
}

// Current is the last accepted mood, or mood.None before the first one.
func (s *Session) Current() mood.Mood {
	if len(s.history) == 0 {
		return mood.None
	}
	return s.history[len(s.history)-1]
}

// History returns the accepted moods, oldest first.
func (s *Session) History() []mood.Mood {
	return append([]mood.Mood(nil), s.history...)
}

func (s *Session) Window() mood.Window { return s.window }

// Accept records m as the accepted mood without running a tick, e.g. to
// resume from a known state.
func (s *Session) Accept(m mood.Mood) {
	s.history = appendBounded(s.history, m, maxHistory)
}

// Tick runs one sample through the engine and updates the window and
// history from the result.
func (s *Session) Tick(ctx context.Context, sample Sample) Report {
	start := time.Now()
	s.seq++

	voice := s.voiceScore(ctx, sample)
	current := s.Current()

	res := s.engine.Calculate(mood.Input{
		Detections: sample.Detections,
		VoiceScore: voice,
		Transcript: sample.Transcript,
		Recent:     s.window,
		Current:    current,
	})
	s.window = res.Window

	rep := Report{
		SessionID:  s.ID,
		Seq:        s.seq,
		Result:     res,
		VoiceScore: voice,
		At:         s.now(),
	}

	if res.Update && res.Smoothed != current {
		s.Accept(res.Smoothed)
		rep.Changed = true
		rep.Cue.Track = trackPath(s.sounds, res.Smoothed)
		metrics.RecordTransition(string(res.Smoothed))
		s.log.WithFields(logrus.Fields{
			"from":  current,
			"to":    res.Smoothed,
			"count": res.Count,
		}).Info("mood changed")
	}
	if res.Sfx != mood.SfxNone {
		rep.Cue.Effect = effectPath(s.sounds, res.Sfx)
		metrics.RecordSfx(string(res.Sfx))
	}
	rep.Current = s.Current()

	metrics.RecordTick(len(sample.Detections) > 0, string(res.Calculated), time.Since(start).Seconds())
	s.log.WithFields(logrus.Fields{
		"seq":        s.seq,
		"faces":      len(sample.Detections),
		"voice":      voice,
		"calculated": res.Calculated,
		"smoothed":   res.Smoothed,
		"count":      res.Count,
	}).Debug("tick")
	return rep
}

// voiceScore only consults the scorer when a face is present, since the
// engine ignores voice otherwise. Scorer failures count as no signal.
func (s *Session) voiceScore(ctx context.Context, sample Sample) float64 {
	if sample.VoiceScore != nil {
		return *sample.VoiceScore
	}
	if s.scorer == nil || sample.Transcript == "" || len(sample.Detections) == 0 {
		return 0
	}
	v, err := s.scorer.Score(ctx, sample.Transcript)
	if err != nil {
		metrics.RecordCollaboratorError("scorer")
		s.log.WithError(err).Warn("sentiment scoring failed, using neutral voice")
		return 0
	}
	return v
}

// Reset clears the window and history, as when the camera stream stops.
func (s *Session) Reset() {
	s.window = s.engine.NewWindow()
	s.history = nil
	s.seq = 0
}
