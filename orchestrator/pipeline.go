package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/metrics"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

// Sink receives every report the runner produces.
type Sink func(Report)

// Runner drives a Session from a Detector and a TranscriptSource on a fixed
// interval, the way the installation samples its camera once a second.
type Runner struct {
	session    *Session
	detector   Detector
	transcript TranscriptSource
	interval   time.Duration
	sink       Sink
	log        logrus.FieldLogger
}

func NewRunner(s *Session, d Detector, ts TranscriptSource, interval time.Duration, sink Sink, log logrus.FieldLogger) *Runner {
	if ts == nil {
		ts = StaticTranscript("")
	}
	if sink == nil {
		sink = func(Report) {}
	}
	if log == nil {
		log = s.log
	}
	return &Runner{
		session:    s,
		detector:   d,
		transcript: ts,
		interval:   interval,
		sink:       sink,
		log:        log,
	}
}

// Run ticks until ctx is done. The session is reset on exit. Run returns nil
// when ctx was cancelled, so callers can treat it as a clean stop.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("runner: interval must be > 0, got %s", r.interval)
	}
	if rc, ok := r.detector.(ReadyChecker); ok {
		r.log.Info("waiting for detector models")
		if err := rc.Ready(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("runner: detector not ready: %w", err)
		}
	}

	metrics.SessionOpened()
	defer metrics.SessionClosed()
	defer r.session.Reset()

	r.log.WithField("interval", r.interval).Info("runner started")
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("runner stopped")
			return nil
		case <-t.C:
			r.sink(r.tick(ctx))
		}
	}
}

// tick gathers one sample. A tick never outlives its interval, so a slow
// collaborator cannot pile ticks up behind it.
func (r *Runner) tick(ctx context.Context) Report {
	tctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	return r.session.Tick(tctx, r.sample(tctx))
}

func (r *Runner) sample(ctx context.Context) Sample {
	faces, err := r.detector.Detect(ctx)
	if err != nil {
		metrics.RecordCollaboratorError("detector")
		r.log.WithError(err).Warn("detection failed, treating frame as empty")
		faces = nil
	}
	return Sample{Detections: faces, Transcript: r.transcript.Transcript()}
}

// Collect runs samples through a session in order and returns every report.
func Collect(ctx context.Context, s *Session, samples []Sample) []Report {
	out := make([]Report, 0, len(samples))
	for _, smp := range samples {
		out = append(out, s.Tick(ctx, smp))
	}
	s.log.WithFields(logrus.Fields{
		"ticks": len(samples),
		"faces": faceCount(samples),
		"final": displayMood(s.Current()),
	}).Info("samples collected")
	return out
}

func displayMood(m mood.Mood) string {
	if m == mood.None {
		return "-"
	}
	return string(m)
}
