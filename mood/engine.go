package mood

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWindowSize = errors.New("window size must be a positive integer")
	ErrInvalidThreshold  = errors.New("threshold must be a positive integer")
	ErrInvalidSfxWords   = errors.New("sfx word count must be a positive integer")
)

// Options configures smoothing and the update gate.
type Options struct {
	// WindowSize is the capacity of the smoothing window.
	WindowSize int
	// Threshold is the minimum count within the window before a mood
	// change is accepted. A threshold above WindowSize means only the
	// first observation ever updates.
	Threshold int
	// SfxWords is how many trailing transcript words are scanned for
	// sound effect keywords.
	SfxWords int
}

// DefaultOptions matches the installation's tuning.
func DefaultOptions() Options {
	return Options{WindowSize: 3, Threshold: 2, SfxWords: DefaultSfxWords}
}

// Validate rejects non-positive settings.
func (o Options) Validate() error {
	if o.WindowSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, o.WindowSize)
	}
	if o.Threshold <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, o.Threshold)
	}
	if o.SfxWords <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSfxWords, o.SfxWords)
	}
	return nil
}

// Input is everything one tick contributes.
type Input struct {
	// Detections holds one expression set per detected face. Empty means
	// nobody was in frame.
	Detections []Expressions
	// VoiceScore is the transcript sentiment, roughly -5..5. Not clamped.
	VoiceScore float64
	Transcript string
	// Recent is the caller's window before this tick.
	Recent Window
	// Current is the last accepted mood, or None.
	Current Mood
}

// Result is the outcome of one tick.
type Result struct {
	Calculated Mood `json:"calculatedMood"`
	Smoothed   Mood `json:"smoothedMood"`
	Count      int  `json:"moodCount"`
	Update     bool `json:"shouldUpdate"`
	Sfx        Sfx  `json:"sfx,omitempty"`

	// Window is the window the caller should keep for the next tick.
	Window Window `json:"-"`
}

// Engine runs ticks with validated options.
type Engine struct {
	opts Options
}

// NewEngine validates opts and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mood engine: %w", err)
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// NewWindow returns an empty window sized for this engine.
func (e *Engine) NewWindow() Window { return NewWindow(e.opts.WindowSize) }

// Calculate runs one tick. It never modifies in.Recent.
func (e *Engine) Calculate(in Input) Result {
	return Calculate(in, e.opts)
}

// Calculate runs one tick with opts. Options are assumed valid; use
// NewEngine to check them once up front.
func Calculate(in Input, opts Options) Result {
	recent := in.Recent.Resized(opts.WindowSize)

	if len(in.Detections) == 0 {
		held := in.Current
		if !held.Valid() {
			held = Neutral
		}
		return Result{
			Calculated: Neutral,
			Smoothed:   held,
			Count:      0,
			Update:     false,
			Window:     recent,
		}
	}

	calculated := Fuse(Aggregate(in.Detections), in.VoiceScore)
	window := recent.Appended(calculated)
	smoothed, count := window.Smooth(calculated)

	update := !in.Current.Valid() ||
		(smoothed != in.Current && count >= opts.Threshold)

	return Result{
		Calculated: calculated,
		Smoothed:   smoothed,
		Count:      count,
		Update:     update,
		Sfx:        SpotSfx(in.Transcript, opts.SfxWords),
		Window:     window,
	}
}
