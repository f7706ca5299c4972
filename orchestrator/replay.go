package orchestrator

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

// Scenario is a recorded sequence of ticks, usually captured at an event
// and replayed to tune window size and threshold.
type Scenario struct {
	Name       string         `yaml:"name" json:"name,omitempty"`
	WindowSize int            `yaml:"window_size,omitempty" json:"window_size,omitempty"`
	Threshold  int            `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	SfxWords   int            `yaml:"sfx_words,omitempty" json:"sfx_words,omitempty"`
	Current    mood.Mood      `yaml:"current,omitempty" json:"current,omitempty"`
	Ticks      []ScenarioTick `yaml:"ticks" json:"ticks"`
}

type ScenarioTick struct {
	Faces      []mood.Expressions `yaml:"faces" json:"faces"`
	Transcript string             `yaml:"transcript,omitempty" json:"transcript,omitempty"`
	VoiceScore *float64           `yaml:"voice_score,omitempty" json:"voice_score,omitempty"`
}

func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return ParseScenario(b)
}

func ParseScenario(b []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("scenario decode: %w", err)
	}
	if sc.Current != mood.None && !sc.Current.Valid() {
		return nil, fmt.Errorf("scenario: unknown current mood %q", sc.Current)
	}
	return &sc, nil
}

// Options overlays the scenario's tuning on base.
func (sc *Scenario) Options(base mood.Options) mood.Options {
	if sc.WindowSize != 0 {
		base.WindowSize = sc.WindowSize
	}
	if sc.Threshold != 0 {
		base.Threshold = sc.Threshold
	}
	if sc.SfxWords != 0 {
		base.SfxWords = sc.SfxWords
	}
	return base
}

func (sc *Scenario) Samples() []Sample {
	out := make([]Sample, 0, len(sc.Ticks))
	for _, t := range sc.Ticks {
		out = append(out, Sample{Detections: t.Faces, Transcript: t.Transcript, VoiceScore: t.VoiceScore})
	}
	return out
}

// Replay runs every tick of sc through a fresh session.
func Replay(ctx context.Context, sc *Scenario, base mood.Options, opts ...SessionOption) ([]Report, error) {
	eng, err := mood.NewEngine(sc.Options(base))
	if err != nil {
		return nil, fmt.Errorf("replay %q: %w", sc.Name, err)
	}
	s := NewSession("replay", eng, opts...)
	if sc.Current != mood.None {
		s.Accept(sc.Current)
	}
	return Collect(ctx, s, sc.Samples()), nil
}
