package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

// --- Face expression detector (/detect, /health) ---

type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Face struct {
	Expressions mood.Expressions `json:"expressions"`
	Box         *Box             `json:"box,omitempty"`
	Age         float64          `json:"age,omitempty"`
	Gender      string           `json:"gender,omitempty"`
}

type DetectResp struct {
	Faces []Face `json:"faces"`
}

type HealthResp struct {
	Loaded bool     `json:"loaded"`
	Models []string `json:"models,omitempty"`
}

// Detect fetches the faces found in the detector's latest camera frame.
func (h *HTTP) Detect(ctx context.Context, url string) (*DetectResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/detect", nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("detector", resp)
	}

	var out DetectResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("detector decode: %w", err)
	}
	return &out, nil
}

// DetectorHealth reports whether the detector has finished loading models.
func (h *HTTP) DetectorHealth(ctx context.Context, url string) (*HealthResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("detector health", resp)
	}

	var out HealthResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("detector health decode: %w", err)
	}
	return &out, nil
}

// FaceDetector adapts the detector service to the runner.
type FaceDetector struct {
	HTTP *HTTP
	URL  string
	// PollInterval is how often Ready re-checks health. Defaults to 500ms.
	PollInterval time.Duration
}

func (d *FaceDetector) Detect(ctx context.Context) ([]mood.Expressions, error) {
	resp, err := d.HTTP.Detect(ctx, d.URL)
	if err != nil {
		return nil, err
	}
	return ExpressionsOf(resp.Faces), nil
}

// ExpressionsOf drops everything but the expression sets.
func ExpressionsOf(faces []Face) []mood.Expressions {
	out := make([]mood.Expressions, 0, len(faces))
	for _, f := range faces {
		out = append(out, f.Expressions)
	}
	return out
}

// Ready blocks until the detector reports its models loaded or ctx ends.
func (d *FaceDetector) Ready(ctx context.Context) error {
	every := d.PollInterval
	if every <= 0 {
		every = 500 * time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		h, err := d.HTTP.DetectorHealth(ctx, d.URL)
		if err == nil && h.Loaded {
			return nil
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("detector not ready: %w", err)
			}
			return fmt.Errorf("detector not ready: %w", ctx.Err())
		case <-t.C:
		}
	}
}
