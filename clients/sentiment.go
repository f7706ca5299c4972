package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// --- Sentiment scorer (/score) ---
type ScoreReq struct {
	Text string `json:"text"`
}
type ScoreResp struct {
	Score float64 `json:"score"`
}

func (h *HTTP) Score(ctx context.Context, url, text string) (*ScoreResp, error) {
	payload, _ := json.Marshal(ScoreReq{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("sentiment", resp)
	}

	var out ScoreResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sentiment decode: %w", err)
	}
	return &out, nil
}

// RemoteScorer scores transcripts with the sentiment service.
type RemoteScorer struct {
	HTTP *HTTP
	URL  string
}

func (s *RemoteScorer) Score(ctx context.Context, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	out, err := s.HTTP.Score(ctx, s.URL, text)
	if err != nil {
		return 0, err
	}
	return out.Score, nil
}
