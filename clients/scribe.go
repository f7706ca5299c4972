package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoAPIKey is returned when a token is requested without an API key.
var ErrNoAPIKey = errors.New("scribe api key not configured")

// --- Realtime scribe single-use token ---
type TokenResp struct {
	Token string `json:"token"`
}

// ScribeToken asks the transcription provider for a single-use realtime
// token so browsers never see the API key.
func (h *HTTP) ScribeToken(ctx context.Context, apiURL, apiKey string) (*TokenResp, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/v1/single-use-token/realtime_scribe", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", apiKey)

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("scribe token", resp)
	}

	var out TokenResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("scribe token decode: %w", err)
	}
	if out.Token == "" {
		return nil, errors.New("scribe token: empty token in response")
	}
	return &out, nil
}

// TokenIssuer binds ScribeToken to configured credentials.
type TokenIssuer struct {
	HTTP   *HTTP
	APIURL string
	APIKey string
}

func (t *TokenIssuer) Token(ctx context.Context) (string, error) {
	out, err := t.HTTP.ScribeToken(ctx, t.APIURL, t.APIKey)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}
