package clients

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 10 * time.Second}} }

// NewHTTPWithClient wraps an existing client, e.g. one from httptest.
func NewHTTPWithClient(c *http.Client) *HTTP { return &HTTP{c: c} }

// statusError reads a short body for context on non-200 replies.
func statusError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s %s: %s", service, resp.Status, string(body))
}
