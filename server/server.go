// Package server exposes the browser-facing HTTP surface: the scribe token
// relay, the per-visitor mood websocket, health and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/clients"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/metrics"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/orchestrator"
)

const shutdownTimeout = 5 * time.Second

// TokenIssuer hands out single-use realtime transcription tokens.
type TokenIssuer interface {
	Token(ctx context.Context) (string, error)
}

type Options struct {
	Addr        string
	CORSOrigins []string
	// TokenRatePerMin <= 0 disables the token rate limit.
	TokenRatePerMin int
	TokenBurst      int

	Engine *mood.Engine
	Scorer orchestrator.Scorer
	Sounds string
	Tokens TokenIssuer

	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
	Log      logrus.FieldLogger
}

type Server struct {
	opts    Options
	log     logrus.FieldLogger
	limiter *rate.Limiter
	hub     *hub
	handler http.Handler
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	limit := rate.Inf
	if opts.TokenRatePerMin > 0 {
		limit = rate.Limit(float64(opts.TokenRatePerMin) / 60)
	}
	burst := opts.TokenBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		opts:    opts,
		log:     log,
		limiter: rate.NewLimiter(limit, burst),
		hub:     newHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /scribe-token", s.handleToken)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	s.handler = cors(opts.CORSOrigins, mux)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is done, then shuts down and drops every
// open websocket.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.opts.Addr).Info("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(sctx)
	s.hub.closeAll()
	if err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		metrics.RecordTokenRequest("limited")
		writeError(w, http.StatusTooManyRequests, "too many token requests")
		return
	}
	if s.opts.Tokens == nil {
		metrics.RecordTokenRequest("error")
		writeError(w, http.StatusServiceUnavailable, clients.ErrNoAPIKey.Error())
		return
	}

	token, err := s.opts.Tokens.Token(r.Context())
	if err != nil {
		metrics.RecordTokenRequest("error")
		if errors.Is(err, clients.ErrNoAPIKey) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.log.WithError(err).Error("scribe token request failed")
		writeError(w, http.StatusBadGateway, "failed to get token")
		return
	}
	metrics.RecordTokenRequest("ok")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  s.hub.count(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// cors allows the listed origins, or any origin when the list holds "*".
// Preflight requests are answered here and never reach the mux.
func cors(origins []string, next http.Handler) http.Handler {
	anyOrigin := len(origins) == 0 || slices.Contains(origins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}, ", "))
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
