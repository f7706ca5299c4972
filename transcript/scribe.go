// Package transcript keeps a live transcript from the realtime scribe
// websocket API up to date.
package transcript

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	msgInputAudio = "input_audio_chunk"
	msgSession    = "session_started"
	msgPartial    = "partial_transcript"
	msgCommitted  = "committed_transcript"

	defaultSampleRate = 16000
	defaultChunkSize  = 3200 // 100ms of 16-bit mono at 16kHz
)

var ErrEmptyURL = errors.New("realtime url not configured")

// TokenSource hands out single-use realtime tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Config struct {
	URL        string
	ModelID    string
	SampleRate int
	ChunkSize  int
}

type audioChunk struct {
	MessageType string `json:"message_type"`
	Audio       string `json:"audio_base_64"`
	Commit      bool   `json:"commit"`
	SampleRate  int    `json:"sample_rate"`
}

type event struct {
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
	SessionID   string `json:"session_id"`
	Error       string `json:"error"`
}

// Scribe streams raw PCM to the realtime API and tracks the latest partial
// transcript. A partial replaces the previous one; a committed transcript
// clears it. Transcript is safe to call from any goroutine.
type Scribe struct {
	cfg    Config
	tokens TokenSource
	dialer *websocket.Dialer
	log    logrus.FieldLogger

	mu        sync.RWMutex
	partial   string
	committed []string
}

func NewScribe(cfg Config, tokens TokenSource, log logrus.FieldLogger) *Scribe {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Scribe{
		cfg:    cfg,
		tokens: tokens,
		dialer: websocket.DefaultDialer,
		log:    log.WithField("component", "scribe"),
	}
}

// Transcript returns the current partial transcript.
func (s *Scribe) Transcript() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partial
}

// Committed returns every committed transcript so far.
func (s *Scribe) Committed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.committed...)
}

func (s *Scribe) endpoint(token string) (string, error) {
	if s.cfg.URL == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("realtime url: %w", err)
	}
	q := u.Query()
	if s.cfg.ModelID != "" {
		q.Set("model_id", s.cfg.ModelID)
	}
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Stream sends audio until it is exhausted, then commits and keeps reading
// transcripts until the server closes or ctx is done.
func (s *Scribe) Stream(ctx context.Context, audio io.Reader) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("scribe token: %w", err)
	}
	endpoint, err := s.endpoint(token)
	if err != nil {
		return err
	}

	conn, resp, err := s.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("scribe dial: %w", err)
	}
	defer conn.Close()

	readErr := make(chan error, 1)
	go func() { readErr <- s.readLoop(conn) }()

	sendErr := make(chan error, 1)
	go func() { sendErr <- s.sendLoop(ctx, conn, audio) }()

	// The sender may be blocked in audio.Read, so it is never waited on
	// here; closing the conn fails its next write.
	select {
	case <-ctx.Done():
		return nil
	case err := <-sendErr:
		if err != nil {
			return err
		}
	case err := <-readErr:
		return err
	}

	// audio done and the sender has exited; wait for the tail of the transcript
	select {
	case <-ctx.Done():
		s.closeConn(conn)
		return nil
	case err := <-readErr:
		return err
	}
}

func (s *Scribe) closeConn(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}

func (s *Scribe) sendLoop(ctx context.Context, conn *websocket.Conn, audio io.Reader) error {
	buf := make([]byte, s.cfg.ChunkSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := audio.Read(buf)
		if n > 0 {
			msg := audioChunk{
				MessageType: msgInputAudio,
				Audio:       base64.StdEncoding.EncodeToString(buf[:n]),
				SampleRate:  s.cfg.SampleRate,
			}
			if werr := conn.WriteJSON(msg); werr != nil {
				return fmt.Errorf("scribe send: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			commit := audioChunk{MessageType: msgInputAudio, Commit: true, SampleRate: s.cfg.SampleRate}
			if werr := conn.WriteJSON(commit); werr != nil {
				return fmt.Errorf("scribe commit: %w", werr)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("scribe audio: %w", err)
		}
	}
}

func (s *Scribe) readLoop(conn *websocket.Conn) error {
	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("scribe read: %w", err)
		}
		if err := s.apply(ev); err != nil {
			return err
		}
	}
}

func (s *Scribe) apply(ev event) error {
	switch {
	case ev.MessageType == msgSession:
		s.log.WithField("scribe_session", ev.SessionID).Info("realtime transcription started")
	case ev.MessageType == msgPartial:
		s.mu.Lock()
		s.partial = ev.Text
		s.mu.Unlock()
	case strings.HasPrefix(ev.MessageType, msgCommitted):
		s.mu.Lock()
		s.partial = ""
		if ev.Text != "" {
			s.committed = append(s.committed, ev.Text)
		}
		s.mu.Unlock()
		s.log.WithField("text", ev.Text).Debug("transcript committed")
	case strings.HasSuffix(ev.MessageType, "error"):
		return fmt.Errorf("scribe %s: %s", ev.MessageType, ev.Error)
	}
	return nil
}
