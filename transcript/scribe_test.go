package transcript

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type staticToken string

func (s staticToken) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", errors.New("no token")
	}
	return string(s), nil
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestScribe_Stream(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	proceed := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.URL.Query().Get("token"))
		assert.Equal(t, "scribe_v2_realtime", r.URL.Query().Get("model_id"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var chunk audioChunk
		if !assert.NoError(t, conn.ReadJSON(&chunk)) {
			return
		}
		assert.Equal(t, msgInputAudio, chunk.MessageType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(pcm), chunk.Audio)
		assert.False(t, chunk.Commit)

		_ = conn.WriteJSON(event{MessageType: msgSession, SessionID: "s-1"})
		_ = conn.WriteJSON(event{MessageType: msgPartial, Text: "hello"})
		_ = conn.WriteJSON(event{MessageType: msgPartial, Text: "hello wor"})

		var commit audioChunk
		if !assert.NoError(t, conn.ReadJSON(&commit)) {
			return
		}
		assert.True(t, commit.Commit)

		<-proceed
		_ = conn.WriteJSON(event{MessageType: msgCommitted, Text: "hello world"})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	s := NewScribe(Config{URL: wsURL(srv), ModelID: "scribe_v2_realtime", ChunkSize: 64}, staticToken("tok-1"), nil)

	done := make(chan error, 1)
	go func() { done <- s.Stream(context.Background(), bytes.NewReader(pcm)) }()

	assert.Eventually(t, func() bool { return s.Transcript() == "hello wor" }, 2*time.Second, 5*time.Millisecond)
	close(proceed)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
	assert.Empty(t, s.Transcript())
	assert.Equal(t, []string{"hello world"}, s.Committed())
}

func TestScribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(event{MessageType: "auth_error", Error: "token expired"})
		// hold the socket until the client gives up
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	s := NewScribe(Config{URL: wsURL(srv)}, staticToken("t"), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// a reader that never ends keeps the sender busy
	pr, pw := newBlockingPipe()
	defer pw()
	err := s.Stream(ctx, pr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestScribe_CancelStopsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	s := NewScribe(Config{URL: wsURL(srv)}, staticToken("t"), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	pr, pw := newBlockingPipe()
	defer pw()
	assert.NoError(t, s.Stream(ctx, pr))
}

func TestScribe_Setup(t *testing.T) {
	t.Run("token failure", func(t *testing.T) {
		s := NewScribe(Config{URL: "ws://unused"}, staticToken(""), nil)
		err := s.Stream(context.Background(), strings.NewReader(""))
		assert.Error(t, err)
	})

	t.Run("no url", func(t *testing.T) {
		s := NewScribe(Config{}, staticToken("t"), nil)
		err := s.Stream(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyURL)
	})
}

func TestScribe_Endpoint(t *testing.T) {
	s := NewScribe(Config{URL: "wss://api.example.com/v1/speech-to-text/realtime", ModelID: "m1"}, nil, nil)
	got, err := s.endpoint("abc")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/v1/speech-to-text/realtime?model_id=m1&token=abc", got)
}

// newBlockingPipe returns a reader that blocks until the returned func is
// called, like a microphone that never goes quiet.
func newBlockingPipe() (*blockingReader, func()) {
	r := &blockingReader{stop: make(chan struct{})}
	return r, func() { close(r.stop) }
}

type blockingReader struct {
	stop chan struct{}
}

func (b *blockingReader) Read(_ []byte) (int, error) {
	<-b.stop
	return 0, errors.New("closed")
}
