package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moodPayload struct {
	Seq        int     `json:"seq"`
	Calculated string  `json:"calculatedMood"`
	Smoothed   string  `json:"smoothedMood"`
	Count      int     `json:"moodCount"`
	Update     bool    `json:"shouldUpdate"`
	Sfx        string  `json:"sfx"`
	VoiceScore float64 `json:"voice_score"`
	Changed    bool    `json:"changed"`
	Cue        struct {
		Track  string `json:"track"`
		Effect string `json:"effect"`
	} `json:"cue"`
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func sendTick(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Message{Type: TypeTick, Payload: json.RawMessage(payload)}))
}

func readMood(t *testing.T, conn *websocket.Conn) moodPayload {
	t.Helper()
	msg := read(t, conn)
	require.Equal(t, TypeMood, msg.Type, string(msg.Payload))
	var p moodPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	return p
}

func TestWS_Session(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, wsURL(srv))

	welcome := read(t, conn)
	assert.Equal(t, TypeWelcome, welcome.Type)
	assert.NotEmpty(t, welcome.SessionID)

	sendTick(t, conn, `{"detections":[{"expressions":{"sad":0.9,"happy":0.1}}],"transcript":"boom"}`)
	m1 := readMood(t, conn)
	assert.Equal(t, "sad", m1.Calculated)
	assert.True(t, m1.Changed)
	assert.Equal(t, "/sounds/sad.mp3", m1.Cue.Track)
	assert.Equal(t, "boom", m1.Sfx)
	assert.Equal(t, "/sounds/sfx/boom.mp3", m1.Cue.Effect)

	sendTick(t, conn, `{"detections":[{"expressions":{"happy":0.8}}],"transcript":""}`)
	m2 := readMood(t, conn)
	assert.Equal(t, "happy", m2.Calculated)
	assert.False(t, m2.Update)
	assert.False(t, m2.Changed)

	// nobody in frame
	sendTick(t, conn, `{"detections":[],"transcript":"party"}`)
	m3 := readMood(t, conn)
	assert.Equal(t, "neutral", m3.Calculated)
	assert.Equal(t, "sad", m3.Smoothed)
	assert.Zero(t, m3.Count)
	assert.Empty(t, m3.Sfx)
	assert.Equal(t, 3, m3.Seq)
}

func TestWS_StopResetsSession(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, wsURL(srv))
	read(t, conn)

	sendTick(t, conn, `{"detections":[{"expressions":{"angry":0.9}}]}`)
	readMood(t, conn)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeStop}))

	sendTick(t, conn, `{"detections":[{"expressions":{"happy":0.9}}]}`)
	m := readMood(t, conn)
	assert.Equal(t, 1, m.Seq)
	assert.True(t, m.Changed, "first mood after a reset is accepted at once")
	assert.Equal(t, "happy", m.Smoothed)
}

func TestWS_VoiceScoreOverride(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, wsURL(srv))
	read(t, conn)

	sendTick(t, conn, `{"detections":[{"expressions":{"happy":0.2,"sad":0.9}}],"voice_score":4.5}`)
	m := readMood(t, conn)
	assert.Equal(t, "happy", m.Calculated)
	assert.Equal(t, 4.5, m.VoiceScore)
}

func TestWS_PingAndErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, wsURL(srv))
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Message{Type: TypePing}))
	assert.Equal(t, TypePong, read(t, conn).Type)

	sendTick(t, conn, `{"detections":"nope"}`)
	assert.Equal(t, TypeError, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Message{Type: "dance"}))
	msg := read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "dance")
}

func TestWS_SessionCount(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, wsURL(srv))
	read(t, conn)

	health := func() float64 {
		resp, err := srv.Client().Get(srv.URL + "/health")
		if err != nil {
			return -1
		}
		defer resp.Body.Close()
		var body struct {
			Sessions float64 `json:"sessions"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return -1
		}
		return body.Sessions
	}
	assert.Equal(t, 1.0, health())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return health() == 0 }, 2*time.Second, 10*time.Millisecond)
}
