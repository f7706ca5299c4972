package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/clients"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/metrics"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/orchestrator"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	tickTimeout = 2 * time.Second
	sendBuffer  = 64
)

// Client message types.
const (
	TypeTick = "tick"
	TypeStop = "stop"
	TypePing = "ping"
)

// Server message types.
const (
	TypeWelcome = "welcome"
	TypeMood    = "mood"
	TypeError   = "error"
	TypePong    = "pong"
)

// Message is the envelope for both directions. Inbound payloads stay raw
// until the type is known.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// TickPayload is one camera frame and the transcript seen with it.
type TickPayload struct {
	Detections []clients.Face `json:"detections"`
	Transcript string         `json:"transcript"`
	VoiceScore *float64       `json:"voice_score,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin checks are left to the cors middleware config
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type client struct {
	id      string
	conn    *websocket.Conn
	send    chan Message
	done    chan struct{}
	session *orchestrator.Session
	log     logrus.FieldLogger
}

type hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newHub() *hub {
	return &hub{clients: make(map[string]*client)}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll drops every connection; each read pump then cleans up its own
// client.
func (h *hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		_ = c.conn.Close()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	id := uuid.New().String()
	log := s.log.WithField("session", id)
	c := &client{
		id:   id,
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
		session: orchestrator.NewSession(id, s.opts.Engine,
			orchestrator.WithScorer(s.opts.Scorer),
			orchestrator.WithSounds(s.opts.Sounds),
			orchestrator.WithLogger(s.log),
		),
		log: log,
	}

	s.hub.add(c)
	metrics.SessionOpened()
	log.Info("session connected")

	go c.writePump()
	c.push(TypeWelcome, map[string]any{
		"window_size": s.opts.Engine.Options().WindowSize,
		"threshold":   s.opts.Engine.Options().Threshold,
	})

	c.readPump(r.Context())

	s.hub.remove(id)
	c.session.Reset()
	metrics.SessionClosed()
	close(c.send)
	log.Info("session disconnected")
}

// push queues a message unless the writer has already gone away.
func (c *client) push(typ string, payload any) {
	msg := Message{Type: typ, SessionID: c.id, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			c.log.WithError(err).Error("encode payload")
			return
		}
		msg.Payload = b
	}
	select {
	case c.send <- msg:
	case <-c.done:
	}
}

func (c *client) pushError(msg string) {
	c.push(TypeError, map[string]string{"error": msg})
}

func (c *client) readPump(ctx context.Context) {
	defer c.conn.Close()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		switch msg.Type {
		case TypeTick:
			var p TickPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				c.pushError("invalid tick payload: " + err.Error())
				continue
			}
			tctx, cancel := context.WithTimeout(ctx, tickTimeout)
			rep := c.session.Tick(tctx, orchestrator.Sample{
				Detections: clients.ExpressionsOf(p.Detections),
				Transcript: p.Transcript,
				VoiceScore: p.VoiceScore,
			})
			cancel()
			c.push(TypeMood, rep)
		case TypeStop:
			c.session.Reset()
			c.log.Info("session reset")
		case TypePing:
			c.push(TypePong, nil)
		default:
			c.pushError("unknown message type: " + msg.Type)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
