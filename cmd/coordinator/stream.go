package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dreamware/worldmesh/internal/api"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamSendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream is observational; cross-origin tooling is expected
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamHub fans propagated events out to websocket subscribers. Slow
// subscribers are disconnected rather than allowed to stall the rest.
type streamHub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
	closed  bool
	log     *zap.SugaredLogger
}

type streamClient struct {
	conn *websocket.Conn
	send chan api.StreamFrame
}

func newStreamHub(log *zap.SugaredLogger) *streamHub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &streamHub{
		clients: make(map[*streamClient]struct{}),
		log:     log,
	}
}

// Broadcast queues the frame for every connected subscriber. Clients whose
// buffers are full are dropped.
func (h *streamHub) Broadcast(frame api.StreamFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.log.Infow("dropping slow event stream subscriber", "addr", c.conn.RemoteAddr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Close disconnects every subscriber and rejects future ones.
func (h *streamHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *streamHub) add(c *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *streamHub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// handleEventStream upgrades the connection and streams propagated events
// as JSON frames until the client disconnects.
func (s *server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Infow("event stream upgrade failed", "err", err)
		return
	}

	client := &streamClient{
		conn: conn,
		send: make(chan api.StreamFrame, streamSendBuffer),
	}
	if !s.hub.add(client) {
		conn.Close()
		return
	}
	s.log.Debugw("event stream subscriber connected", "addr", conn.RemoteAddr())

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces close frames and dead connections
	go func() {
		defer s.hub.remove(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	for frame := range client.send {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			s.hub.remove(client)
			// Drain so Broadcast never blocks on our buffer
			for range client.send {
			}
			return
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
		time.Now().Add(streamWriteTimeout))
}
