// Package realtime pushes payload-less change signals to browser clients over
// websockets.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"eventscape/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	pingInterval   = 60 * time.Second
	pongWait       = pingInterval + writeTimeout
	sendQueueSize  = 32
	maxInboundSize = 512
)

// message is the only frame the hub writes.
type message struct {
	Event string `json:"event"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and fans signals out to them. All client
// bookkeeping happens on the goroutine running Run.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	clients map[*client]struct{}
	count   atomic.Int64
}

var _ domain.Broadcaster = (*Hub)(nil)

// NewHub returns a hub that accepts upgrades from allowedOrigins. An empty list
// accepts any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	h := &Hub{
		logger:     logger.With("component", "realtime_hub"),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendQueueSize),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// Run owns the client set until ctx is cancelled, then disconnects every
// client. It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: the signal carries no data, so skipping it is harmless.
					h.logger.Debug("client send queue full, signal dropped")
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	h.count.Add(-1)
	close(c.send)
}

// Broadcast queues event for every connected client and never blocks.
func (h *Hub) Broadcast(event string) {
	msg, err := json.Marshal(message{Event: event})
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, signal dropped", "event", event)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// ServeWS upgrades the request and serves the client until it disconnects.
// @Summary      Real-time channel
// @Description  Upgrades to a websocket that receives {"event":"statsChanged"} whenever dashboard data may have changed.
// @Tags         realtime
// @Success      101
// @Router       /ws [get]
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go h.writePump(c)
	h.readPump(c)
}

// readPump discards inbound frames; it exists to process control frames and
// to notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	t := time.NewTicker(pingInterval)
	defer func() {
		t.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-t.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
