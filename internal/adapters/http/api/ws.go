package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/fest/internal/domain/types"
	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// Live feed timings.
const (
	wsWriteWait   = 10 * time.Second
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = 20 * time.Second
	wsReadLimit   = 512
	wsSendBacklog = 8
)

// MessageTypeStandings tags standings frames on the live feed.
const MessageTypeStandings = "standings"

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans standings snapshots out to websocket clients. New clients get the
// last snapshot right away; a client that cannot keep up is dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*wsClient
	last     []byte
	closed   bool
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubOrigins restricts websocket upgrades to origins; "*" or an empty
// list allows any.
func WithHubOrigins(origins []string) HubOption {
	return func(h *Hub) {
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			if o == "*" {
				return
			}
			allowed[o] = struct{}{}
		}
		if len(allowed) == 0 {
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

// WithHubLogger sets the hub logger.
func WithHubLogger(l logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[string]*wsClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("hub")
	}
	return h
}

// Broadcast sends st to every connected client and keeps it for clients
// that connect later.
func (h *Hub) Broadcast(st types.Standings) {
	b, err := json.Marshal(wsMessage{Type: MessageTypeStandings, Data: st})
	if err != nil {
		h.logger.Error(context.Background(), "marshal standings frame", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = b
	for id, c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.logger.Warn(context.Background(), "websocket client too slow, dropping",
				logger.String("client", id))
			delete(h.clients, id)
			c.close()
		}
	}
	metrics.RecordWSBroadcast()
	metrics.UpdateWSClients(len(h.clients))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later broadcasts are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
	metrics.UpdateWSClients(0)
}

func (h *Hub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c.id] = c
	metrics.UpdateWSClients(len(h.clients))
	return true
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		c.close()
	}
	metrics.UpdateWSClients(len(h.clients))
}

// HandleStandings handles GET /ws/standings upgrades.
func (h *Hub) HandleStandings(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, wsSendBacklog),
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(wsWriteWait))
		_ = conn.Close()
		return
	}
	h.logger.Debug(r.Context(), "websocket client connected", logger.String("client", c.id))

	go h.writeLoop(c)
	h.readLoop(c)
	h.logger.Debug(context.Background(), "websocket client disconnected", logger.String("client", c.id))
}

// writeLoop owns all writes to the connection.
func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are handled.
func (h *Hub) readLoop(c *wsClient) {
	defer h.unregister(c)

	c.conn.SetReadLimit(wsReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
