package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/ripple/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const pingPeriod = 30 * time.Second

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub fans binary frames out to every connected client and feeds their
// pointer reports into an inbox. A client that falls SendBuffer frames
// behind is dropped.
type Hub struct {
	inbox        *PointerInbox
	sendBuffer   int
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub that records pointer reports in inbox.
func NewHub(cfg config.StreamConfig, inbox *PointerInbox) *Hub {
	return &Hub{
		inbox:        inbox,
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: time.Duration(cfg.WriteTimeoutMS) * time.Millisecond,
		clients:      make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.sendBuffer), id: r.RemoteAddr}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("stream client connected", "remote", c.id, "clients", n)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("stream read failed", "remote", c.id, "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		p, err := ParsePointer(msg)
		if err != nil {
			slog.Debug("ignoring pointer message", "remote", c.id, "error", err)
			continue
		}
		h.inbox.Set(p)
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// remove drops c if it is still registered and closes its send queue.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Info("stream client disconnected", "remote", c.id, "clients", len(h.clients))
	}
}

// Broadcast queues msg for every client without blocking. msg must not be
// modified afterwards. It returns the number of clients dropped for being
// too slow.
func (h *Hub) Broadcast(msg []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			dropped++
		}
	}
	return dropped
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
