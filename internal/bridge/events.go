package bridge

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types sent over /ws.
const (
	EventSystem   = "system"
	EventSession  = "session"
	EventRedirect = "redirect"
	EventPong     = "pong"
	EventError    = "error"
)

const writeWait = 10 * time.Second

// Event is one message on the websocket stream.
type Event struct {
	Type      string `json:"type"`
	Workflow  string `json:"workflow,omitempty"`
	Session   string `json:"session,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type inbound struct {
	Type string `json:"type"`
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(e)
}

// Hub fans events out to every connected UI.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	mu    sync.Mutex
	conns map[*wsConn]struct{}
}

// NewHub creates a hub accepting connections from the given origins.
// Requests without an Origin header, or from the bridge's own host, are
// always accepted.
func NewHub(origins []string, logger *logging.Logger, metrics *monitoring.Metrics) *Hub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
		logger:  logging.OrNop(logger).Named("ws"),
		metrics: metrics,
		conns:   make(map[*wsConn]struct{}),
	}
}

// HandleConnection upgrades the request and streams events until the
// client goes away.
func (h *Hub) HandleConnection(c *gin.Context) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	conn := &wsConn{conn: raw}
	h.add(conn)
	defer h.remove(conn)

	h.sendTo(conn, Event{Type: EventSystem, Message: "Connected to BizMate"})

	for {
		var msg inbound
		if err := raw.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.sendTo(conn, Event{Type: EventPong})
		default:
			h.sendTo(conn, Event{Type: EventError, Message: "unknown message type"})
		}
	}
}

// Broadcast sends e to every connection. Connections that fail are dropped.
func (h *Hub) Broadcast(e Event) {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.sendTo(c, e)
	}
}

func (h *Hub) sendTo(c *wsConn, e Event) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}
	if err := c.send(e); err != nil {
		h.logger.Debug("Dropping websocket client", zap.Error(err))
		h.remove(c)
		return
	}
	h.metrics.RecordWSMessage("out", e.Type)
}

func (h *Hub) add(c *wsConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.IncWSConnections()
}

func (h *Hub) remove(c *wsConn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if ok {
		h.metrics.DecWSConnections()
		_ = c.conn.Close()
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.remove(c)
	}
}
