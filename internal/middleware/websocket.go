package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"procwatch/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	// Same-origin dashboard; the API carries no credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans realtime dashboard frames out to connected browsers. Clients are
// read-only: inbound messages are drained solely to service pong handling.
type Hub struct {
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	frames     chan []byte
	done       chan struct{}
	log        *utils.Logger
}

// NewHub returns a hub ready for Run.
func NewHub(log *utils.Logger) *Hub {
	return &Hub{
		conns:      make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		frames:     make(chan []byte, 8),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run services the hub until Close is called. Run it in its own goroutine.
func (h *Hub) Run() {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = struct{}{}
			h.mu.Unlock()
			h.log.Write("websocket client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				conn.Close()
			}
			h.mu.Unlock()
			h.log.Write("websocket client disconnected")

		case frame := <-h.frames:
			h.writeAll(websocket.TextMessage, frame)

		case <-pingTicker.C:
			h.pingAll()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.conns {
				conn.Close()
				delete(h.conns, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Close shuts the hub down and disconnects all clients.
func (h *Hub) Close() {
	close(h.done)
}

// BroadcastJSON marshals v and queues it for delivery to every client.
// Frames are dropped when the hub is backed up; the next tick supersedes
// them anyway.
func (h *Hub) BroadcastJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Writef("websocket marshal: %v", err)
		return
	}
	select {
	case h.frames <- payload:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) writeAll(messageType int, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(messageType, payload); err != nil {
			h.log.Writef("websocket write: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) pingAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		deadline := time.Now().Add(writeWait)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			h.log.Writef("websocket ping: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Handler upgrades the request and parks the connection on the hub until the
// client goes away.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Writef("websocket upgrade: %v", err)
			return
		}

		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		h.register <- conn
		defer func() { h.unregister <- conn }()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNoStatusReceived) {
					h.log.Writef("websocket read: %v", err)
				}
				return
			}
		}
	}
}
