package live

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"facility-maintenance/microservices/statistics-service/logging"
)

const (
	InvalidatedEvent = "statistics:invalidated"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Event tells a dashboard that its statistics are stale and should be
// fetched again.
type Event struct {
	Event        string `json:"event"`
	DepartmentID string `json:"departmentId"`
}

type client struct {
	conn         *websocket.Conn
	departmentID string
	send         chan Event
}

// Hub keeps the websocket subscribers of every department.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub accepts upgrades from allowedOrigin, or from any origin when it is "*".
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || strings.EqualFold(origin, allowedOrigin)
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and subscribes it to the department named by
// the selectedDepartment query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	departmentID := strings.TrimSpace(r.URL.Query().Get("selectedDepartment"))
	if departmentID == "" {
		http.Error(w, "selectedDepartment is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warnf("Event ID: WS_UPGRADE_FAILED, Description: %v", err)
		return
	}

	c := &client{conn: conn, departmentID: departmentID, send: make(chan Event, sendBuffer)}
	if !h.register(c) {
		conn.Close()
		return
	}
	logging.Logger.Debugf("Event ID: WS_SUBSCRIBED, Description: department=%s remote=%s", departmentID, r.RemoteAddr)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish notifies the subscribers of departmentID, or every subscriber when
// departmentID is empty. Subscribers that cannot keep up are dropped.
func (h *Hub) Publish(departmentID string) {
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if departmentID != "" && c.departmentID != departmentID {
			continue
		}
		select {
		case c.send <- Event{Event: InvalidatedEvent, DepartmentID: c.departmentID}:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logging.Logger.Warnf("Event ID: WS_CLIENT_DROPPED, Description: department=%s subscriber too slow", c.departmentID)
		h.unregister(c)
	}
}

// Subscribers returns the number of open subscriptions of departmentID.
func (h *Hub) Subscribers(departmentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.departmentID == departmentID {
			n++
		}
	}
	return n
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers never send data.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
