// Package live pushes refreshed funnel views to dashboard pages over websockets.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	sendBuffer   = 4
	maxReadBytes = 512
)

// Hub tracks websocket subscribers per date key
// ⭐ SSOT: live subscriptions are registered here only
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	date string
	send chan []byte
	once sync.Once
}

// NewHub creates an empty hub. Subscribers without ?date= follow today.
func NewHub(log *logger.Logger, now func() time.Time) *Hub {
	if now == nil {
		now = time.Now
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  log,
		now:     now,
		clients: make(map[string]map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and blocks until the subscriber leaves
// GET /ws/live?date=YYYY-MM-DD
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = calendar.Key(calendar.Today(h.now))
	}
	if !calendar.IsKey(date) {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, date: date, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

// Broadcast sends the view to every subscriber of its date.
// Subscribers that cannot keep up are dropped.
func (h *Hub) Broadcast(view contracts.FunnelView) {
	payload, err := json.Marshal(view)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode live update")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[view.Date] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WithField("date", c.date).Warn("Dropping slow live subscriber")
		h.unregister(c)
	}
}

// Subscribers returns the number of subscribers for a date
func (h *Hub) Subscribers(date string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[date])
}

// Dates returns the dates that currently have subscribers
func (h *Hub) Dates() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dates := make([]string, 0, len(h.clients))
	for date := range h.clients {
		dates = append(dates, date)
	}
	return dates
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.date]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.date] = set
	}
	set[c] = struct{}{}

	h.logger.WithFields(map[string]interface{}{
		"date":        c.date,
		"subscribers": len(set),
	}).Debug("Live subscriber joined")
}

func (h *Hub) unregister(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		if set, ok := h.clients[c.date]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.date)
			}
		}
		close(c.send)
		h.mu.Unlock()

		c.conn.Close()
	})
}

// readLoop discards client messages and detects disconnects
func (h *Hub) readLoop(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxReadBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Live subscriber disconnected")
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
