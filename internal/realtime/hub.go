package realtime

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/model"
)

const sendBuffer = 8

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan model.BalanceUpdate
}

// Hub fans balance updates out to the websocket connections of each user.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*client]struct{})}
}

// Publish queues the balance for every connection of the user. Slow
// connections that have a full queue miss the update.
func (h *Hub) Publish(userID int64, balance decimal.Decimal) {
	update := model.BalanceUpdate{Balance: balance.InexactFloat64()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- update:
		default:
			slog.Warn("dropping balance update for slow client", "user_id", userID)
		}
	}
}

func (h *Hub) connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	slog.Debug("balance subscriber registered", "user_id", c.userID)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			c.conn.Close()
		}
		delete(h.clients, userID)
	}
}
