package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/middleware"
	"github.com/betmasterx/betmasterx-go/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// BalanceReader looks up the current balance of a user.
type BalanceReader interface {
	CurrentBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// Handler upgrades authenticated requests to balance streams.
type Handler struct {
	hub      *Hub
	balances BalanceReader
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler. Browser origins must be listed in
// allowedOrigins; "*" accepts any origin.
func NewHandler(hub *Hub, balances BalanceReader, allowedOrigins []string) *Handler {
	return &Handler{
		hub:      hub,
		balances: balances,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleBalanceStream sends the current balance on connect and every
// settled balance afterwards.
func (h *Handler) HandleBalanceStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	balance, err := h.balances.CurrentBalance(r.Context(), userID)
	if err != nil {
		slog.Error("balance stream lookup failed", "user_id", userID, "error", err)
		http.Error(w, "wallet not available", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan model.BalanceUpdate, sendBuffer)}
	c.send <- model.BalanceUpdate{Balance: balance.InexactFloat64()}
	h.hub.register(c)

	username, _ := middleware.UsernameFromContext(r.Context())
	slog.Info("balance stream opened", "user_id", userID, "username", username, "connections", h.hub.connections(userID))

	go c.writePump()
	c.readPump(h.hub)
}

// readPump discards client frames and unregisters on disconnect.
func (c *client) readPump(hub *Hub) {
	defer func() {
		hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("balance stream closed", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case update, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(update); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
