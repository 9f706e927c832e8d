package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/model"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// wsClient is one connected stream subscriber.
type wsClient struct {
	send   chan model.WebSocketMessage
	cancel context.CancelFunc
}

// WebSocketHandler streams cart changes to connected clients. Each client
// first receives a snapshot of the cart, then one message per cart event.
// A client whose send buffer is full is disconnected.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	cart        store.Cart
	logger      *zap.Logger
	unsubscribe func()

	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient
}

// NewWebSocketHandler creates a WebSocketHandler subscribed to cart.
func NewWebSocketHandler(cart store.Cart, logger *zap.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		cart:    cart,
		logger:  logger,
		clients: make(map[*websocket.Conn]*wsClient),
	}
	h.unsubscribe = cart.Subscribe(h.broadcast)

	return h
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket upgrades the connection and starts streaming.
//
// A client that connects while a mutation is being broadcast can see that
// mutation's event after a snapshot that already reflects it. Events carry
// the full item list, so applying it again leaves the client's view the same.
//
//nolint:contextcheck // the stream outlives the upgrade request
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &wsClient{
		send:   make(chan model.WebSocketMessage, sendBufferSize),
		cancel: cancel,
	}

	// The snapshot is queued under the lock so no event can be queued ahead of it.
	h.mu.Lock()
	h.clients[conn] = c
	c.send <- model.WebSocketMessage{
		Type:      model.WSMessageTypeSnapshot,
		Items:     h.cart.Items(),
		Timestamp: time.Now().UTC(),
	}
	h.mu.Unlock()

	h.logger.Info("websocket client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, conn, c)
	go h.readPump(ctx, conn, cancel)
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast is the cart observer. It never blocks the cart.
func (h *WebSocketHandler) broadcast(ev store.Event) {
	msg := model.WebSocketMessage{
		Type:      model.WSMessageTypeEvent,
		Operation: string(ev.Operation),
		ItemID:    ev.ItemID,
		Changed:   ev.Changed,
		Items:     ev.Items,
		Timestamp: ev.Timestamp,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("websocket client too slow, disconnecting",
				zap.String("remote_addr", conn.RemoteAddr().String()),
			)
			c.cancel()
		}
	}
}

// readPump drains incoming frames so pongs and close frames are processed.
func (h *WebSocketHandler) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer func() {
		cancel()
		h.removeClient(conn)
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
			h.logger.Debug("ignoring client message", zap.ByteString("message", message))
		}
	}
}

// writePump writes queued cart messages and periodic pings.
func (h *WebSocketHandler) writePump(ctx context.Context, conn *websocket.Conn, c *wsClient) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			_ = conn.Close()
			return
		case msg := <-c.send:
			if err := h.sendMessage(conn, msg); err != nil {
				h.logger.Debug("failed to send cart message", zap.Error(err))
				c.cancel()
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				c.cancel()
				return
			}
		}
	}
}

func (h *WebSocketHandler) sendMessage(conn *websocket.Conn, msg model.WebSocketMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (h *WebSocketHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

func (h *WebSocketHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.clients[conn]; exists {
		c.cancel()
		delete(h.clients, conn)
		h.logger.Info("websocket client disconnected", zap.String("remote_addr", conn.RemoteAddr().String()))
	}
}

// CloseAllConnections stops the cart subscription and closes every client.
func (h *WebSocketHandler) CloseAllConnections() {
	h.unsubscribe()

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	// Cancelling makes each writePump send a close frame.
	for _, c := range clients {
		c.cancel()
	}

	time.Sleep(100 * time.Millisecond)

	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	h.logger.Info("all websocket connections closed")
}
