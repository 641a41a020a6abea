package services

import (
	"context"
	"sync"
	"time"

	"stockroom-backend/metrics"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// EventInventoryUpdated is sent after every committed stock mutation
	EventInventoryUpdated = "inventory.updated"

	sendBufferSize = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
)

// WSMessage is the envelope of every live feed frame
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one websocket subscriber bound to a store
type Client struct {
	ID        string
	StoreID   string
	ProfileID string
	Conn      *websocket.Conn
	Send      chan WSMessage
	Hub       *Hub
}

// Hub fans committed stock changes out to the subscribers of the mutated store
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	log        *zap.Logger
}

// NewHub creates a hub; Run must be started before clients connect
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns client registration until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// unblock pending Register/Unregister and close every client
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			metrics.SetLiveClients(0)
			return

		// new subscriber
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()

			metrics.SetLiveClients(total)
			h.log.Debug("live feed client connected",
				zap.String("client_id", client.ID),
				zap.String("store_id", client.StoreID),
				zap.Int("clients", total))

		// client left or was dropped
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register hands a client to the Run loop
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister hands a client to the Run loop for removal
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove drops a client and closes its send channel exactly once
func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
	total := len(h.clients)
	h.mutex.Unlock()

	metrics.SetLiveClients(total)
	h.log.Debug("live feed client disconnected",
		zap.String("client_id", client.ID),
		zap.String("store_id", client.StoreID),
		zap.Int("clients", total))
}

// ClientCount returns the number of subscribers of a store
func (h *Hub) ClientCount(storeID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for client := range h.clients {
		if client.StoreID == storeID {
			n++
		}
	}
	return n
}

// PublishStockChange implements StockNotifier
func (h *Hub) PublishStockChange(storeID string, evt StockChangeEvent) {
	h.SendToStore(storeID, WSMessage{Type: EventInventoryUpdated, Payload: evt})
}

// SendToStore delivers a message to every subscriber of the store.
// Subscribers whose buffer is full are dropped.
func (h *Hub) SendToStore(storeID string, message WSMessage) {
	h.mutex.Lock()
	for client := range h.clients {
		if client.StoreID != storeID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
			h.log.Warn("dropping slow live feed client",
				zap.String("client_id", client.ID),
				zap.String("store_id", client.StoreID))
		}
	}
	total := len(h.clients)
	h.mutex.Unlock()
	metrics.SetLiveClients(total)
}

// NewClient builds a subscriber for an already authenticated connection
func (h *Hub) NewClient(conn *websocket.Conn, storeID, profileID string) *Client {
	return &Client{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		ProfileID: profileID,
		Conn:      conn,
		Send:      make(chan WSMessage, sendBufferSize),
		Hub:       h,
	}
}

// Serve registers the client and blocks until the connection goes away.
// The websocket handler must not return earlier or the connection is closed under it.
func (h *Hub) Serve(client *Client) {
	h.Register(client)
	go client.writePump()
	client.readPump()
}

// readPump only watches for close frames and pongs; the feed is one-way
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("live feed read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
