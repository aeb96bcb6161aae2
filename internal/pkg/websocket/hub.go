package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Hub tracks the open assistant connections of every user. A message is
// delivered to all connections of its user, so several open tabs show the
// same conversation.
type Hub struct {
	clients map[uuid.UUID]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// Message is one entry of an assistant conversation.
type Message struct {
	ID uuid.UUID `json:"id"`

	// "user" for the question, "assistant" for the reply
	Role string `json:"role"`

	Content  string `json:"content"`
	Category string `json:"category,omitempty"`

	UserID    uuid.UUID `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a hub; it does nothing until Run is called
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]bool),
		logger:     logger,
	}
}

// Run serves registrations and deliveries until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.deliver(message)
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Str("userID", client.userID.String()).
		Str("addr", client.remoteAddr()).
		Msg("Assistant client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Str("userID", client.userID.String()).
		Str("addr", client.remoteAddr()).
		Msg("Assistant client unregistered")
}

func (h *Hub) deliver(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal assistant message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[message.UserID] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}

// Publish queues message for every connection of message.UserID. It is a
// no-op once the hub has stopped.
func (h *Hub) Publish(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientsCount returns the number of open connections of userID.
func (h *Hub) ClientsCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
