// internal/websocket/hub.go
package websocket

import (
	"context"
	"errors"
	"sync"

	wstypes "laptoppro-service/internal/domain/websocket"
	"laptoppro-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// TokenVerifier validates access tokens
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

// RevocationChecker reports whether a token was revoked by logout
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Hub struct {
	// Registered clients by staff ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Broadcasting
	broadcast chan *BroadcastMessage

	verifier    TokenVerifier
	revocations RevocationChecker
	logger      *zap.Logger
}

type BroadcastMessage struct {
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(verifier TokenVerifier, revocations RevocationChecker, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[int64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client, 16),
		done:        make(chan struct{}),
		broadcast:   make(chan *BroadcastMessage, 256),
		verifier:    verifier,
		revocations: revocations,
		logger:      logger,
	}
}

// AuthenticateClient validates the JWT token and returns the client identity
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := h.verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	if h.revocations != nil {
		revoked, err := h.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return &ClientAuth{
		StaffID:  claims.StaffID,
		Username: claims.Username,
		Role:     claims.Role,
		TokenID:  claims.ID,
	}, nil
}

// Publish queues an event for every client subscribed to channel. It never
// blocks; when the queue is full the event is dropped and logged.
func (h *Hub) Publish(channel wstypes.ChannelType, event wstypes.EventType, data interface{}) {
	msg := &BroadcastMessage{Channel: channel, Message: wstypes.NewMessage(event, data)}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping event",
			zap.String("channel", string(channel)),
			zap.String("event", string(event)),
		)
	}
}

// Register hands client to the running hub. It reports false once the hub
// has stopped, in which case the client is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		client.Close()
		return false
	}
}

// Unregister removes client from the hub; after the hub has stopped it only closes the client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// Run serves registrations and broadcasts until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.staffID] == nil {
		h.clients[client.staffID] = make(map[*Client]bool)
	}
	h.clients[client.staffID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("staff_id", client.staffID),
		zap.String("username", client.username),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"staff_id": client.staffID,
		"username": client.username,
		"role":     client.role,
		"channels": []wstypes.ChannelType{wstypes.ChannelTickets, wstypes.ChannelSales, wstypes.ChannelReminders},
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.staffID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.staffID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("staff_id", client.staffID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			if client.IsSubscribed(msg.Channel) {
				client.SendMessage(msg.Message)
			}
		}
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
