// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing      EventType = "ping"
	EventTypePong      EventType = "pong"
	EventTypeConnected EventType = "connected"
	EventTypeError     EventType = "error"

	// Shop events (server -> client)
	EventTypeTicketCreated EventType = "ticket.created"
	EventTypeTicketUpdated EventType = "ticket.updated"
	EventTypeSaleCreated   EventType = "sale.created"
	EventTypeReminderSent  EventType = "reminder.sent"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelTickets   ChannelType = "tickets"
	ChannelSales     ChannelType = "sales"
	ChannelReminders ChannelType = "reminders"
)

func (c ChannelType) Valid() bool {
	return c == ChannelTickets || c == ChannelSales || c == ChannelReminders
}

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ReminderSentData is published after the bot accepted a follow-up message.
type ReminderSentData struct {
	TicketID   int64  `json:"ticket_id"`
	TicketCode string `json:"ticket_code"`
	Kind       string `json:"kind"`
}

// Publisher fans an event out to the clients subscribed to channel.
// Implementations must not block the caller.
type Publisher interface {
	Publish(channel ChannelType, event EventType, data interface{})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ChannelType, EventType, interface{}) {}

// Helper to create messages
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
