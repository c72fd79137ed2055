package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed to dashboards
const (
	NotificationTypeReportCreated     = "report_created"
	NotificationTypeReportReviewed    = "report_reviewed"
	NotificationTypeReportTransferred = "report_transferred"
	// NotificationTypeReportsChanged is the bare change-feed ping:
	// it carries no payload guarantee, consumers re-query.
	NotificationTypeReportsChanged = "reports_changed"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID        primitive.ObjectID
	Role          string
	Conn          *websocket.Conn
	Authenticated bool
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients                map[primitive.ObjectID]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:                make(map[primitive.ObjectID]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				if h.clients[client.UserID] == client {
					delete(h.clients, client.UserID)
				}
			} else {
				delete(h.unauthenticatedClients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal and closes its connection.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// BroadcastToRole sends a message to every connected client with the role
func (h *Hub) BroadcastToRole(role string, notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.Role == role {
			client.Conn.WriteJSON(notification)
		}
	}
}

// Broadcast sends a message to every authenticated client
func (h *Hub) Broadcast(notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.Conn.WriteJSON(notification)
	}
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, userID primitive.ObjectID, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.unauthenticatedClients, client)

	client.Authenticated = true
	client.UserID = userID
	client.Role = role

	h.clients[userID] = client
}

// ConnectedUsers returns the ids of authenticated clients, for diagnostics.
func (h *Hub) ConnectedUsers() []primitive.ObjectID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]primitive.ObjectID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// NotifyReportAssigned tells a BDM a new report landed in their queue
func (h *Hub) NotifyReportAssigned(bdmID primitive.ObjectID, reportData interface{}) error {
	notification := Notification{
		Type:    NotificationTypeReportCreated,
		Message: "A new appointment report has been assigned to you",
		Data:    reportData,
	}

	return h.SendToUser(bdmID, notification)
}

// NotifyReportReviewed tells the authoring sales rep a decision was recorded
func (h *Hub) NotifyReportReviewed(salesID primitive.ObjectID, reportData interface{}) error {
	notification := Notification{
		Type:    NotificationTypeReportReviewed,
		Message: "Your appointment report has been reviewed",
		Data:    reportData,
	}

	return h.SendToUser(salesID, notification)
}

// NotifyReportTransferred tells a BDM a report was handed over to them
func (h *Hub) NotifyReportTransferred(bdmID primitive.ObjectID, reportData interface{}) error {
	notification := Notification{
		Type:    NotificationTypeReportTransferred,
		Message: "An appointment report has been transferred to you",
		Data:    reportData,
	}

	return h.SendToUser(bdmID, notification)
}
