package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SimpleHunt/Appointment-app/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and reads auth/control messages.
// Clients authenticate with a "AUTH:<jwt>" text message; until then they
// receive nothing but the welcome prompt.
func HandleWebSocket(c echo.Context, hub *Hub) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{Conn: conn}
	hub.Register(client)

	conn.WriteJSON(Notification{
		Type:         "connected",
		Message:      "WebSocket connection established. Please authenticate to receive notifications.",
		RequiresAuth: true,
	})

	go func() {
		defer hub.Unregister(client)

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if messageType != websocket.TextMessage {
				continue
			}

			messageStr := string(message)
			if !strings.HasPrefix(messageStr, "AUTH:") {
				continue
			}

			claims, err := middleware.ParseToken(strings.TrimPrefix(messageStr, "AUTH:"))
			if err != nil {
				conn.WriteJSON(Notification{
					Type:         "auth_response",
					Message:      "Authentication failed: invalid token",
					RequiresAuth: true,
				})
				continue
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				conn.WriteJSON(Notification{
					Type:         "auth_response",
					Message:      "Authentication failed: invalid user id",
					RequiresAuth: true,
				})
				continue
			}

			hub.AuthenticateClient(client, userID, claims.Role)
			conn.WriteJSON(Notification{
				Type:    "auth_response",
				Message: "Authenticated",
				UserID:  claims.UserID,
			})
		}
	}()

	return nil
}
