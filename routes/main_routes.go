package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SimpleHunt/Appointment-app/controllers"
	"github.com/SimpleHunt/Appointment-app/repositories"
	"github.com/SimpleHunt/Appointment-app/websocket"
)

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	userRepo := repositories.NewUserRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	authController := controllers.NewAuthController(db, userRepo)
	reportController := controllers.NewReportController(db, reportRepo, userRepo, hub)
	userController := controllers.NewUserController(db, userRepo)
	notificationController := controllers.NewNotificationController(db)

	RegisterAuthRoutes(e, authController)
	RegisterReportRoutes(e, reportController)
	RegisterUserRoutes(e, db, userController)
	RegisterNotificationRoutes(e, notificationController)
	RegisterAdminRoutes(e, reportController, userController)

	// WebSocket endpoint; clients authenticate in-band after connecting
	e.GET("/api/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})
}
