package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SimpleHunt/Appointment-app/controllers"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
)

// RegisterUserRoutes sets up profile and directory routes
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client, userController *controllers.UserController) {
	users := e.Group("/api/users")
	users.Use(middleware.JWTMiddleware())
	users.Use(middleware.ActivityTracker(db))

	// Sales reps pick assignees from the BDM directory; BDMs use it for
	// transfer targets
	users.GET("/bdms", userController.ListBDMs, middleware.RequireRole(models.RoleInsideSales, models.RoleBDM, models.RoleAdmin))

	users.GET("/profile", userController.GetProfile)
	users.PUT("/profile", userController.UpdateProfile)
	users.POST("/profile/picture", userController.UploadProfilePicture)
}

// RegisterNotificationRoutes sets up the stored-notification feed
func RegisterNotificationRoutes(e *echo.Echo, notificationController *controllers.NotificationController) {
	notifications := e.Group("/api/notifications")
	notifications.Use(middleware.JWTMiddleware())
	notifications.GET("", notificationController.GetNotifications)
	notifications.PUT("/:id/read", notificationController.MarkNotificationRead)
}
