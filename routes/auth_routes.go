package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/SimpleHunt/Appointment-app/controllers"
	"github.com/SimpleHunt/Appointment-app/middleware"
)

// RegisterAuthRoutes sets up authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	// Public authentication routes
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/refresh-token", authController.RefreshToken)
	e.GET("/api/auth/validate-token", authController.ValidateToken)
	e.POST("/api/auth/remember-me/get", authController.GetRememberedCredentials)
	e.POST("/api/auth/remember-me/remove", authController.RemoveRememberedCredentials)

	// Logout needs a valid token so it can be blacklisted
	logout := e.Group("/api/auth")
	logout.Use(middleware.JWTMiddleware())
	logout.POST("/logout", authController.Logout)
}
