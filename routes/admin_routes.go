package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/SimpleHunt/Appointment-app/controllers"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
)

// RegisterAdminRoutes sets up admin-only routes
func RegisterAdminRoutes(e *echo.Echo, reportController *controllers.ReportController, userController *controllers.UserController) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.GET("/reports", reportController.AdminListReports)

	admin.GET("/users", userController.ListUsers)
	admin.POST("/users", userController.CreateUser)
	admin.DELETE("/users/:id", userController.DeleteUser)
}
