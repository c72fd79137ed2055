package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/SimpleHunt/Appointment-app/controllers"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
)

// RegisterReportRoutes sets up the appointment-report workflow routes
func RegisterReportRoutes(e *echo.Echo, reportController *controllers.ReportController) {
	reports := e.Group("/api/reports")
	reports.Use(middleware.JWTMiddleware())

	// Inside-sales: author and track own reports
	sales := reports.Group("")
	sales.Use(middleware.RequireRole(models.RoleInsideSales))
	sales.POST("", reportController.CreateReport)
	sales.PUT("/:id", reportController.EditReport)
	sales.GET("/my", reportController.GetMyReports)

	// BDM: decide and hand off assigned reports
	bdm := reports.Group("")
	bdm.Use(middleware.RequireRole(models.RoleBDM))
	bdm.GET("/assigned", reportController.GetAssignedReports)
	bdm.POST("/:id/review", reportController.ReviewReport)
	bdm.POST("/:id/transfer", reportController.TransferReport)
}
