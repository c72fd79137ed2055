package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SimpleHunt/Appointment-app/lifecycle"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
	"github.com/SimpleHunt/Appointment-app/repositories"
	"github.com/SimpleHunt/Appointment-app/utils"
	ws "github.com/SimpleHunt/Appointment-app/websocket"
)

// ReportController handles the appointment-report workflow
type ReportController struct {
	DB      *mongo.Client
	reports repositories.ReportStore
	users   repositories.UserStore
	hub     *ws.Hub
	logger  *log.Logger
}

// NewReportController creates a new report controller
func NewReportController(db *mongo.Client, reports repositories.ReportStore, users repositories.UserStore, hub *ws.Hub) *ReportController {
	return &ReportController{
		DB:      db,
		reports: reports,
		users:   users,
		hub:     hub,
		logger:  log.New(os.Stdout, "[REPORTS] ", log.LstdFlags),
	}
}

// respondLifecycleError maps the workflow error kinds onto HTTP statuses.
func respondLifecycleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, lifecycle.ErrConflict):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, lifecycle.ErrGateway):
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Storage temporarily unavailable",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

// CreateReport lets an inside-sales rep file a new appointment report
// assigned to a BDM. New reports always start out pending.
func (rc *ReportController) CreateReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	salesID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	var req models.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "All report fields are required",
		})
	}
	if err := lifecycle.CheckContent(req.ReportContent); err != nil {
		return respondLifecycleError(c, err)
	}

	bdmID, err := primitive.ObjectIDFromHex(req.BDMID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid BDM ID",
		})
	}

	// The assignee must exist and actually be a BDM
	bdm, err := rc.users.FindByID(ctx, bdmID)
	if err != nil || bdm.Role != models.RoleBDM {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Assigned BDM not found",
		})
	}

	sales, err := rc.users.FindByID(ctx, salesID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	contactNumber, err := utils.SanitizePhone(req.ContactNumber)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid contact number",
		})
	}

	report := models.Report{
		CompanyName:     utils.SanitizeInput(req.CompanyName),
		ContactPerson:   utils.SanitizeInput(req.ContactPerson),
		ContactNumber:   contactNumber,
		Address:         utils.SanitizeInput(req.Address),
		Description:     utils.SanitizeInput(req.Description),
		LeadSource:      utils.SanitizeInput(req.LeadSource),
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		InsideSalesID:   salesID,
		InsideSalesName: sales.Name,
		BDMID:           bdmID,
	}

	created, err := rc.reports.Insert(ctx, report)
	if err != nil {
		rc.logger.Printf("Failed to insert report: %v", err)
		return respondLifecycleError(c, err)
	}

	rc.notifyAssigned(created)

	return c.JSON(http.StatusCreated, models.ReportResponse{
		Status:  http.StatusCreated,
		Message: "Report created successfully",
		Data:    created,
	})
}

// EditReport lets the authoring rep update the content fields of their own
// report. Decision fields are untouchable from this path.
func (rc *ReportController) EditReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	salesID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid report ID",
		})
	}

	var req models.EditReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := lifecycle.CheckContent(req.ReportContent); err != nil {
		return respondLifecycleError(c, err)
	}

	contactNumber, err := utils.SanitizePhone(req.ContactNumber)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid contact number",
		})
	}

	content := models.ReportContent{
		CompanyName:   utils.SanitizeInput(req.CompanyName),
		ContactPerson: utils.SanitizeInput(req.ContactPerson),
		ContactNumber: contactNumber,
		Address:       utils.SanitizeInput(req.Address),
		Description:   utils.SanitizeInput(req.Description),
		LeadSource:    utils.SanitizeInput(req.LeadSource),
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
	}

	updated, err := rc.reports.UpdateContent(ctx, reportID, salesID, content)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	rc.hub.Broadcast(ws.Notification{
		Type: ws.NotificationTypeReportsChanged,
		Data: map[string]string{"report_id": updated.ID.Hex()},
	})

	return c.JSON(http.StatusOK, models.ReportResponse{
		Status:  http.StatusOK,
		Message: "Report updated successfully",
		Data:    updated,
	})
}

// GetMyReports returns the authoring rep's reports with derived counts
func (rc *ReportController) GetMyReports(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	salesID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	reports, err := rc.reports.FindByInsideSales(ctx, salesID)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, models.ReportsResponse{
		Status:  http.StatusOK,
		Message: "Reports retrieved successfully",
		Data: &models.ReportListData{
			Reports: reports,
			Counts:  models.CountReports(reports),
		},
	})
}

// GetAssignedReports returns reports assigned to the calling BDM. The
// filter query param narrows to pending work or already-decided reports.
func (rc *ReportController) GetAssignedReports(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	bdmID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	filter := c.QueryParam("filter")
	if filter == "" {
		filter = "all"
	}
	if filter != "all" && filter != "pending" && filter != "done" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Filter must be one of: all, pending, done",
		})
	}

	reports, err := rc.reports.FindByBDM(ctx, bdmID)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	counts := models.CountReports(reports)
	filtered := reports
	if filter != "all" {
		filtered = make([]models.Report, 0, len(reports))
		for _, r := range reports {
			pending := r.Status == models.StatusPending
			if (filter == "pending") == pending {
				filtered = append(filtered, r)
			}
		}
	}

	return c.JSON(http.StatusOK, models.ReportsResponse{
		Status:  http.StatusOK,
		Message: "Reports retrieved successfully",
		Data: &models.ReportListData{
			Reports: filtered,
			Counts:  counts,
		},
	})
}

// ReviewReport records the assigned BDM's decision on a pending report.
// Losing the race to another decision comes back as a 409.
func (rc *ReportController) ReviewReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	bdmID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid report ID",
		})
	}

	var req models.ReviewReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	reviewer, err := rc.users.FindByID(ctx, bdmID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}

	decision, err := lifecycle.NewDecision(req.Decision, utils.SanitizeInput(req.Remarks), req.RescheduledDate, req.RescheduledTime, reviewer.Name)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	updated, err := rc.reports.Review(ctx, reportID, bdmID, decision)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	rc.notifyReviewed(updated)

	return c.JSON(http.StatusOK, models.ReportResponse{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("Report %s", updated.Status),
		Data:    updated,
	})
}

// TransferReport reassigns one of the calling BDM's reports to another BDM.
// The report goes back to pending and any earlier decision is wiped.
func (rc *ReportController) TransferReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	fromBDM, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid report ID",
		})
	}

	var req models.TransferReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	toBDM, err := primitive.ObjectIDFromHex(req.BDMID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid BDM ID",
		})
	}
	if toBDM == fromBDM {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cannot transfer a report to yourself",
		})
	}

	target, err := rc.users.FindByID(ctx, toBDM)
	if err != nil || target.Role != models.RoleBDM {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Target BDM not found",
		})
	}

	updated, err := rc.reports.Transfer(ctx, reportID, fromBDM, toBDM)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	rc.notifyTransferred(updated)

	return c.JSON(http.StatusOK, models.ReportResponse{
		Status:  http.StatusOK,
		Message: "Report transferred successfully",
		Data:    updated,
	})
}

// AdminListReports returns every report, optionally narrowed to one
// inside-sales author via the inside_sales_id query param.
func (rc *ReportController) AdminListReports(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var salesFilter *primitive.ObjectID
	if raw := c.QueryParam("inside_sales_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid inside_sales_id",
			})
		}
		salesFilter = &id
	}

	reports, err := rc.reports.FindAll(ctx, salesFilter)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, models.ReportsResponse{
		Status:  http.StatusOK,
		Message: "Reports retrieved successfully",
		Data: &models.ReportListData{
			Reports: reports,
			Counts:  models.CountReports(reports),
		},
	})
}

func (rc *ReportController) notifyAssigned(report *models.Report) {
	if err := rc.hub.NotifyReportAssigned(report.BDMID, report); err != nil {
		rc.logger.Printf("Failed to push assignment notification: %v", err)
	}
	title := "New appointment report"
	message := fmt.Sprintf("%s assigned you a report for %s", report.InsideSalesName, report.CompanyName)
	if err := utils.SaveNotification(rc.DB, report.BDMID, title, message, ws.NotificationTypeReportCreated, map[string]string{"report_id": report.ID.Hex()}); err != nil {
		rc.logger.Printf("Failed to save notification: %v", err)
	}
}

func (rc *ReportController) notifyReviewed(report *models.Report) {
	if err := rc.hub.NotifyReportReviewed(report.InsideSalesID, report); err != nil {
		rc.logger.Printf("Failed to push review notification: %v", err)
	}
	title := "Report reviewed"
	message := fmt.Sprintf("%s marked your report for %s as %s", report.ReviewedByName, report.CompanyName, report.Status)
	if err := utils.SaveNotification(rc.DB, report.InsideSalesID, title, message, ws.NotificationTypeReportReviewed, map[string]string{"report_id": report.ID.Hex(), "status": report.Status}); err != nil {
		rc.logger.Printf("Failed to save notification: %v", err)
	}
}

func (rc *ReportController) notifyTransferred(report *models.Report) {
	if err := rc.hub.NotifyReportTransferred(report.BDMID, report); err != nil {
		rc.logger.Printf("Failed to push transfer notification: %v", err)
	}
	title := "Report transferred to you"
	message := fmt.Sprintf("A report for %s was transferred to you", report.CompanyName)
	if err := utils.SaveNotification(rc.DB, report.BDMID, title, message, ws.NotificationTypeReportTransferred, map[string]string{"report_id": report.ID.Hex()}); err != nil {
		rc.logger.Printf("Failed to save notification: %v", err)
	}
}
