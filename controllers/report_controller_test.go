package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SimpleHunt/Appointment-app/lifecycle"
	"github.com/SimpleHunt/Appointment-app/models"
	ws "github.com/SimpleHunt/Appointment-app/websocket"
)

func newReportController(t *testing.T, reports *mockReportStore, users *mockUserStore) *ReportController {
	t.Helper()
	return NewReportController(nil, reports, users, ws.NewHub())
}

func testUsers(t *testing.T, salesID, bdmID primitive.ObjectID) *mockUserStore {
	return &mockUserStore{
		t: t,
		users: map[primitive.ObjectID]*models.User{
			salesID: {ID: salesID, UserName: "joud.sales", Role: models.RoleInsideSales, Name: "Joud"},
			bdmID:   {ID: bdmID, UserName: "rana.bdm", Role: models.RoleBDM, Name: "Rana"},
		},
	}
}

func createReportBody(bdmID primitive.ObjectID) string {
	body, _ := json.Marshal(map[string]string{
		"company_name":   "Acme Corp",
		"contact_person": "Karim",
		"contact_number": "+96170123456",
		"address":        "Beirut",
		"description":    "Product demo",
		"lead_source":    "cold call",
		"scheduled_date": "2026-09-10",
		"scheduled_time": "09:30",
		"bdm_id":         bdmID.Hex(),
	})
	return string(body)
}

func TestCreateReport(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()

	reports := &mockReportStore{
		t: t,
		insertFn: func(ctx context.Context, report models.Report) (*models.Report, error) {
			assert.Equal(t, salesID, report.InsideSalesID)
			assert.Equal(t, "Joud", report.InsideSalesName)
			assert.Equal(t, bdmID, report.BDMID)
			report.ID = primitive.NewObjectID()
			report.Status = models.StatusPending
			return &report, nil
		},
	}

	rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/reports", createReportBody(bdmID), salesID, models.RoleInsideSales)

	require.NoError(t, rc.CreateReport(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, models.StatusPending, resp.Data.Status)
	assert.Equal(t, "Acme Corp", resp.Data.CompanyName)
}

func TestCreateReportUnknownBDM(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()

	// User store only knows the sales rep; the BDM lookup must fail
	users := &mockUserStore{
		t: t,
		users: map[primitive.ObjectID]*models.User{
			salesID: {ID: salesID, Role: models.RoleInsideSales, Name: "Joud"},
		},
	}

	rc := newReportController(t, &mockReportStore{t: t}, users)
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/reports", createReportBody(bdmID), salesID, models.RoleInsideSales)

	require.NoError(t, rc.CreateReport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReportAssigneeNotBDM(t *testing.T) {
	salesID := primitive.NewObjectID()
	otherSales := primitive.NewObjectID()

	users := &mockUserStore{
		t: t,
		users: map[primitive.ObjectID]*models.User{
			salesID:    {ID: salesID, Role: models.RoleInsideSales, Name: "Joud"},
			otherSales: {ID: otherSales, Role: models.RoleInsideSales, Name: "Sami"},
		},
	}

	rc := newReportController(t, &mockReportStore{t: t}, users)
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/reports", createReportBody(otherSales), salesID, models.RoleInsideSales)

	require.NoError(t, rc.CreateReport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReportMissingFields(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()

	rc := newReportController(t, &mockReportStore{t: t}, testUsers(t, salesID, bdmID))
	e := newTestEcho()

	body := fmt.Sprintf(`{"company_name":"Acme Corp","bdm_id":%q}`, bdmID.Hex())
	c, rec := newTestContext(e, http.MethodPost, "/api/reports", body, salesID, models.RoleInsideSales)

	require.NoError(t, rc.CreateReport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditReportErrorMapping(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	cases := []struct {
		name     string
		storeErr error
		want     int
	}{
		{"not found", fmt.Errorf("%w: report", lifecycle.ErrNotFound), http.StatusNotFound},
		{"locked by decision", fmt.Errorf("%w: report is no longer pending", lifecycle.ErrConflict), http.StatusConflict},
		{"storage down", fmt.Errorf("%w: connection reset", lifecycle.ErrGateway), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := &mockReportStore{
				t: t,
				updateContentFn: func(ctx context.Context, id, authorID primitive.ObjectID, content models.ReportContent) (*models.Report, error) {
					assert.Equal(t, reportID, id)
					assert.Equal(t, salesID, authorID)
					return nil, tc.storeErr
				},
			}
			rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
			e := newTestEcho()
			body := createReportBody(bdmID)
			c, rec := newTestContext(e, http.MethodPut, "/api/reports/"+reportID.Hex(), body, salesID, models.RoleInsideSales)
			c.SetParamNames("id")
			c.SetParamValues(reportID.Hex())

			require.NoError(t, rc.EditReport(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestReviewReportAccepted(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	reports := &mockReportStore{
		t: t,
		reviewFn: func(ctx context.Context, id, reviewer primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error) {
			assert.Equal(t, reportID, id)
			assert.Equal(t, bdmID, reviewer)
			assert.Equal(t, models.StatusAccepted, decision.Status)
			assert.Empty(t, decision.Remarks)
			assert.Equal(t, "Rana", decision.ReviewedByName)
			return &models.Report{
				ID:             reportID,
				InsideSalesID:  salesID,
				BDMID:          bdmID,
				Status:         decision.Status,
				ReviewedByName: decision.ReviewedByName,
			}, nil
		},
	}

	rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	body := `{"decision":"accepted","remarks":"ignored on accept"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/reports/"+reportID.Hex()+"/review", body, bdmID, models.RoleBDM)
	c.SetParamNames("id")
	c.SetParamValues(reportID.Hex())

	require.NoError(t, rc.ReviewReport(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, models.StatusAccepted, resp.Data.Status)
	assert.Empty(t, resp.Data.BDMRemarks)
}

func TestReviewReportRejectedRequiresRemarks(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	// The store must never be reached when validation fails
	rc := newReportController(t, &mockReportStore{t: t}, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/reports/"+reportID.Hex()+"/review", `{"decision":"rejected"}`, bdmID, models.RoleBDM)
	c.SetParamNames("id")
	c.SetParamValues(reportID.Hex())

	require.NoError(t, rc.ReviewReport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewReportConcurrentDecision(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	reports := &mockReportStore{
		t: t,
		reviewFn: func(ctx context.Context, id, reviewer primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error) {
			return nil, fmt.Errorf("%w: report already reviewed", lifecycle.ErrConflict)
		},
	}

	rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/reports/"+reportID.Hex()+"/review", `{"decision":"accepted"}`, bdmID, models.RoleBDM)
	c.SetParamNames("id")
	c.SetParamValues(reportID.Hex())

	require.NoError(t, rc.ReviewReport(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReviewReportNotFound(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	reports := &mockReportStore{
		t: t,
		reviewFn: func(ctx context.Context, id, reviewer primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error) {
			return nil, fmt.Errorf("%w: report", lifecycle.ErrNotFound)
		},
	}

	rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	body := `{"decision":"rescheduled","remarks":"client travelling","rescheduled_date":"2026-09-20","rescheduled_time":"11:00"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/reports/"+reportID.Hex()+"/review", body, bdmID, models.RoleBDM)
	c.SetParamNames("id")
	c.SetParamValues(reportID.Hex())

	require.NoError(t, rc.ReviewReport(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransferReport(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	otherBDM := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	users := testUsers(t, salesID, bdmID)
	users.users[otherBDM] = &models.User{ID: otherBDM, Role: models.RoleBDM, Name: "Fadi"}

	reports := &mockReportStore{
		t: t,
		transferFn: func(ctx context.Context, id, from, to primitive.ObjectID) (*models.Report, error) {
			assert.Equal(t, reportID, id)
			assert.Equal(t, bdmID, from)
			assert.Equal(t, otherBDM, to)
			return &models.Report{
				ID:            reportID,
				InsideSalesID: salesID,
				BDMID:         to,
				Status:        models.StatusPending,
			}, nil
		},
	}

	rc := newReportController(t, reports, users)
	e := newTestEcho()
	body := fmt.Sprintf(`{"bdm_id":%q}`, otherBDM.Hex())
	c, rec := newTestContext(e, http.MethodPost, "/api/reports/"+reportID.Hex()+"/transfer", body, bdmID, models.RoleBDM)
	c.SetParamNames("id")
	c.SetParamValues(reportID.Hex())

	require.NoError(t, rc.TransferReport(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, models.StatusPending, resp.Data.Status)
	assert.Equal(t, otherBDM, resp.Data.BDMID)
}

func TestTransferReportToSelf(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	reportID := primitive.NewObjectID()

	rc := newReportController(t, &mockReportStore{t: t}, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	body := fmt.Sprintf(`{"bdm_id":%q}`, bdmID.Hex())
	c, rec := newTestContext(e, http.MethodPost, "/api/reports/"+reportID.Hex()+"/transfer", body, bdmID, models.RoleBDM)
	c.SetParamNames("id")
	c.SetParamValues(reportID.Hex())

	require.NoError(t, rc.TransferReport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func assignedReports(bdmID primitive.ObjectID) []models.Report {
	return []models.Report{
		{BDMID: bdmID, Status: models.StatusPending, CompanyName: "Pending Co"},
		{BDMID: bdmID, Status: models.StatusAccepted, CompanyName: "Accepted Co"},
		{BDMID: bdmID, Status: models.StatusRejected, CompanyName: "Rejected Co"},
	}
}

func TestGetAssignedReportsFilters(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()

	cases := []struct {
		filter    string
		wantCount int
	}{
		{"", 3},
		{"all", 3},
		{"pending", 1},
		{"done", 2},
	}
	for _, tc := range cases {
		t.Run("filter="+tc.filter, func(t *testing.T) {
			reports := &mockReportStore{
				t: t,
				findByBDMFn: func(ctx context.Context, id primitive.ObjectID) ([]models.Report, error) {
					assert.Equal(t, bdmID, id)
					return assignedReports(bdmID), nil
				},
			}
			rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
			e := newTestEcho()
			target := "/api/reports/assigned"
			if tc.filter != "" {
				target += "?filter=" + tc.filter
			}
			c, rec := newTestContext(e, http.MethodGet, target, "", bdmID, models.RoleBDM)

			require.NoError(t, rc.GetAssignedReports(c))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp models.ReportsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Data)
			assert.Len(t, resp.Data.Reports, tc.wantCount)
			// Counts always reflect the full assigned set
			assert.Equal(t, 3, resp.Data.Counts.Total)
			assert.Equal(t, 1, resp.Data.Counts.Pending)
		})
	}
}

func TestGetAssignedReportsBadFilter(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()

	rc := newReportController(t, &mockReportStore{t: t}, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodGet, "/api/reports/assigned?filter=archived", "", bdmID, models.RoleBDM)

	require.NoError(t, rc.GetAssignedReports(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMyReports(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()

	reports := &mockReportStore{
		t: t,
		findBySalesFn: func(ctx context.Context, id primitive.ObjectID) ([]models.Report, error) {
			assert.Equal(t, salesID, id)
			return []models.Report{
				{InsideSalesID: salesID, Status: models.StatusPending},
				{InsideSalesID: salesID, Status: models.StatusRescheduled},
			}, nil
		},
	}

	rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodGet, "/api/reports/my", "", salesID, models.RoleInsideSales)

	require.NoError(t, rc.GetMyReports(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Len(t, resp.Data.Reports, 2)
	assert.Equal(t, 1, resp.Data.Counts.Rescheduled)
}

func TestAdminListReports(t *testing.T) {
	salesID := primitive.NewObjectID()
	bdmID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	reports := &mockReportStore{
		t: t,
		findAllFn: func(ctx context.Context, insideSalesID *primitive.ObjectID) ([]models.Report, error) {
			require.NotNil(t, insideSalesID)
			assert.Equal(t, salesID, *insideSalesID)
			return []models.Report{{InsideSalesID: salesID, Status: models.StatusAccepted}}, nil
		},
	}

	rc := newReportController(t, reports, testUsers(t, salesID, bdmID))
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodGet, "/api/admin/reports?inside_sales_id="+salesID.Hex(), "", adminID, models.RoleAdmin)

	require.NoError(t, rc.AdminListReports(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Len(t, resp.Data.Reports, 1)
}

func TestAdminListReportsBadFilter(t *testing.T) {
	adminID := primitive.NewObjectID()

	rc := newReportController(t, &mockReportStore{t: t}, &mockUserStore{t: t})
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodGet, "/api/admin/reports?inside_sales_id=not-an-id", "", adminID, models.RoleAdmin)

	require.NoError(t, rc.AdminListReports(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
