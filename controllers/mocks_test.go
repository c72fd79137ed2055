package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SimpleHunt/Appointment-app/lifecycle"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
)

// mockReportStore is a hand-written ReportStore fake. Unset hooks fail the
// test if reached.
type mockReportStore struct {
	t *testing.T

	insertFn        func(ctx context.Context, report models.Report) (*models.Report, error)
	findByIDFn      func(ctx context.Context, id primitive.ObjectID) (*models.Report, error)
	findByBDMFn     func(ctx context.Context, bdmID primitive.ObjectID) ([]models.Report, error)
	findBySalesFn   func(ctx context.Context, salesID primitive.ObjectID) ([]models.Report, error)
	findAllFn       func(ctx context.Context, insideSalesID *primitive.ObjectID) ([]models.Report, error)
	updateContentFn func(ctx context.Context, id, authorID primitive.ObjectID, content models.ReportContent) (*models.Report, error)
	reviewFn        func(ctx context.Context, id, bdmID primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error)
	transferFn      func(ctx context.Context, id, fromBDM, toBDM primitive.ObjectID) (*models.Report, error)
}

func (m *mockReportStore) Insert(ctx context.Context, report models.Report) (*models.Report, error) {
	if m.insertFn == nil {
		m.t.Fatal("unexpected call to Insert")
	}
	return m.insertFn(ctx, report)
}

func (m *mockReportStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	if m.findByIDFn == nil {
		m.t.Fatal("unexpected call to FindByID")
	}
	return m.findByIDFn(ctx, id)
}

func (m *mockReportStore) FindByBDM(ctx context.Context, bdmID primitive.ObjectID) ([]models.Report, error) {
	if m.findByBDMFn == nil {
		m.t.Fatal("unexpected call to FindByBDM")
	}
	return m.findByBDMFn(ctx, bdmID)
}

func (m *mockReportStore) FindByInsideSales(ctx context.Context, salesID primitive.ObjectID) ([]models.Report, error) {
	if m.findBySalesFn == nil {
		m.t.Fatal("unexpected call to FindByInsideSales")
	}
	return m.findBySalesFn(ctx, salesID)
}

func (m *mockReportStore) FindAll(ctx context.Context, insideSalesID *primitive.ObjectID) ([]models.Report, error) {
	if m.findAllFn == nil {
		m.t.Fatal("unexpected call to FindAll")
	}
	return m.findAllFn(ctx, insideSalesID)
}

func (m *mockReportStore) UpdateContent(ctx context.Context, id, authorID primitive.ObjectID, content models.ReportContent) (*models.Report, error) {
	if m.updateContentFn == nil {
		m.t.Fatal("unexpected call to UpdateContent")
	}
	return m.updateContentFn(ctx, id, authorID, content)
}

func (m *mockReportStore) Review(ctx context.Context, id, bdmID primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error) {
	if m.reviewFn == nil {
		m.t.Fatal("unexpected call to Review")
	}
	return m.reviewFn(ctx, id, bdmID, decision)
}

func (m *mockReportStore) Transfer(ctx context.Context, id, fromBDM, toBDM primitive.ObjectID) (*models.Report, error) {
	if m.transferFn == nil {
		m.t.Fatal("unexpected call to Transfer")
	}
	return m.transferFn(ctx, id, fromBDM, toBDM)
}

// mockUserStore serves users out of an in-memory map
type mockUserStore struct {
	t     *testing.T
	users map[primitive.ObjectID]*models.User

	insertFn func(ctx context.Context, user models.User) (*models.User, error)
	deleteFn func(ctx context.Context, id primitive.ObjectID) error
	listFn   func(ctx context.Context) ([]models.User, error)
}

func (m *mockUserStore) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	for _, u := range m.users {
		if u.UserName == userName {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: user", lifecycle.ErrNotFound)
}

func (m *mockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", lifecycle.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserStore) ListBDMs(ctx context.Context) ([]models.BDMSummary, error) {
	var bdms []models.BDMSummary
	for id, u := range m.users {
		if u.Role == models.RoleBDM {
			bdms = append(bdms, models.BDMSummary{ID: id, Name: u.Name})
		}
	}
	return bdms, nil
}

func (m *mockUserStore) List(ctx context.Context) ([]models.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	var users []models.User
	for _, u := range m.users {
		copied := *u
		copied.Password = ""
		users = append(users, copied)
	}
	return users, nil
}

func (m *mockUserStore) Insert(ctx context.Context, user models.User) (*models.User, error) {
	if m.insertFn == nil {
		m.t.Fatal("unexpected call to Insert")
	}
	return m.insertFn(ctx, user)
}

func (m *mockUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.deleteFn == nil {
		m.t.Fatal("unexpected call to Delete")
	}
	return m.deleteFn(ctx, id)
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, profile models.UpdateProfileRequest) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", lifecycle.ErrNotFound)
	}
	copied := *u
	if profile.Name != "" {
		copied.Name = profile.Name
	}
	if profile.Phone != "" {
		copied.Phone = profile.Phone
	}
	return &copied, nil
}

func (m *mockUserStore) UpdatePicture(ctx context.Context, id primitive.ObjectID, pictureURL string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("%w: user", lifecycle.ErrNotFound)
	}
	u.Picture = pictureURL
	return nil
}

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// newTestContext builds an echo context carrying an authenticated user the
// way the JWT middleware would have left it.
func newTestContext(e *echo.Echo, method, target, body string, userID primitive.ObjectID, role string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if !userID.IsZero() {
		claims := &middleware.JwtCustomClaims{UserID: userID.Hex(), Role: role}
		c.Set("user", &jwt.Token{Claims: claims})
		c.Set("userId", userID.Hex())
		c.Set("role", role)
	}
	return c, rec
}
