package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpleHunt/Appointment-app/models"
)

func invokeWithRole(t *testing.T, role string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}

	handler := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireRoleAllowed(t *testing.T) {
	rec := invokeWithRole(t, models.RoleBDM, models.RoleBDM)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleOneOfMany(t *testing.T) {
	rec := invokeWithRole(t, models.RoleAdmin, models.RoleInsideSales, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidden(t *testing.T) {
	rec := invokeWithRole(t, models.RoleInsideSales, models.RoleBDM)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMissing(t *testing.T) {
	rec := invokeWithRole(t, "", models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
