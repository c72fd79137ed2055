package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
	"github.com/SimpleHunt/Appointment-app/utils"
)

func loginUserStore(t *testing.T, password string) (*mockUserStore, primitive.ObjectID) {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	userID := primitive.NewObjectID()
	return &mockUserStore{
		t: t,
		users: map[primitive.ObjectID]*models.User{
			userID: {ID: userID, UserName: "joud.sales", Password: hash, Role: models.RoleInsideSales, Name: "Joud"},
		},
	}, userID
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users, userID := loginUserStore(t, "s3cretpass")
	ac := NewAuthController(nil, users)
	e := newTestEcho()
	body := `{"user_name":"joud.sales","password":"s3cretpass"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", body, primitive.NilObjectID, "")

	require.NoError(t, ac.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	assert.NotEmpty(t, resp.Data.RefreshToken)
	assert.Equal(t, userID, resp.Data.User.ID)
	assert.Empty(t, resp.Data.User.Password)

	claims, err := middleware.ParseToken(resp.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInsideSales, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users, _ := loginUserStore(t, "s3cretpass")
	ac := NewAuthController(nil, users)
	e := newTestEcho()
	body := `{"user_name":"joud.sales","password":"wrongpass"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", body, primitive.NilObjectID, "")

	require.NoError(t, ac.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users, _ := loginUserStore(t, "s3cretpass")
	ac := NewAuthController(nil, users)
	e := newTestEcho()
	body := `{"user_name":"nobody.here","password":"whatever1"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", body, primitive.NilObjectID, "")

	require.NoError(t, ac.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Same message as a wrong password, so user names cannot be probed
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestLoginThrottleAfterFailures(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users, _ := loginUserStore(t, "s3cretpass")
	ac := NewAuthController(nil, users)
	e := newTestEcho()
	body := `{"user_name":"joud.sales","password":"wrongpass"}`

	for i := 0; i < 5; i++ {
		c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", body, primitive.NilObjectID, "")
		require.NoError(t, ac.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	// Sixth attempt is throttled even with the right password
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", `{"user_name":"joud.sales","password":"s3cretpass"}`, primitive.NilObjectID, "")
	require.NoError(t, ac.Login(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginUnsupportedContentType(t *testing.T) {
	users, _ := loginUserStore(t, "s3cretpass")
	ac := NewAuthController(nil, users)
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", "", primitive.NilObjectID, "")
	c.Request().Header.Set("Content-Type", "text/plain")

	require.NoError(t, ac.Login(c))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	token, _, err := middleware.GenerateJWT(userID.Hex(), "joud.sales", models.RoleInsideSales)
	require.NoError(t, err)

	ac := NewAuthController(nil, &mockUserStore{t: t})
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/logout", "", userID, models.RoleInsideSales)
	c.Request().Header.Set("Authorization", "Bearer "+token)

	require.NoError(t, ac.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, middleware.IsTokenBlacklisted(token))
}

func TestRefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	_, refreshToken, err := middleware.GenerateJWT(userID.Hex(), "rana.bdm", models.RoleBDM)
	require.NoError(t, err)

	ac := NewAuthController(nil, &mockUserStore{t: t})
	e := newTestEcho()
	body := fmt.Sprintf(`{"refreshToken":%q}`, refreshToken)
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/refresh-token", body, primitive.NilObjectID, "")

	require.NoError(t, ac.RefreshToken(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data["token"])

	claims, err := middleware.ParseToken(resp.Data["token"])
	require.NoError(t, err)
	assert.Equal(t, models.RoleBDM, claims.Role)
}

func TestRefreshTokenInvalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	ac := NewAuthController(nil, &mockUserStore{t: t})
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/refresh-token", `{"refreshToken":"garbage"}`, primitive.NilObjectID, "")

	require.NoError(t, ac.RefreshToken(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
