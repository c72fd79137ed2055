package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SimpleHunt/Appointment-app/config"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
	"github.com/SimpleHunt/Appointment-app/repositories"
	"github.com/SimpleHunt/Appointment-app/security"
	"github.com/SimpleHunt/Appointment-app/utils"
)

// AuthController contains authentication logic
type AuthController struct {
	DB            *mongo.Client
	users         repositories.UserStore
	logger        *log.Logger
	loginAttempts map[string]struct {
		count       int
		lastAttempt time.Time
	}
	loginAttemptsMu sync.RWMutex
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, users repositories.UserStore) *AuthController {
	ac := &AuthController{
		DB:     db,
		users:  users,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
		loginAttempts: make(map[string]struct {
			count       int
			lastAttempt time.Time
		}),
	}

	go ac.startLoginAttemptCleanupRoutine()

	return ac
}

// startLoginAttemptCleanupRoutine drops stale failed-attempt counters
func (ac *AuthController) startLoginAttemptCleanupRoutine() {
	for {
		time.Sleep(30 * time.Minute)
		now := time.Now()
		ac.loginAttemptsMu.Lock()
		for identifier, attempts := range ac.loginAttempts {
			if now.Sub(attempts.lastAttempt) > 30*time.Minute {
				delete(ac.loginAttempts, identifier)
			}
		}
		ac.loginAttemptsMu.Unlock()
	}
}

func (ac *AuthController) recordFailedAttempt(identifier string) {
	ac.loginAttemptsMu.Lock()
	attempts := ac.loginAttempts[identifier]
	ac.loginAttempts[identifier] = struct {
		count       int
		lastAttempt time.Time
	}{count: attempts.count + 1, lastAttempt: time.Now()}
	ac.loginAttemptsMu.Unlock()
}

// Login authenticates a user by user_name and password. Unknown user and
// wrong password produce the same message so user names cannot be
// enumerated.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if mediaType := strings.Split(contentType, ";")[0]; !security.ValidateContentType(strings.TrimSpace(mediaType)) {
		return c.JSON(http.StatusUnsupportedMediaType, models.Response{
			Status:  http.StatusUnsupportedMediaType,
			Message: "Unsupported content type",
		})
	}

	var loginReq models.LoginRequest
	if err := c.Bind(&loginReq); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	userName, err := utils.SanitizeUserName(loginReq.UserName)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	ac.loginAttemptsMu.RLock()
	attempts, exists := ac.loginAttempts[userName]
	ac.loginAttemptsMu.RUnlock()

	if exists && attempts.count >= 5 && time.Since(attempts.lastAttempt) < 30*time.Minute {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many failed login attempts. Please try again later.",
		})
	}

	user, err := ac.users.FindByUserName(ctx, userName)
	if err != nil {
		// Uniform message for unknown user and wrong password
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	if err := utils.CheckPassword(loginReq.Password, user.Password); err != nil {
		ac.recordFailedAttempt(userName)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	ac.loginAttemptsMu.Lock()
	delete(ac.loginAttempts, userName)
	ac.loginAttemptsMu.Unlock()

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.UserName, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	// Don't return the hash
	user.Password = ""

	var rememberMeToken string
	if loginReq.RememberMe {
		redisClient := config.GetRedisClient()
		if redisClient != nil {
			rememberMeToken, err = security.GenerateSecureToken()
			if err == nil {
				credentials := utils.RememberedCredentials{
					UserName:   user.UserName,
					Role:       user.Role,
					UserID:     user.ID.Hex(),
					ExpiresAt:  time.Now().AddDate(0, 1, 0),
					DeviceInfo: c.Request().UserAgent(),
				}
				if err := utils.StoreRememberedCredentials(redisClient, rememberMeToken, credentials, 31*24*time.Hour); err != nil {
					ac.logger.Printf("Failed to store remembered credentials: %v", err)
					rememberMeToken = ""
				}
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.LoginResponse{
			Token:           token,
			RefreshToken:    refreshToken,
			RememberMeToken: rememberMeToken,
			User:            *user,
		},
	})
}

// Logout invalidates the current token
func (ac *AuthController) Logout(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		expiry := time.Now().Add(24 * time.Hour)
		if claims.ExpiresAt > 0 {
			expiry = time.Unix(claims.ExpiresAt, 0)
		}
		middleware.BlacklistToken(tokenString, expiry)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ValidateToken lets dashboards check session validity on startup
func (ac *AuthController) ValidateToken(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := ""
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	resp, err := utils.ValidateToken(tokenString, ac.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to validate token",
		})
	}

	status := http.StatusOK
	if !resp.Valid {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: resp.Message,
		Data:    resp,
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (ac *AuthController) RefreshToken(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || middleware.IsTokenBlacklisted(req.RefreshToken) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(claims.UserID, claims.UserName, claims.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token refreshed",
		Data: map[string]string{
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

// GetRememberedCredentials returns the stored identity for a remember-me
// token so the login form can be prefilled. The password is never stored.
func (ac *AuthController) GetRememberedCredentials(c echo.Context) error {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Token is required",
		})
	}

	credentials, err := utils.RetrieveRememberedCredentials(config.GetRedisClient(), req.Token)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Remembered credentials not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Remembered credentials retrieved",
		Data:    credentials,
	})
}

// RemoveRememberedCredentials deletes a remember-me token
func (ac *AuthController) RemoveRememberedCredentials(c echo.Context) error {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Token is required",
		})
	}

	if err := utils.RemoveRememberedCredentials(config.GetRedisClient(), req.Token); err != nil {
		ac.logger.Printf("Failed to remove remembered credentials: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Remembered credentials removed",
	})
}
