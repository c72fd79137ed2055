package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/SimpleHunt/Appointment-app/config"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/routes"
	"github.com/SimpleHunt/Appointment-app/utils"
	"github.com/SimpleHunt/Appointment-app/watcher"
	"github.com/SimpleHunt/Appointment-app/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (remember-me storage)
	config.ConnectRedis()
	defer config.CloseRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Start the report change feed
	watcherCtx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	reportWatcher := watcher.NewReportWatcher(client, wsHub)
	go reportWatcher.Run(watcherCtx)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"}, // Configure this based on your needs
		AllowInlineJS:  true,          // Set to false in production
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Appointment backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Register all routes
	routes.SetupRoutes(e, client, wsHub)

	// Drop expired blacklisted tokens
	go middleware.CleanupBlacklist()

	// Start the inactive user checker in a goroutine
	go func() {
		for {
			middleware.MarkInactiveUsers(client, 30*time.Minute)
			time.Sleep(5 * time.Minute)
		}
	}()

	// Ensure uploads directory exists
	if err := utils.InitializeStorage(); err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
