package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/SebasMa24/Backend-BotWhatsApp/config"
	"github.com/SebasMa24/Backend-BotWhatsApp/database"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/handler"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/service"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func main() {

	// Load .env (ignore the error when the file is absent, e.g. production)
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DBConnectionString == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	// whatsmeow device store
	database.InitWhatsmeow(cfg.DBConnectionString)

	// One session per process. The monitor starts initializing right away;
	// clients poll /api/qr until it reports ready.
	session, err := service.NewSession()
	if err != nil {
		log.Fatal("Failed to create WhatsApp session:", err)
	}
	if err := session.Connect(context.Background()); err != nil {
		log.Printf("Warning: initial WhatsApp connect failed: %v", err)
	}

	resolver := service.NewMediaResolver(cfg.TempDir, cfg.MaxMediaSizeBytes)
	dispatcher := service.NewDispatcher(session, service.DelayPolicy{
		BetweenMessages: cfg.DelayBetweenMessages,
		BeforeMedia:     cfg.DelayBeforeMedia,
	})

	qrHandler := handler.NewQRHandler(session)
	sendHandler := handler.NewSendHandler(session, resolver, dispatcher)

	// Setup Echo
	e := echo.New()
	e.Use(middleware.Recover())

	allowOrigins := strings.Split(cfg.CORSAllowOrigins, ",")
	for i, o := range allowOrigins {
		allowOrigins[i] = strings.TrimSpace(o)
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{
			echo.GET,
			echo.POST,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitPerSecond),
				Burst:     cfg.RateLimitBurst,
				ExpiresIn: time.Duration(cfg.RateLimitWindowMin) * time.Minute,
			},
		),
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := "Internal Server Error"

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}
		response := map[string]interface{}{
			"success": false,
			"error":   message,
		}
		switch code {
		case http.StatusMethodNotAllowed:
			response["message"] = "Method not allowed for this endpoint"
		case http.StatusNotFound:
			response["message"] = "Endpoint not found"
		}

		c.JSON(code, response)
	}

	// Health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"success": true,
			"message": "WhatsApp campaign API is running",
			"version": "1.0.0",
		})
	})

	api := e.Group("/api")
	api.GET("/qr", qrHandler.GetQRStatus)
	api.GET("/status", qrHandler.GetQRStatus)
	api.POST("/send", sendHandler.SendCampaign)

	log.Printf("Server starting on port %s", cfg.Port)
	err = e.Start(":" + cfg.Port)

	// log.Fatal would skip this via os.Exit.
	session.Disconnect()
	log.Fatal(err)
}
