// @title Login Page API
// @version 1.0
// @description Server-rendered login page with field validation and a pluggable submission capability

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5001
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/frontinsight/loginpage/docs" // Import generated docs
	"github.com/frontinsight/loginpage/internal/config"
	"github.com/frontinsight/loginpage/internal/logger"
	"github.com/frontinsight/loginpage/internal/metrics"
	"github.com/frontinsight/loginpage/internal/server"
	"github.com/frontinsight/loginpage/internal/services"
)

func main() {
	cfg, err := config.Load()
	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON, TimeFormat: time.RFC3339})
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.DevMode

	auth := services.NewSimulatedAuthenticator(cfg.SubmitDelay, log.With("component", "authenticator"))
	s, err := server.New(e, cfg, server.Deps{
		Auth:    auth,
		Log:     log,
		Metrics: metrics.New(),
	})
	if err != nil {
		log.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	// Add Swagger documentation endpoint
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Listening", "port", cfg.Port, "submit_delay", cfg.SubmitDelay)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown failed", "error", err)
	}
}
