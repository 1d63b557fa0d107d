// cmd/admin-console-rest-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/MGTheTrain/admin-console/internal/api/rest/v1"
	"github.com/MGTheTrain/admin-console/internal/bootstrap"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
	"github.com/gin-contrib/cors"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/admin-console.yaml"
	}

	cfg, err := config.InitializeConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize logger
	if err := logger.InitLogger(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.GetLogger()
	if err != nil {
		return fmt.Errorf("failed to get logger: %w", err)
	}

	// Initialize application dependencies
	deps, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn("Failed to release connections: ", err)
		}
	}()

	// Setup and start server with graceful shutdown
	return startServerWithGracefulShutdown(cfg, deps, log)
}

// startServerWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func startServerWithGracefulShutdown(cfg *config.Config, deps *bootstrap.Dependencies, log logger.Logger) error {
	// Setup router; recovery and error rendering are installed by SetupRoutes
	r := gin.New()
	r.Use(gin.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language", v1.TeamHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup API routes
	v1.SetupRoutes(r, v1.Services{
		Auth:             deps.Auth,
		PasswordResets:   deps.PasswordResets,
		Users:            deps.Users,
		Authorization:    deps.Authorization,
		Teams:            deps.Teams,
		Notifications:    deps.Notifications,
		EmailTemplates:   deps.EmailTemplates,
		MailSettings:     deps.MailSettings,
		ErrorLogs:        deps.ErrorLogs,
		Reporter:         deps.Reporter,
		Tables:           deps.Tables,
		TableServices:    deps.TableServices,
		Negotiator:       deps.Negotiator,
		Catalog:          deps.Catalog,
		ShowErrorDetails: cfg.ErrorHandling.ShowDetails,
		Logger:           log,
	})

	// Create HTTP server. Event streams stay open, so only the header read is bounded.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		log.Info("Received signal ", sig, ", initiating graceful shutdown")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
