package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/MarketDataService/internal/application"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/cache"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/config"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/discovery/justetf"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/marketdata/yahoo"
	httpHandler "github.com/jmanzanog/MarketDataService/internal/interfaces/http"
	"github.com/joho/godotenv"
)

// setupLogger configures and returns a structured logger.
func setupLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)
	return logger
}

// buildServer creates and configures the HTTP server with all routes and handlers.
func buildServer(cfg *config.Config, service *application.MarketDataService) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(service)
	httpHandler.SetupRoutes(router, handler)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// run contains the main application logic without os.Exit calls.
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.LogLevel)

	// The cache and the discovery provider are long-lived singletons shared
	// by every request; the provider's circuit breaker is process-wide.
	metadataCache := cache.NewMetadataCache(cfg.RedisAddr(), cfg.RedisDB, cfg.CacheTTL)
	discoveryProvider := justetf.NewProviderWithBaseURL(cfg.JustETFBaseURL, metadataCache)
	primaryClient := yahoo.NewClientWithBaseURL(cfg.YahooBaseURL)

	service := application.NewMarketDataService(primaryClient, discoveryProvider)

	server := buildServer(cfg, service)

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
