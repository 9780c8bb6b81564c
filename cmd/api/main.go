package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lensa-net/lensa-be/internal/config"
	"github.com/lensa-net/lensa-be/internal/handler"
	"github.com/lensa-net/lensa-be/internal/ratelimit"
	"github.com/lensa-net/lensa-be/internal/service"
)

const serviceName = "lensa-gateway"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	// Create a new logger
	logger := log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)

	// load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	analysisService := service.NewAnalysisService(service.AnalysisConfig{
		BaseURL:          cfg.Upstream.BaseURL,
		Token:            cfg.Upstream.Token,
		Timeout:          cfg.Upstream.Timeout,
		MaxResponseBytes: cfg.Upstream.MaxResponseBytes,
	}, logger)

	limiter := ratelimit.New(cfg.RateLimit.Max, cfg.RateLimit.Window)

	analyzeHandler := handler.NewAnalyzeHandler(analysisService, cfg.Server.MaxUploadBytes, logger)
	healthHandler := handler.NewHealthHandler(serviceName, cfg.App.Version, cfg.App.Environment)
	rateLimitMiddleware := handler.NewRateLimitMiddleware(limiter, cfg.RateLimit.TrustProxy, logger)

	router := handler.SetupRouter(analyzeHandler, healthHandler, rateLimitMiddleware, handler.CORSOptions(cfg))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Printf("Server starting on port %s, forwarding to %s", cfg.Server.Port, cfg.Upstream.BaseURL)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Cannot run server on port %s: %v", cfg.Server.Port, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Println("Shut down the server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		logger.Fatalf("Server shutdown failed: %v", err)
	}
	logger.Println("Server successfully shut down")
}
