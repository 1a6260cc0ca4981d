package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CrowderSoup/rosy-workroom/config"
	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/handlers"
	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/CrowderSoup/rosy-workroom/services"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables from .env file
	if err := config.LoadEnv(".env"); err != nil {
		logging.Logger.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		logging.Logger.Fatalf("Failed to initialize logger: %v", err)
	}
	if cfg.UsingDefaultSecret() {
		logging.Logger.Warn("JWT_SECRET is not set; using the development default")
	}

	// Initialize database
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		logging.Logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	store := database.NewStore(db)
	limiter := services.NewMemoryLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
	authService := services.NewAuthService(store, limiter, cfg.JWTSecret)

	r := handlers.NewRouter(store, authService)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Graceful shutdown failed: %v", err)
	}
	logging.Logger.Info("Server stopped")
}
