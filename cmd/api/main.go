package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripcrew/backend/internal/auth"
	"github.com/tripcrew/backend/internal/auth/oauth"
	"github.com/tripcrew/backend/internal/config"
	"github.com/tripcrew/backend/internal/db"
	httpHandler "github.com/tripcrew/backend/internal/handler/http"
	"github.com/tripcrew/backend/internal/kafka/producers"
	"github.com/tripcrew/backend/internal/logger"
	"github.com/tripcrew/backend/internal/middleware"
	"github.com/tripcrew/backend/internal/places"
	postgresRepo "github.com/tripcrew/backend/internal/repository/postgres"
	"github.com/tripcrew/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New("tripcrew-api", cfg.LogLevel)

	// Initialize database
	pool, err := db.Init(context.Background(), cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	// Create repositories
	userRepo := postgresRepo.NewUserRepository(pool)
	tripRepo := postgresRepo.NewTripRepository(pool)
	cityRepo := postgresRepo.NewCityRepository(pool)

	// Initialize JWT service
	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})

	// Initialize Google OAuth provider and identity resolver
	googleProvider := oauth.NewGoogleProvider(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.ExchangeTimeout,
	)
	resolver := oauth.NewResolver(cfg.Google.ExchangeTimeout)

	// Initialize Kafka event producers. Kafka is optional in development.
	var userEvents *producers.UserEventsProducer
	var tripEvents *producers.TripEventsProducer
	if cfg.Kafka.KafkaURL != "" {
		userEvents, err = producers.NewUserEventsProducer(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize user events Kafka producer: %v", err)
		}
		defer userEvents.Close()

		tripEvents, err = producers.NewTripEventsProducer(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize trip events Kafka producer: %v", err)
		}
		defer tripEvents.Close()
	} else {
		appLogger.Warn("KAFKA_URL not set, domain events disabled")
	}

	// Initialize services
	var userPublisher service.UserEventPublisher
	if userEvents != nil {
		userPublisher = userEvents
	}
	var tripPublisher service.TripEventPublisher
	if tripEvents != nil {
		tripPublisher = tripEvents
	}
	authSvc := service.NewAuthService(googleProvider, resolver, userRepo, jwtSvc, userPublisher, appLogger)
	tripSvc := service.NewTripService(tripRepo, cityRepo, tripPublisher, appLogger)

	// Google Places client for city search
	placesClient := places.NewClient(cfg.PlacesKey, cfg.Google.ExchangeTimeout)

	// Create HTTP server
	r := mux.NewRouter()
	r.Use(middleware.RequestLogging(appLogger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	api := r.PathPrefix("/api/v1").Subrouter()

	httpHandler.NewAuthHandler(authSvc, jwtSvc, cfg.FrontendURL).RegisterRoutes(api)
	httpHandler.NewTripHandler(tripSvc, jwtSvc).RegisterRoutes(api)
	httpHandler.NewCityHandler(placesClient, jwtSvc).RegisterRoutes(api)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"disconnected"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"tripcrew-api","database":"connected"}`))
	}).Methods("GET")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run server in a goroutine
	go func() {
		appLogger.Info("server is running", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv.SetKeepAlivesEnabled(false)
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Could not gracefully shutdown the server: %v\n", err)
	}

	appLogger.Info("server stopped")
}
