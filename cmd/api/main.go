package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/config"
	"github.com/harentsoaR/medtrack-api/internal/handlers"
	"github.com/harentsoaR/medtrack-api/internal/logging"
	"github.com/harentsoaR/medtrack-api/internal/metrics"
	"github.com/harentsoaR/medtrack-api/internal/services"
	"github.com/harentsoaR/medtrack-api/internal/session"
	"github.com/harentsoaR/medtrack-api/internal/store"
	"github.com/harentsoaR/medtrack-api/internal/store/memory"
	"github.com/harentsoaR/medtrack-api/internal/store/mongostore"
	"github.com/harentsoaR/medtrack-api/internal/utils"
)

func main() {
	cfg := config.Load()
	logging.Init("medtrack-api", cfg.Server.Env)

	if cfg.Session.UsingDevSecret() {
		log.Warn().Msg("SECRET_KEY is not set; using the development signing key")
	}

	ctx := context.Background()
	passwords := utils.NewPasswordPolicy(cfg.Booking.HashPasswords)

	// --- Backend ---
	var st store.Store
	if cfg.UseExternalStore {
		mongoStore, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		}()
		log.Info().Str("database", cfg.Mongo.Database).Msg("Successfully connected to MongoDB")
		st = mongoStore
	} else {
		memStore := memory.New()
		if cfg.SeedDemoData {
			if err := memory.SeedDemoData(ctx, memStore, passwords.Hash); err != nil {
				log.Fatal().Err(err).Msg("Failed to seed demo data")
			}
			log.Info().Msg("Demo accounts: patient@demo.com / doctor@demo.com")
		}
		st = memStore
	}
	log.Info().Str("backend", st.Name()).Msg("store ready")

	// --- Notifications ---
	var publisher services.Publisher
	if cfg.Notifications.NotificationsEnabled() {
		redisPublisher, err := services.NewRedisPublisher(ctx, cfg.Notifications.RedisURL)
		if err != nil {
			// notifications are best effort; keep serving with the log fallback
			log.Error().Err(err).Msg("Notification topic unavailable, logging events locally")
		} else {
			defer redisPublisher.Close()
			publisher = redisPublisher
			log.Info().Str("topic", cfg.Notifications.Topic).Msg("Publishing notifications to Redis")
		}
	}
	notifier := services.NewNotificationService(publisher, cfg.Notifications.Topic, cfg.Notifications.Timeout)

	// --- Services & Handlers ---
	sessions, err := session.NewManager(cfg.Session.SecretKey, cfg.Session.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session manager")
	}
	accounts := services.NewAccountService(st, passwords, notifier)
	bookings := services.NewBookingService(st, notifier, cfg.Booking.CancelDeletes)
	h := handlers.NewHandler(st, accounts, bookings, sessions, cfg.Session.CookieSecure, cfg.Session.TTL)

	// --- Gin Router ---
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(), metrics.Middleware())
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	// credentials cannot be combined with a wildcard origin
	if slices.Contains(cfg.Server.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	notifier.Wait()
}
