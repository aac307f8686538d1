package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym-checkin-backend/internal/config"
	"gym-checkin-backend/internal/handlers"
	"gym-checkin-backend/internal/middleware"
	"gym-checkin-backend/internal/repository"
	"gym-checkin-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// All calendar arithmetic runs in the configured zone
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Attendance.Timezone).Msg("Failed to load timezone")
	}

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)

	// Initialize services
	tokenService := services.NewTokenService(
		cfg.JWT.Secret,
		time.Duration(cfg.Attendance.QRTTLMinutes)*time.Minute,
	)
	checkinService := services.NewCheckInService(
		memberRepo,
		scheduleRepo,
		checkinRepo,
		tokenService,
		loc,
		cfg.Attendance.EarlyToleranceMinutes,
		cfg.Attendance.LateToleranceMinutes,
		time.Duration(cfg.Attendance.DuplicateWindowMinutes)*time.Minute,
	)
	memberService := services.NewMemberService(memberRepo, checkinRepo, loc)
	hub := services.NewMonitorHub()

	// Initialize handlers
	checkinHandler := handlers.NewCheckinHandler(checkinService, memberService, hub)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo)
	monitorHandler := handlers.NewMonitorHandler(hub, tokenService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Scanner routes, authenticated by the QR token itself
		r.Post("/scan-checkin", checkinHandler.ScanCheckin)
		r.Get("/scan-status/{member_id}", checkinHandler.ScanStatus)
		r.Get("/members/{member_id}/stats", checkinHandler.MemberStats)
		r.Get("/calendar/{category}", scheduleHandler.GetCalendar)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokenService))
			r.Post("/qr-token", tokenHandler.GenerateQRToken)
		})
	})

	// WebSocket route
	r.Get("/ws", monitorHandler.HandleMonitor)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
