package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventgate/config"
	_ "eventgate/docs"
	"eventgate/internal/adapters/auth"
	"eventgate/internal/adapters/email"
	"eventgate/internal/adapters/qr"
	httpdelivery "eventgate/internal/delivery/http"
	"eventgate/internal/delivery/http/controllers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/repository/postgres"
	"eventgate/internal/services"
)

const tokenExpiry = 24 * time.Hour

// @title EventGate API
// @version 1.0
// @description Event management API: venues, events, RSVPs, QR check-in, and admin tooling.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenManager := auth.NewJWTTokenManager(cfg.JWTSecret)
	qrEncoder := qr.NewPNGEncoder()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.AWSInsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authService := services.NewAuthService(userRepo, hasher, tokenManager, tokenExpiry, logger)
	venueService := services.NewVenueService(venueRepo, eventRepo)
	eventService := services.NewEventService(eventRepo, venueRepo, participantRepo)
	rsvpService := services.NewRSVPService(participantRepo, eventRepo, userRepo, emailService, logger)
	checkinService := services.NewCheckinService(participantRepo, eventRepo, userRepo, qrEncoder, cfg.BaseURL)
	rosterService := services.NewRosterService(participantRepo, eventRepo, userRepo, emailService, logger, cfg.BaseURL)
	userAdminService := services.NewUserAdminService(userRepo, eventRepo, participantRepo, hasher, emailService, logger, cfg.BaseURL)
	calendarService := services.NewCalendarService(eventRepo, venueRepo, cfg.BaseURL)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to ensure admin account: %v", err)
		}
	}

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:        controllers.NewAuthController(logger, authService),
		Checkin:     controllers.NewCheckinController(logger, checkinService),
		RSVP:        controllers.NewRSVPController(logger, rsvpService),
		Event:       controllers.NewEventController(logger, eventService),
		Venue:       controllers.NewVenueController(logger, venueService),
		User:        controllers.NewUserController(logger, userAdminService),
		Participant: controllers.NewParticipantController(logger, rosterService),
		Calendar:    controllers.NewCalendarController(logger, calendarService),
	}, tokenManager, logger)

	handler := middleware.LoggingMiddleware(logger, mux)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
