package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventbookingsystem/config"
	_ "eventbookingsystem/docs"
	"eventbookingsystem/internal/adapters/auth"
	"eventbookingsystem/internal/adapters/email"
	deliveryhttp "eventbookingsystem/internal/delivery/http"
	"eventbookingsystem/internal/delivery/http/controllers"
	"eventbookingsystem/internal/delivery/http/middleware"
	"eventbookingsystem/internal/repository/postgres"
	"eventbookingsystem/internal/services"
	"eventbookingsystem/migrations"
)

const serviceTimeout = 10 * time.Second

// @title Event Booking System API
// @version 1.0
// @description Event catalog with capacity-limited seat booking. Booking admission uses optimistic concurrency with bounded retries.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	if err := migrations.Apply(context.Background(), db); err != nil {
		logger.Error("apply migrations", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	tokenManager := auth.NewJWTManager(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(10)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	authService := services.NewAuthService(userRepo, hasher, tokenManager, cfg.JWTExpiry)
	if cfg.AdminEmail != "" {
		admin, err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			logger.Error("ensure admin", "err", err)
			os.Exit(1)
		}
		logger.Info("admin account ready", "email", admin.Email)
	}
	eventService := services.NewEventService(eventRepo, bookingRepo, serviceTimeout)
	bookingService := services.NewBookingService(eventRepo, bookingRepo, userRepo, emailService, serviceTimeout)

	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	bookingController := controllers.NewBookingController(logger, bookingService)

	mux := deliveryhttp.NewRouter(authController, eventController, bookingController, tokenManager)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
