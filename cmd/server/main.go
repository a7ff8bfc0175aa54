package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventscape/config"
	_ "eventscape/docs"
	"eventscape/internal/adapters/auth"
	"eventscape/internal/adapters/email"
	"eventscape/internal/adapters/realtime"
	httpdelivery "eventscape/internal/delivery/http"
	"eventscape/internal/delivery/http/controllers"
	"eventscape/internal/domain"
	"eventscape/internal/repository/postgres"
	"eventscape/internal/services"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

// @title Eventscape API
// @version 1.0
// @description Event management API: events, RSVPs, announcements, invitations, notifications and live dashboard counts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, cfg.RequestTimeout)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		return err
	}
	logger.Info("connected to database")

	// The triggers and the bridge must agree on the channel.
	statsChannel := cfg.Stats.Channel
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db, statsChannel); err != nil {
			return err
		}
		logger.Info("schema applied", "stats_channel", statsChannel)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	announcementRepo := postgres.NewAnnouncementRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	healthRepo := postgres.NewHealthRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWT(cfg.SessionSecret)
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	hub := realtime.NewHub(cfg.AllowedOrigins, logger)

	// Services
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.SessionTTL)
	userService := services.NewUserService(userRepo, hasher)
	eventService := services.NewEventService(eventRepo, cfg.RequestTimeout)
	rsvpService := services.NewRSVPService(eventRepo, rsvpRepo)
	emailService := services.NewEmailService(mailer, renderer, logger)
	announcementService := services.NewAnnouncementService(eventRepo, announcementRepo, notificationRepo, emailService, logger)
	invitationService := services.NewInvitationService(eventRepo, invitationRepo, userRepo, notificationRepo,
		rsvpService, emailService, cfg.BaseURL, logger)
	notificationService := services.NewNotificationService(notificationRepo)
	statsService := services.NewStatsService(statsRepo, logger)

	bridge := services.NewStatsBridge(postgres.NewStatsSubscriber(cfg.DBUrl), hub, services.StatsBridgeConfig{
		Channel:              statsChannel,
		ConnectRetries:       cfg.Stats.ConnectRetries,
		ConnectDelay:         cfg.Stats.ConnectDelay,
		ReconnectMaxTries:    cfg.Stats.ReconnectMaxTries,
		ReconnectMaxInterval: cfg.Stats.ReconnectMaxInterval,
	}, logger)

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authService, cfg.SessionTTL, cfg.IsProduction()),
		User:          controllers.NewUserController(logger, userService),
		Event:         controllers.NewEventController(logger, eventService),
		RSVP:          controllers.NewRSVPController(logger, rsvpService),
		Announcement:  controllers.NewAnnouncementController(logger, announcementService),
		Invitation:    controllers.NewInvitationController(logger, invitationService),
		Notification:  controllers.NewNotificationController(logger, notificationService),
		Stats:         controllers.NewStatsController(logger, statsService),
		Health:        controllers.NewHealthController(logger, healthRepo),
		RealtimeServe: hub.ServeWS,
	}, httpdelivery.RouterConfig{
		Verifier:       tokens,
		Resolver:       authService,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	bridge.Start(ctx)
	defer bridge.Stop()

	go releaseAnnouncements(ctx, announcementService, cfg.AnnouncementReleaseInterval, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	bridge.Stop()
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// releaseAnnouncements fans out scheduled announcements once their release
// time has passed.
func releaseAnnouncements(ctx context.Context, svc domain.AnnouncementService, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		logger.Warn("announcement release disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := svc.ReleaseDue(ctx, now)
			if err != nil {
				logger.ErrorContext(ctx, "release announcements failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("announcements released", "count", n)
			}
		}
	}
}
