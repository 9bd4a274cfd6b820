// @title ClientDesk API
// @version 1.0
// @description Invitation, account, and client-profile backend for the ClientDesk dashboard.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
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

	"clientdesk/config"
	_ "clientdesk/docs"
	"clientdesk/internal/adapters/auth"
	"clientdesk/internal/adapters/email"
	"clientdesk/internal/chat"
	delivery "clientdesk/internal/delivery/http"
	"clientdesk/internal/delivery/http/controllers"
	"clientdesk/internal/delivery/http/middleware"
	"clientdesk/internal/repository/postgres"
	"clientdesk/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

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

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mailer.SESRegion,
			AccessKeyID:        cfg.Mailer.SESAccessKeyID,
			SecretAccessKey:    cfg.Mailer.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Mailer.InsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	chatMessageRepo := postgres.NewChatMessageRepository(db)

	hasher := auth.NewBcryptHasher(12)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	inviteIssuer := auth.NewInviteTokenIssuer(cfg.InviteSecret)
	inviteVerifier := auth.NewInviteTokenVerifier(cfg.InviteSecret)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	authService := services.NewAuthService(userRepo, roleRepo, hasher, tokenIssuer, cfg.JWTExpiry, emailService)
	invitationService := services.NewInvitationService(invitationRepo, inviteIssuer, inviteVerifier, emailService, cfg.InviteTTL, cfg.InviteBaseURL)
	profileService := services.NewProfileService(profileRepo)

	hub := chat.NewHub(logger, cfg.AllowedOrigins)
	chatService := services.NewChatService(chatMessageRepo, hub)

	mux := delivery.NewRouter(delivery.RouterDeps{
		Logger:        logger,
		TokenVerifier: tokenVerifier,
		Auth:          controllers.NewAuthController(logger, authService),
		Invites:       controllers.NewInviteController(logger, invitationService),
		Profiles:      controllers.NewProfileController(logger, profileService, authService),
		Chat:          controllers.NewChatController(logger, chatService, hub),
	})

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
