package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"

	"teamjoin/internal/config"
	"teamjoin/internal/handlers"
	"teamjoin/internal/pdf"
	"teamjoin/internal/repositories"
	"teamjoin/internal/routes"
	"teamjoin/internal/services"
)

// Run wires the bot and the admin HTTP server and blocks until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	// === Storage ===
	members, closeStore, err := openMembers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	invites := repositories.NewFileInviteRepository(cfg.Storage.InvitesFile)
	sessions := repositories.NewSessionStore()

	// === Services ===
	tg, err := services.NewTelegramService(cfg.Telegram.Token, cfg.Telegram.PollTimeout, cfg.Telegram.Debug)
	if err != nil {
		return err
	}
	notifier := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.AdminEmail,
	)
	if notifier == nil {
		log.Printf("[app] admin email notifications disabled")
	}
	worker := services.NewExecWorkerRunner(cfg.Worker.Command, cfg.Worker.Timeout)
	limiter := services.NewAttemptLimiter(cfg.Worker.AttemptsPerHour, cfg.Worker.AttemptBurst)
	joinService := services.NewJoinService(members, invites, sessions, worker, notifier, limiter)

	// === Handlers ===
	botHandler := handlers.NewBotHandler(tg, joinService)
	adminHandler := handlers.NewAdminHandler(members, invites, pdf.NewReportGenerator(cfg.Files.RootDir, cfg.Files.FontPath))
	var authHandler *handlers.AuthHandler
	if cfg.Admin.Username != "" {
		authHandler = handlers.NewAuthHandler(cfg.Admin.Username, cfg.Admin.PasswordHash, []byte(cfg.Admin.JWTSecret), cfg.Admin.TokenTTL)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var integrationsHandler *handlers.IntegrationsHandler
	botDone := make(chan struct{})
	switch cfg.Telegram.Mode {
	case "webhook":
		queue := make(chan tgbotapi.Update, 100)
		integrationsHandler = handlers.NewIntegrationsHandler(tg, queue)
		if err := tg.SetWebhook(cfg.Telegram.WebhookURL); err != nil {
			return err
		}
		go func() {
			defer close(botDone)
			botHandler.Serve(ctx, queue)
		}()
	default:
		go func() {
			defer close(botDone)
			tg.Poll(ctx, botHandler.HandleUpdate)
		}()
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, adminHandler, authHandler, integrationsHandler, []byte(cfg.Admin.JWTSecret))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("[app] http listening on %s mode=%s", srv.Addr, cfg.Telegram.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		log.Printf("[app] http server failed: %v", err)
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Printf("[app] http shutdown: %v", serr)
	}
	<-botDone
	log.Printf("[app] stopped")
	return err
}

func openMembers(ctx context.Context, cfg *config.Config) (repositories.MemberRepository, func(), error) {
	if cfg.Storage.Driver != "postgres" {
		repo, err := repositories.NewFileMemberRepository(cfg.Storage.MembersFile)
		return repo, func() {}, err
	}

	db, err := sql.Open("postgres", cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Printf("[app] close db: %v", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	repo, err := repositories.NewPostgresMemberRepository(ctx, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return repo, closeDB, nil
}
