package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/DictatorXP/ExamWeb/internal/bot"
	"github.com/DictatorXP/ExamWeb/internal/catalog"
	"github.com/DictatorXP/ExamWeb/internal/config"
	"github.com/DictatorXP/ExamWeb/internal/guard"
	"github.com/DictatorXP/ExamWeb/internal/handler"
	"github.com/DictatorXP/ExamWeb/internal/logger"
	"github.com/DictatorXP/ExamWeb/internal/notify"
	"github.com/DictatorXP/ExamWeb/internal/registry"
	"github.com/DictatorXP/ExamWeb/internal/router"
	"github.com/DictatorXP/ExamWeb/internal/service"
	"github.com/DictatorXP/ExamWeb/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet; fail the plain way.
		panic(err)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamWeb")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Exam Catalog + Artifacts ──────────────────────────────────────
	store, err := catalog.NewArtifactStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare data directory")
	}
	cat := catalog.New(store, log)
	if err := cat.LoadArtifacts(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load exam artifacts")
	}

	// ─── In-Memory Registries ──────────────────────────────────────────
	approvals := registry.NewApprovalRegistry()
	attempts := registry.NewAttemptRegistry()

	// ─── Telegram API Client ───────────────────────────────────────────
	// The notifier has no per-call deadline hook, so the outbound timeout
	// lives on the shared HTTP client.
	api, err := tgbotapi.NewBotAPIWithClient(
		cfg.TelegramToken,
		tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.NotifyTimeout},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}

	// ─── Services ──────────────────────────────────────────────────────
	adminGuard := guard.New(cfg.SecretKey, cfg.AdminChatID)
	notifier := notify.NewTelegramNotifier(api, cfg.AdminChatID, log)
	sessions := service.NewController(approvals, attempts, cat, notifier, adminGuard, log)
	admin := service.NewAdminService(cat, approvals, attempts, notifier, adminGuard, cfg.UploadDir, log)

	// ─── Telegram Bot ──────────────────────────────────────────────────
	examBot := bot.New(api, cfg, adminGuard, sessions, admin, log)
	go examBot.Start(ctx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handler.NewStudentHandler(sessions), cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the bot's long-poll loop.
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
