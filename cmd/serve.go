package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"committee-notifier/internal/auth"
	"committee-notifier/internal/bot"
	"committee-notifier/internal/handlers"
	apphttp "committee-notifier/internal/http"
	"committee-notifier/internal/logger"
	"committee-notifier/internal/middleware"
	"committee-notifier/internal/scheduler"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled job with the HTTP and Telegram triggers",
	Long: `Starts the cron scheduler (SCHEDULE, evaluated in TIMEZONE), the HTTP
API on HTTP_PORT and, when TELEGRAM_BOT_TOKEN is set, the operator bot.

HTTP endpoints under /api/debts require a bearer token signed with
JWT_SECRET and are not mounted when JWT_SECRET is empty.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Everything that can fail is built before the scheduler and the
	// listener start, so an early return leaves nothing running.
	api, err := openBot(cfg.TelegramToken, tgbotapi.APIEndpoint)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := scheduler.New(cfg.Schedule, a.zone.Location(), a.runner)
	if err != nil {
		return err
	}

	var authMiddleware *middleware.AuthMiddleware
	if cfg.JWTSecret != "" {
		authMiddleware = middleware.NewAuthMiddleware(auth.NewJWTManager(cfg.JWTSecret, tokenIssuer))
	} else {
		log.Warn().Msg("JWT_SECRET not set, HTTP debt endpoints are disabled")
	}

	router := apphttp.NewRouter(
		handlers.NewDebtHandler(a.runner),
		handlers.NewHealthHandler(a.db),
		authMiddleware,
		cfg.CorsAllowedOrigins,
	)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched.Start()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if api != nil {
		commands := bot.NewCommandHandler(a.runner, a.renderer, a.zone.Location())
		go bot.Listen(ctx, api, bot.NewEventHandler(cfg, commands))
	}

	log.Info().Msg("Committee notifier is running")

	select {
	case <-ctx.Done():
	case err = <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("HTTP server shutdown incomplete")
	}
	sched.Stop(shutdownCtx)

	return err
}

// openBot connects to Telegram. It returns nil when no token is configured.
func openBot(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	api.Debug = false
	return api, nil
}
