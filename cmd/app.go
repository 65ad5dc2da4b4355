package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"committee-notifier/internal/archive"
	"committee-notifier/internal/config"
	"committee-notifier/internal/database"
	"committee-notifier/internal/debts"
	"committee-notifier/internal/job"
	"committee-notifier/internal/logger"
	"committee-notifier/internal/mailer"
	"committee-notifier/internal/notice"
	"committee-notifier/internal/recipients"
	"committee-notifier/internal/timeutil"
	"committee-notifier/internal/utils"
)

const tokenIssuer = "committee-notifier"

// app holds the wired pipeline shared by every command.
type app struct {
	db       *database.DB
	runner   *job.Runner
	renderer *notice.Renderer
	zone     *timeutil.Zone
}

// newApp connects to the store and wires the debt job. asOf (YYYY-MM-DD)
// pins the job clock to that day at noon in the committee's zone.
func newApp(ctx context.Context, cfg *config.Config, asOf string) (*app, error) {
	log := logger.WithComponent("app")

	zone, err := timeutil.LoadZone(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	if asOf != "" {
		day, err := time.ParseInLocation(timeutil.DateLayout, asOf, zone.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of date, use YYYY-MM-DD: %w", err)
		}
		zone = timeutil.FixedZone(zone.Location(), day.Add(12*time.Hour))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	db, err := database.New(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	format := utils.NewFormatter(cfg.Locale)
	renderer := notice.NewRenderer(format, zone.Location())

	// Without credentials the sender stays nil: preview works and sends
	// fail before contacting anyone.
	var sender mailer.Sender
	smtp, err := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	switch {
	case err == nil:
		sender = smtp
	case errors.Is(err, mailer.ErrMissingCredentials):
		log.Warn().Msg("SMTP_USER or SMTP_PASSWORD not set, sending is disabled")
	default:
		db.Close(ctx)
		return nil, err
	}

	opts := job.Options{
		Subject: cfg.MailSubject,
		Timeout: cfg.JobTimeout,
		Clock:   zone.Now,
	}
	if cfg.Archive.Enabled() {
		store, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			db.Close(ctx)
			return nil, err
		}
		opts.Archive = store
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Notice archiving enabled")
	}

	runner := job.NewRunner(
		debts.NewCollector(db, format),
		recipients.NewResolver(db),
		renderer,
		mailer.NewDispatcher(sender, cfg.SMTP.Sender(), cfg.SendConcurrency),
		opts,
	)

	return &app{db: db, runner: runner, renderer: renderer, zone: zone}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.Close(ctx); err != nil {
		log := logger.WithComponent("app")
		log.Warn().Err(err).Msg("Failed to close MongoDB connection")
	}
}
