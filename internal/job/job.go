package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"committee-notifier/internal/logger"
	"committee-notifier/internal/mailer"
	"committee-notifier/internal/metrics"
	"committee-notifier/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrTimeout is returned when a run exceeds its time budget.
var ErrTimeout = errors.New("debt job exceeded its time budget")

// Error wraps a failure with the pipeline step that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("debt job: %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Trigger identifies the entry point of a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerPreview   Trigger = "preview"
)

// Result messages
const (
	MessageNoDebts      = "no debts"
	MessageNoRecipients = "no recipients"
	MessageSent         = "debt notices sent"
)

// Collector computes debts as of now.
type Collector interface {
	Collect(ctx context.Context, now time.Time) (*models.DebtSummary, error)
}

// Resolver lists the notice recipients.
type Resolver interface {
	Resolve(ctx context.Context) ([]string, error)
}

// Renderer turns a summary into HTML.
type Renderer interface {
	Render(summary *models.DebtSummary) (string, error)
}

// Dispatcher fans the notice out.
type Dispatcher interface {
	Ready() error
	Dispatch(ctx context.Context, subject, html string, recipients []string) mailer.Result
}

// Archiver stores rendered notices.
type Archiver interface {
	SaveNotice(ctx context.Context, generatedAt time.Time, runID, html string) (string, error)
}

// SendResult is returned by a manual send.
type SendResult struct {
	Message           string          `json:"message"`
	Sent              int             `json:"sent"`
	Failed            int             `json:"failed"`
	Recipients        int             `json:"recipients"`
	ResidentsWithDebt int             `json:"residentsWithDebt"`
	GrandTotal        decimal.Decimal `json:"grandTotal"`
}

// Options tune a Runner.
type Options struct {
	Subject string
	Timeout time.Duration
	Clock   func() time.Time
	Archive Archiver
}

// Runner runs the debt pipeline. It holds no state between runs, so
// overlapping runs are safe.
type Runner struct {
	collector  Collector
	resolver   Resolver
	renderer   Renderer
	dispatcher Dispatcher
	archive    Archiver
	subject    string
	timeout    time.Duration
	clock      func() time.Time
}

// NewRunner wires the pipeline
func NewRunner(collector Collector, resolver Resolver, renderer Renderer, dispatcher Dispatcher, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Subject == "" {
		opts.Subject = "Committee debt summary"
	}
	return &Runner{
		collector:  collector,
		resolver:   resolver,
		renderer:   renderer,
		dispatcher: dispatcher,
		archive:    opts.Archive,
		subject:    opts.Subject,
		timeout:    opts.Timeout,
		clock:      opts.Clock,
	}
}

// RunScheduled runs the full pipeline for the cron trigger. Errors are
// returned to the scheduler; the job does not retry.
func (r *Runner) RunScheduled(ctx context.Context) error {
	_, err := r.run(ctx, TriggerScheduled)
	return err
}

// SendNow runs the full pipeline for an operator and reports the outcome.
func (r *Runner) SendNow(ctx context.Context) (*SendResult, error) {
	return r.run(ctx, TriggerManual)
}

// Preview collects debts only. It never resolves recipients or sends mail.
func (r *Runner) Preview(ctx context.Context) (*models.DebtSummary, error) {
	runID := uuid.NewString()
	log := logger.WithRunID("job", runID).With().Str("trigger", string(TriggerPreview)).Logger()
	start := time.Now()
	defer observe(TriggerPreview, start)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	summary, err := r.collector.Collect(ctx, r.clock())
	if err != nil {
		err = r.fail(ctx, "collect", err)
		log.Error().Err(err).Msg("Debt preview failed")
		metrics.JobRunsTotal.WithLabelValues(string(TriggerPreview), "failed").Inc()
		return nil, err
	}
	recordSummary(summary)

	log.Info().
		Int("residents_with_debt", len(summary.Debts)).
		Str("grand_total", summary.GrandTotal.String()).
		Msg("Debt preview ready")
	metrics.JobRunsTotal.WithLabelValues(string(TriggerPreview), "preview").Inc()
	return summary, nil
}

func (r *Runner) run(ctx context.Context, trigger Trigger) (*SendResult, error) {
	runID := uuid.NewString()
	log := logger.WithRunID("job", runID).With().Str("trigger", string(trigger)).Logger()
	start := time.Now()
	defer observe(trigger, start)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	log.Info().Msg("Debt job started")

	result, outcome, err := r.pipeline(ctx, runID, log)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Debt job failed")
		metrics.JobRunsTotal.WithLabelValues(string(trigger), "failed").Inc()
		return nil, err
	}

	metrics.JobRunsTotal.WithLabelValues(string(trigger), outcome).Inc()
	log.Info().
		Str("outcome", outcome).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Int("recipients", result.Recipients).
		Int("residents_with_debt", result.ResidentsWithDebt).
		Str("grand_total", result.GrandTotal.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Debt job finished")
	return result, nil
}

func (r *Runner) pipeline(ctx context.Context, runID string, log zerolog.Logger) (*SendResult, string, error) {
	now := r.clock()

	summary, err := r.collector.Collect(ctx, now)
	if err != nil {
		return nil, "", r.fail(ctx, "collect", err)
	}
	recordSummary(summary)

	result := &SendResult{
		ResidentsWithDebt: len(summary.Debts),
		GrandTotal:        summary.GrandTotal,
	}
	if !summary.HasDebt() {
		log.Info().Msg("No debts found, nothing to send")
		result.Message = MessageNoDebts
		return result, "no_debts", nil
	}

	recipients, err := r.resolver.Resolve(ctx)
	if err != nil {
		return nil, "", r.fail(ctx, "resolve", err)
	}
	result.Recipients = len(recipients)
	if len(recipients) == 0 {
		log.Info().Msg("No recipients flagged for mail, nothing to send")
		result.Message = MessageNoRecipients
		return result, "no_recipients", nil
	}

	if err := r.dispatcher.Ready(); err != nil {
		return nil, "", &Error{Op: "dispatch", Err: err}
	}

	html, err := r.renderer.Render(summary)
	if err != nil {
		return nil, "", r.fail(ctx, "render", err)
	}

	if r.archive != nil {
		if key, err := r.archive.SaveNotice(ctx, now, runID, html); err != nil {
			log.Warn().Err(err).Msg("Failed to archive notice")
		} else {
			log.Debug().Str("key", key).Msg("Notice archived")
		}
	}

	sent := r.dispatcher.Dispatch(ctx, r.subjectFor(now), html, recipients)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, "", ErrTimeout
	}

	result.Sent = sent.Sent
	result.Failed = sent.Failed
	result.Message = MessageSent
	return result, "sent", nil
}

func (r *Runner) subjectFor(now time.Time) string {
	return fmt.Sprintf("%s %s", r.subject, now.Format("01/2006"))
}

// fail maps a step error, reporting an exhausted time budget as ErrTimeout.
func (r *Runner) fail(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &Error{Op: op, Err: err}
}

func recordSummary(summary *models.DebtSummary) {
	metrics.ResidentsWithDebt.Set(float64(len(summary.Debts)))
	metrics.DebtGrandTotal.Set(summary.GrandTotal.InexactFloat64())
}

func observe(trigger Trigger, start time.Time) {
	metrics.JobDuration.WithLabelValues(string(trigger)).Observe(time.Since(start).Seconds())
}
