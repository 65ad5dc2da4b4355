package mailer

import (
	"context"

	"committee-notifier/internal/logger"
	"committee-notifier/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Outcome is the delivery result for one recipient.
type Outcome struct {
	Recipient string
	Err       error
}

// Result aggregates a fan-out.
type Result struct {
	Sent     int
	Failed   int
	Outcomes []Outcome
}

// Dispatcher fans a rendered notice out to every recipient. One recipient's
// failure never stops the others.
type Dispatcher struct {
	sender      Sender
	from        string
	concurrency int
	log         zerolog.Logger
}

// NewDispatcher creates a dispatcher. A nil sender means credentials were
// not configured; Ready reports it.
func NewDispatcher(sender Sender, from string, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		sender:      sender,
		from:        from,
		concurrency: concurrency,
		log:         logger.WithComponent("mailer"),
	}
}

// Ready returns ErrMissingCredentials when nothing can be sent.
func (d *Dispatcher) Ready() error {
	if d.sender == nil || d.from == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Dispatch sends html to every recipient and settles all attempts. It never
// fails as a whole; failures are counted in the result.
func (d *Dispatcher) Dispatch(ctx context.Context, subject, html string, recipients []string) Result {
	outcomes := make([]Outcome, len(recipients))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, to := range recipients {
		g.Go(func() error {
			err := d.sender.Send(ctx, Message{From: d.from, To: to, Subject: subject, HTML: html})
			outcomes[i] = Outcome{Recipient: to, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != nil {
			result.Failed++
			metrics.MailSendsTotal.WithLabelValues("failed").Inc()
			d.log.Error().Err(o.Err).Str("recipient", o.Recipient).Msg("Failed to send debt notice")
			continue
		}
		result.Sent++
		metrics.MailSendsTotal.WithLabelValues("sent").Inc()
		d.log.Info().Str("recipient", o.Recipient).Msg("Debt notice sent")
	}
	return result
}
