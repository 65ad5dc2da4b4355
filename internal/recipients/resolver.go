package recipients

import (
	"context"
	"fmt"
	"strings"

	"committee-notifier/internal/models"
)

// AccountSource lists the accounts flagged to receive mail.
type AccountSource interface {
	GetMailRecipients(ctx context.Context) ([]models.RecipientAccount, error)
}

// Resolver turns flagged accounts into a mailing list.
type Resolver struct {
	source AccountSource
}

// NewResolver creates a resolver
func NewResolver(source AccountSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns distinct, non-empty addresses in first-seen order.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	accounts, err := r.source.GetMailRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	seen := make(map[string]bool, len(accounts))
	emails := make([]string, 0, len(accounts))
	for _, a := range accounts {
		email := strings.TrimSpace(a.Email)
		if !a.SendMail || email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails, nil
}
