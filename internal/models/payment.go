package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeePayment records the monthly committee fee of a resident for one month.
type FeePayment struct {
	ID            string          `json:"id"`
	ResidentID    string          `json:"residentId"`
	Amount        decimal.Decimal `json:"amount"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Paid          bool            `json:"paid"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
}

// PendingPayment is an ad-hoc charge owed outside the monthly fee cycle.
type PendingPayment struct {
	ID          string          `json:"id"`
	ResidentID  string          `json:"residentId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Paid        bool            `json:"paid"`
}

// IsDue reports whether the payment counts as debt at now.
func (p PendingPayment) IsDue(now time.Time) bool {
	if p.Paid {
		return false
	}
	return p.DueDate == nil || !p.DueDate.After(now)
}
