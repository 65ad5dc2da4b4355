package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind classifies a debt line item.
type ItemKind string

const (
	ItemFee      ItemKind = "fee"
	ItemPending  ItemKind = "pending"
	ItemCharging ItemKind = "charging"
)

// DebtItem is one unpaid obligation of a resident.
type DebtItem struct {
	Kind   ItemKind        `json:"kind"`
	Label  string          `json:"label"`
	Month  int             `json:"month,omitempty"`
	Year   int             `json:"year,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// ResidentDebt is the itemized debt of one resident. It is computed per
// invocation and never persisted.
type ResidentDebt struct {
	Resident Resident        `json:"resident"`
	Fees     []DebtItem      `json:"fees"`
	Pending  []DebtItem      `json:"pending"`
	Charging []DebtItem      `json:"charging"`
	Total    decimal.Decimal `json:"total"`
}

// Items returns all line items in fee, pending, charging order.
func (d ResidentDebt) Items() []DebtItem {
	items := make([]DebtItem, 0, len(d.Fees)+len(d.Pending)+len(d.Charging))
	items = append(items, d.Fees...)
	items = append(items, d.Pending...)
	items = append(items, d.Charging...)
	return items
}

// Sum adds up a list of items.
func Sum(items []DebtItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// DebtSummary is the result of one collection run.
type DebtSummary struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Debts       []ResidentDebt  `json:"debts"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// HasDebt reports whether any resident owes money.
func (s *DebtSummary) HasDebt() bool {
	return s != nil && len(s.Debts) > 0
}
