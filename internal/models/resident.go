package models

import "github.com/shopspring/decimal"

// Resident represents one billable apartment tracked by the committee.
type Resident struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ApartmentNumber string          `json:"apartmentNumber"`
	MonthlyFee      decimal.Decimal `json:"monthlyFee"`
	Active          bool            `json:"active"`
	Phone           *string         `json:"phone,omitempty"`
	Email           *string         `json:"email,omitempty"`
}

// EffectiveFee returns the resident's own fee, or the committee default when
// the resident has none. Zero means the resident is exempt.
func (r Resident) EffectiveFee(settings GlobalSettings) decimal.Decimal {
	if r.MonthlyFee.IsPositive() {
		return r.MonthlyFee
	}
	return settings.DefaultMonthlyFee
}

// GlobalSettings holds committee-wide defaults.
type GlobalSettings struct {
	DefaultMonthlyFee decimal.Decimal `json:"defaultMonthlyFee"`
}

// RecipientAccount is a user account that may receive the debt summary mail.
type RecipientAccount struct {
	Email    string `json:"email"`
	SendMail bool   `json:"sendMail"`
}
