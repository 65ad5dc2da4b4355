package models

import "github.com/shopspring/decimal"

// ChargingStation is an EV charging submeter assigned to an apartment.
// It references its resident by apartment number, not by id.
type ChargingStation struct {
	ID                string `json:"id"`
	ResidentApartment string `json:"residentApartment"`
	ResidentName      string `json:"residentName"`
	Active            bool   `json:"active"`
}

// MeterReading is one billing period of a charging station.
type MeterReading struct {
	ID              string          `json:"id"`
	StationID       string          `json:"stationId"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	PreviousReading decimal.Decimal `json:"previousReading"`
	CurrentReading  decimal.Decimal `json:"currentReading"`
	PricePerKWh     decimal.Decimal `json:"pricePerKwh"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	Paid            bool            `json:"paid"`
}

// Consumption returns the kWh used in the period. A meter that went
// backwards (replaced or reset) counts as zero.
func (r MeterReading) Consumption() decimal.Decimal {
	delta := r.CurrentReading.Sub(r.PreviousReading)
	if delta.IsNegative() {
		return decimal.Zero
	}
	return delta
}

// Cost returns the stored bill, or consumption x price when no bill was stored.
func (r MeterReading) Cost() decimal.Decimal {
	if !r.TotalCost.IsZero() {
		return r.TotalCost
	}
	return r.Consumption().Mul(r.PricePerKWh)
}

// DueBy reports whether the period is on or before the given month.
func (r MeterReading) DueBy(year, month int) bool {
	return r.Year < year || (r.Year == year && r.Month <= month)
}
