package debts

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"committee-notifier/internal/logger"
	"committee-notifier/internal/models"
	"committee-notifier/internal/utils"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of the data store used by the collector.
type Source interface {
	GetSettings(ctx context.Context) (models.GlobalSettings, error)
	GetActiveResidents(ctx context.Context) ([]models.Resident, error)
	GetFeePaymentsForYear(ctx context.Context, year int) ([]models.FeePayment, error)
	GetUnpaidFeePayments(ctx context.Context) ([]models.FeePayment, error)
	GetUnpaidPendingPayments(ctx context.Context) ([]models.PendingPayment, error)
	GetChargingStations(ctx context.Context) ([]models.ChargingStation, error)
	GetUnpaidMeterReadings(ctx context.Context) ([]models.MeterReading, error)
}

// Collector computes the per-resident debt breakdown.
type Collector struct {
	source Source
	format *utils.Formatter
	log    zerolog.Logger
}

// NewCollector creates a collector reading from source
func NewCollector(source Source, format *utils.Formatter) *Collector {
	return &Collector{
		source: source,
		format: format,
		log:    logger.WithComponent("debts"),
	}
}

type snapshot struct {
	settings     models.GlobalSettings
	residents    []models.Resident
	yearPayments []models.FeePayment
	unpaidFees   []models.FeePayment
	pending      []models.PendingPayment
	stations     []models.ChargingStation
	readings     []models.MeterReading
}

// Collect returns every active resident owing more than zero as of now,
// plus the grand total. Any read failure aborts the whole collection.
func (c *Collector) Collect(ctx context.Context, now time.Time) (*models.DebtSummary, error) {
	year, month := now.Year(), int(now.Month())

	snap, err := c.load(ctx, year)
	if err != nil {
		return nil, err
	}

	idx := buildIndex(snap, year)
	summary := &models.DebtSummary{
		GeneratedAt: now,
		Debts:       []models.ResidentDebt{},
		GrandTotal:  decimal.Zero,
	}

	for _, resident := range snap.residents {
		if !resident.Active {
			continue
		}
		debt := c.residentDebt(resident, snap, idx, now, year, month)
		if !debt.Total.IsPositive() {
			continue
		}
		summary.Debts = append(summary.Debts, debt)
		summary.GrandTotal = summary.GrandTotal.Add(debt.Total)
	}

	sortDebts(summary.Debts)

	c.log.Debug().
		Int("residents", len(snap.residents)).
		Int("with_debt", len(summary.Debts)).
		Str("grand_total", summary.GrandTotal.String()).
		Msg("Debt collection finished")

	return summary, nil
}

// load issues the independent reads concurrently and joins them.
func (c *Collector) load(ctx context.Context, year int) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.settings, err = c.source.GetSettings(gctx)
		return wrapRead("settings", err)
	})
	g.Go(func() (err error) {
		snap.residents, err = c.source.GetActiveResidents(gctx)
		return wrapRead("residents", err)
	})
	g.Go(func() (err error) {
		snap.yearPayments, err = c.source.GetFeePaymentsForYear(gctx, year)
		return wrapRead("fee payments", err)
	})
	g.Go(func() (err error) {
		snap.unpaidFees, err = c.source.GetUnpaidFeePayments(gctx)
		return wrapRead("unpaid fee payments", err)
	})
	g.Go(func() (err error) {
		snap.pending, err = c.source.GetUnpaidPendingPayments(gctx)
		return wrapRead("pending payments", err)
	})
	g.Go(func() (err error) {
		snap.stations, err = c.source.GetChargingStations(gctx)
		return wrapRead("charging stations", err)
	})
	g.Go(func() (err error) {
		snap.readings, err = c.source.GetUnpaidMeterReadings(gctx)
		return wrapRead("meter readings", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func wrapRead(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", what, err)
	}
	return nil
}

type index struct {
	paidMonths        map[string]map[int]bool
	carryOver         map[string][]models.FeePayment
	pendingByResident map[string][]models.PendingPayment
	readingsByStation map[string][]models.MeterReading
}

func buildIndex(snap *snapshot, year int) index {
	idx := index{
		paidMonths:        make(map[string]map[int]bool),
		carryOver:         make(map[string][]models.FeePayment),
		pendingByResident: make(map[string][]models.PendingPayment),
		readingsByStation: make(map[string][]models.MeterReading),
	}

	for _, p := range snap.yearPayments {
		if !p.Paid || p.Year != year {
			continue
		}
		if idx.paidMonths[p.ResidentID] == nil {
			idx.paidMonths[p.ResidentID] = make(map[int]bool)
		}
		idx.paidMonths[p.ResidentID][p.Month] = true
	}

	// Past years are not walked month by month: only records explicitly
	// marked unpaid surface as carry-over debt.
	for _, p := range snap.unpaidFees {
		if p.Paid || p.Year >= year {
			continue
		}
		idx.carryOver[p.ResidentID] = append(idx.carryOver[p.ResidentID], p)
	}
	for id := range idx.carryOver {
		list := idx.carryOver[id]
		sort.SliceStable(list, func(i, j int) bool {
			return periodBefore(list[i].Year, list[i].Month, list[j].Year, list[j].Month)
		})
	}

	for _, p := range snap.pending {
		idx.pendingByResident[p.ResidentID] = append(idx.pendingByResident[p.ResidentID], p)
	}

	for _, r := range snap.readings {
		idx.readingsByStation[r.StationID] = append(idx.readingsByStation[r.StationID], r)
	}
	for id := range idx.readingsByStation {
		list := idx.readingsByStation[id]
		sort.SliceStable(list, func(i, j int) bool {
			return periodBefore(list[i].Year, list[i].Month, list[j].Year, list[j].Month)
		})
	}

	return idx
}

func (c *Collector) residentDebt(r models.Resident, snap *snapshot, idx index, now time.Time, year, month int) models.ResidentDebt {
	debt := models.ResidentDebt{Resident: r}

	fee := r.EffectiveFee(snap.settings)
	if fee.IsPositive() {
		for _, p := range idx.carryOver[r.ID] {
			amount := p.Amount
			if !amount.IsPositive() {
				amount = fee
			}
			debt.Fees = append(debt.Fees, models.DebtItem{
				Kind:   models.ItemFee,
				Label:  c.format.MonthLabel(p.Month, p.Year),
				Month:  p.Month,
				Year:   p.Year,
				Amount: amount,
			})
		}

		paid := idx.paidMonths[r.ID]
		for m := 1; m <= month; m++ {
			if paid[m] {
				continue
			}
			debt.Fees = append(debt.Fees, models.DebtItem{
				Kind:   models.ItemFee,
				Label:  c.format.MonthLabel(m, year),
				Month:  m,
				Year:   year,
				Amount: fee,
			})
		}
	}

	for _, p := range idx.pendingByResident[r.ID] {
		if !p.IsDue(now) {
			continue
		}
		label := p.Description
		if label == "" {
			label = "Pending payment"
		}
		debt.Pending = append(debt.Pending, models.DebtItem{
			Kind:   models.ItemPending,
			Label:  label,
			Amount: p.Amount,
		})
	}

	for _, station := range StationsForResident(snap.stations, r) {
		for _, reading := range idx.readingsByStation[station.ID] {
			if reading.Paid || !reading.DueBy(year, month) {
				continue
			}
			debt.Charging = append(debt.Charging, models.DebtItem{
				Kind:   models.ItemCharging,
				Label:  c.format.MonthLabel(reading.Month, reading.Year),
				Month:  reading.Month,
				Year:   reading.Year,
				Amount: reading.Cost(),
			})
		}
	}

	debt.Total = models.Sum(debt.Items())
	return debt
}

// StationsForResident returns the charging stations billed to a resident.
// Stations store the apartment number rather than a resident id, so the
// join is by apartment number equality.
func StationsForResident(stations []models.ChargingStation, r models.Resident) []models.ChargingStation {
	if r.ApartmentNumber == "" {
		return nil
	}
	var out []models.ChargingStation
	for _, s := range stations {
		if s.ResidentApartment == r.ApartmentNumber {
			out = append(out, s)
		}
	}
	return out
}

func periodBefore(y1, m1, y2, m2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	return m1 < m2
}

// sortDebts orders by apartment number (numerically when possible), then name.
func sortDebts(debts []models.ResidentDebt) {
	sort.SliceStable(debts, func(i, j int) bool {
		a, b := debts[i].Resident, debts[j].Resident
		if a.ApartmentNumber != b.ApartmentNumber {
			return apartmentLess(a.ApartmentNumber, b.ApartmentNumber)
		}
		return a.Name < b.Name
	})
}

func apartmentLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	if (errA == nil) != (errB == nil) {
		return errA == nil
	}
	return a < b
}
