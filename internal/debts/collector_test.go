package debts

import (
	"context"
	"errors"
	"testing"
	"time"

	"committee-notifier/internal/models"
	"committee-notifier/internal/utils"

	"github.com/shopspring/decimal"
)

type fakeSource struct {
	settings     models.GlobalSettings
	residents    []models.Resident
	payments     []models.FeePayment
	pending      []models.PendingPayment
	stations     []models.ChargingStation
	readings     []models.MeterReading
	readingsErr  error
	residentsErr error
}

func (f *fakeSource) GetSettings(context.Context) (models.GlobalSettings, error) {
	return f.settings, nil
}

func (f *fakeSource) GetActiveResidents(context.Context) ([]models.Resident, error) {
	if f.residentsErr != nil {
		return nil, f.residentsErr
	}
	var out []models.Resident
	for _, r := range f.residents {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) GetFeePaymentsForYear(_ context.Context, year int) ([]models.FeePayment, error) {
	var out []models.FeePayment
	for _, p := range f.payments {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) GetUnpaidFeePayments(context.Context) ([]models.FeePayment, error) {
	var out []models.FeePayment
	for _, p := range f.payments {
		if !p.Paid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) GetUnpaidPendingPayments(context.Context) ([]models.PendingPayment, error) {
	var out []models.PendingPayment
	for _, p := range f.pending {
		if !p.Paid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) GetChargingStations(context.Context) ([]models.ChargingStation, error) {
	return f.stations, nil
}

func (f *fakeSource) GetUnpaidMeterReadings(context.Context) ([]models.MeterReading, error) {
	if f.readingsErr != nil {
		return nil, f.readingsErr
	}
	var out []models.MeterReading
	for _, r := range f.readings {
		if !r.Paid {
			out = append(out, r)
		}
	}
	return out, nil
}

var march2026 = time.Date(2026, time.March, 20, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func resident(id, apt, fee string) models.Resident {
	return models.Resident{ID: id, Name: "Resident " + id, ApartmentNumber: apt, MonthlyFee: dec(fee), Active: true}
}

func paid(residentID string, month, year int) models.FeePayment {
	return models.FeePayment{ID: residentID + "-" + time.Month(month).String(), ResidentID: residentID, Amount: dec("300"), Month: month, Year: year, Paid: true}
}

func collect(t *testing.T, src *fakeSource, now time.Time) *models.DebtSummary {
	t.Helper()
	summary, err := NewCollector(src, utils.NewFormatter("en")).Collect(context.Background(), now)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return summary
}

func TestScenarioANoPayments(t *testing.T) {
	src := &fakeSource{residents: []models.Resident{resident("r1", "1", "300")}}
	s := collect(t, src, march2026)

	if len(s.Debts) != 1 {
		t.Fatalf("debts = %d, want 1", len(s.Debts))
	}
	d := s.Debts[0]
	if len(d.Fees) != 3 {
		t.Fatalf("fee items = %d, want 3", len(d.Fees))
	}
	for i, item := range d.Fees {
		if item.Month != i+1 || item.Year != 2026 {
			t.Errorf("item %d = %+v", i, item)
		}
	}
	if d.Fees[0].Label != "January 2026" {
		t.Errorf("label = %q", d.Fees[0].Label)
	}
	if !d.Total.Equal(dec("900")) || !s.GrandTotal.Equal(dec("900")) {
		t.Errorf("total = %s, grand = %s", d.Total, s.GrandTotal)
	}
}

func TestScenarioBOneMonthPaid(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "300")},
		payments:  []models.FeePayment{paid("r1", 2, 2026)},
	}
	d := collect(t, src, march2026).Debts[0]

	if len(d.Fees) != 2 || d.Fees[0].Month != 1 || d.Fees[1].Month != 3 {
		t.Fatalf("fees = %+v", d.Fees)
	}
	if !d.Total.Equal(dec("600")) {
		t.Errorf("total = %s", d.Total)
	}
}

func TestScenarioCExemptWithPending(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "0")},
		pending:   []models.PendingPayment{{ID: "p1", ResidentID: "r1", Description: "Elevator repair", Amount: dec("150")}},
	}
	s := collect(t, src, march2026)

	if len(s.Debts) != 1 {
		t.Fatalf("debts = %d", len(s.Debts))
	}
	d := s.Debts[0]
	if len(d.Fees) != 0 {
		t.Errorf("fee items = %d, want 0", len(d.Fees))
	}
	if len(d.Pending) != 1 || d.Pending[0].Label != "Elevator repair" {
		t.Errorf("pending = %+v", d.Pending)
	}
	if !d.Total.Equal(dec("150")) {
		t.Errorf("total = %s", d.Total)
	}
}

func TestScenarioDChargingOnly(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "7", "300")},
		payments:  []models.FeePayment{paid("r1", 1, 2026), paid("r1", 2, 2026), paid("r1", 3, 2026)},
		stations:  []models.ChargingStation{{ID: "s1", ResidentApartment: "7", ResidentName: "Resident r1", Active: true}},
		readings:  []models.MeterReading{{ID: "m1", StationID: "s1", Month: 3, Year: 2026, TotalCost: dec("45")}},
	}
	s := collect(t, src, march2026)

	if len(s.Debts) != 1 {
		t.Fatalf("debts = %d", len(s.Debts))
	}
	d := s.Debts[0]
	if len(d.Fees) != 0 || len(d.Charging) != 1 {
		t.Fatalf("fees = %d, charging = %d", len(d.Fees), len(d.Charging))
	}
	if !d.Total.Equal(dec("45")) {
		t.Errorf("total = %s", d.Total)
	}
}

func TestExemptResidentNeverGetsFeeItems(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "0")},
		payments: []models.FeePayment{
			{ID: "old", ResidentID: "r1", Amount: dec("300"), Month: 11, Year: 2025, Paid: false},
			paid("r1", 1, 2026),
		},
	}
	s := collect(t, src, march2026)
	if len(s.Debts) != 0 {
		t.Fatalf("exempt resident with no other debt should be excluded, got %+v", s.Debts)
	}
}

func TestDefaultFeeApplies(t *testing.T) {
	src := &fakeSource{
		settings:  models.GlobalSettings{DefaultMonthlyFee: dec("250")},
		residents: []models.Resident{resident("r1", "1", "0")},
	}
	d := collect(t, src, march2026).Debts[0]
	if !d.Total.Equal(dec("750")) {
		t.Fatalf("total = %s, want 750", d.Total)
	}
}

func TestFeeItemCountMatchesUnpaidMonths(t *testing.T) {
	tests := []struct {
		name       string
		month      time.Month
		paidMonths []int
	}{
		{"january none paid", time.January, nil},
		{"june some paid", time.June, []int{1, 3, 5}},
		{"december all paid", time.December, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{"paid future month ignored", time.April, []int{2, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{residents: []models.Resident{resident("r1", "1", "100")}}
			paidInRange := 0
			for _, m := range tt.paidMonths {
				src.payments = append(src.payments, paid("r1", m, 2026))
				if m <= int(tt.month) {
					paidInRange++
				}
			}
			now := time.Date(2026, tt.month, 10, 0, 0, 0, 0, time.UTC)
			s := collect(t, src, now)

			want := int(tt.month) - paidInRange
			got := 0
			if len(s.Debts) == 1 {
				got = len(s.Debts[0].Fees)
			}
			if got != want {
				t.Fatalf("fee items = %d, want %d", got, want)
			}
		})
	}
}

func TestInclusionBoundary(t *testing.T) {
	allPaid := []models.FeePayment{paid("r1", 1, 2026), paid("r1", 2, 2026), paid("r1", 3, 2026)}

	zero := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "300")},
		payments:  allPaid,
		pending:   []models.PendingPayment{{ID: "p", ResidentID: "r1", Amount: dec("0")}},
	}
	if s := collect(t, zero, march2026); len(s.Debts) != 0 {
		t.Fatalf("total 0 must be excluded, got %+v", s.Debts)
	}

	cent := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "300")},
		payments:  allPaid,
		pending:   []models.PendingPayment{{ID: "p", ResidentID: "r1", Amount: dec("0.01")}},
	}
	s := collect(t, cent, march2026)
	if len(s.Debts) != 1 || !s.Debts[0].Total.Equal(dec("0.01")) {
		t.Fatalf("total 0.01 must be included, got %+v", s.Debts)
	}
}

// Past years surface only explicitly unpaid records; months without any
// record are not walked.
func TestPastYearOnlyExplicitUnpaidRecords(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "300")},
		payments: []models.FeePayment{
			paid("r1", 1, 2026), paid("r1", 2, 2026), paid("r1", 3, 2026),
			{ID: "dec", ResidentID: "r1", Amount: dec("280"), Month: 12, Year: 2025, Paid: false},
			{ID: "nov", ResidentID: "r1", Amount: dec("0"), Month: 11, Year: 2025, Paid: false},
		},
	}
	d := collect(t, src, march2026).Debts[0]

	if len(d.Fees) != 2 {
		t.Fatalf("fees = %+v, want only the two explicit 2025 records", d.Fees)
	}
	if d.Fees[0].Month != 11 || !d.Fees[0].Amount.Equal(dec("300")) {
		t.Errorf("zero-amount record should fall back to the fee: %+v", d.Fees[0])
	}
	if d.Fees[1].Month != 12 || !d.Fees[1].Amount.Equal(dec("280")) {
		t.Errorf("record amount should be used: %+v", d.Fees[1])
	}
	if !d.Total.Equal(dec("580")) {
		t.Errorf("total = %s", d.Total)
	}
}

func TestUnpaidCurrentYearRecordDoesNotDoubleCount(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "300")},
		payments:  []models.FeePayment{{ID: "jan", ResidentID: "r1", Amount: dec("300"), Month: 1, Year: 2026, Paid: false}},
	}
	d := collect(t, src, march2026).Debts[0]
	if len(d.Fees) != 3 {
		t.Fatalf("fees = %d, want 3", len(d.Fees))
	}
}

func TestPendingDueDates(t *testing.T) {
	past := march2026.Add(-24 * time.Hour)
	future := march2026.Add(24 * time.Hour)
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "1", "0")},
		pending: []models.PendingPayment{
			{ID: "a", ResidentID: "r1", Description: "due", Amount: dec("10"), DueDate: &past},
			{ID: "b", ResidentID: "r1", Description: "not yet", Amount: dec("20"), DueDate: &future},
			{ID: "c", ResidentID: "r1", Description: "paid", Amount: dec("40"), Paid: true},
			{ID: "d", ResidentID: "other", Description: "someone else", Amount: dec("80")},
		},
	}
	d := collect(t, src, march2026).Debts[0]
	if len(d.Pending) != 1 || !d.Total.Equal(dec("10")) {
		t.Fatalf("pending = %+v, total = %s", d.Pending, d.Total)
	}
}

func TestChargingJoinAndPeriods(t *testing.T) {
	src := &fakeSource{
		residents: []models.Resident{resident("r1", "7", "0"), resident("r2", "8", "0")},
		stations: []models.ChargingStation{
			{ID: "s7", ResidentApartment: "7"},
			{ID: "s8", ResidentApartment: "8"},
		},
		readings: []models.MeterReading{
			{ID: "old", StationID: "s7", Month: 11, Year: 2025, TotalCost: dec("30")},
			{ID: "now", StationID: "s7", Month: 3, Year: 2026, TotalCost: dec("45")},
			{ID: "future", StationID: "s7", Month: 4, Year: 2026, TotalCost: dec("99")},
			{ID: "paid", StationID: "s7", Month: 2, Year: 2026, TotalCost: dec("60"), Paid: true},
			{ID: "computed", StationID: "s8", Month: 1, Year: 2026, PreviousReading: dec("100"), CurrentReading: dec("200"), PricePerKWh: dec("0.5")},
			{ID: "orphan", StationID: "gone", Month: 1, Year: 2026, TotalCost: dec("500")},
		},
	}
	s := collect(t, src, march2026)
	if len(s.Debts) != 2 {
		t.Fatalf("debts = %d", len(s.Debts))
	}

	r1 := s.Debts[0]
	if r1.Resident.ID != "r1" || len(r1.Charging) != 2 || !r1.Total.Equal(dec("75")) {
		t.Errorf("r1 = %+v", r1)
	}
	if r1.Charging[0].Year != 2025 {
		t.Errorf("readings should be chronological: %+v", r1.Charging)
	}

	r2 := s.Debts[1]
	if !r2.Total.Equal(dec("50")) {
		t.Errorf("r2 total = %s, want 50", r2.Total)
	}
	if !s.GrandTotal.Equal(dec("125")) {
		t.Errorf("grand total = %s", s.GrandTotal)
	}
}

func TestStationsForResident(t *testing.T) {
	stations := []models.ChargingStation{{ID: "a", ResidentApartment: "3"}, {ID: "b", ResidentApartment: "4"}, {ID: "c", ResidentApartment: "3"}}
	got := StationsForResident(stations, models.Resident{ApartmentNumber: "3"})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("got %+v", got)
	}
	if got := StationsForResident(stations, models.Resident{}); got != nil {
		t.Fatalf("resident without apartment matched %+v", got)
	}
}

func TestInactiveResidentsSkipped(t *testing.T) {
	r := resident("r1", "1", "300")
	r.Active = false
	src := &fakeSource{residents: []models.Resident{r}}
	if s := collect(t, src, march2026); len(s.Debts) != 0 {
		t.Fatalf("inactive resident included: %+v", s.Debts)
	}
}

func TestResultsSortedByApartment(t *testing.T) {
	src := &fakeSource{residents: []models.Resident{
		resident("a", "10", "1"),
		resident("b", "9", "1"),
		resident("c", "2", "1"),
	}}
	s := collect(t, src, march2026)
	var order []string
	for _, d := range s.Debts {
		order = append(order, d.Resident.ApartmentNumber)
	}
	if len(order) != 3 || order[0] != "2" || order[1] != "9" || order[2] != "10" {
		t.Fatalf("order = %v", order)
	}
}

func TestReadFailureAborts(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{residents: []models.Resident{resident("r1", "1", "300")}, readingsErr: boom}
	_, err := NewCollector(src, utils.NewFormatter("en")).Collect(context.Background(), march2026)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped read error", err)
	}
}
