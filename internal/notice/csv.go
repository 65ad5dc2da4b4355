package notice

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"committee-notifier/internal/models"
	"committee-notifier/internal/timeutil"
)

// WriteCSV writes the itemized breakdown as CSV, one row per line item
// followed by a total row per resident.
func WriteCSV(summary *models.DebtSummary, loc *time.Location, writer io.Writer) error {
	if loc == nil {
		loc = time.UTC
	}
	csvWriter := csv.NewWriter(writer)

	header := [][]string{
		{Title},
		{"Generated", summary.GeneratedAt.In(loc).Format(timeutil.DateLayout)},
		{"Residents with debt", strconv.Itoa(len(summary.Debts))},
		{"Total debt", summary.GrandTotal.String()},
		{},
		{"Apartment", "Name", "Type", "Item", "Amount"},
	}
	for _, row := range header {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, debt := range summary.Debts {
		for _, item := range debt.Items() {
			row := []string{
				debt.Resident.ApartmentNumber,
				debt.Resident.Name,
				string(item.Kind),
				item.Label,
				item.Amount.String(),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write item: %w", err)
			}
		}
		total := []string{debt.Resident.ApartmentNumber, debt.Resident.Name, "total", "", debt.Total.String()}
		if err := csvWriter.Write(total); err != nil {
			return fmt.Errorf("failed to write total: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
