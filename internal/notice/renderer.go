package notice

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"committee-notifier/internal/models"
	"committee-notifier/internal/timeutil"
	"committee-notifier/internal/utils"

	"github.com/shopspring/decimal"
)

//go:embed notice.html
var noticeHTML string

var noticeTemplate = template.Must(template.New("notice").Parse(noticeHTML))

// Title is used as the document heading.
const Title = "Committee Debt Summary"

// Renderer builds the HTML debt summary mailed to the committee.
type Renderer struct {
	format *utils.Formatter
	loc    *time.Location
}

// NewRenderer creates a renderer. Dates are printed in loc.
func NewRenderer(format *utils.Formatter, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{format: format, loc: loc}
}

type noticeView struct {
	Title      string
	Date       string
	Count      int
	GrandTotal string
	Rows       []noticeRow
}

type noticeRow struct {
	Name      string
	Apartment string
	Lines     []string
	Total     string
}

// Render returns the notice for summary. The only date in the output is the
// summary's generation date, so equal input gives byte-identical output.
func (r *Renderer) Render(summary *models.DebtSummary) (string, error) {
	view := noticeView{
		Title:      Title,
		Date:       summary.GeneratedAt.In(r.loc).Format(timeutil.DisplayLayout),
		Count:      len(summary.Debts),
		GrandTotal: r.format.Amount(summary.GrandTotal),
	}
	for _, debt := range summary.Debts {
		view.Rows = append(view.Rows, noticeRow{
			Name:      debt.Resident.Name,
			Apartment: debt.Resident.ApartmentNumber,
			Lines:     r.Breakdown(debt),
			Total:     r.format.Amount(debt.Total),
		})
	}

	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render notice: %w", err)
	}
	return buf.String(), nil
}

// Breakdown returns one line per non-empty category.
func (r *Renderer) Breakdown(debt models.ResidentDebt) []string {
	var lines []string
	if n := len(debt.Fees); n > 0 {
		lines = append(lines, fmt.Sprintf("Committee fees: %s (%s)", r.format.Amount(models.Sum(debt.Fees)), plural(n, "month", "months")))
	}
	if n := len(debt.Pending); n > 0 {
		lines = append(lines, fmt.Sprintf("Pending payments: %s (%s)", r.format.Amount(models.Sum(debt.Pending)), plural(n, "item", "items")))
	}
	if n := len(debt.Charging); n > 0 {
		lines = append(lines, fmt.Sprintf("EV charging: %s (%s)", r.format.Amount(models.Sum(debt.Charging)), plural(n, "bill", "bills")))
	}
	return lines
}

// Amount formats a money value the way the notice does.
func (r *Renderer) Amount(d decimal.Decimal) string {
	return r.format.Amount(d)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
