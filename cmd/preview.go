package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"committee-notifier/internal/models"
	"committee-notifier/internal/notice"
	"committee-notifier/internal/timeutil"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the current debt breakdown without sending anything",
	Long: `Computes every active resident's debt and prints it. Recipients are
not resolved and no mail is sent.`,
	Example: `  # Human readable summary
  committee-notifier preview

  # Breakdown as of a given day, as CSV
  committee-notifier preview --as-of 2026-03-20 --format csv > debts.csv

  # The exact HTML that would be mailed
  committee-notifier preview --format html > notice.html`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("as-of", "", "Compute debts as of this day (format: YYYY-MM-DD, default: today)")
	previewCmd.Flags().String("format", "text", "Output format: text, json, csv or html")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	asOf, _ := cmd.Flags().GetString("as-of")
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context(), cfg, asOf)
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.runner.Preview(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "text":
		return writePreviewText(out, a.renderer, a.zone, summary)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "csv":
		return notice.WriteCSV(summary, a.zone.Location(), out)
	case "html":
		html, err := a.renderer.Render(summary)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, html)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writePreviewText(w io.Writer, renderer *notice.Renderer, zone *timeutil.Zone, summary *models.DebtSummary) error {
	fmt.Fprintf(w, "%s, %s\n\n", notice.Title, zone.Format(summary.GeneratedAt, timeutil.DisplayLayout))
	if !summary.HasDebt() {
		_, err := fmt.Fprintln(w, "No outstanding debts.")
		return err
	}
	for _, debt := range summary.Debts {
		fmt.Fprintf(w, "%-6s %-28s %12s\n", debt.Resident.ApartmentNumber, debt.Resident.Name, renderer.Amount(debt.Total))
		for _, line := range renderer.Breakdown(debt) {
			fmt.Fprintf(w, "       %s\n", line)
		}
	}
	_, err := fmt.Fprintf(w, "\nResidents with debt: %d\nTotal debt: %s\n", len(summary.Debts), renderer.Amount(summary.GrandTotal))
	return err
}
