package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Compute debts and mail the summary now",
	Long: `Runs the full job once: collect debts, resolve recipients, render the
notice and mail it. Requires SMTP_USER and SMTP_PASSWORD.`,
	Example: `  committee-notifier send
  committee-notifier send --as-of 2026-03-20`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().String("as-of", "", "Compute debts as of this day (format: YYYY-MM-DD, default: today)")
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	asOf, _ := cmd.Flags().GetString("as-of")

	a, err := newApp(cmd.Context(), cfg, asOf)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.runner.SendNow(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Result:              %s\n", result.Message)
	fmt.Fprintf(out, "Residents with debt: %d\n", result.ResidentsWithDebt)
	fmt.Fprintf(out, "Total debt:          %s\n", a.renderer.Amount(result.GrandTotal))
	fmt.Fprintf(out, "Recipients:          %d\n", result.Recipients)
	fmt.Fprintf(out, "Sent:                %d\n", result.Sent)
	fmt.Fprintf(out, "Failed:              %d\n", result.Failed)

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d notices failed", result.Failed, result.Recipients)
	}
	return nil
}
