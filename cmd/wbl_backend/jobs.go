package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/spf13/cobra"
)

var accrueCmd = &cobra.Command{
	Use:   "accrue",
	Short: "Generate monthly accruals for a billing period",
	Long: `Bill every active account for one period. Accounts already billed for the
period are skipped, so the command can be re-run after fixing failures.`,
	Example: `  # Bill the previous month
  wbl_backend accrue

  # Bill a specific month
  wbl_backend accrue --period 2025-08`,
	RunE: runAccrue,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the daily debt sweep",
	Long: `Close repaid debt cases, open cases for debts past the grace period, escalate
monitoring cases and charge the daily penalty. Repeating it for the same day
charges nothing twice.`,
	Example: `  wbl_backend sweep
  wbl_backend sweep --day 2025-08-31`,
	RunE: runSweep,
}

func init() {
	accrueCmd.Flags().String("period", "", "Billing period YYYY-MM (default: previous month)")
	sweepCmd.Flags().String("day", "", "Day to sweep YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(accrueCmd, sweepCmd)
}

func runAccrue(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	period := domain.PeriodOf(app.clock.Now()).Previous()
	if raw, _ := cmd.Flags().GetString("period"); raw != "" {
		if period, err = domain.ParseBillingPeriod(raw); err != nil {
			return err
		}
	}

	ctx := middleware.WithUserID(cmd.Context(), domain.SystemActor)
	result, err := app.services.Accrual.RunMonthlyAccruals(ctx, period, domain.SystemActor)
	if err != nil {
		return fmt.Errorf("accrual run for %s failed: %w", period, err)
	}
	return printJSON(result)
}

func runSweep(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	day := app.clock.Now()
	if raw, _ := cmd.Flags().GetString("day"); raw != "" {
		if day, err = time.ParseInLocation(time.DateOnly, raw, day.Location()); err != nil {
			return fmt.Errorf("invalid --day %q: %w", raw, err)
		}
	}

	ctx := middleware.WithUserID(cmd.Context(), domain.SystemActor)
	result, err := app.services.DebtCase.RunDailySweep(ctx, day, domain.SystemActor)
	if err != nil {
		return fmt.Errorf("debt sweep for %s failed: %w", day.Format(time.DateOnly), err)
	}
	return printJSON(result)
}

// printJSON writes a job summary to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
