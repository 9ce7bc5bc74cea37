package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/spf13/cobra"
)

var importStatementCmd = &cobra.Command{
	Use:   "import-statement [csv-file]",
	Short: "Import a bank statement and run one reconciliation pass",
	Long: `Import a bank statement from a CSV file (date, amount, description) or, with
--range, from the configured Google spreadsheet. Matching lines are credited
to their accounts right away; the rest stay UNMATCHED for manual review.`,
	Example: `  wbl_backend import-statement ./august.csv --bank "City Bank"
  wbl_backend import-statement --bank "City Bank" --range "Statement!A2:C"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImportStatement,
}

var importAccountsCmd = &cobra.Command{
	Use:   "import-accounts [csv-file]",
	Short: "Import an account list",
	Long: `Validate every row of an account list and create the accounts in one
transaction. The first invalid row aborts the import and is reported with its
line, column and value.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportAccounts,
}

func init() {
	importStatementCmd.Flags().String("bank", "", "Bank the statement comes from [REQUIRED]")
	importStatementCmd.Flags().String("range", "", "Spreadsheet range in A1 notation instead of a file")
	importStatementCmd.Flags().Bool("no-reconcile", false, "Only import, do not run auto-matching")
	_ = importStatementCmd.MarkFlagRequired("bank")
	rootCmd.AddCommand(importStatementCmd, importAccountsCmd)
}

func runImportStatement(cmd *cobra.Command, args []string) error {
	bank, _ := cmd.Flags().GetString("bank")
	readRange, _ := cmd.Flags().GetString("range")
	if (len(args) == 0) == (readRange == "") {
		return fmt.Errorf("pass either a CSV file or --range")
	}

	app, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	var statement *domain.BankStatement
	var txns []domain.BankStatementTransaction
	if readRange != "" {
		statement, txns, err = app.services.Reconciliation.ImportStatementFromSheet(ctx, bank, readRange, domain.SystemActor)
	} else {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], readErr)
		}
		statement, txns, err = app.services.Reconciliation.ImportStatement(ctx, bank, filepath.Base(args[0]), data, domain.SystemActor)
	}
	if err != nil {
		return err
	}

	summary := map[string]any{
		"statement": dto.ImportStatementResponse{Statement: *statement, Transactions: txns},
	}
	if skip, _ := cmd.Flags().GetBool("no-reconcile"); !skip {
		result, err := app.services.Reconciliation.Reconcile(ctx, domain.SystemActor)
		if err != nil {
			return fmt.Errorf("statement imported but reconciliation failed: %w", err)
		}
		summary["reconciliation"] = result
	}
	return printJSON(summary)
}

func runImportAccounts(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	app, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	accounts, err := app.services.Account.ImportAccounts(cmd.Context(), data, domain.SystemActor)
	if err != nil {
		return err
	}
	return printJSON(dto.ImportAccountsResponse{
		Imported: len(accounts),
		Accounts: dto.ToListAccountResponse(accounts),
	})
}
