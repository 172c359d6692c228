package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/demo"
	"github.com/jask/cashflow/internal/prefs"
	"github.com/jask/cashflow/internal/service"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()
			v, dirty, err := database.Version(db)
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var (
		demoCount int
		restore   bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default account and categories if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if restore {
				m := &service.MaintenanceService{DB: db}
				n, err := m.Restore(ctx, prefs.PathFor(cfg.Database.Path))
				if err != nil {
					return fmt.Errorf("restore categories: %w", err)
				}
				fmt.Fprintf(out, "restored %d categories\n", n)
			}
			if err := database.SeedDefaults(ctx, db); err != nil {
				return fmt.Errorf("seed defaults: %w", err)
			}
			fmt.Fprintln(out, "defaults seeded")

			if demoCount > 0 {
				n, err := demo.Seed(ctx, demo.Repos{
					Accounts:     repository.NewAccountRepo(db),
					Categories:   repository.NewCategoryRepo(db),
					Transactions: repository.NewTransactionRepo(db),
				}, demo.Options{Count: demoCount, Now: time.Now(), Seed: uint64(time.Now().UnixNano())})
				if err != nil {
					return fmt.Errorf("demo data: %w", err)
				}
				fmt.Fprintf(out, "added %d demo transactions\n", n)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&demoCount, "demo", 0, "also insert this many random transactions")
	cmd.Flags().BoolVar(&restore, "restore", false, "restore categories saved by the last reset")
	return cmd
}

func newImportCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV file",
		Long: `Import rows of: date, amount, note, account[, category[, method]].
Negative amounts are expenses. Rows already imported are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()
			if err := database.SeedDefaults(ctx, db); err != nil {
				return fmt.Errorf("seed defaults: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			txRepo := repository.NewTransactionRepo(db)
			ingest := &service.IngestService{
				Transactions: txRepo,
				Accounts:     repository.NewAccountRepo(db),
				Categories:   repository.NewCategoryRepo(db),
				Suggest:      &service.Suggester{Transactions: txRepo},
				Currency:     currency,
			}
			start := time.Now()
			res, err := ingest.ImportCSV(ctx, f, cfg.UI.Location())
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d, skipped %d in %s\n", res.Imported, res.Skipped, time.Since(start).Round(time.Millisecond))
			for _, e := range res.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code stored on imported rows")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every account, category and transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset deletes all data; pass --yes to confirm")
			}
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()
			m := &service.MaintenanceService{DB: db}
			backup := prefs.PathFor(cfg.Database.Path)
			if err := m.Backup(cmd.Context(), backup); err != nil {
				return fmt.Errorf("backup categories: %w", err)
			}
			if err := m.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database reset; categories saved to %s\n", backup)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
