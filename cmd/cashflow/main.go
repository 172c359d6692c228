package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/cashflow/internal/config"
	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/logging"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("cashflow: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cashflow",
		Short:         "Track expenses and income from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runUI,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newImportCmd(), newResetCmd())
	return root
}

// bootstrap loads config, points the logger at its file, and opens the
// migrated database.
func bootstrap() (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	logging.Configure(cfg.Log.File)
	logging.SetTraceEnabled(cfg.Log.Trace)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return cfg, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return cfg, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunMigrations(db, cfg.Database.Migrations); err != nil {
		_ = db.Close()
		return cfg, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, db, nil
}

func runUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	txRepo := repository.NewTransactionRepo(db)
	acctRepo := repository.NewAccountRepo(db)
	catRepo := repository.NewCategoryRepo(db)

	editor := &service.Editor{
		Transactions: txRepo,
		Suggest:      &service.Suggester{Transactions: txRepo},
		Defaults:     service.Defaults{AccountID: database.DefaultAccountID},
	}
	app, err := tui.New(ctx, cfg,
		tui.Repos{Accounts: acctRepo, Categories: catRepo, Transactions: txRepo},
		tui.Services{Editor: editor, Reporter: &service.Reporter{Transactions: txRepo, Categories: catRepo}},
	)
	if err != nil {
		return fmt.Errorf("build ui: %w", err)
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
