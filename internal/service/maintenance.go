package service

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/prefs"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all user data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"transactions", "categories", "accounts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// Backup saves accounts and categories to path.
func (s *MaintenanceService) Backup(ctx context.Context, path string) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	accounts, err := repository.NewAccountRepo(s.DB).List(ctx)
	if err != nil {
		return fmt.Errorf("backup accounts: %w", err)
	}
	cats, err := repository.NewCategoryRepo(s.DB).List(ctx)
	if err != nil {
		return fmt.Errorf("backup categories: %w", err)
	}
	return prefs.SaveTaxonomy(path, prefs.Taxonomy{Accounts: accounts, Categories: cats})
}

// Restore upserts the accounts and categories saved at path and returns how
// many categories it wrote. Parents are written before their children.
func (s *MaintenanceService) Restore(ctx context.Context, path string) (int, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	t, err := prefs.LoadTaxonomy(path)
	if err != nil {
		return 0, err
	}
	cats := slices.Clone(t.Categories)
	slices.SortStableFunc(cats, func(a, b repository.Category) int {
		switch {
		case a.ParentID == nil && b.ParentID != nil:
			return -1
		case a.ParentID != nil && b.ParentID == nil:
			return 1
		}
		return 0
	})

	accounts := repository.NewAccountRepo(s.DB)
	categories := repository.NewCategoryRepo(s.DB)
	for _, a := range t.Accounts {
		if err := accounts.Upsert(ctx, a); err != nil {
			return 0, fmt.Errorf("restore account %s: %w", a.Name, err)
		}
	}
	n := 0
	for _, c := range cats {
		if err := categories.Upsert(ctx, c); err != nil {
			return n, fmt.Errorf("restore category %s: %w", c.Name, err)
		}
		n++
	}
	return n, nil
}
