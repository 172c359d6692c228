package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
)

type fixture struct {
	ctx          context.Context
	db           *sql.DB
	transactions *repository.TransactionRepo
	accounts     *repository.AccountRepo
	categories   *repository.CategoryRepo
}

func setupFixture(t *testing.T) fixture {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, ""))
	require.NoError(t, database.SeedDefaults(ctx, db))

	return fixture{
		ctx:          ctx,
		db:           db,
		transactions: repository.NewTransactionRepo(db),
		accounts:     repository.NewAccountRepo(db),
		categories:   repository.NewCategoryRepo(db),
	}
}

func (f fixture) subCategory(t *testing.T, parent, name string) repository.Category {
	t.Helper()
	cats, err := f.categories.List(f.ctx)
	require.NoError(t, err)
	var parentID string
	for _, c := range cats {
		if c.ParentID == nil && c.Name == parent {
			parentID = c.ID
		}
	}
	for _, c := range cats {
		if c.ParentID != nil && *c.ParentID == parentID && c.Name == name {
			return c
		}
	}
	t.Fatalf("category %s > %s not seeded", parent, name)
	return repository.Category{}
}

func boolPtr(b bool) *bool { return &b }
