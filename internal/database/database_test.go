package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database/repository"
)

func openTestDB(t *testing.T) *repositorySet {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db, ""))
	return &repositorySet{
		accounts:     repository.NewAccountRepo(db),
		categories:   repository.NewCategoryRepo(db),
		transactions: repository.NewTransactionRepo(db),
		seed:         func() error { return SeedDefaults(context.Background(), db) },
	}
}

type repositorySet struct {
	accounts     *repository.AccountRepo
	categories   *repository.CategoryRepo
	transactions *repository.TransactionRepo
	seed         func() error
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)
	require.NoError(t, s.seed())
	require.NoError(t, s.seed())

	accounts, err := s.accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	top, err := s.categories.ListByAccount(ctx, DefaultAccountID)
	require.NoError(t, err)
	require.Len(t, top, len(defaultCategories))
	require.Equal(t, "Food", top[0].Name)

	children, err := s.categories.Children(ctx, top[0].ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	require.Equal(t, top[0].ID, *children[0].ParentID)
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)
	require.NoError(t, s.seed())
	top, err := s.categories.ListByAccount(ctx, DefaultAccountID)
	require.NoError(t, err)
	kids, err := s.categories.Children(ctx, top[0].ID)
	require.NoError(t, err)

	day := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)
	tx := repository.Transaction{
		ID: "t1", AccountID: DefaultAccountID, CategoryID: &kids[0].ID, Date: day,
		AmountCents: 1250, Kind: repository.KindExpense, Pending: true,
		Method: repository.MethodCash, Currency: "USD", Note: "weekly shop",
	}
	require.NoError(t, s.transactions.Insert(ctx, tx))
	require.NoError(t, s.transactions.Insert(ctx, repository.Transaction{
		ID: "t2", AccountID: DefaultAccountID, CategoryID: &kids[0].ID, Date: day.Add(time.Hour),
		AmountCents: 750, Kind: repository.KindExpense, Method: repository.MethodCredit, Currency: "USD",
	}))

	got, err := s.transactions.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, got.Pending)
	require.Equal(t, int64(1250), got.AmountCents)
	require.True(t, got.Date.Equal(day))

	got.Note = "monthly shop"
	require.NoError(t, s.transactions.Update(ctx, got))

	list, err := s.transactions.List(ctx, repository.TransactionFilters{Search: "monthly"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	totals, err := s.transactions.SumByCategory(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Equal(t, int64(-2000), totals[0].TotalCents)
	require.Equal(t, 2, totals[0].Count)

	require.NoError(t, s.transactions.Delete(ctx, "t1"))
	_, err = s.transactions.Get(ctx, "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, s.transactions.Update(ctx, got), repository.ErrNotFound)
}

func TestMigrationsReportVersion(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "v.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, RunMigrations(db, ""))
	require.NoError(t, RunMigrations(db, ""))
	v, dirty, err := Version(db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), v)
}
