package demo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
)

func openRepos(t *testing.T, seed bool) (context.Context, Repos) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "demo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, ""))
	if seed {
		require.NoError(t, database.SeedDefaults(ctx, db))
	}
	return ctx, Repos{
		Accounts:     repository.NewAccountRepo(db),
		Categories:   repository.NewCategoryRepo(db),
		Transactions: repository.NewTransactionRepo(db),
	}
}

func TestSeedFillsRecentHistory(t *testing.T) {
	ctx, repos := openRepos(t, true)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	n, err := Seed(ctx, repos, Options{Count: 50, Days: 30, Now: now, Seed: 7})
	require.NoError(t, err)
	require.Equal(t, 50, n)

	txs, err := repos.Transactions.List(ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, txs, 50)
	for _, tx := range txs {
		require.NotNil(t, tx.CategoryID)
		require.False(t, tx.Date.After(now))
		require.True(t, tx.Date.After(now.AddDate(0, 0, -31)))
		require.Positive(t, tx.AmountCents)
		require.Equal(t, database.DefaultAccountID, tx.AccountID)
	}
}

func TestSeedNeedsCategories(t *testing.T) {
	ctx, repos := openRepos(t, false)

	n, err := Seed(ctx, repos, Options{Count: 0})
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = Seed(ctx, repos, Options{Count: 3})
	require.ErrorContains(t, err, "no categories")
}
